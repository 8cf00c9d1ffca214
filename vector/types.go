package vector

// InfinityThreshold is the magnitude at or above which a bound value is
// treated as ±infinity, per the NLP callback contract.
const InfinityThreshold = 1e18

// LargeFinite is the sentinel used to represent +∞ inside sparse/QP data
// structures that require a finite double (elastic slack upper bounds).
const LargeFinite = 1e18

// BoundType classifies a single variable or constraint by which of its
// bounds are finite. Computed once at NLP setup from the bound values and
// never recomputed.
type BoundType int

const (
	// BoundTypeBounded indicates both x_L and x_U are finite and distinct.
	BoundTypeBounded BoundType = iota
	// BoundTypeEqual indicates x_L == x_U (a fixed variable / equality constraint).
	BoundTypeEqual
	// BoundTypeBoundedAbove indicates only x_U is finite.
	BoundTypeBoundedAbove
	// BoundTypeBoundedBelow indicates only x_L is finite.
	BoundTypeBoundedBelow
	// BoundTypeUnbounded indicates neither bound is finite.
	BoundTypeUnbounded
)

// String renders the BoundType for logging and test failure messages.
func (b BoundType) String() string {
	switch b {
	case BoundTypeBounded:
		return "BOUNDED"
	case BoundTypeEqual:
		return "EQUAL"
	case BoundTypeBoundedAbove:
		return "BOUNDED_ABOVE"
	case BoundTypeBoundedBelow:
		return "BOUNDED_BELOW"
	case BoundTypeUnbounded:
		return "UNBOUNDED"
	default:
		return "UNKNOWN_BOUND_TYPE"
	}
}

// IsFinite reports whether a bound value counts as finite under the
// NLP callback convention (|value| < InfinityThreshold).
func IsFinite(v float64) bool {
	return v > -InfinityThreshold && v < InfinityThreshold
}

// ClassifyBound derives the BoundType for a single (lower, upper) pair.
func ClassifyBound(lower, upper float64) BoundType {
	loFinite := IsFinite(lower)
	upFinite := IsFinite(upper)
	switch {
	case loFinite && upFinite && lower == upper:
		return BoundTypeEqual
	case loFinite && upFinite:
		return BoundTypeBounded
	case upFinite:
		return BoundTypeBoundedAbove
	case loFinite:
		return BoundTypeBoundedBelow
	default:
		return BoundTypeUnbounded
	}
}

// ClassifyBounds classifies a whole vector of (lower, upper) pairs in one
// pass; lower and upper must have equal length.
func ClassifyBounds(lower, upper []float64) ([]BoundType, error) {
	if len(lower) != len(upper) {
		return nil, ErrLengthMismatch
	}
	out := make([]BoundType, len(lower))
	for i := range lower {
		out[i] = ClassifyBound(lower[i], upper[i])
	}
	return out, nil
}

// WorkingSetStatus is the four-valued working-set label produced by a QP
// backend and consumed by the KKT tester. It replaces solver-specific
// integer codes with a single normalized enumeration.
type WorkingSetStatus int

const (
	// Inactive: the side is strictly interior (not at either bound).
	Inactive WorkingSetStatus = iota
	// ActiveBelow: active at the lower bound.
	ActiveBelow
	// ActiveAbove: active at the upper bound.
	ActiveAbove
	// ActiveBothSide: active at both bounds simultaneously (only legal for
	// equality-classified sides, where lower == upper).
	ActiveBothSide
)

// String renders the WorkingSetStatus for logging.
func (s WorkingSetStatus) String() string {
	switch s {
	case Inactive:
		return "INACTIVE"
	case ActiveBelow:
		return "ACTIVE_BELOW"
	case ActiveAbove:
		return "ACTIVE_ABOVE"
	case ActiveBothSide:
		return "ACTIVE_BOTH_SIDE"
	default:
		return "UNKNOWN_WORKING_SET_STATUS"
	}
}

// Valid reports whether s is one of the four declared labels.
func (s WorkingSetStatus) Valid() bool {
	return s >= Inactive && s <= ActiveBothSide
}

// NormalizeSignStatus converts a solver that natively reports only a sign
// integer in {-1, 0, +1} (active-at-lower, inactive, active-at-upper) into
// the four-valued enumeration, folding in the degenerate both-sides case
// whenever x is within sqrtEps of both bounds.
func NormalizeSignStatus(sign int, x, lower, upper, sqrtEps float64) WorkingSetStatus {
	nearLower := IsFinite(lower) && abs(x-lower) <= sqrtEps
	nearUpper := IsFinite(upper) && abs(x-upper) <= sqrtEps
	if nearLower && nearUpper {
		return ActiveBothSide
	}
	switch {
	case sign < 0:
		return ActiveBelow
	case sign > 0:
		return ActiveAbove
	default:
		return Inactive
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
