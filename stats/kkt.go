package stats

import (
	"errors"

	"github.com/restartsqp/sqpcore/sparse"
	"github.com/restartsqp/sqpcore/vector"
)

// ErrInvalidWorkingSet is returned when a working-set label outside the
// four-valued enumeration is supplied to the KKT checker.
var ErrInvalidWorkingSet = errors.New("stats: invalid working-set label")

// KKTInput bundles the iterate data the KKT / working-set-consistency
// checker needs. J is the constraint Jacobian at x (m x n, any sparsity);
// Grad is ∇f(x). All slices are read-only to the checker.
type KKTInput struct {
	X, XLower, XUpper         []float64
	C, CLower, CUpper         []float64
	Grad                      []float64
	J                         *sparse.Triplet
	YBound, YConstraint       []float64
	VarBoundType, ConBoundType []vector.BoundType
	VarWorkingSet, ConWorkingSet []vector.WorkingSetStatus
}

// KKTResult holds the four aggregate violation measures described by the
// spec's KKT test.
type KKTResult struct {
	Primal         float64
	Dual           float64
	Complementarity float64
	Stationarity   float64
}

// Optimal reports whether every violation is within its tolerance.
func (r KKTResult) Optimal(tauPrim, tauDual, tauComp, tauStat float64) bool {
	return r.Primal <= tauPrim && r.Dual <= tauDual && r.Complementarity <= tauComp && r.Stationarity <= tauStat
}

// CheckKKT computes the four KKT violation aggregates for in.
//
// Primal: Σ bound/constraint violations.
// Dual: Σ wrong-sign magnitude for multipliers whose classification
// dictates a sign (active-at-lower ⇒ y ≥ 0, active-at-upper ⇒ y ≤ 0; a
// BoundTypeEqual side has no sign constraint).
// Complementarity: Σ |y_i · (bound distance)| on active sides, plus
// Σ |y_i| on inactive/unbounded sides.
// Stationarity: ‖∇f − Jᵀλ_c − λ_b‖₁.
func CheckKKT(in KKTInput) (KKTResult, error) {
	for _, ws := range in.VarWorkingSet {
		if !ws.Valid() {
			return KKTResult{}, ErrInvalidWorkingSet
		}
	}
	for _, ws := range in.ConWorkingSet {
		if !ws.Valid() {
			return KKTResult{}, ErrInvalidWorkingSet
		}
	}

	var result KKTResult

	result.Primal += vector.InfeasibilityMeasure(in.X, in.XLower, in.XUpper)
	result.Primal += vector.InfeasibilityMeasure(in.C, in.CLower, in.CUpper)

	accumulate := func(y float64, boundType vector.BoundType, ws vector.WorkingSetStatus, distLower, distUpper float64) {
		switch ws {
		case vector.ActiveBelow:
			if boundType != vector.BoundTypeEqual && y < 0 {
				result.Dual += -y
			}
			result.Complementarity += absf(y * distLower)
		case vector.ActiveAbove:
			if boundType != vector.BoundTypeEqual && y > 0 {
				result.Dual += y
			}
			result.Complementarity += absf(y * distUpper)
		case vector.ActiveBothSide:
			result.Complementarity += absf(y * distLower)
		default: // Inactive
			result.Complementarity += absf(y)
		}
	}

	for i := range in.X {
		distLower := in.X[i] - in.XLower[i]
		distUpper := in.XUpper[i] - in.X[i]
		accumulate(in.YBound[i], in.VarBoundType[i], in.VarWorkingSet[i], distLower, distUpper)
	}
	for i := range in.C {
		distLower := in.C[i] - in.CLower[i]
		distUpper := in.CUpper[i] - in.C[i]
		accumulate(in.YConstraint[i], in.ConBoundType[i], in.ConWorkingSet[i], distLower, distUpper)
	}

	stationarity := make([]float64, len(in.Grad))
	copy(stationarity, in.Grad)
	if in.J != nil {
		if err := in.J.MultiplyTranspose(in.YConstraint, stationarity, -1.0); err != nil {
			return KKTResult{}, err
		}
	}
	for i := range stationarity {
		stationarity[i] -= in.YBound[i]
	}
	result.Stationarity = vector.L1Norm(stationarity)

	return result, nil
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
