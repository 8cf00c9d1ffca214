package vector

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// InfNorm returns the infinity-norm (max absolute entry) of x, 0 for an
// empty vector. Delegates to gonum/floats rather than a hand-rolled loop so
// the batch-reduction path stays consistent with the rest of the numeric
// stack.
func InfNorm(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return floats.Norm(x, math.Inf(1))
}

// L1Norm returns the one-norm (sum of absolute entries) of x.
func L1Norm(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return floats.Norm(x, 1)
}

// AddScaled computes dst += alpha*src elementwise, in place. dst and src
// must have equal length.
func AddScaled(dst, src []float64, alpha float64) error {
	if len(dst) != len(src) {
		return ErrLengthMismatch
	}
	floats.AddScaled(dst, alpha, src)
	return nil
}

// Clip projects x into [lower, upper] elementwise, in place. All three
// slices must have equal length.
func Clip(x, lower, upper []float64) error {
	if len(x) != len(lower) || len(x) != len(upper) {
		return ErrLengthMismatch
	}
	for i := range x {
		switch {
		case x[i] < lower[i]:
			x[i] = lower[i]
		case x[i] > upper[i]:
			x[i] = upper[i]
		}
	}
	return nil
}

// WithinBounds reports whether lower[i] - tol <= x[i] <= upper[i] + tol for
// every i.
func WithinBounds(x, lower, upper []float64, tol float64) bool {
	for i := range x {
		if x[i] < lower[i]-tol || x[i] > upper[i]+tol {
			return false
		}
	}
	return true
}

// InfeasibilityMeasure computes Σ max(lower-x,0) + Σ max(x-upper,0), the
// ℓ1 bound/constraint violation used throughout the driver as η.
func InfeasibilityMeasure(x, lower, upper []float64) float64 {
	var eta float64
	for i := range x {
		if d := lower[i] - x[i]; d > 0 {
			eta += d
		}
		if d := x[i] - upper[i]; d > 0 {
			eta += d
		}
	}
	return eta
}

// DotDiff computes aᵀb where a and b may have differing conceptual sign
// conventions. No other package in the module calls it.
func DotDiff(a, b []float64) float64 {
	return floats.Dot(a, b)
}
