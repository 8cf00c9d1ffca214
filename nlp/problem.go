package nlp

import "github.com/restartsqp/sqpcore/vector"

// Sizes reports the immutable problem dimensions: n variables, m
// constraints, and the declared nonzero counts of the constraint Jacobian
// and (lower-triangular) Lagrangian Hessian.
type Sizes struct {
	N, M, NNZJacobian, NNZHessian int
	Name                          string
}

// Problem is the narrow callback surface the Driver pulls data from. All
// index arrays the implementation populates (Jacobian/Hessian structure)
// are 1-indexed, matching the external NLP callback convention; every
// evaluator returns a bool indicating success, mapped by the Driver
// to nlp.InvalidNLP on failure.
//
// Lagrangian sign convention: L(x,λ) = f(x) − λᵀc(x). Implementations that
// wrap an external NLP using the common +λᵀc convention must negate
// constraint multipliers (and the starting dual point) at the boundary.
type Problem interface {
	// Info reports the immutable problem sizes and name.
	Info() Sizes

	// Bounds populates xLower/xUpper (length n) and cLower/cUpper (length
	// m). Values with |v| >= vector.InfinityThreshold denote ±∞.
	Bounds(xLower, xUpper, cLower, cUpper []float64) bool

	// StartingPoint populates the initial primal point x (length n). If
	// the NLP can supply an initial dual point it sets haveMultipliers and
	// returns zBound (length n, bound multipliers) and lambda (length m,
	// constraint multipliers); otherwise it returns haveMultipliers ==
	// false and the Driver starts the duals at zero.
	StartingPoint(x []float64) (zBound []float64, lambda []float64, haveMultipliers bool, ok bool)

	// ObjectiveValue evaluates f(x).
	ObjectiveValue(x []float64) (f float64, ok bool)

	// ObjectiveGradient evaluates ∇f(x) into grad (length n).
	ObjectiveGradient(x []float64, grad []float64) bool

	// ConstraintValues evaluates c(x) into c (length m).
	ConstraintValues(x []float64, c []float64) bool

	// ConstraintJacobian populates the constraint Jacobian J(x). When vals
	// is nil this call sets structure only: rows and cols (each length
	// NNZJacobian, 1-indexed) must be populated and vals left untouched.
	// When vals is non-nil, rows/cols are already fixed and only vals
	// (length NNZJacobian) is populated, in the same order as the
	// structure call.
	ConstraintJacobian(x []float64, newX bool, rows, cols []int, vals []float64) bool

	// LagrangianHessian populates the lower triangle of H(x,λ,σ) =
	// σ∇²f(x) − Σ λ_i∇²c_i(x). Structure-first idiom identical to
	// ConstraintJacobian: vals == nil sets rows/cols (length NNZHessian,
	// 1-indexed, row >= col), vals != nil refreshes values only.
	LagrangianHessian(x []float64, newX bool, sigma float64, lambda []float64, newLambda bool, rows, cols []int, vals []float64) bool

	// FinalizeSolution is called exactly once on termination with the
	// final primal/dual point, constraint values, working sets, and
	// objective value. It has no return value: the Driver's terminal status is
	// already fixed by the time it is called.
	FinalizeSolution(status ExitFlag, x []float64, zBound []float64, wBound []vector.WorkingSetStatus, c []float64, lambda []float64, wConstraint []vector.WorkingSetStatus, f float64)
}

// WorkingSetProvider is an optional capability a Problem may implement to
// hand the Driver an initial working-set estimate for hot-started solves.
// The Driver probes for it with a type assertion; NLPs that don't support
// hot-start handoff simply don't implement it.
type WorkingSetProvider interface {
	// UseInitialWorkingSet reports whether InitialWorkingSets should be
	// consulted for this solve.
	UseInitialWorkingSet() bool

	// InitialWorkingSets populates wBound (length n) and wConstraint
	// (length m) with the caller's working-set estimate.
	InitialWorkingSets(wBound, wConstraint []vector.WorkingSetStatus) bool
}
