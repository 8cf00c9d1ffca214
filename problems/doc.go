// Package problems supplies the small fixed nlp.Problem implementations
// used by the driver's end-to-end tests and by cmd/sqpdemo: a bound-only
// quadratic, an equality-constrained quadratic, the HS34 inequality-
// constrained CUTEr problem, a bound-infeasible problem, and an
// elastic-restart problem starting outside its equality constraint.
package problems
