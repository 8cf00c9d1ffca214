package problems

import "github.com/restartsqp/sqpcore/nlp"

// EqualityQuadratic minimizes x^2 + y^2 subject to x + y = 1: scenario 2,
// a single linear equality constraint with a curvature-free Jacobian, so
// the Hessian carries only the objective's contribution.
type EqualityQuadratic struct{ base }

var _ nlp.Problem = (*EqualityQuadratic)(nil)

// NewEqualityQuadratic constructs the problem.
func NewEqualityQuadratic() *EqualityQuadratic { return &EqualityQuadratic{} }

func (p *EqualityQuadratic) Info() nlp.Sizes {
	return nlp.Sizes{N: 2, M: 1, NNZJacobian: 2, NNZHessian: 2, Name: "equality_quadratic"}
}

func (p *EqualityQuadratic) Bounds(xLower, xUpper, cLower, cUpper []float64) bool {
	xLower[0], xLower[1] = -1e18, -1e18
	xUpper[0], xUpper[1] = 1e18, 1e18
	cLower[0], cUpper[0] = 1, 1
	return true
}

func (p *EqualityQuadratic) StartingPoint(x []float64) ([]float64, []float64, bool, bool) {
	x[0], x[1] = 0, 0
	return nil, nil, false, true
}

func (p *EqualityQuadratic) ObjectiveValue(x []float64) (float64, bool) {
	return x[0]*x[0] + x[1]*x[1], true
}

func (p *EqualityQuadratic) ObjectiveGradient(x []float64, grad []float64) bool {
	grad[0] = 2 * x[0]
	grad[1] = 2 * x[1]
	return true
}

func (p *EqualityQuadratic) ConstraintValues(x []float64, c []float64) bool {
	c[0] = x[0] + x[1]
	return true
}

func (p *EqualityQuadratic) ConstraintJacobian(x []float64, newX bool, rows, cols []int, vals []float64) bool {
	if vals == nil {
		rows[0], cols[0] = 1, 1
		rows[1], cols[1] = 1, 2
		return true
	}
	vals[0], vals[1] = 1, 1
	return true
}

func (p *EqualityQuadratic) LagrangianHessian(x []float64, newX bool, sigma float64, lambda []float64, newLambda bool, rows, cols []int, vals []float64) bool {
	if vals == nil {
		rows[0], cols[0] = 1, 1
		rows[1], cols[1] = 2, 2
		return true
	}
	vals[0] = 2 * sigma
	vals[1] = 2 * sigma
	return true
}
