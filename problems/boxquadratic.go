package problems

import "github.com/restartsqp/sqpcore/nlp"

// BoxQuadratic minimizes (x-1)^2 + (y-2.5)^2 subject to x,y >= 0: scenario 1
// of the end-to-end table, a purely box-constrained strictly convex QP whose
// unconstrained minimizer (1, 2.5) already lies inside the box, so the
// optimum is reached with every bound inactive.
type BoxQuadratic struct{ base }

var _ nlp.Problem = (*BoxQuadratic)(nil)

// NewBoxQuadratic constructs the problem.
func NewBoxQuadratic() *BoxQuadratic { return &BoxQuadratic{} }

func (p *BoxQuadratic) Info() nlp.Sizes {
	return nlp.Sizes{N: 2, M: 0, NNZJacobian: 0, NNZHessian: 2, Name: "box_quadratic"}
}

func (p *BoxQuadratic) Bounds(xLower, xUpper, cLower, cUpper []float64) bool {
	xLower[0], xLower[1] = 0, 0
	xUpper[0], xUpper[1] = 1e18, 1e18
	return true
}

func (p *BoxQuadratic) StartingPoint(x []float64) ([]float64, []float64, bool, bool) {
	x[0], x[1] = 0, 0
	return nil, nil, false, true
}

func (p *BoxQuadratic) ObjectiveValue(x []float64) (float64, bool) {
	dx, dy := x[0]-1, x[1]-2.5
	return dx*dx + dy*dy, true
}

func (p *BoxQuadratic) ObjectiveGradient(x []float64, grad []float64) bool {
	grad[0] = 2 * (x[0] - 1)
	grad[1] = 2 * (x[1] - 2.5)
	return true
}

func (p *BoxQuadratic) ConstraintValues(x []float64, c []float64) bool { return true }

func (p *BoxQuadratic) ConstraintJacobian(x []float64, newX bool, rows, cols []int, vals []float64) bool {
	return true
}

func (p *BoxQuadratic) LagrangianHessian(x []float64, newX bool, sigma float64, lambda []float64, newLambda bool, rows, cols []int, vals []float64) bool {
	if vals == nil {
		rows[0], cols[0] = 1, 1
		rows[1], cols[1] = 2, 2
		return true
	}
	vals[0] = 2 * sigma
	vals[1] = 2 * sigma
	return true
}
