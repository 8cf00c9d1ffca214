package problems

import "github.com/restartsqp/sqpcore/nlp"

// InfeasibleBox minimizes x subject to x >= 0 and x <= -1: scenario 4, a
// box with lower bound exceeding its upper bound. No elastic slack can
// repair a bound conflict (elasticity only covers constraint rows), so the
// very first QP solve reports QPERROR_INFEASIBLE.
type InfeasibleBox struct{ base }

var _ nlp.Problem = (*InfeasibleBox)(nil)

// NewInfeasibleBox constructs the problem.
func NewInfeasibleBox() *InfeasibleBox { return &InfeasibleBox{} }

func (p *InfeasibleBox) Info() nlp.Sizes {
	return nlp.Sizes{N: 1, M: 0, NNZJacobian: 0, NNZHessian: 0, Name: "infeasible_box"}
}

func (p *InfeasibleBox) Bounds(xLower, xUpper, cLower, cUpper []float64) bool {
	xLower[0], xUpper[0] = 0, -1
	return true
}

func (p *InfeasibleBox) StartingPoint(x []float64) ([]float64, []float64, bool, bool) {
	x[0] = 0
	return nil, nil, false, true
}

func (p *InfeasibleBox) ObjectiveValue(x []float64) (float64, bool) { return x[0], true }

func (p *InfeasibleBox) ObjectiveGradient(x []float64, grad []float64) bool {
	grad[0] = 1
	return true
}

func (p *InfeasibleBox) ConstraintValues(x []float64, c []float64) bool { return true }

func (p *InfeasibleBox) ConstraintJacobian(x []float64, newX bool, rows, cols []int, vals []float64) bool {
	return true
}

func (p *InfeasibleBox) LagrangianHessian(x []float64, newX bool, sigma float64, lambda []float64, newLambda bool, rows, cols []int, vals []float64) bool {
	return true
}
