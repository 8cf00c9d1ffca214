package problems

import "github.com/restartsqp/sqpcore/nlp"

// ElasticStart minimizes (1/2)x^T x subject to x1 + x2 = 2, x1,x2 >= 0,
// starting from the row-infeasible point (2, 2): scenario 6, exercising the
// Builder's elastic-restart fallback on its very first solve.
type ElasticStart struct{ base }

var _ nlp.Problem = (*ElasticStart)(nil)

// NewElasticStart constructs the problem.
func NewElasticStart() *ElasticStart { return &ElasticStart{} }

func (p *ElasticStart) Info() nlp.Sizes {
	return nlp.Sizes{N: 2, M: 1, NNZJacobian: 2, NNZHessian: 2, Name: "elastic_start"}
}

func (p *ElasticStart) Bounds(xLower, xUpper, cLower, cUpper []float64) bool {
	xLower[0], xLower[1] = 0, 0
	xUpper[0], xUpper[1] = 1e18, 1e18
	cLower[0], cUpper[0] = 2, 2
	return true
}

func (p *ElasticStart) StartingPoint(x []float64) ([]float64, []float64, bool, bool) {
	x[0], x[1] = 2, 2
	return nil, nil, false, true
}

func (p *ElasticStart) ObjectiveValue(x []float64) (float64, bool) {
	return 0.5 * (x[0]*x[0] + x[1]*x[1]), true
}

func (p *ElasticStart) ObjectiveGradient(x []float64, grad []float64) bool {
	grad[0], grad[1] = x[0], x[1]
	return true
}

func (p *ElasticStart) ConstraintValues(x []float64, c []float64) bool {
	c[0] = x[0] + x[1]
	return true
}

func (p *ElasticStart) ConstraintJacobian(x []float64, newX bool, rows, cols []int, vals []float64) bool {
	if vals == nil {
		rows[0], cols[0] = 1, 1
		rows[1], cols[1] = 1, 2
		return true
	}
	vals[0], vals[1] = 1, 1
	return true
}

func (p *ElasticStart) LagrangianHessian(x []float64, newX bool, sigma float64, lambda []float64, newLambda bool, rows, cols []int, vals []float64) bool {
	if vals == nil {
		rows[0], cols[0] = 1, 1
		rows[1], cols[1] = 2, 2
		return true
	}
	vals[0] = sigma
	vals[1] = sigma
	return true
}
