package problems

import (
	"math"

	"github.com/restartsqp/sqpcore/nlp"
)

// HS34 is Hock-Schittkowski problem 34 (scenario 3): minimize -x1 subject to
// x2 - exp(x1) >= 0, x3 - exp(x2) >= 0, 0 <= x1,x2 <= 100, 0 <= x3 <= 10.
// Its exact optimum is x* = (ln ln 10, ln 10, 10), f* = -ln(ln 10).
type HS34 struct{ base }

var _ nlp.Problem = (*HS34)(nil)

// NewHS34 constructs the problem at the textbook starting point (0, 1.05, 2.9).
func NewHS34() *HS34 { return &HS34{} }

func (p *HS34) Info() nlp.Sizes {
	return nlp.Sizes{N: 3, M: 2, NNZJacobian: 4, NNZHessian: 2, Name: "hs34"}
}

func (p *HS34) Bounds(xLower, xUpper, cLower, cUpper []float64) bool {
	xLower[0], xUpper[0] = 0, 100
	xLower[1], xUpper[1] = 0, 100
	xLower[2], xUpper[2] = 0, 10
	cLower[0], cUpper[0] = 0, 1e18
	cLower[1], cUpper[1] = 0, 1e18
	return true
}

func (p *HS34) StartingPoint(x []float64) ([]float64, []float64, bool, bool) {
	x[0], x[1], x[2] = 0, 1.05, 2.9
	return nil, nil, false, true
}

func (p *HS34) ObjectiveValue(x []float64) (float64, bool) { return -x[0], true }

func (p *HS34) ObjectiveGradient(x []float64, grad []float64) bool {
	grad[0], grad[1], grad[2] = -1, 0, 0
	return true
}

func (p *HS34) ConstraintValues(x []float64, c []float64) bool {
	c[0] = x[1] - math.Exp(x[0])
	c[1] = x[2] - math.Exp(x[1])
	return true
}

func (p *HS34) ConstraintJacobian(x []float64, newX bool, rows, cols []int, vals []float64) bool {
	if vals == nil {
		rows[0], cols[0] = 1, 1
		rows[1], cols[1] = 1, 2
		rows[2], cols[2] = 2, 2
		rows[3], cols[3] = 2, 3
		return true
	}
	vals[0] = -math.Exp(x[0])
	vals[1] = 1
	vals[2] = -math.Exp(x[1])
	vals[3] = 1
	return true
}

func (p *HS34) LagrangianHessian(x []float64, newX bool, sigma float64, lambda []float64, newLambda bool, rows, cols []int, vals []float64) bool {
	if vals == nil {
		rows[0], cols[0] = 1, 1
		rows[1], cols[1] = 2, 2
		return true
	}
	vals[0] = lambda[0] * math.Exp(x[0])
	vals[1] = lambda[1] * math.Exp(x[1])
	return true
}
