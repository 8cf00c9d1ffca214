package problems

import "github.com/restartsqp/sqpcore/nlp"

// Names lists the built-in problems in table order, for CLI help text.
var Names = []string{"box_quadratic", "equality_quadratic", "hs34", "infeasible_box", "elastic_start"}

// ByName constructs a fresh instance of a built-in problem, or reports ok
// == false for an unrecognized name. Each call returns a new instance since
// an nlp.Problem's embedded base is mutated by FinalizeSolution.
func ByName(name string) (nlp.Problem, bool) {
	switch name {
	case "box_quadratic":
		return NewBoxQuadratic(), true
	case "equality_quadratic":
		return NewEqualityQuadratic(), true
	case "hs34":
		return NewHS34(), true
	case "infeasible_box":
		return NewInfeasibleBox(), true
	case "elastic_start":
		return NewElasticStart(), true
	default:
		return nil, false
	}
}
