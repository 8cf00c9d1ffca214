// Package driver implements the SL1QP trust-region outer loop: it queries
// an nlp.Problem, builds and re-solves the elastic QP subproblem through
// qp.Builder each iteration, runs the penalty-parameter update and
// second-order-correction sub-procedures, and terminates on a KKT pass or
// one of the fatal/terminal conditions in nlp.ExitFlag.
package driver
