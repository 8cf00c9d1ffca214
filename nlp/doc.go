// Package nlp declares the narrow interface the SQP driver uses to pull
// problem data from a user-supplied nonlinear program: sizes, bounds, a
// starting point, and evaluators for the objective, constraints, and their
// derivatives. It also declares the unified ExitFlag taxonomy returned by
// Driver.Optimize.
//
// Implementations are the "NLP Collaborator" from the surrounding spec: the
// driver never constructs one itself, it only calls through this
// interface, so any modeling front-end (an algebraic modeling language, a
// generated problem, a hand-written test fixture) can supply one.
package nlp
