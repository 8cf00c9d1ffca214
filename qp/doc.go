// Package qp implements the solver-agnostic QP backend facade (Backend),
// the elastic-QP Builder that assembles and maintains the ℓ1-penalty QP
// subproblem from NLP data, and ReferenceBackend, a dense active-set
// implementation of Backend built on gonum's dense linear algebra, used as
// the module's default solver and by the package's own tests.
//
// Concrete commercial backends (qpOASES, QORE, Gurobi, CPLEX) are named in
// the surrounding spec as external collaborators; this package defines
// only the contract (Backend) they would implement, plus the one reference
// implementation shipped with the module.
package qp
