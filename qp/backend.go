package qp

import (
	"github.com/restartsqp/sqpcore/sparse"
	"github.com/restartsqp/sqpcore/stats"
	"github.com/restartsqp/sqpcore/vector"
)

// Backend is the solver-agnostic facade every concrete QP engine
// implements. Dispatch over backend variants is by a closed tagged
// interface set (no open inheritance hierarchy is needed because the
// variant set — ReferenceBackend plus whatever commercial adapters a
// deployment wires in — is fixed at build time).
//
// Structure is set exactly once per matrix (SetHessianStructure,
// SetJacobianStructure); subsequent calls refresh only values, via the
// scalar location-keyed setters or the vector setters. warmStart (on
// Optimize*) tells the backend whether to attempt its hot-start path
// (true) or perform a full re-factorization (false); the Builder decides
// this from its MatrixChangeStatus history, not the backend.
type Backend interface {
	// SetHessianStructure fixes H_QP's sparsity pattern. May be called
	// exactly once; a second call returns sparse.ErrAlreadyInitialized.
	SetHessianStructure(h *sparse.Triplet) error

	// SetJacobianStructure fixes A_QP's sparsity pattern, splicing in the
	// given identity blocks. May be called exactly once.
	SetJacobianStructure(a *sparse.Triplet, identities []sparse.IdentityBlockPosition) error

	// SetLowerBounds / SetUpperBounds overwrite the full variable lower/
	// upper bound vectors (length n_QP).
	SetLowerBounds(v []float64) error
	SetUpperBounds(v []float64) error

	// SetVariableBound overwrites a single variable bound, keyed by
	// 0-indexed location; isUpper selects which bound.
	SetVariableBound(i int, isUpper bool, v float64) error

	// SetConstraintLowers / SetConstraintUppers overwrite the full
	// constraint bound vectors (length m_QP).
	SetConstraintLowers(v []float64) error
	SetConstraintUppers(v []float64) error

	// SetGradient overwrites the full linear term g_QP (length n_QP).
	SetGradient(v []float64) error

	// SetStartingPoint seeds the primal iterate used by the next Optimize*
	// call. The Builder calls this on elastic-restart fallback; a backend
	// not given an explicit starting point defaults to clipping the zero
	// vector into bounds.
	SetStartingPoint(z []float64) error

	// SetHessianValues / SetJacobianValues refresh the numeric values of
	// the previously-fixed structures, in the source triplet's Entries()
	// order.
	SetHessianValues(v []float64) error
	SetJacobianValues(v []float64) error

	// SetInitialWorkingSet seeds the active-set search's starting working
	// set for the next Optimize* call only, then is cleared. wVar and wCon
	// are in the backend's own n_QP/m_QP indexing; a backend that ignores
	// hot-start working-set seeding may implement this as a no-op.
	SetInitialWorkingSet(wVar, wCon []vector.WorkingSetStatus) error

	// OptimizeQP solves the currently staged QP (using H_QP). st.QPIterations
	// is incremented by the inner iteration count.
	OptimizeQP(st *stats.Statistics, warmStart bool) (ExitStatus, error)

	// OptimizeLP solves the currently staged problem with the Hessian
	// treated as zero (used by the penalty-update sub-loop). st.QPIterations
	// and st.LPIterations are both incremented by the inner iteration count.
	OptimizeLP(st *stats.Statistics, warmStart bool) (ExitStatus, error)

	// Primal returns the full n_QP-length primal solution (p, u, v).
	Primal() []float64
	// ConstraintMultipliers returns the m_QP-length constraint multipliers.
	ConstraintMultipliers() []float64
	// BoundMultipliers returns the n_QP-length signed bound multipliers.
	BoundMultipliers() []float64
	// WorkingSetVariables returns the normalized per-variable working set.
	WorkingSetVariables() []vector.WorkingSetStatus
	// WorkingSetConstraints returns the normalized per-constraint working set.
	WorkingSetConstraints() []vector.WorkingSetStatus
	// Objective returns the QP/LP objective value q_k at the last solve.
	Objective() float64
}
