package qp

import (
	"github.com/restartsqp/sqpcore/sparse"
	"github.com/restartsqp/sqpcore/stats"
	"github.com/restartsqp/sqpcore/vector"
)

// UpdateFlags is the narrow set of refresh signals the Driver raises between
// solves; the Builder forwards only the corresponding data to the backend.
// Bounds implies the box translation AND the constraint-bound translation
// are stale; a Δ-only change (trust region resize with the iterate
// unchanged) sets only Delta.
type UpdateFlags struct {
	A       bool
	H       bool
	Bounds  bool
	Delta   bool
	Penalty bool
	G       bool
}

// Any reports whether at least one flag is raised.
func (f UpdateFlags) Any() bool {
	return f.A || f.H || f.Bounds || f.Delta || f.Penalty || f.G
}

// Builder assembles and maintains the elastic-ℓ1 QP subproblem
//
//	min  ½ pᵀH_k p + ∇f_kᵀp + ρ·1ᵀu + ρ·1ᵀv
//	s.t. lb_p ≤ p ≤ ub_p
//	     lb_A ≤ J_k p + u − v ≤ ub_A   (u,v ≥ 0)
//
// from NLP data and a Backend, tracking the 3-state matrix-change history
// that decides whether a solve may trust the backend's hot-start path.
type Builder struct {
	n, m    int
	nQP     int // n + 2m
	backend Backend

	rho   float64
	delta float64

	xLower, xUpper []float64
	cLower, cUpper []float64
	xk, ck         []float64
	gradF          []float64

	jac *sparse.Triplet // m x n, structure owned by the NLP, values refreshed in place

	hessQP *sparse.Triplet // nQP x nQP embedding of the NLP Hessian, rebuilt once at Initialize

	lbQP, ubQP   []float64
	lbAQP, ubAQP []float64
	gQP          []float64

	firstSolve   bool
	matrixStatus MatrixChangeStatus // the status recorded after the last solve

	debugDumpDir string
}

// NewBuilder allocates a Builder for an n-variable, m-constraint NLP wired
// to backend. backend must not have had any structure set yet; Initialize
// performs that call.
func NewBuilder(n, m int, backend Backend, rho0 float64) *Builder {
	return &Builder{
		n: n, m: m,
		nQP:          n + 2*m,
		backend:      backend,
		rho:          rho0,
		firstSolve:   true,
		matrixStatus: Undefined,
		lbQP:         make([]float64, n+2*m),
		ubQP:         make([]float64, n+2*m),
		lbAQP:        make([]float64, m),
		ubAQP:        make([]float64, m),
		gQP:          make([]float64, n+2*m),
	}
}

// SetDebugDumpDir enables the failing-QP dump (see DumpTriplet) to the given
// directory; an empty string (the default) disables it.
func (b *Builder) SetDebugDumpDir(dir string) { b.debugDumpDir = dir }

// identityBlocks returns the [+I | −I] splicing descriptor for the elastic
// slack columns, placed at column offsets n and n+m per the canonical
// layout A_QP = [J | +I | −I].
func (b *Builder) identityBlocks() []sparse.IdentityBlockPosition {
	return []sparse.IdentityBlockPosition{
		{RowOffset: 0, ColOffset: b.n, Dimension: b.m, Multiplier: 1},
		{RowOffset: 0, ColOffset: b.n + b.m, Dimension: b.m, Multiplier: -1},
	}
}

// embedHessian builds the nQP x nQP block-diagonal [H 0; 0 0] triplet
// sharing hess's (row, col, value) triples verbatim — the slack block
// contributes no entries, so the backend's HB structure simply has no
// nonzeros there.
func embedHessian(hess *sparse.Triplet, nQP int) (*sparse.Triplet, error) {
	out, err := sparse.NewTriplet(nQP, nQP, hess.Entries(), true)
	if err != nil {
		return nil, err
	}
	for k := 0; k < hess.Entries(); k++ {
		row, col, val, err := hess.Entry(k)
		if err != nil {
			return nil, err
		}
		if err := out.SetEntry(k, row, col, val); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Initialize stages the first elastic QP: fixes H_QP's and A_QP's structure
// on the backend, computes the bound/gradient translation at (xk, ck, delta)
// and performs the first solve. jac and hess are the NLP's current Jacobian
// and (lower-triangular) Lagrangian Hessian, already evaluated at xk.
//
// wBoundSeed/wConSeed, each either nil or length n/m, optionally hand the
// backend a caller-supplied hot-start working set (an nlp.Problem that
// implements WorkingSetProvider) to seed the very first active-set search
// instead of the backend's own proximity-to-bound heuristic.
func (b *Builder) Initialize(jac, hess *sparse.Triplet, gradF, xLower, xUpper, cLower, cUpper, xk, ck []float64, delta float64, st *stats.Statistics, wBoundSeed, wConSeed []vector.WorkingSetStatus) (ExitStatus, error) {
	b.xLower, b.xUpper = xLower, xUpper
	b.cLower, b.cUpper = cLower, cUpper
	b.xk, b.ck, b.gradF = xk, ck, gradF
	b.delta = delta
	b.jac = jac

	hessQP, err := embedHessian(hess, b.nQP)
	if err != nil {
		return InternalError, err
	}
	b.hessQP = hessQP

	if err := b.backend.SetHessianStructure(hessQP); err != nil {
		return InternalError, err
	}
	if err := b.backend.SetJacobianStructure(jac, b.identityBlocks()); err != nil {
		return InternalError, err
	}
	if err := b.backend.SetHessianValues(hess.Values()); err != nil {
		return InternalError, err
	}
	if err := b.backend.SetJacobianValues(jac.Values()); err != nil {
		return InternalError, err
	}

	b.recomputeBoxBounds()
	b.recomputeConstraintBounds()
	b.recomputeGradient()

	if err := b.pushBounds(); err != nil {
		return InternalError, err
	}
	if err := b.backend.SetGradient(b.gQP); err != nil {
		return InternalError, err
	}

	if wBoundSeed != nil || wConSeed != nil {
		wVarQP := make([]vector.WorkingSetStatus, b.nQP)
		copy(wVarQP, wBoundSeed)
		wConQP := make([]vector.WorkingSetStatus, b.m)
		copy(wConQP, wConSeed)
		if err := b.backend.SetInitialWorkingSet(wVarQP, wConQP); err != nil {
			return InternalError, err
		}
	}

	status, err := b.solveWithFallback(st, false)
	if err != nil {
		return status, err
	}
	b.firstSolve = false
	b.matrixStatus = Undefined
	return status, nil
}

// recomputeBoxBounds fills lb_p/ub_p (the first n entries of lbQP/ubQP) and
// the fixed slack bounds [0, +∞) over the remaining 2m entries.
func (b *Builder) recomputeBoxBounds() {
	for i := 0; i < b.n; i++ {
		b.lbQP[i] = maxf(b.xLower[i]-b.xk[i], -b.delta)
		b.ubQP[i] = minf(b.xUpper[i]-b.xk[i], b.delta)
	}
	for i := b.n; i < b.nQP; i++ {
		b.lbQP[i] = 0
		b.ubQP[i] = vector.LargeFinite
	}
}

// recomputeConstraintBounds fills lb_A/ub_A from the constraint bounds
// shifted by the current constraint value c_k.
func (b *Builder) recomputeConstraintBounds() {
	for i := 0; i < b.m; i++ {
		b.lbAQP[i] = b.cLower[i] - b.ck[i]
		b.ubAQP[i] = b.cUpper[i] - b.ck[i]
	}
}

// recomputeGradient fills g_QP = [∇f_k; ρ·1; ρ·1].
func (b *Builder) recomputeGradient() {
	copy(b.gQP[:b.n], b.gradF)
	for i := b.n; i < b.nQP; i++ {
		b.gQP[i] = b.rho
	}
}

func (b *Builder) pushBounds() error {
	if err := b.backend.SetLowerBounds(b.lbQP); err != nil {
		return err
	}
	if err := b.backend.SetUpperBounds(b.ubQP); err != nil {
		return err
	}
	if err := b.backend.SetConstraintLowers(b.lbAQP); err != nil {
		return err
	}
	return b.backend.SetConstraintUppers(b.ubAQP)
}

// Update applies the Driver's narrow refresh and dispatches the QP solve.
// jac/hess (only consulted when A/H resp. are flagged) must share the
// structure fixed at Initialize; only their Values() are used.
func (b *Builder) Update(flags UpdateFlags, jac, hess *sparse.Triplet, gradF, xk, ck []float64, delta float64, st *stats.Statistics) (ExitStatus, error) {
	if b.firstSolve {
		return InternalError, ErrStructureNotSet
	}
	if !flags.Any() {
		return InternalError, ErrQPUnchanged
	}

	newStatus := Fixed
	if flags.A || flags.H {
		newStatus = Varied
	}
	warmStart := !b.firstSolve && b.matrixStatus != Undefined && b.matrixStatus == newStatus
	if b.matrixStatus != Undefined && b.matrixStatus != newStatus {
		st.HotstartReinits++
	}

	if flags.G {
		b.gradF = gradF
	}
	if flags.Bounds {
		b.xk, b.ck = xk, ck
	}
	if flags.Delta || flags.Bounds {
		b.delta = delta
	}

	if flags.H {
		if err := b.backend.SetHessianValues(hess.Values()); err != nil {
			return InternalError, err
		}
	}
	if flags.A {
		b.jac = jac
		if err := b.backend.SetJacobianValues(jac.Values()); err != nil {
			return InternalError, err
		}
	}
	if flags.Delta || flags.Bounds {
		b.recomputeBoxBounds()
		if err := b.backend.SetLowerBounds(b.lbQP); err != nil {
			return InternalError, err
		}
		if err := b.backend.SetUpperBounds(b.ubQP); err != nil {
			return InternalError, err
		}
	}
	if flags.Bounds {
		b.recomputeConstraintBounds()
		if err := b.backend.SetConstraintLowers(b.lbAQP); err != nil {
			return InternalError, err
		}
		if err := b.backend.SetConstraintUppers(b.ubAQP); err != nil {
			return InternalError, err
		}
	}
	if flags.G || flags.Penalty {
		b.recomputeGradient()
		if err := b.backend.SetGradient(b.gQP); err != nil {
			return InternalError, err
		}
	}

	status, err := b.solveWithFallback(st, warmStart)
	if err != nil {
		return status, err
	}
	b.matrixStatus = newStatus
	return status, nil
}

// SetPenalty updates ρ in memory; the caller still raises UpdateFlags.Penalty
// on the next Update call to push it to the backend.
func (b *Builder) SetPenalty(rho float64) { b.rho = rho }

// Penalty returns the current ρ.
func (b *Builder) Penalty() float64 { return b.rho }

// SolveLP re-solves the currently staged problem with the Hessian treated as
// zero, for the penalty-update sub-loop's infeasibility estimate. It does
// not run the elastic-restart fallback: a penalty-update LP is expected to
// remain feasible because its staged bounds are identical to the QP's.
func (b *Builder) SolveLP(st *stats.Statistics) (ExitStatus, error) {
	return b.backend.OptimizeLP(st, false)
}

// solveWithFallback runs OptimizeQP and, on a reported infeasibility, builds
// the elastic-feasible starting point and retries once.
func (b *Builder) solveWithFallback(st *stats.Statistics, warmStart bool) (ExitStatus, error) {
	status, err := b.backend.OptimizeQP(st, warmStart)
	if err != nil {
		b.dumpOnFailure()
		return status, err
	}
	if status != Infeasible {
		if status != Optimal {
			b.dumpOnFailure()
		}
		return status, nil
	}

	z := make([]float64, b.nQP)
	for i := 0; i < b.m; i++ {
		z[b.n+i] = maxf(b.lbAQP[i], 0)
		z[b.n+b.m+i] = -minf(b.ubAQP[i], 0)
	}
	if err := b.backend.SetStartingPoint(z); err != nil {
		return InternalError, err
	}
	st.ElasticRestarts++
	status, err = b.backend.OptimizeQP(st, false)
	if err != nil {
		b.dumpOnFailure()
		return status, err
	}
	if status != Optimal {
		b.dumpOnFailure()
		return status, ErrQPNotOptimal
	}
	return status, nil
}

// Primal returns the step direction p_k (first n entries of the QP primal).
func (b *Builder) Primal() []float64 { return b.backend.Primal()[:b.n] }

// Slacks returns the elastic slack values (u, v), each length m.
func (b *Builder) Slacks() (u, v []float64) {
	full := b.backend.Primal()
	return full[b.n : b.n+b.m], full[b.n+b.m : b.n+2*b.m]
}

// ConstraintMultipliers returns y_c, length m.
func (b *Builder) ConstraintMultipliers() []float64 { return b.backend.ConstraintMultipliers() }

// BoundMultipliers returns y_b restricted to the first n (variable) entries.
func (b *Builder) BoundMultipliers() []float64 { return b.backend.BoundMultipliers()[:b.n] }

// WorkingSetVariables returns the working set restricted to the first n
// (variable) entries.
func (b *Builder) WorkingSetVariables() []vector.WorkingSetStatus {
	return b.backend.WorkingSetVariables()[:b.n]
}

// WorkingSetConstraints returns the per-constraint working set, length m.
func (b *Builder) WorkingSetConstraints() []vector.WorkingSetStatus {
	return b.backend.WorkingSetConstraints()
}

// Objective returns q_k, the QP objective at the last solve.
func (b *Builder) Objective() float64 { return b.backend.Objective() }

func (b *Builder) dumpOnFailure() {
	if b.debugDumpDir == "" {
		return
	}
	_ = DumpTriplet(b.debugDumpDir, b.jac, b.hessQP)
}

func maxf(a, bb float64) float64 {
	if a > bb {
		return a
	}
	return bb
}

func minf(a, bb float64) float64 {
	if a < bb {
		return a
	}
	return bb
}
