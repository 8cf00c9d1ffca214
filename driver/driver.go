package driver

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/restartsqp/sqpcore/nlp"
	"github.com/restartsqp/sqpcore/qp"
	"github.com/restartsqp/sqpcore/sparse"
	"github.com/restartsqp/sqpcore/stats"
	"github.com/restartsqp/sqpcore/vector"
	"github.com/rs/zerolog"
)

// Driver runs the SL1QP trust-region outer loop against one nlp.Problem per
// Optimize call. The core is single-threaded and synchronous (spec.md §5):
// a Driver owns the iterate state exclusively for the duration of a solve,
// enforced here by a running flag rather than a mutex, since reentrance is
// a caller bug, not contention to wait out.
type Driver struct {
	opts    Options
	running int32
}

// New constructs a Driver from the given options (or the defaults, if none
// are passed).
func New(opts ...Option) (*Driver, error) {
	o := NewOptions(opts...)
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return &Driver{opts: o}, nil
}

// Optimize runs the outer loop to convergence or a terminal condition. The
// returned error is non-nil for *InvariantError (surfaced alongside
// nlp.PredReductionNegative), for ErrAlreadyRunning, for bound
// classification, starting-point clipping or Jacobian/Hessian assembly
// failures (alongside
// nlp.InvalidNLP), and whenever the qp layer returned an error with a
// QPError* flag (e.g. qp.ErrQPNotOptimal once the elastic retry has also
// failed). An evaluator that returns false yields nlp.InvalidNLP with a nil
// error, and TrustRegionTooSmall, PenaltyTooLarge, ExceedMaxIter and the
// time-cap statuses are reported through the flag alone.
func (d *Driver) Optimize(p nlp.Problem) (nlp.ExitFlag, error) {
	if !atomic.CompareAndSwapInt32(&d.running, 0, 1) {
		return nlp.InvalidNLP, ErrAlreadyRunning
	}
	defer atomic.StoreInt32(&d.running, 0)

	run := newRun(d.opts, p)
	return run.optimize()
}

// run holds one Optimize call's mutable iterate state.
type run struct {
	opts Options
	p    nlp.Problem
	st   *stats.Statistics

	n, m int

	xLower, xUpper []float64
	cLower, cUpper []float64
	varBoundType   []vector.BoundType
	conBoundType   []vector.BoundType

	jacRows, jacCols   []int
	hessRows, hessCols []int
	nnzJ, nnzH         int

	xk, ck []float64
	f      float64
	gradF  []float64
	lambda []float64 // current constraint multiplier estimate (passed to LagrangianHessian)
	zBound []float64

	jac  *sparse.Triplet
	hess *sparse.Triplet

	delta float64
	rho   float64
	eps1  float64

	builder *qp.Builder
	start   time.Time
}

func newRun(opts Options, p nlp.Problem) *run {
	sizes := p.Info()
	n, m := sizes.N, sizes.M
	return &run{
		opts: opts, p: p, st: &stats.Statistics{},
		n: n, m: m,
		xLower: make([]float64, n), xUpper: make([]float64, n),
		cLower: make([]float64, m), cUpper: make([]float64, m),
		jacRows: make([]int, sizes.NNZJacobian), jacCols: make([]int, sizes.NNZJacobian),
		hessRows: make([]int, sizes.NNZHessian), hessCols: make([]int, sizes.NNZHessian),
		nnzJ: sizes.NNZJacobian, nnzH: sizes.NNZHessian,
		xk: make([]float64, n), ck: make([]float64, m),
		gradF:  make([]float64, n),
		lambda: make([]float64, m),
		zBound: make([]float64, n),
		delta:  opts.Delta0, rho: opts.Rho0, eps1: opts.Eps1,
		start: time.Now(),
	}
}

// finalizeInvalid calls FinalizeSolution with whatever iterate state has
// been assembled so far, for an InvalidNLP termination reached before the
// QP builder exists. FinalizeSolution must fire exactly once on every
// termination path, including ones that fail before the first solve.
func (r *run) finalizeInvalid() {
	wBound := make([]vector.WorkingSetStatus, r.n)
	wCon := make([]vector.WorkingSetStatus, r.m)
	r.p.FinalizeSolution(nlp.InvalidNLP, r.xk, r.zBound, wBound, r.ck, r.lambda, wCon, r.f)
}

func (r *run) optimize() (nlp.ExitFlag, error) {
	if !r.p.Bounds(r.xLower, r.xUpper, r.cLower, r.cUpper) {
		r.finalizeInvalid()
		return nlp.InvalidNLP, nil
	}
	var err error
	r.varBoundType, err = vector.ClassifyBounds(r.xLower, r.xUpper)
	if err != nil {
		r.finalizeInvalid()
		return nlp.InvalidNLP, err
	}
	r.conBoundType, err = vector.ClassifyBounds(r.cLower, r.cUpper)
	if err != nil {
		r.finalizeInvalid()
		return nlp.InvalidNLP, err
	}

	zB, lam, haveMult, ok := r.p.StartingPoint(r.xk)
	if !ok {
		r.finalizeInvalid()
		return nlp.InvalidNLP, nil
	}
	if err := vector.Clip(r.xk, r.xLower, r.xUpper); err != nil {
		r.finalizeInvalid()
		return nlp.InvalidNLP, err
	}
	if haveMult {
		copy(r.zBound, zB)
		copy(r.lambda, lam)
	}

	if flag, err, done := r.evalAt(r.xk); done {
		r.finalizeInvalid()
		return flag, err
	}
	if !r.p.ConstraintJacobian(r.xk, true, r.jacRows, r.jacCols, nil) {
		r.finalizeInvalid()
		return nlp.InvalidNLP, nil
	}
	jacVals := make([]float64, r.nnzJ)
	if !r.p.ConstraintJacobian(r.xk, false, r.jacRows, r.jacCols, jacVals) {
		r.finalizeInvalid()
		return nlp.InvalidNLP, nil
	}
	r.jac, err = tripletFromStructure(r.m, r.n, r.jacRows, r.jacCols, jacVals, false)
	if err != nil {
		r.finalizeInvalid()
		return nlp.InvalidNLP, err
	}
	if !r.p.LagrangianHessian(r.xk, true, 1, r.lambda, true, r.hessRows, r.hessCols, nil) {
		r.finalizeInvalid()
		return nlp.InvalidNLP, nil
	}
	hessVals := make([]float64, r.nnzH)
	if !r.p.LagrangianHessian(r.xk, false, 1, r.lambda, false, r.hessRows, r.hessCols, hessVals) {
		r.finalizeInvalid()
		return nlp.InvalidNLP, nil
	}
	r.hess, err = tripletFromStructure(r.n, r.n, r.hessRows, r.hessCols, hessVals, true)
	if err != nil {
		r.finalizeInvalid()
		return nlp.InvalidNLP, err
	}

	backend := qp.NewReferenceBackend(r.n+2*r.m, r.m, r.opts.ActiveSetTol, r.opts.QPIterMax)
	r.builder = qp.NewBuilder(r.n, r.m, backend, r.rho)
	if r.opts.DebugDumpDir != "" {
		r.builder.SetDebugDumpDir(r.opts.DebugDumpDir)
	}

	wBoundSeed, wConSeed := r.initialWorkingSet()
	status, err := r.builder.Initialize(r.jac, r.hess, r.gradF, r.xLower, r.xUpper, r.cLower, r.cUpper, r.xk, r.ck, r.delta, r.st, wBoundSeed, wConSeed)
	if err != nil || status != qp.Optimal {
		flag := mapQPStatus(status)
		r.finalize(flag)
		return flag, err
	}

	for k := 0; k < r.opts.IterMax; k++ {
		r.st.OuterIterations++
		r.log(3, func(e *zerolog.Event) {
			e.Int("iter", k).Float64("delta", r.delta).Float64("rho", r.rho).Msg("outer iteration")
		})

		if flag, ok := r.checkTimeCaps(); !ok {
			r.finalize(flag)
			return flag, nil
		}

		etaK := r.currentEta()

		if r.opts.EnablePenaltyUpdate && sumSlacks(r.builder) > r.opts.TauPrim {
			if flag, err, fatal := r.updatePenalty(etaK); fatal {
				r.finalize(flag)
				return flag, err
			}
		}

		p := append([]float64(nil), r.builder.Primal()...)
		qk := r.builder.Objective()

		predReduction := r.rho*etaK - qk
		if predReduction <= 0 {
			invErr := newInvariantError("pred_reduction_negative", "rho=%g etaK=%g qk=%g", r.rho, etaK, qk)
			r.finalize(nlp.PredReductionNegative)
			return nlp.PredReductionNegative, invErr
		}

		xt := addStep(r.xk, p)
		ft, ct, etaT, ok := r.evalTrial(xt)
		if !ok {
			r.finalize(nlp.InvalidNLP)
			return nlp.InvalidNLP, nil
		}
		actualReduction := (r.f + r.rho*etaK) - (ft + r.rho*etaT)
		accepted := actualReduction >= r.opts.EtaS*predReduction

		socMutatedBuilder := false
		if !accepted && r.opts.SecondOrderCorrection {
			var acceptedSOC bool
			p, xt, ft, ct, etaT, actualReduction, acceptedSOC = r.trySOC(p, etaK, qk, predReduction, xt, ct)
			socMutatedBuilder = true
			accepted = acceptedSOC
		}
		if socMutatedBuilder && !accepted {
			// Restore the builder's bound/gradient state to the
			// pre-SOC iterate so the next Update call's deltas are
			// computed against the rejected step's starting point,
			// not the SOC trial.
			if _, err := r.builder.Update(qp.UpdateFlags{Bounds: true, G: true}, nil, nil, r.gradF, r.xk, r.ck, r.delta, r.st); err != nil {
				r.finalize(nlp.QPErrorInternal)
				return nlp.QPErrorInternal, err
			}
		}

		atBoundary := vector.InfNorm(p) >= r.delta-1e-12
		if accepted {
			if actualReduction < r.opts.EtaC*predReduction {
				r.delta *= r.opts.GammaC
				r.st.TrustRegionShrinks++
			} else if actualReduction > r.opts.EtaE*predReduction && atBoundary {
				r.delta = math.Min(r.delta*r.opts.GammaE, r.opts.DeltaMax)
				r.st.TrustRegionExpansions++
			}

			r.xk, r.ck, r.f = xt, ct, ft
			copy(r.lambda, r.builder.ConstraintMultipliers())
			copy(r.zBound, r.builder.BoundMultipliers())

			if !r.p.ObjectiveGradient(r.xk, r.gradF) {
				r.finalize(nlp.InvalidNLP)
				return nlp.InvalidNLP, nil
			}
			jacVals := make([]float64, r.nnzJ)
			if !r.p.ConstraintJacobian(r.xk, true, r.jacRows, r.jacCols, jacVals) {
				r.finalize(nlp.InvalidNLP)
				return nlp.InvalidNLP, nil
			}
			if err := r.jac.SetValues(jacVals); err != nil {
				r.finalize(nlp.QPErrorInternal)
				return nlp.QPErrorInternal, err
			}
			hessVals := make([]float64, r.nnzH)
			if !r.p.LagrangianHessian(r.xk, true, 1, r.lambda, true, r.hessRows, r.hessCols, hessVals) {
				r.finalize(nlp.InvalidNLP)
				return nlp.InvalidNLP, nil
			}
			if err := r.hess.SetValues(hessVals); err != nil {
				r.finalize(nlp.QPErrorInternal)
				return nlp.QPErrorInternal, err
			}

			status, err = r.builder.Update(qp.UpdateFlags{A: true, H: true, Bounds: true, G: true}, r.jac, r.hess, r.gradF, r.xk, r.ck, r.delta, r.st)
		} else {
			if r.delta < r.opts.DeltaMin {
				r.finalize(nlp.TrustRegionTooSmall)
				return nlp.TrustRegionTooSmall, nil
			}
			r.delta *= r.opts.GammaC
			r.st.TrustRegionShrinks++
			if r.rho >= r.opts.RhoMax {
				r.finalize(nlp.PenaltyTooLarge)
				return nlp.PenaltyTooLarge, nil
			}
			status, err = r.builder.Update(qp.UpdateFlags{Delta: true}, nil, nil, nil, nil, nil, r.delta, r.st)
		}
		if err != nil || status != qp.Optimal {
			flag := mapQPStatus(status)
			r.finalize(flag)
			return flag, err
		}

		kktResult, err := stats.CheckKKT(r.kktInput())
		if err != nil {
			r.finalize(nlp.QPErrorInternal)
			return nlp.QPErrorInternal, err
		}
		if kktResult.Optimal(r.opts.TauPrim, r.opts.TauDual, r.opts.TauComp, r.opts.TauStat) {
			r.finalize(nlp.Optimal)
			return nlp.Optimal, nil
		}
		if r.delta < r.opts.DeltaMin {
			r.finalize(nlp.TrustRegionTooSmall)
			return nlp.TrustRegionTooSmall, nil
		}
		if r.opts.EnablePenaltyReduction && etaK < r.opts.TauPrim*1e-3 {
			r.rho /= 2
		}
	}

	r.finalize(nlp.ExceedMaxIter)
	return nlp.ExceedMaxIter, nil
}

// initialWorkingSet probes p for the optional nlp.WorkingSetProvider
// capability and, if present and opted in, returns its hot-start working-set
// estimate for the first QP solve; both returns are nil when no estimate is
// available, which Builder.Initialize treats as "use the backend's own
// heuristic".
func (r *run) initialWorkingSet() (wBound, wConstraint []vector.WorkingSetStatus) {
	wsp, ok := r.p.(nlp.WorkingSetProvider)
	if !ok || !wsp.UseInitialWorkingSet() {
		return nil, nil
	}
	wBound = make([]vector.WorkingSetStatus, r.n)
	wConstraint = make([]vector.WorkingSetStatus, r.m)
	if !wsp.InitialWorkingSets(wBound, wConstraint) {
		return nil, nil
	}
	return wBound, wConstraint
}

// evalAt evaluates f, ∇f, and c at x into the run's current-iterate fields.
// done is true when an evaluator failed and the caller should return flag/err.
func (r *run) evalAt(x []float64) (nlp.ExitFlag, error, bool) {
	f, ok := r.p.ObjectiveValue(x)
	if !ok {
		return nlp.InvalidNLP, nil, true
	}
	r.f = f
	if !r.p.ObjectiveGradient(x, r.gradF) {
		return nlp.InvalidNLP, nil, true
	}
	if !r.p.ConstraintValues(x, r.ck) {
		return nlp.InvalidNLP, nil, true
	}
	return 0, nil, false
}

// evalTrial evaluates f, c, and the ℓ1 infeasibility measure at a trial
// point without mutating the run's current-iterate state.
func (r *run) evalTrial(xt []float64) (ft float64, ct []float64, etaT float64, ok bool) {
	ft, ok = r.p.ObjectiveValue(xt)
	if !ok {
		return 0, nil, 0, false
	}
	ct = make([]float64, r.m)
	if !r.p.ConstraintValues(xt, ct) {
		return 0, nil, 0, false
	}
	etaT = vector.InfeasibilityMeasure(ct, r.cLower, r.cUpper)
	return ft, ct, etaT, true
}

// currentEta is η_k: the ℓ1 bound/constraint infeasibility of the current
// iterate. Bound infeasibility is always ~0 since every accepted step and
// the initial clip keep x_k inside its box; it is still measured rather
// than assumed, so a caller-supplied Problem that violates this invariant
// is caught by the KKT primal check rather than silently ignored.
func (r *run) currentEta() float64 {
	return vector.InfeasibilityMeasure(r.xk, r.xLower, r.xUpper) + vector.InfeasibilityMeasure(r.ck, r.cLower, r.cUpper)
}

// sumSlacks returns Σu + Σv from the builder's last solve, the elastic
// model's own ℓ1 infeasibility measure.
func sumSlacks(b *qp.Builder) float64 {
	u, v := b.Slacks()
	return vector.L1Norm(u) + vector.L1Norm(v)
}

// updatePenalty runs the Case A / Case B penalty-parameter search
// (spec.md §4.4 step 2). fatal is true only when a QP solve inside the
// sub-loop fails outright; an unsuccessful search that simply fails to
// improve infeasibility is not fatal — the driver proceeds to the ratio
// test with whatever ρ the sub-loop settled on.
func (r *run) updatePenalty(etaK float64) (nlp.ExitFlag, error, bool) {
	rhoBefore := r.rho
	etaModelBefore := sumSlacks(r.builder)

	lpStatus, err := r.builder.SolveLP(r.st)
	if err != nil {
		return nlp.QPErrorInternal, err, true
	}
	var etaInf float64
	switch lpStatus {
	case qp.Optimal:
		etaInf = sumSlacks(r.builder)
	case qp.Unbounded:
		etaInf = 0
	default:
		etaInf = etaK
	}

	caseA := etaInf <= r.opts.TauPrim
	curEta := etaModelBefore
	for iter := 0; iter < r.opts.IterMaxRho; iter++ {
		if caseA {
			if curEta <= r.opts.TauPrim {
				break
			}
		} else {
			if etaK-curEta >= r.eps1*(etaK-etaInf) || r.rho >= r.opts.RhoMax {
				break
			}
		}
		if r.rho >= r.opts.RhoMax {
			break
		}
		r.rho = math.Min(r.rho*r.opts.GammaRho, r.opts.RhoMax)
		r.builder.SetPenalty(r.rho)
		r.st.PenaltyIncreases++
		r.log(2, func(e *zerolog.Event) { e.Float64("rho", r.rho).Msg("penalty increased") })
		status, err := r.builder.Update(qp.UpdateFlags{Penalty: true}, nil, nil, nil, nil, nil, 0, r.st)
		if err != nil {
			return nlp.QPErrorInternal, err, true
		}
		if status != qp.Optimal {
			return mapQPStatus(status), nil, true
		}
		curEta = sumSlacks(r.builder)
	}

	qkNow := r.builder.Objective()
	accept := r.rho*etaK-qkNow >= r.opts.Eps2*r.rho*(etaK-etaModelBefore)
	if accept {
		r.eps1 = r.eps1 + (1-r.eps1)*penaltyEpsTighten
		return 0, nil, false
	}

	// Reject: roll ρ back and re-solve so the next step's predicted
	// reduction is computed against the unmodified model.
	r.rho = rhoBefore
	r.builder.SetPenalty(r.rho)
	status, err := r.builder.Update(qp.UpdateFlags{Penalty: true}, nil, nil, nil, nil, nil, 0, r.st)
	if err != nil {
		return nlp.QPErrorInternal, err, true
	}
	if status != qp.Optimal {
		return mapQPStatus(status), nil, true
	}
	return 0, nil, false
}

// penaltyEpsTighten is the δ_ε tightening increment for ε₁ (spec.md §4.4
// step 2); no numeric value is given in the source, so a small fixed
// increment is used (see DESIGN.md).
const penaltyEpsTighten = 0.1

// trySOC runs one second-order-correction sub-solve: a follow-up QP with
// g replaced by ∇f_k + H_k·p and bounds re-centered on the rejected trial
// point xt, per spec.md §4.4 step 4.
func (r *run) trySOC(p []float64, etaK, qk, predReduction float64, xt []float64, ct []float64) (pOut, xtOut, ftOut, ctOut []float64, etaTOut float64, actualReductionOut float64, accepted bool) {
	r.st.SOCAttempts++
	g := append([]float64(nil), r.gradF...)
	if err := r.hess.Multiply(p, g, 1.0); err != nil {
		return p, xt, 0, ct, 0, 0, false
	}
	status, err := r.builder.Update(qp.UpdateFlags{Bounds: true, G: true}, nil, nil, g, xt, ct, r.delta, r.st)
	if err != nil || status != qp.Optimal {
		return p, xt, 0, ct, 0, 0, false
	}

	s := r.builder.Primal()
	pTotal := make([]float64, r.n)
	for i := range p {
		pTotal[i] = p[i] + s[i]
	}
	xt2 := addStep(r.xk, pTotal)
	ft2, ct2, etaT2, ok := r.evalTrial(xt2)
	if !ok {
		return pTotal, xt2, 0, ct2, 0, 0, false
	}
	actualReduction2 := (r.f + r.rho*etaK) - (ft2 + r.rho*etaT2)
	if actualReduction2 >= r.opts.EtaS*predReduction {
		r.st.SOCAccepted++
		return pTotal, xt2, ft2, ct2, etaT2, actualReduction2, true
	}
	return pTotal, xt2, ft2, ct2, etaT2, actualReduction2, false
}

// checkTimeCaps reports whether either configured time cap has been
// exceeded. The core is single-threaded (spec.md §5), so wall-clock
// elapsed time is used as the CPU-time proxy as well.
func (r *run) checkTimeCaps() (nlp.ExitFlag, bool) {
	elapsed := time.Since(r.start).Seconds()
	if r.opts.MaxWallSeconds > 0 && elapsed > r.opts.MaxWallSeconds {
		return nlp.ExceedMaxWallclockTime, false
	}
	if r.opts.MaxCPUSeconds > 0 && elapsed > r.opts.MaxCPUSeconds {
		return nlp.ExceedMaxCPUTime, false
	}
	return 0, true
}

func (r *run) kktInput() stats.KKTInput {
	return stats.KKTInput{
		X: r.xk, XLower: r.xLower, XUpper: r.xUpper,
		C: r.ck, CLower: r.cLower, CUpper: r.cUpper,
		Grad: r.gradF, J: r.jac,
		YBound: r.zBound, YConstraint: r.lambda,
		VarBoundType: r.varBoundType, ConBoundType: r.conBoundType,
		VarWorkingSet: r.varWorkingSet(), ConWorkingSet: r.builder.WorkingSetConstraints(),
	}
}

func (r *run) varWorkingSet() []vector.WorkingSetStatus {
	return r.builder.WorkingSetVariables()
}

func (r *run) finalize(status nlp.ExitFlag) {
	r.log(1, func(e *zerolog.Event) { e.Str("status", status.String()).Msg("terminating") })
	r.p.FinalizeSolution(status, r.xk, r.zBound, r.varWorkingSet(), r.ck, r.lambda, r.builder.WorkingSetConstraints(), r.f)
}

// log emits one structured event at zerolog level minLevel (1=Warn,
// 2=Info, 3=Debug, 4=Trace) when print_level >= minLevel. build must end
// with a terminal zerolog.Event call (Msg/Msgf/Send).
func (r *run) log(minLevel int, build func(e *zerolog.Event)) {
	if r.opts.PrintLevel < minLevel {
		return
	}
	var ev *zerolog.Event
	switch minLevel {
	case 1:
		ev = r.opts.Logger.Warn()
	case 2:
		ev = r.opts.Logger.Info()
	case 3:
		ev = r.opts.Logger.Debug()
	default:
		ev = r.opts.Logger.Trace()
	}
	build(ev)
}

func addStep(x, p []float64) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		out[i] = x[i] + p[i]
	}
	return out
}

// tripletFromStructure builds a Triplet from 1-indexed (rows, cols, vals)
// arrays as returned by an nlp.Problem structure+value evaluator pair.
func tripletFromStructure(rows, cols int, rowIdx, colIdx []int, vals []float64, symmetric bool) (*sparse.Triplet, error) {
	t, err := sparse.NewTriplet(rows, cols, len(vals), symmetric)
	if err != nil {
		return nil, err
	}
	for k := range vals {
		if err := t.SetEntry(k, rowIdx[k], colIdx[k], vals[k]); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// mapQPStatus translates a qp.ExitStatus into the unified nlp.ExitFlag
// taxonomy (spec.md §4.3 / §6).
func mapQPStatus(status qp.ExitStatus) nlp.ExitFlag {
	switch status {
	case qp.Optimal:
		return nlp.Optimal
	case qp.Infeasible:
		return nlp.QPErrorInfeasible
	case qp.Unbounded:
		return nlp.QPErrorUnbounded
	case qp.ExceedMaxIter:
		return nlp.QPErrorExceedMaxIter
	case qp.InternalError:
		return nlp.QPErrorInternal
	default:
		return nlp.QPErrorNotOptimal
	}
}
