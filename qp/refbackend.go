package qp

import (
	"math"

	"github.com/restartsqp/sqpcore/sparse"
	"github.com/restartsqp/sqpcore/stats"
	"github.com/restartsqp/sqpcore/vector"
	"gonum.org/v1/gonum/mat"
)

// constraintRow is one side of one constraint (a variable bound or a row of
// A_QP), normalized to the form aᵀz >= b used internally by the active-set
// method.
type constraintRow struct {
	isVariable bool // true: variable bound; false: row of A_QP
	index      int  // variable index or row index
	isUpper    bool // true: this is the -z>=-ub / -a.z>=-ub side
	a          []float64
	b          float64
}

// ReferenceBackend is a dense, gonum-backed active-set implementation of
// Backend. It is the module's default QP/LP solver: a primal active-set
// method (Nocedal & Wright, Numerical Optimization, Algorithm 16.3)
// specialized to box-and-range-constrained QPs.
//
// ReferenceBackend requires its caller to supply a box-and-row-feasible
// starting point before the first successful solve (see SetStartingPoint);
// without one it defaults to clip(0, lower, upper), which is feasible for
// the box but may not be row-feasible — exactly the situation the elastic
// QP Builder's infeasibility-fallback retry (spec §4.3) is designed to
// correct, so this is a deliberate simplification rather than a missing
// Phase-1 solver.
var _ Backend = (*ReferenceBackend)(nil)

type ReferenceBackend struct {
	n, m int

	hHB, aHB   *sparse.HB
	hSet, aSet bool

	lb, ub, lbA, ubA, g []float64
	startingPoint       []float64

	activeSetTol float64
	maxIter      int

	primal    []float64
	yBound    []float64
	yConstr   []float64
	wVar      []vector.WorkingSetStatus
	wCon      []vector.WorkingSetStatus
	objective float64

	seedWVar, seedWCon []vector.WorkingSetStatus
}

// NewReferenceBackend allocates a backend for an n-variable, m-constraint
// QP/LP, with activeSetTol used both as the √ε boundary tolerance and the
// feasibility tolerance, and maxIter as the inner iteration cap.
func NewReferenceBackend(n, m int, activeSetTol float64, maxIter int) *ReferenceBackend {
	return &ReferenceBackend{
		n: n, m: m,
		lb: make([]float64, n), ub: make([]float64, n),
		lbA: make([]float64, m), ubA: make([]float64, m),
		g:            make([]float64, n),
		activeSetTol: activeSetTol,
		maxIter:      maxIter,
		primal:       make([]float64, n),
		yBound:       make([]float64, n),
		yConstr:      make([]float64, m),
		wVar:         make([]vector.WorkingSetStatus, n),
		wCon:         make([]vector.WorkingSetStatus, m),
	}
}

func (b *ReferenceBackend) SetHessianStructure(h *sparse.Triplet) error {
	if b.hSet {
		return sparse.ErrAlreadyInitialized
	}
	hb, err := sparse.NewHB(sparse.CSR, b.n, b.n)
	if err != nil {
		return err
	}
	if err := hb.SetStructure(h, nil); err != nil {
		return err
	}
	b.hHB = hb
	b.hSet = true
	return nil
}

func (b *ReferenceBackend) SetJacobianStructure(a *sparse.Triplet, identities []sparse.IdentityBlockPosition) error {
	if b.aSet {
		return sparse.ErrAlreadyInitialized
	}
	hb, err := sparse.NewHB(sparse.CSR, b.m, b.n)
	if err != nil {
		return err
	}
	if err := hb.SetStructure(a, identities); err != nil {
		return err
	}
	b.aHB = hb
	b.aSet = true
	return nil
}

func (b *ReferenceBackend) SetLowerBounds(v []float64) error {
	if len(v) != b.n {
		return ErrDimensionMismatch
	}
	copy(b.lb, v)
	return nil
}

func (b *ReferenceBackend) SetUpperBounds(v []float64) error {
	if len(v) != b.n {
		return ErrDimensionMismatch
	}
	copy(b.ub, v)
	return nil
}

func (b *ReferenceBackend) SetVariableBound(i int, isUpper bool, v float64) error {
	if i < 0 || i >= b.n {
		return sparse.ErrInvalidMatrixIndex
	}
	if isUpper {
		b.ub[i] = v
	} else {
		b.lb[i] = v
	}
	return nil
}

func (b *ReferenceBackend) SetConstraintLowers(v []float64) error {
	if len(v) != b.m {
		return ErrDimensionMismatch
	}
	copy(b.lbA, v)
	return nil
}

func (b *ReferenceBackend) SetConstraintUppers(v []float64) error {
	if len(v) != b.m {
		return ErrDimensionMismatch
	}
	copy(b.ubA, v)
	return nil
}

func (b *ReferenceBackend) SetGradient(v []float64) error {
	if len(v) != b.n {
		return ErrDimensionMismatch
	}
	copy(b.g, v)
	return nil
}

func (b *ReferenceBackend) SetHessianValues(v []float64) error {
	if !b.hSet {
		return ErrStructureNotSet
	}
	return b.hHB.SetValuesFromTriplet(v)
}

func (b *ReferenceBackend) SetJacobianValues(v []float64) error {
	if !b.aSet {
		return ErrStructureNotSet
	}
	return b.aHB.SetValuesFromTriplet(v)
}

// SetStartingPoint overrides the point the next Optimize* call starts its
// active-set search from. Used by the Builder to supply the elastic
// starting point on an infeasibility retry.
func (b *ReferenceBackend) SetStartingPoint(z []float64) error {
	if len(z) != b.n {
		return ErrDimensionMismatch
	}
	b.startingPoint = append([]float64(nil), z...)
	return nil
}

// SetInitialWorkingSet seeds the next Optimize* call's starting working set
// from a caller-supplied hot-start hint, bypassing the usual
// proximity-to-bound heuristic for that one solve. The seed is consumed
// (cleared) whether or not the resulting working set is primal-feasible at
// the supplied starting point; an infeasible seed degrades to the ordinary
// heuristic rather than failing the solve.
func (b *ReferenceBackend) SetInitialWorkingSet(wVar, wCon []vector.WorkingSetStatus) error {
	if len(wVar) != b.n || len(wCon) != b.m {
		return ErrDimensionMismatch
	}
	b.seedWVar = append([]vector.WorkingSetStatus(nil), wVar...)
	b.seedWCon = append([]vector.WorkingSetStatus(nil), wCon...)
	return nil
}

func (b *ReferenceBackend) OptimizeQP(st *stats.Statistics, warmStart bool) (ExitStatus, error) {
	status, iters, err := b.solve(false)
	st.QPIterations += iters
	return status, err
}

func (b *ReferenceBackend) OptimizeLP(st *stats.Statistics, warmStart bool) (ExitStatus, error) {
	status, iters, err := b.solve(true)
	st.QPIterations += iters
	st.LPIterations += iters
	return status, err
}

func (b *ReferenceBackend) Primal() []float64                             { return b.primal }
func (b *ReferenceBackend) ConstraintMultipliers() []float64              { return b.yConstr }
func (b *ReferenceBackend) BoundMultipliers() []float64                   { return b.yBound }
func (b *ReferenceBackend) WorkingSetVariables() []vector.WorkingSetStatus { return b.wVar }
func (b *ReferenceBackend) WorkingSetConstraints() []vector.WorkingSetStatus {
	return b.wCon
}
func (b *ReferenceBackend) Objective() float64 { return b.objective }

func (b *ReferenceBackend) solve(isLP bool) (ExitStatus, int, error) {
	defer func() { b.seedWVar, b.seedWCon = nil, nil }()
	for i := 0; i < b.n; i++ {
		if b.lb[i] > b.ub[i]+b.activeSetTol {
			return Infeasible, 0, nil
		}
	}
	for i := 0; i < b.m; i++ {
		if b.lbA[i] > b.ubA[i]+b.activeSetTol {
			return Infeasible, 0, nil
		}
	}

	z := make([]float64, b.n)
	if b.startingPoint != nil {
		copy(z, b.startingPoint)
	} else {
		for i := range z {
			z[i] = clip(0, b.lb[i], b.ub[i])
		}
	}

	aDense := b.aHB.ToDense() // m x n, row-major
	arow := func(i int) []float64 { return aDense[i*b.n : (i+1)*b.n] }
	for i := 0; i < b.m; i++ {
		val := dot(arow(i), z)
		if val < b.lbA[i]-b.activeSetTol || val > b.ubA[i]+b.activeSetTol {
			return Infeasible, 0, nil
		}
	}

	var H *mat.Dense
	if isLP {
		H = mat.NewDense(b.n, b.n, make([]float64, b.n*b.n))
	} else {
		H = mat.NewDense(b.n, b.n, b.hHB.ToDense())
		// H_QP arrives as a lower triangle; mirror it to the full matrix.
		for i := 0; i < b.n; i++ {
			for j := 0; j < i; j++ {
				if v := H.At(i, j); v != 0 && H.At(j, i) == 0 {
					H.Set(j, i, v)
				}
			}
		}
	}

	working := b.seededWorkingSet(z, arow)
	if working == nil {
		working = make([]constraintRow, 0, b.n+b.m)
		for i := 0; i < b.n; i++ {
			if z[i] <= b.lb[i]+b.activeSetTol {
				working = append(working, unitRow(b.n, i, false, b.lb[i]))
			} else if z[i] >= b.ub[i]-b.activeSetTol {
				working = append(working, unitRow(b.n, i, true, b.ub[i]))
			}
		}
		for i := 0; i < b.m; i++ {
			val := dot(arow(i), z)
			if val <= b.lbA[i]+b.activeSetTol {
				working = append(working, rowConstraint(i, arow(i), false, b.lbA[i]))
			} else if val >= b.ubA[i]-b.activeSetTol {
				working = append(working, rowConstraint(i, arow(i), true, b.ubA[i]))
			}
		}
	}

	iters := 0
	for iters = 0; iters < b.maxIter; iters++ {
		p, lambdas, isRay, err := b.stepDirection(H, z, working)
		if err != nil {
			return InternalError, iters, err
		}

		if !isRay && infNorm(p) <= b.activeSetTol {
			minLambda := math.Inf(1)
			minIdx := -1
			for idx, lam := range lambdas {
				if lam < minLambda {
					minLambda = lam
					minIdx = idx
				}
			}
			if minIdx < 0 || minLambda >= -b.activeSetTol {
				b.finalize(z, working, lambdas, H)
				return Optimal, iters, nil
			}
			working = append(working[:minIdx], working[minIdx+1:]...)
			continue
		}

		// A ray step (isRay) is an unbounded descent direction from an
		// empty/flat working set: only a genuinely finite bound may block
		// it, and the step is not capped at alpha=1 the way a bounded
		// Newton step from the equality subproblem is.
		alpha := 1.0
		if isRay {
			alpha = math.Inf(1)
		}
		blockIdx := 0
		for i := 0; i < b.n; i++ {
			if !inWorking(working, true, i) {
				if d := p[i]; d < -b.activeSetTol && (!isRay || vector.IsFinite(b.lb[i])) {
					cand := (b.lb[i] - z[i]) / d
					if cand < alpha {
						alpha, blockIdx = cand, n1Index(i, false)
					}
				} else if d := p[i]; d > b.activeSetTol && (!isRay || vector.IsFinite(b.ub[i])) {
					cand := (b.ub[i] - z[i]) / d
					if cand < alpha {
						alpha, blockIdx = cand, n1Index(i, true)
					}
				}
			}
		}
		for i := 0; i < b.m; i++ {
			row := arow(i)
			d := dot(row, p)
			val := dot(row, z)
			if !inWorking(working, false, i) {
				if d < -b.activeSetTol && (!isRay || vector.IsFinite(b.lbA[i])) {
					cand := (b.lbA[i] - val) / d
					if cand < alpha {
						alpha, blockIdx = cand, m1Index(i, false)
					}
				} else if d > b.activeSetTol && (!isRay || vector.IsFinite(b.ubA[i])) {
					cand := (b.ubA[i] - val) / d
					if cand < alpha {
						alpha, blockIdx = cand, m1Index(i, true)
					}
				}
			}
		}
		if isRay && blockIdx == 0 {
			return Unbounded, iters, nil
		}
		if alpha < 0 {
			alpha = 0
		}
		for i := range z {
			z[i] += alpha * p[i]
		}
		if blockIdx != 0 {
			idx, isVar, isUpper := decodeIndex(blockIdx)
			if isVar {
				working = append(working, unitRow(b.n, idx, isUpper, boundOf(isUpper, b.lb[idx], b.ub[idx])))
			} else {
				working = append(working, rowConstraint(idx, arow(idx), isUpper, boundOf(isUpper, b.lbA[idx], b.ubA[idx])))
			}
		}
	}
	return ExceedMaxIter, iters, nil
}

// seededWorkingSet builds the initial working set from a caller-supplied
// hot-start seed, falling back to the proximity heuristic row-by-row
// wherever the seed disagrees with the actual starting point z (a stale or
// wrong seed degrades gracefully instead of corrupting the search). Returns
// nil when no seed was set, so the caller runs the plain heuristic.
func (b *ReferenceBackend) seededWorkingSet(z []float64, arow func(int) []float64) []constraintRow {
	if b.seedWVar == nil && b.seedWCon == nil {
		return nil
	}
	working := make([]constraintRow, 0, b.n+b.m)
	for i := 0; i < b.n; i++ {
		ws := vector.Inactive
		if b.seedWVar != nil {
			ws = b.seedWVar[i]
		}
		switch ws {
		case vector.ActiveBelow, vector.ActiveBothSide:
			if z[i] <= b.lb[i]+b.activeSetTol {
				working = append(working, unitRow(b.n, i, false, b.lb[i]))
				continue
			}
		case vector.ActiveAbove:
			if z[i] >= b.ub[i]-b.activeSetTol {
				working = append(working, unitRow(b.n, i, true, b.ub[i]))
				continue
			}
		}
		if z[i] <= b.lb[i]+b.activeSetTol {
			working = append(working, unitRow(b.n, i, false, b.lb[i]))
		} else if z[i] >= b.ub[i]-b.activeSetTol {
			working = append(working, unitRow(b.n, i, true, b.ub[i]))
		}
	}
	for i := 0; i < b.m; i++ {
		val := dot(arow(i), z)
		ws := vector.Inactive
		if b.seedWCon != nil {
			ws = b.seedWCon[i]
		}
		switch ws {
		case vector.ActiveBelow, vector.ActiveBothSide:
			if val <= b.lbA[i]+b.activeSetTol {
				working = append(working, rowConstraint(i, arow(i), false, b.lbA[i]))
				continue
			}
		case vector.ActiveAbove:
			if val >= b.ubA[i]-b.activeSetTol {
				working = append(working, rowConstraint(i, arow(i), true, b.ubA[i]))
				continue
			}
		}
		if val <= b.lbA[i]+b.activeSetTol {
			working = append(working, rowConstraint(i, arow(i), false, b.lbA[i]))
		} else if val >= b.ubA[i]-b.activeSetTol {
			working = append(working, rowConstraint(i, arow(i), true, b.ubA[i]))
		}
	}
	return working
}

func boundOf(isUpper bool, lo, hi float64) float64 {
	if isUpper {
		return hi
	}
	return lo
}

// stepDirection solves the equality-constrained QP subproblem for the
// current working set: min 0.5 pᵀHp + (Hz+g)ᵀp s.t. A_W p = 0, returning
// the direction p and, when p ~ 0, the Lagrange multipliers for each
// working-set row (signed so that a negative multiplier is a candidate for
// removal). isRay is reported when the working set is empty, the Hessian
// contributes no curvature, and the returned p is therefore a pure
// steepest-descent direction rather than the bounded minimizer of an
// equality-constrained quadratic — the caller must run an uncapped ratio
// test against it to decide between a blocking bound and Unbounded.
func (b *ReferenceBackend) stepDirection(H *mat.Dense, z []float64, working []constraintRow) (p []float64, lambdas []float64, isRay bool, err error) {
	n := b.n
	hz := make([]float64, n)
	{
		var zv, hzv mat.VecDense
		zv = *mat.NewVecDense(n, z)
		hzv.MulVec(H, &zv)
		for i := 0; i < n; i++ {
			hz[i] = hzv.AtVec(i) + b.g[i]
		}
	}

	k := len(working)
	if k == 0 {
		if isZeroMatrix(H) {
			if infNorm(hz) <= b.activeSetTol {
				return make([]float64, n), nil, false, nil
			}
			dir := make([]float64, n)
			for i := range dir {
				dir[i] = -hz[i]
			}
			return dir, nil, true, nil
		}
		rhs := mat.NewVecDense(n, nil)
		for i := 0; i < n; i++ {
			rhs.SetVec(i, -hz[i])
		}
		var sol mat.VecDense
		if err := sol.SolveVec(H, rhs); err != nil {
			return nil, nil, false, err
		}
		p := make([]float64, n)
		for i := 0; i < n; i++ {
			p[i] = sol.AtVec(i)
		}
		return p, nil, false, nil
	}

	size := n + k
	kkt := mat.NewDense(size, size, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			kkt.Set(i, j, H.At(i, j))
		}
	}
	for r, cr := range working {
		for j := 0; j < n; j++ {
			kkt.Set(n+r, j, cr.a[j])
			kkt.Set(j, n+r, cr.a[j])
		}
	}
	rhs := mat.NewVecDense(size, nil)
	for i := 0; i < n; i++ {
		rhs.SetVec(i, -hz[i])
	}

	var sol mat.VecDense
	if err := sol.SolveVec(kkt, rhs); err != nil {
		return nil, nil, false, err
	}
	p = make([]float64, n)
	for i := 0; i < n; i++ {
		p[i] = sol.AtVec(i)
	}
	// The KKT system above is [H Aᵀ; A 0], so its multiplier block holds
	// −μ for the aᵀz ≥ b rows; negate it so that μ ≥ 0 means "keep".
	lambdas = make([]float64, k)
	for i := 0; i < k; i++ {
		lambdas[i] = -sol.AtVec(n + i)
	}
	return p, lambdas, false, nil
}

func (b *ReferenceBackend) finalize(z []float64, working []constraintRow, lambdas []float64, H *mat.Dense) {
	copy(b.primal, z)
	for i := range b.yBound {
		b.yBound[i] = 0
	}
	for i := range b.yConstr {
		b.yConstr[i] = 0
	}
	for i := range b.wVar {
		b.wVar[i] = vector.Inactive
	}
	for i := range b.wCon {
		b.wCon[i] = vector.Inactive
	}
	for idx, cr := range working {
		lam := lambdas[idx]
		sign := 1.0
		if cr.isUpper {
			sign = -1.0
		}
		if cr.isVariable {
			b.yBound[cr.index] += sign * lam
			if cr.isUpper {
				if b.wVar[cr.index] == vector.ActiveBelow {
					b.wVar[cr.index] = vector.ActiveBothSide
				} else {
					b.wVar[cr.index] = vector.ActiveAbove
				}
			} else {
				if b.wVar[cr.index] == vector.ActiveAbove {
					b.wVar[cr.index] = vector.ActiveBothSide
				} else {
					b.wVar[cr.index] = vector.ActiveBelow
				}
			}
		} else {
			b.yConstr[cr.index] += sign * lam
			if cr.isUpper {
				if b.wCon[cr.index] == vector.ActiveBelow {
					b.wCon[cr.index] = vector.ActiveBothSide
				} else {
					b.wCon[cr.index] = vector.ActiveAbove
				}
			} else {
				if b.wCon[cr.index] == vector.ActiveAbove {
					b.wCon[cr.index] = vector.ActiveBothSide
				} else {
					b.wCon[cr.index] = vector.ActiveBelow
				}
			}
		}
	}

	// A fixed variable (lb==ub) or an equality row (lbA==ubA) pins both
	// sides at once even though only one row was ever added to the
	// working set (the "elif" in the initial construction never fires
	// its second branch); report it as such rather than as a one-sided
	// activation.
	for i := 0; i < b.n; i++ {
		if b.ub[i]-b.lb[i] <= b.activeSetTol && b.wVar[i] != vector.Inactive {
			b.wVar[i] = vector.ActiveBothSide
		}
	}
	for i := 0; i < b.m; i++ {
		if b.ubA[i]-b.lbA[i] <= b.activeSetTol && b.wCon[i] != vector.Inactive {
			b.wCon[i] = vector.ActiveBothSide
		}
	}

	var zv, hzv mat.VecDense
	zv = *mat.NewVecDense(b.n, z)
	hzv.MulVec(H, &zv)
	q := 0.0
	for i := 0; i < b.n; i++ {
		q += 0.5*z[i]*hzv.AtVec(i) + b.g[i]*z[i]
	}
	b.objective = q
}

func unitRow(n, i int, isUpper bool, bound float64) constraintRow {
	a := make([]float64, n)
	sign := 1.0
	if isUpper {
		sign = -1.0
	}
	a[i] = sign
	return constraintRow{isVariable: true, index: i, isUpper: isUpper, a: a, b: sign * bound}
}

func rowConstraint(i int, row []float64, isUpper bool, bound float64) constraintRow {
	sign := 1.0
	if isUpper {
		sign = -1.0
	}
	a := make([]float64, len(row))
	for j, v := range row {
		a[j] = sign * v
	}
	return constraintRow{isVariable: false, index: i, isUpper: isUpper, a: a, b: sign * bound}
}

func inWorking(working []constraintRow, isVariable bool, index int) bool {
	for _, cr := range working {
		if cr.isVariable == isVariable && cr.index == index {
			return true
		}
	}
	return false
}

// index encoding for the ratio-test blocking candidate: 0 means "no
// blocking candidate found yet" so real indices are offset by 1; the sign
// encodes isUpper, and constraint-row indices are additionally shifted left
// by 16 bits to tell them apart from variable indices.
func n1Index(i int, isUpper bool) int {
	v := i + 1
	if isUpper {
		return -v
	}
	return v
}
func m1Index(i int, isUpper bool) int {
	v := (i + 1) << 16
	if isUpper {
		return -v
	}
	return v
}
func decodeIndex(code int) (idx int, isVariable bool, isUpper bool) {
	isUpper = code < 0
	if isUpper {
		code = -code
	}
	if code < (1 << 16) {
		return code - 1, true, isUpper
	}
	return (code >> 16) - 1, false, isUpper
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func infNorm(x []float64) float64 {
	m := 0.0
	for _, v := range x {
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}

func isZeroMatrix(m *mat.Dense) bool {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if m.At(i, j) != 0 {
				return false
			}
		}
	}
	return true
}
