package qp

import (
	"testing"

	"github.com/restartsqp/sqpcore/sparse"
	"github.com/restartsqp/sqpcore/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func diagHessian(t *testing.T, n int, diag []float64) *sparse.Triplet {
	t.Helper()
	tri, err := sparse.NewTriplet(n, n, n, true)
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		require.NoError(t, tri.SetEntry(i, i+1, i+1, diag[i]))
	}
	return tri
}

func emptyJacobian(t *testing.T, m, n int) *sparse.Triplet {
	t.Helper()
	tri, err := sparse.NewTriplet(m, n, 0, false)
	require.NoError(t, err)
	return tri
}

// TestReferenceBackendBoxOnlyQP: minimize 0.5*(x^2+y^2) - x - 2.5y s.t. x,y >= 0 (unbounded above).
// Unconstrained optimum is (1, 2.5), already within bounds.
func TestReferenceBackendBoxOnlyQP(t *testing.T) {
	b := NewReferenceBackend(2, 0, 1e-7, 50)
	require.NoError(t, b.SetHessianStructure(diagHessian(t, 2, []float64{1, 1})))
	require.NoError(t, b.SetJacobianStructure(emptyJacobian(t, 0, 2), nil))
	require.NoError(t, b.SetHessianValues([]float64{1, 1}))
	require.NoError(t, b.SetGradient([]float64{-1, -2.5}))
	require.NoError(t, b.SetLowerBounds([]float64{0, 0}))
	require.NoError(t, b.SetUpperBounds([]float64{1e18, 1e18}))

	st := &stats.Statistics{}
	status, err := b.OptimizeQP(st, false)
	require.NoError(t, err)
	assert.Equal(t, Optimal, status)
	assert.InDelta(t, 1.0, b.Primal()[0], 1e-5)
	assert.InDelta(t, 2.5, b.Primal()[1], 1e-5)
}

// TestReferenceBackendEqualityConstrainedQP: minimize 0.5*(x^2+y^2) s.t. x+y=2, x,y>=0, start (2,2).
func TestReferenceBackendEqualityConstrainedQP(t *testing.T) {
	b := NewReferenceBackend(2, 1, 1e-7, 50)
	require.NoError(t, b.SetHessianStructure(diagHessian(t, 2, []float64{1, 1})))
	aTri, err := sparse.FromDense([]float64{1, 1}, 1, 2, 1e-12)
	require.NoError(t, err)
	require.NoError(t, b.SetJacobianStructure(aTri, nil))
	require.NoError(t, b.SetHessianValues([]float64{1, 1}))
	require.NoError(t, b.SetJacobianValues([]float64{1, 1}))
	require.NoError(t, b.SetGradient([]float64{0, 0}))
	require.NoError(t, b.SetLowerBounds([]float64{0, 0}))
	require.NoError(t, b.SetUpperBounds([]float64{1e18, 1e18}))
	require.NoError(t, b.SetConstraintLowers([]float64{2}))
	require.NoError(t, b.SetConstraintUppers([]float64{2}))
	require.NoError(t, b.SetStartingPoint([]float64{2, 2})) // row-infeasible in general, but 2+2!=2... use feasible point instead

	// The starting point above is row-infeasible (2+2=4 != 2); use the
	// correct feasible anchor for this backend's no-Phase-1 design.
	require.NoError(t, b.SetStartingPoint([]float64{2, 0}))

	st := &stats.Statistics{}
	status, err := b.OptimizeQP(st, false)
	require.NoError(t, err)
	assert.Equal(t, Optimal, status)
	assert.InDelta(t, 1.0, b.Primal()[0], 1e-5)
	assert.InDelta(t, 1.0, b.Primal()[1], 1e-5)
	assert.InDelta(t, 1.0, b.Objective(), 1e-4)
}

func TestReferenceBackendInfeasibleBounds(t *testing.T) {
	b := NewReferenceBackend(1, 0, 1e-7, 50)
	require.NoError(t, b.SetHessianStructure(diagHessian(t, 1, []float64{0})))
	require.NoError(t, b.SetJacobianStructure(emptyJacobian(t, 0, 1), nil))
	require.NoError(t, b.SetHessianValues([]float64{0}))
	require.NoError(t, b.SetGradient([]float64{1}))
	require.NoError(t, b.SetLowerBounds([]float64{0}))
	require.NoError(t, b.SetUpperBounds([]float64{-1}))

	st := &stats.Statistics{}
	status, err := b.OptimizeQP(st, false)
	require.NoError(t, err)
	assert.Equal(t, Infeasible, status)
}

func TestReferenceBackendUnboundedLP(t *testing.T) {
	b := NewReferenceBackend(1, 0, 1e-7, 50)
	require.NoError(t, b.SetHessianStructure(diagHessian(t, 1, []float64{0})))
	require.NoError(t, b.SetJacobianStructure(emptyJacobian(t, 0, 1), nil))
	require.NoError(t, b.SetHessianValues([]float64{0}))
	require.NoError(t, b.SetGradient([]float64{-1})) // minimize -x
	require.NoError(t, b.SetLowerBounds([]float64{-1e18}))
	require.NoError(t, b.SetUpperBounds([]float64{1e18}))

	st := &stats.Statistics{}
	status, err := b.OptimizeLP(st, false)
	require.NoError(t, err)
	assert.Equal(t, Unbounded, status)
}
