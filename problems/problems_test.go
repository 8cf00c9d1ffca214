package problems

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoxQuadraticEvaluators(t *testing.T) {
	p := NewBoxQuadratic()
	sizes := p.Info()
	require.Equal(t, 2, sizes.N)
	require.Equal(t, 0, sizes.M)

	x := []float64{0, 0}
	f, ok := p.ObjectiveValue(x)
	require.True(t, ok)
	assert.InDelta(t, 1+6.25, f, 1e-12)

	grad := make([]float64, 2)
	require.True(t, p.ObjectiveGradient(x, grad))
	assert.Equal(t, []float64{-2, -5}, grad)

	rows, cols := make([]int, sizes.NNZHessian), make([]int, sizes.NNZHessian)
	require.True(t, p.LagrangianHessian(x, true, 1, nil, true, rows, cols, nil))
	vals := make([]float64, sizes.NNZHessian)
	require.True(t, p.LagrangianHessian(x, false, 1, nil, false, rows, cols, vals))
	assert.Equal(t, []float64{2, 2}, vals)
}

func TestHS34EvaluatorsAtOptimum(t *testing.T) {
	p := NewHS34()
	xOpt := []float64{math.Log(math.Log(10)), math.Log(10), 10}

	c := make([]float64, 2)
	require.True(t, p.ConstraintValues(xOpt, c))
	assert.InDelta(t, 0, c[0], 1e-9)
	assert.InDelta(t, 0, c[1], 1e-9)

	f, ok := p.ObjectiveValue(xOpt)
	require.True(t, ok)
	assert.InDelta(t, -math.Log(math.Log(10)), f, 1e-9)
}

func TestByNameRoundTrip(t *testing.T) {
	for _, name := range Names {
		p, ok := ByName(name)
		require.True(t, ok, name)
		require.NotNil(t, p)
	}
	_, ok := ByName("does-not-exist")
	assert.False(t, ok)
}
