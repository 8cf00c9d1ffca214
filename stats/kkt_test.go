package stats

import (
	"testing"

	"github.com/restartsqp/sqpcore/sparse"
	"github.com/restartsqp/sqpcore/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckKKTAtOptimumOfBoundConstrainedProblem(t *testing.T) {
	// minimize (x-1)^2 + (y-2.5)^2, x,y >= 0. Optimum at (1, 2.5), unconstrained
	// interior point: grad = 0, no active bounds, no constraints.
	x := []float64{1, 2.5}
	grad := []float64{0, 0} // 2*(x-1), 2*(y-2.5) at the optimum
	xl := []float64{0, 0}
	xu := []float64{1e18, 1e18}

	in := KKTInput{
		X: x, XLower: xl, XUpper: xu,
		Grad:         grad,
		YBound:       []float64{0, 0},
		VarBoundType: []vector.BoundType{vector.BoundTypeBoundedBelow, vector.BoundTypeBoundedBelow},
		VarWorkingSet: []vector.WorkingSetStatus{vector.Inactive, vector.Inactive},
	}
	res, err := CheckKKT(in)
	require.NoError(t, err)
	assert.True(t, res.Optimal(1e-5, 1e-6, 1e-6, 1e-5))
}

func TestCheckKKTDetectsWrongSignMultiplier(t *testing.T) {
	in := KKTInput{
		X: []float64{0}, XLower: []float64{0}, XUpper: []float64{1e18},
		Grad:         []float64{-1},
		YBound:       []float64{-1}, // active-at-lower should be >= 0
		VarBoundType: []vector.BoundType{vector.BoundTypeBoundedBelow},
		VarWorkingSet: []vector.WorkingSetStatus{vector.ActiveBelow},
	}
	res, err := CheckKKT(in)
	require.NoError(t, err)
	assert.Greater(t, res.Dual, 0.0)
}

func TestCheckKKTStationarityUsesJacobianTranspose(t *testing.T) {
	// grad = [1, 1], J = [[1, 0]], lambda_c = [1]: stationarity residual = grad - J^T*lambda - y_b
	// = [1,1] - [1,0] - [0,0] = [0,1] -> L1 = 1.
	jDense := []float64{1, 0}
	j, err := sparse.FromDense(jDense, 1, 2, 1e-12)
	require.NoError(t, err)

	in := KKTInput{
		X: []float64{0, 0}, XLower: []float64{-1e18, -1e18}, XUpper: []float64{1e18, 1e18},
		C: []float64{0}, CLower: []float64{0}, CUpper: []float64{0},
		Grad:          []float64{1, 1},
		J:             j,
		YBound:        []float64{0, 0},
		YConstraint:   []float64{1},
		VarBoundType:  []vector.BoundType{vector.BoundTypeUnbounded, vector.BoundTypeUnbounded},
		ConBoundType:  []vector.BoundType{vector.BoundTypeEqual},
		VarWorkingSet: []vector.WorkingSetStatus{vector.Inactive, vector.Inactive},
		ConWorkingSet: []vector.WorkingSetStatus{vector.ActiveBothSide},
	}
	res, err := CheckKKT(in)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, res.Stationarity, 1e-12)
}

func TestCheckKKTRejectsInvalidWorkingSetLabel(t *testing.T) {
	in := KKTInput{
		X: []float64{0}, XLower: []float64{0}, XUpper: []float64{1},
		Grad:          []float64{0},
		YBound:        []float64{0},
		VarBoundType:  []vector.BoundType{vector.BoundTypeBounded},
		VarWorkingSet: []vector.WorkingSetStatus{vector.WorkingSetStatus(99)},
	}
	_, err := CheckKKT(in)
	require.ErrorIs(t, err, ErrInvalidWorkingSet)
}

func TestStatisticsReset(t *testing.T) {
	s := Statistics{OuterIterations: 5, QPIterations: 10}
	s.Reset()
	assert.Equal(t, Statistics{}, s)
}
