package sparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func denseRoundTrip(t *testing.T, dense []float64, rows, cols int) {
	t.Helper()
	tri, err := FromDense(dense, rows, cols, 1e-12)
	require.NoError(t, err)
	got := tri.ToDense()
	assert.InDeltaSlice(t, dense, got, 1e-12)
}

func TestFromDenseRoundTripGeneral(t *testing.T) {
	dense := []float64{
		1, 0, 3,
		0, 5, 0,
	}
	denseRoundTrip(t, dense, 2, 3)
}

func TestFromDenseSymmetryDetection(t *testing.T) {
	dense := []float64{
		2, 1,
		1, 3,
	}
	tri, err := FromDense(dense, 2, 2, 1e-12)
	require.NoError(t, err)
	assert.True(t, tri.IsSymmetric())
	assert.Equal(t, dense, tri.ToDense())
}

func TestFromDenseAsymmetricSquareNotFlaggedSymmetric(t *testing.T) {
	dense := []float64{
		2, 1,
		0, 3,
	}
	tri, err := FromDense(dense, 2, 2, 1e-12)
	require.NoError(t, err)
	assert.False(t, tri.IsSymmetric())
}

func TestTripletMultiplyMatchesDenseMatVec(t *testing.T) {
	dense := []float64{
		1, 2, 0,
		0, 3, 4,
	}
	tri, err := FromDense(dense, 2, 3, 1e-12)
	require.NoError(t, err)

	p := []float64{1, 2, 3}
	r := make([]float64, 2)
	require.NoError(t, tri.Multiply(p, r, 1.0))
	assert.InDeltaSlice(t, []float64{1*1 + 2*2 + 0*3, 0*1 + 3*2 + 4*3}, r, 1e-12)
}

func TestTripletMultiplyTransposeMatchesDenseTranspose(t *testing.T) {
	dense := []float64{
		1, 2, 0,
		0, 3, 4,
	}
	tri, err := FromDense(dense, 2, 3, 1e-12)
	require.NoError(t, err)

	p := []float64{5, 7}
	r := make([]float64, 3)
	require.NoError(t, tri.MultiplyTranspose(p, r, 1.0))
	assert.InDeltaSlice(t, []float64{1 * 5, 2*5 + 3*7, 4 * 7}, r, 1e-12)
}

func TestSymmetricTripletMultiplyMatchesExpandedMultiply(t *testing.T) {
	full := []float64{
		4, 1, 2,
		1, 3, 0,
		2, 0, 5,
	}
	tri, err := FromDense(full, 3, 3, 1e-12)
	require.NoError(t, err)
	require.True(t, tri.IsSymmetric())

	p := []float64{1, -1, 2}
	rSym := make([]float64, 3)
	require.NoError(t, tri.Multiply(p, rSym, 1.0))

	fullTri, err := NewTriplet(3, 3, 9, false)
	require.NoError(t, err)
	k := 0
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if v := full[i*3+j]; v != 0 {
				require.NoError(t, fullTri.SetEntry(k, i+1, j+1, v))
				k++
			}
		}
	}
	rFull := make([]float64, 3)
	require.NoError(t, fullTri.Multiply(p, rFull, 1.0))

	assert.InDeltaSlice(t, rFull, rSym, 1e-12)
}

func TestSetEntryAboveDiagonalRejectedForSymmetric(t *testing.T) {
	tri, err := NewTriplet(2, 2, 1, true)
	require.NoError(t, err)
	err = tri.SetEntry(0, 1, 2, 5)
	require.ErrorIs(t, err, ErrInvalidMatrixIndex)
}

func TestSetEntryOutOfRange(t *testing.T) {
	tri, err := NewTriplet(2, 2, 1, false)
	require.NoError(t, err)
	require.ErrorIs(t, tri.SetEntry(0, 5, 1, 1), ErrInvalidMatrixIndex)
}

// TestNewTripletAllowsZeroRows covers an unconstrained NLP's Jacobian: a
// genuine 0xN matrix, not an error condition.
func TestNewTripletAllowsZeroRows(t *testing.T) {
	tri, err := NewTriplet(0, 3, 0, false)
	require.NoError(t, err)
	assert.Equal(t, 0, tri.Rows())
	assert.Equal(t, 3, tri.Cols())
	assert.Equal(t, 0, tri.Entries())
	assert.Empty(t, tri.ToDense())

	p := []float64{1, 2, 3}
	r := make([]float64, 0)
	assert.NoError(t, tri.Multiply(p, r, 1.0))
}

func TestNewTripletRejectsNegativeDimensions(t *testing.T) {
	_, err := NewTriplet(-1, 3, 0, false)
	require.ErrorIs(t, err, ErrInvalidMatrixIndex)
}
