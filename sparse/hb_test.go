package sparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildJ(t *testing.T) *Triplet {
	t.Helper()
	// J = [[1, 0, 2], [0, 3, 0]]  (m=2, n=3)
	dense := []float64{
		1, 0, 2,
		0, 3, 0,
	}
	tri, err := FromDense(dense, 2, 3, 1e-12)
	require.NoError(t, err)
	return tri
}

func TestHBCSRRoundTripSameNonzeroSet(t *testing.T) {
	tri := buildJ(t)
	hb, err := NewHB(CSR, 2, 3)
	require.NoError(t, err)
	require.NoError(t, hb.SetStructure(tri, nil))

	back, err := hb.ToTriplet()
	require.NoError(t, err)
	assert.Equal(t, tri.ToDense(), back.ToDense())
}

func TestHBCSCRoundTripSameNonzeroSet(t *testing.T) {
	tri := buildJ(t)
	hb, err := NewHB(CSC, 2, 3)
	require.NoError(t, err)
	require.NoError(t, hb.SetStructure(tri, nil))

	back, err := hb.ToTriplet()
	require.NoError(t, err)
	assert.Equal(t, tri.ToDense(), back.ToDense())
}

func TestHBIdentitySplicingBuildsElasticJacobian(t *testing.T) {
	// n=3, m=2: A_QP = [J | +I | -I], shape 2 x 7.
	j := buildJ(t)
	identities := []IdentityBlockPosition{
		{RowOffset: 0, ColOffset: 3, Dimension: 2, Multiplier: 1},
		{RowOffset: 0, ColOffset: 5, Dimension: 2, Multiplier: -1},
	}
	hb, err := NewHB(CSR, 2, 7)
	require.NoError(t, err)
	require.NoError(t, hb.SetStructure(j, identities))

	dense := hb.ToDense()
	want := []float64{
		1, 0, 2, 1, 0, -1, 0,
		0, 3, 0, 0, 1, 0, -1,
	}
	assert.Equal(t, want, dense)
}

func TestHBSetValuesFromTripletOnlyTouchesTripletDerivedEntries(t *testing.T) {
	j := buildJ(t)
	identities := []IdentityBlockPosition{
		{RowOffset: 0, ColOffset: 3, Dimension: 2, Multiplier: 1},
	}
	hb, err := NewHB(CSR, 2, 5)
	require.NoError(t, err)
	require.NoError(t, hb.SetStructure(j, identities))

	newVals := []float64{10, 20, 30} // matches j.Entries() order
	require.NoError(t, hb.SetValuesFromTriplet(newVals))

	dense := hb.ToDense()
	// identity block untouched (still 1s), J-derived entries updated.
	assert.Equal(t, float64(1), dense[0*5+3])
	assert.Equal(t, float64(1), dense[1*5+4])
}

func TestHBStructureSetTwiceFails(t *testing.T) {
	tri := buildJ(t)
	hb, err := NewHB(CSR, 2, 3)
	require.NoError(t, err)
	require.NoError(t, hb.SetStructure(tri, nil))
	require.ErrorIs(t, hb.SetStructure(tri, nil), ErrAlreadyInitialized)
}

func TestHBValuesBeforeStructureFails(t *testing.T) {
	hb, err := NewHB(CSR, 2, 3)
	require.NoError(t, err)
	require.ErrorIs(t, hb.SetValuesFromTriplet([]float64{1}), ErrNotInitialized)
}

func TestHBDuplicateEntryRejected(t *testing.T) {
	tri, err := NewTriplet(2, 2, 2, false)
	require.NoError(t, err)
	require.NoError(t, tri.SetEntry(0, 1, 1, 1))
	require.NoError(t, tri.SetEntry(1, 1, 1, 2)) // duplicate (row,col)
	hb, err := NewHB(CSR, 2, 2)
	require.NoError(t, err)
	require.ErrorIs(t, hb.SetStructure(tri, nil), ErrDuplicateEntry)
}

// TestHBZeroRowStructure covers an unconstrained NLP's Jacobian sized into
// an HB matrix: zero rows is a legitimate shape, not an error.
func TestHBZeroRowStructure(t *testing.T) {
	tri, err := NewTriplet(0, 3, 0, false)
	require.NoError(t, err)
	hb, err := NewHB(CSR, 0, 3)
	require.NoError(t, err)
	require.NoError(t, hb.SetStructure(tri, nil))
	assert.Equal(t, 0, hb.NNZ())
	assert.Equal(t, []int{0}, hb.Pointer())
}
