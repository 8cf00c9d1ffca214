package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyBound(t *testing.T) {
	cases := []struct {
		name        string
		lower, upper float64
		want        BoundType
	}{
		{"bounded", -1, 1, BoundTypeBounded},
		{"equal", 2, 2, BoundTypeEqual},
		{"above_only", -1e20, 5, BoundTypeBoundedAbove},
		{"below_only", 0, 1e20, BoundTypeBoundedBelow},
		{"unbounded", -1e20, 1e20, BoundTypeUnbounded},
		{"threshold_exact_is_infinite", -1e18, 1e18, BoundTypeUnbounded},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyBound(tc.lower, tc.upper))
		})
	}
}

func TestClassifyBoundsLengthMismatch(t *testing.T) {
	_, err := ClassifyBounds([]float64{1}, []float64{1, 2})
	require.ErrorIs(t, err, ErrLengthMismatch)
}

func TestNormalizeSignStatus(t *testing.T) {
	const eps = 1e-6
	assert.Equal(t, ActiveBothSide, NormalizeSignStatus(0, 1.0, 1.0, 1.0, eps))
	assert.Equal(t, ActiveBelow, NormalizeSignStatus(-1, 0.0, 0.0, 5.0, eps))
	assert.Equal(t, ActiveAbove, NormalizeSignStatus(1, 5.0, 0.0, 5.0, eps))
	assert.Equal(t, Inactive, NormalizeSignStatus(0, 2.5, 0.0, 5.0, eps))
}

func TestWorkingSetStatusValid(t *testing.T) {
	assert.True(t, ActiveBothSide.Valid())
	assert.False(t, WorkingSetStatus(99).Valid())
}
