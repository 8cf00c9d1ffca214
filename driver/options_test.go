package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOptionsDefaults(t *testing.T) {
	o := NewOptions()
	require.NoError(t, o.Validate())
	assert.Equal(t, 1.0, o.Delta0)
	assert.True(t, o.EnablePenaltyUpdate)
	assert.False(t, o.EnablePenaltyReduction)
	assert.True(t, o.SecondOrderCorrection)
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"delta_min_too_large", WithDeltaBounds(2.0, 1e3)},
		{"rho0_exceeds_max", func(o *Options) { o.Rho0, o.RhoMax = 10, 1 }},
		{"gamma_rho_too_small", func(o *Options) { o.GammaRho = 1 }},
		{"iter_max_zero", WithIterMax(0)},
		{"print_level_out_of_range", WithPrintLevel(9)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewOptions(tt.opt)
			err := o.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidOptions)
		})
	}
}

func TestWithPenaltyReductionOption(t *testing.T) {
	o := NewOptions(WithPenaltyReduction(true))
	assert.True(t, o.EnablePenaltyReduction)
}

func TestWithDebugDumpDirOption(t *testing.T) {
	o := NewOptions(WithDebugDumpDir("/tmp/sqp-dumps"))
	assert.Equal(t, "/tmp/sqp-dumps", o.DebugDumpDir)
}

func TestNewDriverRejectsInvalidOptions(t *testing.T) {
	_, err := New(WithIterMax(-1))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidOptions)
}
