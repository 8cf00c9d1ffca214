package driver

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/restartsqp/sqpcore/nlp"
	"github.com/restartsqp/sqpcore/problems"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestOptimizeBoxQuadratic is end-to-end scenario 1: a strictly convex
// box-only QP whose unconstrained minimum is already feasible.
func TestOptimizeBoxQuadratic(t *testing.T) {
	d, err := New()
	require.NoError(t, err)
	p := problems.NewBoxQuadratic()

	flag, err := d.Optimize(p)
	require.NoError(t, err)
	assert.Equal(t, nlp.Optimal, flag)

	res := p.Result()
	assert.InDelta(t, 0.0, res.F, 1e-5)
	assert.InDelta(t, 1.0, res.X[0], 1e-4)
	assert.InDelta(t, 2.5, res.X[1], 1e-4)
}

// TestOptimizeEqualityQuadratic is end-to-end scenario 2.
func TestOptimizeEqualityQuadratic(t *testing.T) {
	d, err := New()
	require.NoError(t, err)
	p := problems.NewEqualityQuadratic()

	flag, err := d.Optimize(p)
	require.NoError(t, err)
	assert.Equal(t, nlp.Optimal, flag)

	res := p.Result()
	assert.InDelta(t, 0.5, res.F, 1e-5)
	assert.InDelta(t, 0.5, res.X[0], 1e-4)
	assert.InDelta(t, 0.5, res.X[1], 1e-4)
}

// TestOptimizeHS34 is end-to-end scenario 3, the CUTEr HS34 problem.
func TestOptimizeHS34(t *testing.T) {
	d, err := New(WithIterMax(500))
	require.NoError(t, err)
	p := problems.NewHS34()

	flag, err := d.Optimize(p)
	require.NoError(t, err)
	assert.Equal(t, nlp.Optimal, flag)

	res := p.Result()
	assert.InDelta(t, -0.834032, res.F, 1e-3)
}

// TestOptimizeInfeasibleBox is end-to-end scenario 4: a bound conflict no
// elastic restart can repair.
func TestOptimizeInfeasibleBox(t *testing.T) {
	d, err := New()
	require.NoError(t, err)
	p := problems.NewInfeasibleBox()

	flag, _ := d.Optimize(p)
	assert.Equal(t, nlp.QPErrorInfeasible, flag)
}

// TestOptimizeElasticStart is end-to-end scenario 6: the initial point
// violates the equality row and the Builder's elastic restart must recover
// it on the very first solve.
func TestOptimizeElasticStart(t *testing.T) {
	d, err := New()
	require.NoError(t, err)
	p := problems.NewElasticStart()

	flag, err := d.Optimize(p)
	require.NoError(t, err)
	assert.Equal(t, nlp.Optimal, flag)

	res := p.Result()
	assert.InDelta(t, 1.0, res.F, 1e-4)
	assert.InDelta(t, 1.0, res.X[0], 1e-3)
	assert.InDelta(t, 1.0, res.X[1], 1e-3)
}

// TestOptimizeInfeasibleBoxWritesDebugDump checks that a QP solve that
// terminates non-optimal writes the failing Jacobian/Hessian dump when a
// debug dump directory is configured.
func TestOptimizeInfeasibleBoxWritesDebugDump(t *testing.T) {
	dir := t.TempDir()
	d, err := New(WithDebugDumpDir(dir))
	require.NoError(t, err)

	flag, _ := d.Optimize(problems.NewInfeasibleBox())
	assert.Equal(t, nlp.QPErrorInfeasible, flag)

	_, err = os.Stat(filepath.Join(dir, "qp_dump.txt"))
	assert.NoError(t, err)
}

// TestCheckTimeCapsExceeded exercises both time-cap branches directly on a
// run, without depending on wall-clock timing during the outer loop itself:
// r.start is backdated so elapsed time deterministically exceeds the cap.
func TestCheckTimeCapsExceeded(t *testing.T) {
	t.Run("wall_clock", func(t *testing.T) {
		r := &run{opts: NewOptions(WithTimeCaps(0, 1)), start: time.Now().Add(-time.Hour)}
		flag, ok := r.checkTimeCaps()
		assert.False(t, ok)
		assert.Equal(t, nlp.ExceedMaxWallclockTime, flag)
	})
	t.Run("cpu_time", func(t *testing.T) {
		r := &run{opts: NewOptions(WithTimeCaps(1, 0)), start: time.Now().Add(-time.Hour)}
		flag, ok := r.checkTimeCaps()
		assert.False(t, ok)
		assert.Equal(t, nlp.ExceedMaxCPUTime, flag)
	})
	t.Run("disabled", func(t *testing.T) {
		r := &run{opts: NewOptions(), start: time.Now().Add(-time.Hour)}
		_, ok := r.checkTimeCaps()
		assert.True(t, ok)
	})
}

// TestOptimizeExceedsWallclockCap is an end-to-end check that the outer loop
// actually consults checkTimeCaps: a wall-clock cap of 1e-12 seconds (0
// would disable the cap) is exceeded before the first outer iteration's
// check runs.
func TestOptimizeExceedsWallclockCap(t *testing.T) {
	d, err := New(WithTimeCaps(0, 1e-12))
	require.NoError(t, err)
	flag, err := d.Optimize(problems.NewBoxQuadratic())
	require.NoError(t, err)
	assert.Equal(t, nlp.ExceedMaxWallclockTime, flag)
}

// TestOptimizeReentrantGuard asserts Optimize refuses a reentrant call while
// a solve is already running on the same Driver.
func TestOptimizeReentrantGuard(t *testing.T) {
	d, err := New()
	require.NoError(t, err)
	d.running = 1
	flag, err := d.Optimize(problems.NewBoxQuadratic())
	assert.Equal(t, nlp.InvalidNLP, flag)
	assert.ErrorIs(t, err, ErrAlreadyRunning)
}
