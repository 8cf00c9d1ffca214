package qp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/restartsqp/sqpcore/sparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpTripletWritesHeaderAndStreams(t *testing.T) {
	a, err := sparse.FromDense([]float64{1, 0, 2, 0, 3, 0}, 2, 3, 1e-12)
	require.NoError(t, err)
	h, err := sparse.NewTriplet(3, 3, 1, true)
	require.NoError(t, err)
	require.NoError(t, h.SetEntry(0, 1, 1, 5))

	dir := t.TempDir()
	require.NoError(t, DumpTriplet(dir, a, h))

	contents, err := os.ReadFile(filepath.Join(dir, "qp_dump.txt"))
	require.NoError(t, err)

	lines := splitLines(string(contents))
	require.GreaterOrEqual(t, len(lines), 4)
	assert.Equal(t, "3", lines[0]) // a.Cols()
	assert.Equal(t, "2", lines[1]) // a.Rows()
	assert.Equal(t, "2", lines[2]) // a.Entries()
	assert.Equal(t, "1", lines[3]) // h.Entries()
}

func TestDumpTripletCreatesMissingDirectory(t *testing.T) {
	a, err := sparse.NewTriplet(0, 2, 0, false)
	require.NoError(t, err)
	h, err := sparse.NewTriplet(2, 2, 0, true)
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "nested", "dump")
	require.NoError(t, DumpTriplet(dir, a, h))
	_, err = os.Stat(filepath.Join(dir, "qp_dump.txt"))
	require.NoError(t, err)
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
