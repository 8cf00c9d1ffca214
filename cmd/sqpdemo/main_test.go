package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSolvesBoxQuadratic(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"--problem", "box_quadratic"}, &stdout, &stderr)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "status=OPTIMAL")
	assert.Empty(t, stderr.String())
}

func TestRunUnknownProblem(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"--problem", "does-not-exist"}, &stdout, &stderr)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), "unknown problem")
}

func TestRunPrintOptions(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"--print-options"}, &stdout, &stderr)
	require.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "delta_0")
	assert.Empty(t, stderr.String())
}

func TestRunPrintLatexOptions(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"--print-latex-options"}, &stdout, &stderr)
	require.Equal(t, 0, code)
	out := stdout.String()
	assert.True(t, strings.HasPrefix(out, `\begin{tabular}`))
	assert.Contains(t, out, `delta\_0`)
}

func TestRunInfeasibleBoxExitsNonZero(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"--problem", "infeasible_box"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout.String(), "status=QPERROR_INFEASIBLE")
}
