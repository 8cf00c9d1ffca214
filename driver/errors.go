package driver

import (
	"errors"
	"fmt"
)

// Sentinel errors for the driver package.
var (
	// ErrInvalidOptions indicates Options.Validate (and so New) rejected an
	// inconsistent configuration (e.g. delta_min >= delta_0).
	ErrInvalidOptions = errors.New("driver: invalid options")

	// ErrAlreadyRunning indicates Optimize was called reentrantly on a
	// Driver already mid-solve; a Driver owns its iterate state exclusively
	// for the duration of one solve.
	ErrAlreadyRunning = errors.New("driver: Optimize called while already running")
)

// InvariantError reports a fatal, non-recoverable contract violation
// detected during a solve — a condition that indicates a model-assembly or
// scaling bug rather than an ordinary terminal status. It is returned
// alongside the matching nlp.ExitFlag rather than panicking, so a caller
// can log/inspect it the same way as any other terminal condition.
type InvariantError struct {
	// Op names the invariant that failed (e.g. "pred_reduction_negative").
	Op string
	// Detail gives the numeric context that tripped the check.
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("driver: invariant violated (%s): %s", e.Op, e.Detail)
}

func newInvariantError(op, format string, args ...any) *InvariantError {
	return &InvariantError{Op: op, Detail: fmt.Sprintf(format, args...)}
}
