package qp

import "errors"

// Sentinel errors for the qp package.
var (
	// ErrQPUnchanged is returned by Builder.Update when none of the update
	// flags are set after the first successful solve; it signals a driver
	// bug (a solve was requested with nothing new to push to the backend).
	ErrQPUnchanged = errors.New("qp: no update flags set since previous solve")

	// ErrStructureNotSet indicates a value update was requested before
	// the corresponding structure call.
	ErrStructureNotSet = errors.New("qp: structure not set")

	// ErrDimensionMismatch indicates an update vector's length does not
	// match the expected dimension.
	ErrDimensionMismatch = errors.New("qp: dimension mismatch")

	// ErrQPNotOptimal is returned when both the direct solve and the
	// elastic-restart retry fail to reach an optimal status.
	ErrQPNotOptimal = errors.New("qp: subproblem not optimal after elastic restart")
)
