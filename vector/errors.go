package vector

import "errors"

// Sentinel errors for vector package operations.
var (
	// ErrLengthMismatch indicates two vectors have incompatible lengths for
	// an elementwise operation.
	ErrLengthMismatch = errors.New("vector: length mismatch")

	// ErrInvalidWorkingSetLabel indicates a working-set status outside the
	// four-valued enumeration was supplied.
	ErrInvalidWorkingSetLabel = errors.New("vector: invalid working-set label")
)
