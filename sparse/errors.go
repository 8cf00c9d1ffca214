package sparse

import "errors"

// Sentinel errors for the sparse package. All public entry points return
// these directly (or wrapped with fmt.Errorf's %w) so callers can compare
// with errors.Is.
var (
	// ErrInvalidMatrixIndex indicates an out-of-range row or column index
	// was supplied to a matrix constructor or setter.
	ErrInvalidMatrixIndex = errors.New("sparse: invalid matrix index")

	// ErrAlreadyInitialized indicates the structure of a matrix was set
	// more than once.
	ErrAlreadyInitialized = errors.New("sparse: structure already initialized")

	// ErrNotInitialized indicates values were set before the structure.
	ErrNotInitialized = errors.New("sparse: structure not initialized")

	// ErrDimensionMismatch indicates two operands have incompatible shapes.
	ErrDimensionMismatch = errors.New("sparse: dimension mismatch")

	// ErrDuplicateEntry indicates two entries share the same (row, column).
	ErrDuplicateEntry = errors.New("sparse: duplicate (row, column) entry")

	// ErrNotAllocated indicates an operation was attempted on a Triplet
	// that has not yet had its backing storage allocated.
	ErrNotAllocated = errors.New("sparse: matrix not allocated")
)
