package sparse

import "fmt"

// Triplet is a coordinate-format sparse matrix: a fixed-capacity list of
// (row, column, value) entries. Rows and columns are stored 0-indexed;
// SetEntry/entry constructors accept 1-indexed positions per the NLP
// callback convention and translate them on the way in.
//
// When IsSymmetric is true only the lower triangle (row >= col) is stored;
// ToDense expands such a triplet to the full matrix.
type Triplet struct {
	rows, cols  int
	nnz         int // declared capacity
	rowIdx      []int
	colIdx      []int
	values      []float64
	filled      int // number of entries actually written
	isSymmetric bool
	isAllocated bool
}

// NewTriplet allocates a Triplet able to hold up to nnz entries in a
// rows x cols matrix. isSymmetric marks lower-triangular-only storage.
func NewTriplet(rows, cols, nnz int, isSymmetric bool) (*Triplet, error) {
	if rows < 0 || cols < 0 || nnz < 0 {
		return nil, fmt.Errorf("sparse: NewTriplet(%d,%d,%d): %w", rows, cols, nnz, ErrInvalidMatrixIndex)
	}
	return &Triplet{
		rows:        rows,
		cols:        cols,
		nnz:         nnz,
		rowIdx:      make([]int, nnz),
		colIdx:      make([]int, nnz),
		values:      make([]float64, nnz),
		isSymmetric: isSymmetric,
		isAllocated: true,
	}, nil
}

// Rows returns the number of rows.
func (t *Triplet) Rows() int { return t.rows }

// Cols returns the number of columns.
func (t *Triplet) Cols() int { return t.cols }

// NNZ returns the declared (allocated) number of nonzeros.
func (t *Triplet) NNZ() int { return t.nnz }

// IsSymmetric reports whether only the lower triangle is stored.
func (t *Triplet) IsSymmetric() bool { return t.isSymmetric }

// IsAllocated reports whether backing storage exists.
func (t *Triplet) IsAllocated() bool { return t.isAllocated }

// SetEntry writes the k-th entry (0-indexed slot, k in [0,nnz)) with
// 1-indexed row/col and a value. Used both for first-time structure
// assembly and for later value-only refreshes (row/col must match the
// original call at that slot; callers that only refresh values should use
// SetValue instead).
func (t *Triplet) SetEntry(k, row, col int, value float64) error {
	if !t.isAllocated {
		return ErrNotAllocated
	}
	if k < 0 || k >= t.nnz {
		return fmt.Errorf("sparse: SetEntry slot %d: %w", k, ErrInvalidMatrixIndex)
	}
	if row < 1 || row > t.rows || col < 1 || col > t.cols {
		return fmt.Errorf("sparse: SetEntry(%d,%d): %w", row, col, ErrInvalidMatrixIndex)
	}
	if t.isSymmetric && col > row {
		return fmt.Errorf("sparse: SetEntry(%d,%d) above diagonal of symmetric triplet: %w", row, col, ErrInvalidMatrixIndex)
	}
	t.rowIdx[k] = row - 1
	t.colIdx[k] = col - 1
	t.values[k] = value
	if k+1 > t.filled {
		t.filled = k + 1
	}
	return nil
}

// SetValue overwrites only the value at slot k, leaving its row/column
// untouched. Used for the "structure communicated once, values refreshed
// thereafter" update path.
func (t *Triplet) SetValue(k int, value float64) error {
	if !t.isAllocated {
		return ErrNotAllocated
	}
	if k < 0 || k >= t.nnz {
		return fmt.Errorf("sparse: SetValue slot %d: %w", k, ErrInvalidMatrixIndex)
	}
	t.values[k] = value
	return nil
}

// SetValues overwrites every value in declaration order; len(values) must
// equal NNZ.
func (t *Triplet) SetValues(values []float64) error {
	if len(values) != t.nnz {
		return ErrDimensionMismatch
	}
	copy(t.values, values)
	return nil
}

// Entry returns the 1-indexed (row, col) and value at slot k.
func (t *Triplet) Entry(k int) (row, col int, value float64, err error) {
	if k < 0 || k >= t.filled {
		return 0, 0, 0, fmt.Errorf("sparse: Entry slot %d: %w", k, ErrInvalidMatrixIndex)
	}
	return t.rowIdx[k] + 1, t.colIdx[k] + 1, t.values[k], nil
}

// Entries returns the number of entries actually written via SetEntry.
func (t *Triplet) Entries() int { return t.filled }

// RowIndices0 exposes the 0-indexed row indices for the first Entries()
// slots, read-only for the HB builder.
func (t *Triplet) RowIndices0() []int { return t.rowIdx[:t.filled] }

// ColIndices0 exposes the 0-indexed column indices for the first Entries()
// slots, read-only for the HB builder.
func (t *Triplet) ColIndices0() []int { return t.colIdx[:t.filled] }

// Values exposes the current values for the first Entries() slots.
func (t *Triplet) Values() []float64 { return t.values[:t.filled] }

// Multiply computes r += alpha * T * p. len(p) must equal Cols(), len(r)
// must equal Rows(). When IsSymmetric, the implicit strict-upper triangle
// is folded in via the stored lower entries.
func (t *Triplet) Multiply(p []float64, r []float64, alpha float64) error {
	if len(p) != t.cols || len(r) != t.rows {
		return ErrDimensionMismatch
	}
	for k := 0; k < t.filled; k++ {
		i, j, v := t.rowIdx[k], t.colIdx[k], t.values[k]
		r[i] += alpha * v * p[j]
		if t.isSymmetric && i != j {
			r[j] += alpha * v * p[i]
		}
	}
	return nil
}

// MultiplyTranspose computes r += alpha * Tᵀ * p. len(p) must equal
// Rows(), len(r) must equal Cols(). For symmetric triplets this is
// identical to Multiply.
func (t *Triplet) MultiplyTranspose(p []float64, r []float64, alpha float64) error {
	if t.isSymmetric {
		return t.Multiply(p, r, alpha)
	}
	if len(p) != t.rows || len(r) != t.cols {
		return ErrDimensionMismatch
	}
	for k := 0; k < t.filled; k++ {
		i, j, v := t.rowIdx[k], t.colIdx[k], t.values[k]
		r[j] += alpha * v * p[i]
	}
	return nil
}

// ToDense expands the Triplet into a row-major dense buffer of length
// Rows()*Cols(). Symmetric triplets are expanded to the full matrix.
func (t *Triplet) ToDense() []float64 {
	dense := make([]float64, t.rows*t.cols)
	for k := 0; k < t.filled; k++ {
		i, j, v := t.rowIdx[k], t.colIdx[k], t.values[k]
		dense[i*t.cols+j] = v
		if t.isSymmetric && i != j {
			dense[j*t.cols+i] = v
		}
	}
	return dense
}

// FromDense builds a Triplet from a row-major dense buffer of length
// rows*cols. When the matrix is square, symmetry is auto-detected by
// comparing M[i][j] to M[j][i] for all i<j (within tol); on a symmetric
// detection only the lower triangle is stored.
func FromDense(dense []float64, rows, cols int, tol float64) (*Triplet, error) {
	if len(dense) != rows*cols {
		return nil, ErrDimensionMismatch
	}
	at := func(i, j int) float64 { return dense[i*cols+j] }

	symmetric := rows == cols
	if symmetric {
		for i := 0; i < rows && symmetric; i++ {
			for j := i + 1; j < cols; j++ {
				if absf(at(i, j)-at(j, i)) > tol {
					symmetric = false
					break
				}
			}
		}
	}

	nnz := 0
	for i := 0; i < rows; i++ {
		jMax := cols
		if symmetric {
			jMax = i + 1
		}
		for j := 0; j < jMax; j++ {
			if at(i, j) != 0 {
				nnz++
			}
		}
	}

	tri, err := NewTriplet(rows, cols, nnz, symmetric)
	if err != nil {
		return nil, err
	}
	k := 0
	for i := 0; i < rows; i++ {
		jMax := cols
		if symmetric {
			jMax = i + 1
		}
		for j := 0; j < jMax; j++ {
			if v := at(i, j); v != 0 {
				if err := tri.SetEntry(k, i+1, j+1, v); err != nil {
					return nil, err
				}
				k++
			}
		}
	}
	return tri, nil
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
