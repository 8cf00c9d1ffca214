package sparse

import "sort"

// Layout selects whether an HB matrix is stored compressed-row or
// compressed-column.
type Layout int

const (
	// CSR stores entries sorted by (row, column), with a row pointer array.
	CSR Layout = iota
	// CSC stores entries sorted by (column, row), with a column pointer array.
	CSC
)

// IdentityBlockPosition describes one α·I block to splice into an HB
// matrix's structure alongside the entries coming from a source Triplet.
// RowOffset/ColOffset are 0-indexed top-left placements of the block;
// Dimension is the block's size; Multiplier is α. Identity-block values are
// written once at structure time and never refreshed — only entries that
// originated from the source Triplet participate in the permutation array
// used for O(nnz) value refresh.
type IdentityBlockPosition struct {
	RowOffset   int
	ColOffset   int
	Dimension   int
	Multiplier  float64
}

type hbEntry struct {
	row, col    int
	value       float64
	tripletSlot int // index into the source triplet's Entries() order, or -1 for identity-block entries
}

// HB is a Harwell-Boeing (compressed-row or compressed-column) sparse
// matrix built once from a Triplet plus optional identity blocks. Once the
// structure is fixed, SetValuesFromTriplet refreshes the numeric values in
// O(nnz) using the recorded triplet-order permutation, without re-sorting.
type HB struct {
	layout Layout
	rows   int
	cols   int

	pointer    []int // length dim+1 on the compressed dimension
	rowIndices []int // length nnz, 0-indexed
	colIndices []int // length nnz, 0-indexed
	values     []float64

	// perm[i] is the HB array position holding the i-th entry of the
	// source triplet (in the triplet's own Entries() order). Identity-block
	// entries do not appear here.
	perm []int

	structureSet bool
}

// NewHB allocates an empty HB matrix of the given layout and shape.
// Structure must be set exactly once via SetStructure before any value
// operation.
func NewHB(layout Layout, rows, cols int) (*HB, error) {
	if rows < 0 || cols < 0 {
		return nil, ErrInvalidMatrixIndex
	}
	return &HB{layout: layout, rows: rows, cols: cols}, nil
}

// Layout reports the compression layout.
func (h *HB) Layout() Layout { return h.layout }

// Rows returns the row count.
func (h *HB) Rows() int { return h.rows }

// Cols returns the column count.
func (h *HB) Cols() int { return h.cols }

// NNZ returns the number of stored entries (triplet entries plus spliced
// identity-block entries).
func (h *HB) NNZ() int { return len(h.values) }

// Pointer exposes the dim+1 pointer array (row pointers for CSR, column
// pointers for CSC).
func (h *HB) Pointer() []int { return h.pointer }

// Values exposes the current value array, in structure (sorted) order.
func (h *HB) Values() []float64 { return h.values }

// RowIndices exposes the 0-indexed row index array, in structure order.
func (h *HB) RowIndices() []int { return h.rowIndices }

// ColIndices exposes the 0-indexed column index array, in structure order.
func (h *HB) ColIndices() []int { return h.colIndices }

// SetStructure fixes the sparsity pattern from a source Triplet plus an
// optional set of identity blocks, sorting entries lexicographically by
// (row, column) for CSR or (column, row) for CSC, building the pointer
// array and the triplet-order permutation. May be called exactly once.
func (h *HB) SetStructure(tri *Triplet, identities []IdentityBlockPosition) error {
	if h.structureSet {
		return ErrAlreadyInitialized
	}
	if tri.Rows() != h.rows || tri.Cols() > h.cols {
		return ErrDimensionMismatch
	}

	entries := make([]hbEntry, 0, tri.Entries()+identitiesNNZ(identities))
	rowIdx := tri.RowIndices0()
	colIdx := tri.ColIndices0()
	vals := tri.Values()
	for i := range rowIdx {
		entries = append(entries, hbEntry{row: rowIdx[i], col: colIdx[i], value: vals[i], tripletSlot: i})
	}
	for _, blk := range identities {
		for d := 0; d < blk.Dimension; d++ {
			entries = append(entries, hbEntry{
				row:         blk.RowOffset + d,
				col:         blk.ColOffset + d,
				value:       blk.Multiplier,
				tripletSlot: -1,
			})
		}
	}

	for _, e := range entries {
		if e.row < 0 || e.row >= h.rows || e.col < 0 || e.col >= h.cols {
			return ErrInvalidMatrixIndex
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		pi, si := sortKeys(h.layout, entries[i])
		pj, sj := sortKeys(h.layout, entries[j])
		if pi != pj {
			return pi < pj
		}
		return si < sj
	})

	for i := 1; i < len(entries); i++ {
		pi, si := sortKeys(h.layout, entries[i])
		pp, sp := sortKeys(h.layout, entries[i-1])
		if pi == pp && si == sp {
			return ErrDuplicateEntry
		}
	}

	dim := h.rows
	if h.layout == CSC {
		dim = h.cols
	}
	pointer := make([]int, dim+1)
	rowIndices := make([]int, len(entries))
	colIndices := make([]int, len(entries))
	values := make([]float64, len(entries))
	perm := make([]int, tri.Entries())
	for i := range perm {
		perm[i] = -1
	}

	for pos, e := range entries {
		rowIndices[pos] = e.row
		colIndices[pos] = e.col
		values[pos] = e.value
		if e.tripletSlot >= 0 {
			perm[e.tripletSlot] = pos
		}
		major, _ := sortKeys(h.layout, e)
		pointer[major+1]++
	}
	for i := 0; i < dim; i++ {
		pointer[i+1] += pointer[i]
	}

	h.pointer = pointer
	h.rowIndices = rowIndices
	h.colIndices = colIndices
	h.values = values
	h.perm = perm
	h.structureSet = true
	return nil
}

// SetValuesFromTriplet refreshes the numeric values contributed by the
// source triplet, in O(nnz) using the stored permutation. Values supplied
// directly as a slice (in the triplet's Entries() order) avoid re-deriving
// them from the Triplet object itself.
func (h *HB) SetValuesFromTriplet(values []float64) error {
	if !h.structureSet {
		return ErrNotInitialized
	}
	if len(values) != len(h.perm) {
		return ErrDimensionMismatch
	}
	for slot, pos := range h.perm {
		if pos < 0 {
			continue
		}
		h.values[pos] = values[slot]
	}
	return nil
}

// SetValueAt overwrites a single HB-array position directly (0-indexed into
// the sorted structure), bypassing the permutation: a location-keyed
// alternative to SetValuesFromTriplet that can also overwrite identity-block
// entries.
func (h *HB) SetValueAt(pos int, value float64) error {
	if !h.structureSet {
		return ErrNotInitialized
	}
	if pos < 0 || pos >= len(h.values) {
		return ErrInvalidMatrixIndex
	}
	h.values[pos] = value
	return nil
}

// ToTriplet reconstructs a Triplet with the same nonzero set and values as
// the HB matrix (identity-block entries included), useful for dense-view
// round trips in tests.
func (h *HB) ToTriplet() (*Triplet, error) {
	if !h.structureSet {
		return nil, ErrNotInitialized
	}
	tri, err := NewTriplet(h.rows, h.cols, len(h.values), false)
	if err != nil {
		return nil, err
	}
	for i := range h.values {
		if err := tri.SetEntry(i, h.rowIndices[i]+1, h.colIndices[i]+1, h.values[i]); err != nil {
			return nil, err
		}
	}
	return tri, nil
}

// ToDense expands the HB matrix to a row-major dense buffer.
func (h *HB) ToDense() []float64 {
	dense := make([]float64, h.rows*h.cols)
	for i := range h.values {
		dense[h.rowIndices[i]*h.cols+h.colIndices[i]] = h.values[i]
	}
	return dense
}

func sortKeys(layout Layout, e hbEntry) (major, minor int) {
	if layout == CSC {
		return e.col, e.row
	}
	return e.row, e.col
}

func identitiesNNZ(identities []IdentityBlockPosition) int {
	n := 0
	for _, blk := range identities {
		n += blk.Dimension
	}
	return n
}
