// Package sparse implements the two cooperating sparse-matrix
// representations used by the solver core: Triplet, a coordinate (row,
// column, value) assembly format, and HB, a Harwell-Boeing compressed-row
// or compressed-column format built from a Triplet plus an optional set of
// spliced-in identity blocks.
//
// The HB builder records a triplet-order permutation so that, once the
// sparsity structure is fixed, refreshing numerical values from the source
// Triplet is an O(nnz) unit-stride copy rather than a re-sort.
//
// Triplet row/column indices taken or returned by SetEntry and Entry are
// 1-indexed to match the NLP callback convention in the surrounding solver;
// they are stored 0-indexed, and only Triplet.RowIndices0/ColIndices0 and
// HB.RowIndices/ColIndices expose that 0-indexed form.
package sparse
