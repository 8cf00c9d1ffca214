// Package vector provides the dense vector primitives shared across the
// solver: infinity-norm / one-norm helpers, bound classification, and the
// four-valued working-set enumeration used by the QP backends and the KKT
// tester.
//
// Vectors are plain []float64; the small enum types (BoundType,
// WorkingSetStatus) carry the method sets; there is no heap-allocated Vector
// struct because every per-iterate buffer in the driver is sized once at
// initialization and reused in place, per the single-owner/no-allocation
// discipline described by the solver's memory model.
package vector
