package qp

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/restartsqp/sqpcore/sparse"
)

// DumpTriplet writes the failing elastic QP's Jacobian and Hessian to
// "qp_dump.txt" under dir, for external reproduction. The format is four
// header lines (n, m, nnz_A, nnz_H) followed by A's row/column/value
// streams (one integer or float per line, row-index stream first, then
// column, then value) and H's streams in the same order.
func DumpTriplet(dir string, a, h *sparse.Triplet) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(dir, "qp_dump.txt"))
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintln(f, a.Cols())
	fmt.Fprintln(f, a.Rows())
	fmt.Fprintln(f, a.Entries())
	fmt.Fprintln(f, h.Entries())

	if err := writeTripletStreams(f, a); err != nil {
		return err
	}
	return writeTripletStreams(f, h)
}

func writeTripletStreams(f *os.File, t *sparse.Triplet) error {
	for k := 0; k < t.Entries(); k++ {
		row, _, _, err := t.Entry(k)
		if err != nil {
			return err
		}
		fmt.Fprintln(f, row)
	}
	for k := 0; k < t.Entries(); k++ {
		_, col, _, err := t.Entry(k)
		if err != nil {
			return err
		}
		fmt.Fprintln(f, col)
	}
	for k := 0; k < t.Entries(); k++ {
		_, _, val, err := t.Entry(k)
		if err != nil {
			return err
		}
		fmt.Fprintln(f, val)
	}
	return nil
}
