package problems

import (
	"github.com/restartsqp/sqpcore/nlp"
	"github.com/restartsqp/sqpcore/vector"
)

// Result captures the arguments FinalizeSolution received, the only way a
// caller observes a solve's outcome through the nlp.Problem interface.
type Result struct {
	Status      nlp.ExitFlag
	X           []float64
	ZBound      []float64
	WBound      []vector.WorkingSetStatus
	C           []float64
	Lambda      []float64
	WConstraint []vector.WorkingSetStatus
	F           float64
}

// base implements FinalizeSolution by recording into Result; every problem
// type in this package embeds it.
type base struct {
	result Result
	done   bool
}

func (b *base) FinalizeSolution(status nlp.ExitFlag, x, zBound []float64, wBound []vector.WorkingSetStatus, c, lambda []float64, wConstraint []vector.WorkingSetStatus, f float64) {
	b.result = Result{
		Status:      status,
		X:           append([]float64(nil), x...),
		ZBound:      append([]float64(nil), zBound...),
		WBound:      append([]vector.WorkingSetStatus(nil), wBound...),
		C:           append([]float64(nil), c...),
		Lambda:      append([]float64(nil), lambda...),
		WConstraint: append([]vector.WorkingSetStatus(nil), wConstraint...),
		F:           f,
	}
	b.done = true
}

// Result returns the recorded outcome; valid only once a Driver.Optimize
// call on this problem has returned.
func (b *base) Result() Result { return b.result }
