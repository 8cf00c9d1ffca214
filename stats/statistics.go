package stats

// Statistics accumulates run counters across a single Driver.Optimize
// call. It is allocated once per solve and passed by pointer so that the QP
// Backend Interface, the QP Builder, and the Driver can all contribute to
// it without the Driver having to thread separate return values through
// every call.
type Statistics struct {
	// OuterIterations counts completed outer SQP iterations.
	OuterIterations int
	// QPIterations accumulates the inner active-set iteration count across
	// every optimize_qp/optimize_lp call, including elastic restarts and
	// penalty-update sub-solves.
	QPIterations int
	// LPIterations accumulates inner iterations spent on penalty-update LP
	// solves specifically.
	LPIterations int
	// SOCAttempts counts second-order-correction sub-solves attempted.
	SOCAttempts int
	// SOCAccepted counts second-order corrections that produced an
	// accepted step.
	SOCAccepted int
	// PenaltyIncreases counts how many times ρ was multiplied up across
	// the whole solve.
	PenaltyIncreases int
	// TrustRegionShrinks / TrustRegionExpansions count Δ updates.
	TrustRegionShrinks     int
	TrustRegionExpansions  int
	// ElasticRestarts counts infeasibility-fallback QP retries.
	ElasticRestarts int
	// HotstartReinits counts how many times the 3-state matrix-change
	// history forced a from-scratch re-initialization instead of a
	// hotstart.
	HotstartReinits int
}

// Reset zeroes every counter, for reuse across repeated Optimize calls on
// the same Driver.
func (s *Statistics) Reset() {
	*s = Statistics{}
}
