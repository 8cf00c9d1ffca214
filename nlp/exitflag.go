package nlp

// ExitFlag is the unified terminal-status taxonomy returned by
// Driver.Optimize, combining the QP backend status taxonomy (§4.3 of the
// design) with the driver-level terminal conditions (§6).
type ExitFlag int

const (
	// Optimal indicates the KKT test passed within tolerance.
	Optimal ExitFlag = iota
	// InvalidNLP indicates an NLP evaluator returned false.
	InvalidNLP
	// ExceedMaxIter indicates the outer iteration cap was reached.
	ExceedMaxIter
	// ExceedMaxCPUTime indicates the CPU-time cap was reached.
	ExceedMaxCPUTime
	// ExceedMaxWallclockTime indicates the wall-clock cap was reached.
	ExceedMaxWallclockTime
	// TrustRegionTooSmall indicates Δ fell below Δ_min.
	TrustRegionTooSmall
	// PenaltyTooLarge indicates ρ saturated at ρ_max with no acceptable step.
	PenaltyTooLarge
	// PredReductionNegative indicates a fatal predicted-reduction
	// assertion failure (model-assembly or scaling bug).
	PredReductionNegative

	// QPErrorInfeasible: the elastic QP/LP subproblem was reported infeasible
	// even after the elastic-restart fallback.
	QPErrorInfeasible
	// QPErrorUnbounded: the QP/LP subproblem was reported unbounded.
	QPErrorUnbounded
	// QPErrorExceedMaxIter: the QP/LP backend exhausted its inner iteration cap.
	QPErrorExceedMaxIter
	// QPErrorNotOptimal: the backend reported any other non-optimal status.
	QPErrorNotOptimal
	// QPErrorInternal: the backend reported an internal error.
	QPErrorInternal
)

// String renders the ExitFlag for logging and CLI exit messages.
func (f ExitFlag) String() string {
	switch f {
	case Optimal:
		return "OPTIMAL"
	case InvalidNLP:
		return "INVALID_NLP"
	case ExceedMaxIter:
		return "EXCEED_MAX_ITER"
	case ExceedMaxCPUTime:
		return "EXCEED_MAX_CPU_TIME"
	case ExceedMaxWallclockTime:
		return "EXCEED_MAX_WALLCLOCK_TIME"
	case TrustRegionTooSmall:
		return "TRUST_REGION_TOO_SMALL"
	case PenaltyTooLarge:
		return "PENALTY_TOO_LARGE"
	case PredReductionNegative:
		return "PRED_REDUCTION_NEGATIVE"
	case QPErrorInfeasible:
		return "QPERROR_INFEASIBLE"
	case QPErrorUnbounded:
		return "QPERROR_UNBOUNDED"
	case QPErrorExceedMaxIter:
		return "QPERROR_EXCEED_MAX_ITER"
	case QPErrorNotOptimal:
		return "QPERROR_NOT_OPTIMAL"
	case QPErrorInternal:
		return "QPERROR_INTERNAL"
	default:
		return "UNKNOWN_EXIT_FLAG"
	}
}

// ExitCode maps an ExitFlag to a process exit code for the out-of-core CLI:
// 0 for Optimal, non-zero otherwise, per spec.md §6.
func (f ExitFlag) ExitCode() int {
	if f == Optimal {
		return 0
	}
	return 1
}
