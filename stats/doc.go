// Package stats holds the solver's run counters (Statistics) and the
// standalone KKT / working-set consistency checker used both internally by
// the driver's termination test and externally as a cross-solver debugging
// tool.
package stats
