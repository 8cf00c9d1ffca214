package driver

import "github.com/rs/zerolog"

// Options bundles every recognized configuration knob from spec.md §6,
// grouped by concern. NewOptions seeds the documented defaults; each With*
// setter overrides one field through the functional-options idiom.
type Options struct {
	// Trust region.
	Delta0   float64
	DeltaMax float64
	DeltaMin float64
	EtaC     float64
	EtaS     float64
	EtaE     float64
	GammaC   float64
	GammaE   float64

	// Penalty.
	Rho0                float64
	RhoMax              float64
	GammaRho            float64
	Eps1                float64
	Eps2                float64
	IterMaxRho          int
	EnablePenaltyUpdate bool

	// Open-question branch (spec.md §9): disabled unless explicitly enabled,
	// per the spec's explicit "do not guess, default to disabled" instruction.
	EnablePenaltyReduction bool

	// Tolerances.
	TauPrim      float64
	TauDual      float64
	TauComp      float64
	TauStat      float64
	ActiveSetTol float64

	// Limits.
	IterMax   int
	QPIterMax int
	LPIterMax int

	// Time caps (spec.md §6 supplement, grounded on Algorithm.cpp).
	MaxCPUSeconds  float64
	MaxWallSeconds float64

	// Features.
	SecondOrderCorrection bool

	// Output: 0 disables logging; 1..4 map to zerolog Warn/Info/Debug/Trace.
	PrintLevel int
	Logger     zerolog.Logger

	// Debug QP dump directory (spec.md §6 supplement); empty disables it.
	DebugDumpDir string
}

// Option mutates an Options under construction.
type Option func(*Options)

// NewOptions seeds the spec.md §6 defaults and applies opts in order.
func NewOptions(opts ...Option) Options {
	o := Options{
		Delta0:   1.0,
		DeltaMax: 1e3,
		DeltaMin: 1e-8,
		EtaC:     0.25,
		EtaS:     1e-8,
		EtaE:     0.75,
		GammaC:   0.5,
		GammaE:   2,

		Rho0:                1,
		RhoMax:              1e6,
		GammaRho:            10,
		Eps1:                0.3,
		Eps2:                1e-6,
		IterMaxRho:          10,
		EnablePenaltyUpdate: true,

		EnablePenaltyReduction: false,

		TauPrim:      1e-5,
		TauDual:      1e-6,
		TauComp:      1e-6,
		TauStat:      1e-5,
		ActiveSetTol: 1e-5,

		IterMax:   200,
		QPIterMax: 1000,
		LPIterMax: 100,

		MaxCPUSeconds:  0,
		MaxWallSeconds: 0,

		SecondOrderCorrection: true,

		PrintLevel: 0,
		Logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Validate reports ErrInvalidOptions-wrapped inconsistencies that would
// make the outer loop's invariants unenforceable.
func (o Options) Validate() error {
	switch {
	case o.DeltaMin <= 0 || o.DeltaMin >= o.Delta0:
		return wrapInvalid("delta_min must be in (0, delta_0)")
	case o.Delta0 > o.DeltaMax:
		return wrapInvalid("delta_0 must not exceed delta_max")
	case o.Rho0 <= 0 || o.Rho0 > o.RhoMax:
		return wrapInvalid("rho_0 must be in (0, rho_max]")
	case o.GammaRho <= 1:
		return wrapInvalid("gamma_rho must exceed 1")
	case o.IterMax <= 0 || o.QPIterMax <= 0 || o.LPIterMax <= 0:
		return wrapInvalid("iteration limits must be positive")
	case o.PrintLevel < 0 || o.PrintLevel > 4:
		return wrapInvalid("print_level must be in 0..4")
	}
	return nil
}

func wrapInvalid(msg string) error {
	return &invalidOptionError{msg: msg}
}

type invalidOptionError struct{ msg string }

func (e *invalidOptionError) Error() string { return "driver: invalid options: " + e.msg }
func (e *invalidOptionError) Unwrap() error { return ErrInvalidOptions }

// WithDelta0 sets the initial trust-region radius.
func WithDelta0(v float64) Option { return func(o *Options) { o.Delta0 = v } }

// WithDeltaBounds sets the trust-region radius floor and ceiling.
func WithDeltaBounds(min, max float64) Option {
	return func(o *Options) { o.DeltaMin, o.DeltaMax = min, max }
}

// WithRho0 sets the initial penalty parameter.
func WithRho0(v float64) Option { return func(o *Options) { o.Rho0 = v } }

// WithRhoMax sets the penalty parameter ceiling.
func WithRhoMax(v float64) Option { return func(o *Options) { o.RhoMax = v } }

// WithPenaltyUpdate toggles the penalty-parameter update sub-procedure.
func WithPenaltyUpdate(enabled bool) Option {
	return func(o *Options) { o.EnablePenaltyUpdate = enabled }
}

// WithPenaltyReduction toggles the disabled-by-default ρ-halving branch
// (spec.md §9 open question); left false unless the caller explicitly
// opts in.
func WithPenaltyReduction(enabled bool) Option {
	return func(o *Options) { o.EnablePenaltyReduction = enabled }
}

// WithSecondOrderCorrection toggles the SOC sub-procedure.
func WithSecondOrderCorrection(enabled bool) Option {
	return func(o *Options) { o.SecondOrderCorrection = enabled }
}

// WithTolerances overrides the four KKT tolerances.
func WithTolerances(prim, dual, comp, stat float64) Option {
	return func(o *Options) { o.TauPrim, o.TauDual, o.TauComp, o.TauStat = prim, dual, comp, stat }
}

// WithIterMax overrides the outer iteration cap.
func WithIterMax(v int) Option { return func(o *Options) { o.IterMax = v } }

// WithTimeCaps sets the CPU-time and wall-clock caps in seconds; 0 disables
// a cap.
func WithTimeCaps(cpuSeconds, wallSeconds float64) Option {
	return func(o *Options) { o.MaxCPUSeconds, o.MaxWallSeconds = cpuSeconds, wallSeconds }
}

// WithPrintLevel sets the logging verbosity (0..4).
func WithPrintLevel(v int) Option { return func(o *Options) { o.PrintLevel = v } }

// WithLogger installs a caller-configured zerolog.Logger as the print
// channel, overriding the default no-op logger.
func WithLogger(l zerolog.Logger) Option { return func(o *Options) { o.Logger = l } }

// WithDebugDumpDir enables the failing-QP dump to the given directory.
func WithDebugDumpDir(dir string) Option { return func(o *Options) { o.DebugDumpDir = dir } }
