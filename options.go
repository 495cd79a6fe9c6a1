package xtpb

import (
	"fmt"
	"runtime"
)

// BiasCorrection selects the small-sample correction applied to the pooled
// estimate.
type BiasCorrection int

const (
	// BiasNone reports the uncorrected pooled estimate only.
	BiasNone BiasCorrection = iota
	// BiasJackknife applies the half-panel jackknife correction.
	BiasJackknife
	// BiasBootstrap estimates the bias from simulated replicate means.
	BiasBootstrap
)

func (b BiasCorrection) String() string {
	switch b {
	case BiasNone:
		return "none"
	case BiasJackknife:
		return "jackknife"
	case BiasBootstrap:
		return "bootstrap"
	}
	return fmt.Sprintf("BiasCorrection(%d)", int(b))
}

// ResidualMode selects how short-run residuals are resampled when
// generating synthetic panels.
type ResidualMode int

const (
	// ResidualIndependent draws one Rademacher sign per unit and period.
	ResidualIndependent ResidualMode = iota
	// ResidualCrossLinked draws one Rademacher sign per distinct period,
	// shared by every unit observed in that period. This preserves
	// cross-sectional correlation in the resampled shocks.
	ResidualCrossLinked
)

func (r ResidualMode) String() string {
	switch r {
	case ResidualIndependent:
		return "independent"
	case ResidualCrossLinked:
		return "cross_sectional_linked"
	}
	return fmt.Sprintf("ResidualMode(%d)", int(r))
}

// RegressorDynamics selects how synthetic regressor paths evolve inside the
// bootstrap.
type RegressorDynamics int

const (
	// DynamicsFixed reuses each unit's observed regressor path unchanged.
	DynamicsFixed RegressorDynamics = iota
	// DynamicsVARX regenerates regressors from a VAR in first differences
	// fitted to the regressors alone.
	DynamicsVARX
	// DynamicsVARXY augments the regressor VAR with lagged first
	// differences of the dependent variable.
	DynamicsVARXY
)

func (d RegressorDynamics) String() string {
	switch d {
	case DynamicsFixed:
		return "fixed"
	case DynamicsVARX:
		return "var_x"
	case DynamicsVARXY:
		return "var_xy"
	}
	return fmt.Sprintf("RegressorDynamics(%d)", int(d))
}

// Options configures a pooled Bewley estimation run.
type Options struct {
	// Lags is the ARDL lag order p. Must be at least 1.
	Lags int

	// BiasCorrection selects the small-sample corrector.
	BiasCorrection BiasCorrection

	// BootstrapCI requests percentile-t confidence intervals. Implied by
	// BiasCorrection == BiasBootstrap.
	BootstrapCI bool

	// BootstrapReps is the replication count R used whenever the bootstrap
	// runs.
	BootstrapReps int

	// ResidualMode selects the residual resampling scheme.
	ResidualMode ResidualMode

	// RegressorDynamics selects the synthetic regressor evolution model.
	RegressorDynamics RegressorDynamics

	// RegressorLags is the lag order of the regressor VAR. Zero means
	// "same as Lags".
	RegressorLags int

	// ConfidenceLevel is the nominal coverage of bootstrap intervals,
	// strictly between 0 and 1.
	ConfidenceLevel float64

	// Seed initializes the master random stream; every replication derives
	// its own sub-seed from it, so results are reproducible regardless of
	// scheduling.
	Seed int64

	// Workers bounds the bootstrap worker pool. Zero means NumCPU.
	Workers int

	// UnitDiagnostics requests the per-unit short-run coefficient table
	// (standard errors, t-stats, p-values, R²) on the result.
	UnitDiagnostics bool

	// Progress, when non-nil, is invoked from the bootstrap loop at fixed
	// completion percentages. It has no influence on results.
	Progress func(done, total int)
}

// DefaultOptions returns the documented defaults: p=1, no correction,
// R=2000, independent resampling, fixed regressors, 95% level, seed 123456.
func DefaultOptions() Options {
	return Options{
		Lags:              1,
		BiasCorrection:    BiasNone,
		BootstrapReps:     2000,
		ResidualMode:      ResidualIndependent,
		RegressorDynamics: DynamicsFixed,
		ConfidenceLevel:   0.95,
		Seed:              123456,
	}
}

// validate normalizes derived fields and rejects invalid option values
// before any data is touched.
func (o *Options) validate() error {
	if o.Lags < 1 {
		return &ConfigError{Option: "lag_order", Value: fmt.Sprint(o.Lags), Reason: "must be at least 1"}
	}
	switch o.BiasCorrection {
	case BiasNone, BiasJackknife, BiasBootstrap:
	default:
		return &ConfigError{Option: "bias_correction", Value: fmt.Sprint(int(o.BiasCorrection)), Reason: "unrecognized value"}
	}
	switch o.ResidualMode {
	case ResidualIndependent, ResidualCrossLinked:
	default:
		return &ConfigError{Option: "residual_mode", Value: fmt.Sprint(int(o.ResidualMode)), Reason: "unrecognized value"}
	}
	switch o.RegressorDynamics {
	case DynamicsFixed, DynamicsVARX, DynamicsVARXY:
	default:
		return &ConfigError{Option: "regressor_dynamics", Value: fmt.Sprint(int(o.RegressorDynamics)), Reason: "unrecognized value"}
	}
	if o.RegressorLags == 0 {
		o.RegressorLags = o.Lags
	}
	if o.RegressorLags < 1 {
		return &ConfigError{Option: "regressor_lag_order", Value: fmt.Sprint(o.RegressorLags), Reason: "must be at least 1"}
	}
	if o.needsBootstrap() {
		if o.BootstrapReps < 1 {
			return &ConfigError{Option: "bootstrap_reps", Value: fmt.Sprint(o.BootstrapReps), Reason: "must be at least 1 when the bootstrap is requested"}
		}
		if !(o.ConfidenceLevel > 0 && o.ConfidenceLevel < 1) {
			return &ConfigError{Option: "confidence_level", Value: fmt.Sprint(o.ConfidenceLevel), Reason: "must lie strictly between 0 and 1"}
		}
	}
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	return nil
}

func (o *Options) needsBootstrap() bool {
	return o.BootstrapCI || o.BiasCorrection == BiasBootstrap
}
