package xtpb

import (
	"gonum.org/v1/gonum/mat"
)

// CorrectedEstimate pairs a bias-corrected coefficient vector with the
// covariance evaluated consistently with it.
type CorrectedEstimate struct {
	Beta       []float64
	Covariance *mat.SymDense
}

// ShortRunStats is one unit's error-correction regression row for the
// diagnostic table: coefficients with their own standard errors, t-stats,
// p-values, and R².
type ShortRunStats struct {
	Unit    string
	Names   []string
	Coeffs  []float64
	StdErrs []float64
	TStats  []float64
	PValues []float64
	R2      float64
}

// EstimationResult is the immutable value the core returns; presentation
// and persistence live entirely with the caller.
type EstimationResult struct {
	// Names labels the coefficient vector by regressor.
	Names []string

	// Beta is the pooled long-run coefficient estimate, length k.
	Beta []float64

	// Covariance is the k×k asymptotic covariance of Beta.
	Covariance *mat.SymDense

	// Sample diagnostics.
	Units  int
	MinObs int
	AvgObs float64
	MaxObs int

	// Jackknife holds the half-panel corrected estimate when requested.
	Jackknife *CorrectedEstimate

	// Bootstrap holds replicate-based intervals (and, under the simulation
	// corrector, the corrected estimate) when the bootstrap ran.
	Bootstrap *BootstrapResult

	// ShortRun holds the per-unit diagnostic rows when requested.
	ShortRun []ShortRunStats
}

// Estimate runs the pooled Bewley pipeline on the panel: point estimate and
// asymptotic covariance always, the requested bias corrector, and bootstrap
// confidence intervals when asked for. Deterministic given Options.Seed.
func Estimate(panel *Panel, opts Options) (*EstimationResult, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	for _, u := range panel.Units {
		if u.NumObs() < opts.Lags+2 {
			return nil, &InsufficientDataError{Unit: u.ID, Obs: u.NumObs(), Min: opts.Lags + 2}
		}
	}

	beta, A, err := estimate(panel, opts.Lags, halfFull)
	if err != nil {
		return nil, err
	}
	omega, err := computeOmega(panel, opts.Lags, beta, A)
	if err != nil {
		return nil, err
	}

	res := &EstimationResult{
		Names:      append([]string(nil), panel.Names...),
		Beta:       beta,
		Covariance: omega,
		Units:      panel.N(),
	}
	res.MinObs, res.AvgObs, res.MaxObs = panel.ObsStats()

	in := bootstrapInputs{beta: beta, A: A, omega: omega}
	if opts.BiasCorrection == BiasJackknife {
		in.betaJK, err = jackknifeEstimate(panel, opts.Lags, beta)
		if err != nil {
			return nil, err
		}
		in.omegaJK, err = computeOmegaJK(panel, opts.Lags, in.betaJK, A)
		if err != nil {
			return nil, err
		}
		res.Jackknife = &CorrectedEstimate{Beta: in.betaJK, Covariance: in.omegaJK}
	}

	if opts.needsBootstrap() {
		boot, err := runBootstrap(panel, opts, in)
		if err != nil {
			return nil, err
		}
		res.Bootstrap = boot
	}

	if opts.UnitDiagnostics {
		rows, err := shortRunTable(panel, opts.Lags, beta)
		if err != nil {
			return nil, err
		}
		res.ShortRun = rows
	}
	return res, nil
}

// shortRunTable fits the per-unit error-correction regressions at the final
// coefficient vector and packages them for display.
func shortRunTable(panel *Panel, lags int, beta []float64) ([]ShortRunStats, error) {
	names := shortRunNames(panel.Names, lags)
	rows := make([]ShortRunStats, panel.N())
	for i, u := range panel.Units {
		usr, err := fitUnitECM(u, lags, panel.K, beta)
		if err != nil {
			return nil, err
		}
		rows[i] = ShortRunStats{
			Unit:    u.ID,
			Names:   names,
			Coeffs:  usr.g,
			StdErrs: usr.se,
			TStats:  usr.tstat,
			PValues: usr.pval,
			R2:      usr.r2,
		}
	}
	return rows, nil
}
