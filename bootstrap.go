package xtpb

import (
	"errors"
	"math"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Interval is a componentwise symmetric percentile-t confidence band.
type Interval struct {
	Level float64
	Lower []float64
	Upper []float64
}

// BootstrapResult collects everything the replication loop produced.
type BootstrapResult struct {
	Reps  int
	Level float64

	// Uncorrected is the interval around the plain pooled estimate.
	Uncorrected Interval

	// SimulationBeta and SimulationCovariance hold the simulation
	// bias-corrected estimate and the covariance evaluated at it; set only
	// under BiasBootstrap, together with SimulationCorrected.
	SimulationBeta       []float64
	SimulationCovariance *mat.SymDense
	SimulationCorrected  *Interval

	// Jackknife is the interval around the jackknife-corrected estimate;
	// set only under BiasJackknife.
	Jackknife *Interval
}

// bootstrapInputs carries the full-sample quantities the orchestrator
// anchors its intervals on.
type bootstrapInputs struct {
	beta  []float64
	A     *mat.Dense
	omega *mat.SymDense

	// betaJK/omegaJK are set when the jackknife correction is requested.
	betaJK  []float64
	omegaJK *mat.SymDense
}

// replicate holds one replication's statistics in its own slot, so the
// assembled output is identical no matter how the workers were scheduled.
type replicate struct {
	beta   []float64
	se     []float64 // sqrt of the replicate covariance diagonal
	betaJK []float64
	seJK   []float64
	err    error
}

// runBootstrap drives R replications: short-run dynamics are fitted once on
// the real data, each replication regenerates a synthetic panel and re-runs
// the full estimation pipeline on it, and the empirical quantiles of the
// studentized replicate deviations |β_r − β| / se_r yield symmetric
// percentile-t intervals. A failed replication aborts the whole run;
// skipping it would bias the quantiles.
func runBootstrap(panel *Panel, opts Options, in bootstrapInputs) (*BootstrapResult, error) {
	R := opts.BootstrapReps
	kind := opts.BiasCorrection
	wantJK := kind == BiasJackknife

	// Replications centered on the jackknife estimator resample residuals
	// fitted at it; otherwise the plain estimate anchors the dynamics.
	fitBeta := in.beta
	if wantJK {
		fitBeta = in.betaJK
	}
	fit, err := fitShortRun(panel, opts.Lags, opts.RegressorLags, fitBeta, opts.RegressorDynamics)
	if err != nil {
		return nil, err
	}

	// One sub-seed per replication index keeps the pseudorandom stream
	// reproducible under any worker count.
	master := rand.New(rand.NewSource(opts.Seed))
	seeds := make([]int64, R)
	for r := range seeds {
		seeds[r] = master.Int63()
	}

	reps := make([]replicate, R)
	jobs := make(chan int)
	workers := opts.Workers
	if workers > R {
		workers = R
	}

	var done int64
	step := R / 10
	if step < 1 {
		step = 1
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for r := range jobs {
				reps[r] = runReplicate(panel, fit, opts, seeds[r], r+1, wantJK)
				if opts.Progress != nil {
					n := atomic.AddInt64(&done, 1)
					if n%int64(step) == 0 || n == int64(R) {
						opts.Progress(int(n), R)
					}
				}
			}
		}()
	}
	for r := 0; r < R; r++ {
		jobs <- r
	}
	close(jobs)
	wg.Wait()

	for r := range reps {
		if reps[r].err != nil {
			return nil, reps[r].err
		}
	}

	k := panel.K
	out := &BootstrapResult{Reps: R, Level: opts.ConfidenceLevel}

	betaOf := func(r int) []float64 { return reps[r].beta }
	seOf := func(r int) []float64 { return reps[r].se }
	out.Uncorrected = buildInterval(in.beta, in.omega, betaOf, seOf, R, k, opts.ConfidenceLevel)

	switch kind {
	case BiasBootstrap:
		// bias = mean(β_r) − β̂, corrected estimate β̂ − bias. The same
		// replicate set is recentered on the corrected estimate.
		mean := make([]float64, k)
		for r := 0; r < R; r++ {
			for j := 0; j < k; j++ {
				mean[j] += reps[r].beta[j]
			}
		}
		bsim := make([]float64, k)
		for j := 0; j < k; j++ {
			mean[j] /= float64(R)
			bsim[j] = 2*in.beta[j] - mean[j]
		}
		osim, err := computeOmega(panel, opts.Lags, bsim, in.A)
		if err != nil {
			return nil, err
		}
		ci := buildInterval(bsim, osim, betaOf, seOf, R, k, opts.ConfidenceLevel)
		out.SimulationBeta = bsim
		out.SimulationCovariance = osim
		out.SimulationCorrected = &ci
	case BiasJackknife:
		ci := buildInterval(in.betaJK, in.omegaJK,
			func(r int) []float64 { return reps[r].betaJK },
			func(r int) []float64 { return reps[r].seJK },
			R, k, opts.ConfidenceLevel)
		out.Jackknife = &ci
	}
	return out, nil
}

// runReplicate regenerates one synthetic panel and re-estimates on it.
func runReplicate(panel *Panel, fit *shortRunFit, opts Options, seed int64, index int, wantJK bool) replicate {
	rng := rand.New(rand.NewSource(seed))
	syn := fit.simulate(panel, opts.ResidualMode, rng)

	fail := func(err error) replicate {
		var sme *SingularMatrixError
		if errors.As(err, &sme) {
			sme.Replication = index
		}
		return replicate{err: err}
	}

	beta, A, err := estimate(syn, opts.Lags, halfFull)
	if err != nil {
		return fail(err)
	}
	omega, err := computeOmega(syn, opts.Lags, beta, A)
	if err != nil {
		return fail(err)
	}
	rep := replicate{beta: beta, se: diagRoot(omega)}

	if wantJK {
		rep.betaJK, err = jackknifeEstimate(syn, opts.Lags, beta)
		if err != nil {
			return fail(err)
		}
		omegaJK, err := computeOmegaJK(syn, opts.Lags, rep.betaJK, A)
		if err != nil {
			return fail(err)
		}
		rep.seJK = diagRoot(omegaJK)
	}
	return rep
}

// buildInterval studentizes the replicate deviations around center,
// takes the empirical quantile of their absolute values at the confidence
// level, and scales the anchor standard errors by it.
func buildInterval(center []float64, cov *mat.SymDense, betaOf, seOf func(int) []float64, R, k int, level float64) Interval {
	ci := Interval{
		Level: level,
		Lower: make([]float64, k),
		Upper: make([]float64, k),
	}
	stud := make([]float64, R)
	for j := 0; j < k; j++ {
		for r := 0; r < R; r++ {
			stud[r] = math.Abs(betaOf(r)[j]-center[j]) / seOf(r)[j]
		}
		sort.Float64s(stud)
		q := stat.Quantile(level, stat.Empirical, stud, nil)
		half := q * math.Sqrt(cov.At(j, j))
		ci.Lower[j] = center[j] - half
		ci.Upper[j] = center[j] + half
	}
	return ci
}

// diagRoot extracts the square roots of a covariance diagonal.
func diagRoot(cov *mat.SymDense) []float64 {
	n, _ := cov.Dims()
	out := make([]float64, n)
	for j := 0; j < n; j++ {
		out[j] = math.Sqrt(cov.At(j, j))
	}
	return out
}
