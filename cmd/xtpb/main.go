// Command xtpb estimates a shared long-run coefficient vector on a panel
// CSV using the pooled Bewley estimator, with optional jackknife or
// bootstrap bias correction and bootstrap confidence intervals.
//
// The input file needs a header row of unit,time,<dependent>,<regressors>.
// Options come from a YAML file (-config) overridden by flags.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/timbulwidodostp/xtpb"
)

func main() {
	var (
		dataPath   = flag.String("data", "", "panel CSV file (required)")
		configPath = flag.String("config", "", "YAML options file")
		outPath    = flag.String("out", "", "write the input augmented with lr_gap and sr_resid columns")

		lags    = flag.Int("lags", 0, "lag order p")
		bias    = flag.String("bias", "", "bias correction: none, jackknife, or bootstrap")
		ci      = flag.Bool("ci", false, "compute bootstrap confidence intervals")
		reps    = flag.Int("reps", 0, "bootstrap replications R")
		level   = flag.Float64("level", 0, "confidence level in (0,1)")
		resMode = flag.String("residuals", "", "residual resampling: independent or cross_sectional_linked")
		dyn     = flag.String("dynamics", "", "regressor dynamics: fixed, var_x, or var_xy")
		xlags   = flag.Int("xlags", 0, "regressor VAR lag order (default: same as -lags)")
		seed    = flag.Int64("seed", 0, "random seed")
		workers = flag.Int("workers", 0, "bootstrap worker count (default: NumCPU)")
		diag    = flag.Bool("diag", false, "print the per-unit short-run table")
		quiet   = flag.Bool("quiet", false, "suppress bootstrap progress output")
	)
	flag.Parse()

	if *dataPath == "" {
		fmt.Fprintln(os.Stderr, "usage: xtpb -data panel.csv [-config xtpb.yaml] [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	opts := xtpb.DefaultOptions()
	if *configPath != "" {
		loaded, err := loadConfig(*configPath)
		if err != nil {
			fatal(err)
		}
		opts = loaded
	}
	if err := applyFlags(&opts, *lags, *bias, *ci, *reps, *level, *resMode, *dyn, *xlags, *seed, *workers, *diag); err != nil {
		fatal(err)
	}
	if !*quiet {
		opts.Progress = func(done, total int) {
			fmt.Printf("bootstrap: %d/%d replications (%.0f%%)\n", done, total, 100*float64(done)/float64(total))
		}
	}

	cols, err := loadPanelCSV(*dataPath)
	if err != nil {
		fatal(err)
	}
	panel, err := xtpb.BuildPanel(cols.ids, cols.times, cols.y, cols.x, cols.names, opts.Lags)
	if err != nil {
		fatal(err)
	}

	res, err := xtpb.Estimate(panel, opts)
	if err != nil {
		fatal(err)
	}
	printResult(res)

	if *outPath != "" {
		gap, resid, err := xtpb.AuxiliarySeries(panel, opts.Lags, res.Beta)
		if err != nil {
			fatal(err)
		}
		if err := writeAugmentedCSV(*outPath, cols, gap, resid); err != nil {
			fatal(err)
		}
		fmt.Println("wrote", *outPath)
	}
}

// applyFlags folds the set command-line flags over the options; unset flags
// keep the config/default values.
func applyFlags(opts *xtpb.Options, lags int, bias string, ci bool, reps int, level float64, resMode, dyn string, xlags int, seed int64, workers int, diag bool) error {
	if lags != 0 {
		opts.Lags = lags
	}
	if bias != "" {
		bc, err := parseBiasCorrection(bias)
		if err != nil {
			return err
		}
		opts.BiasCorrection = bc
	}
	if ci {
		opts.BootstrapCI = true
	}
	if reps != 0 {
		opts.BootstrapReps = reps
	}
	if level != 0 {
		opts.ConfidenceLevel = level
	}
	if resMode != "" {
		rm, err := parseResidualMode(resMode)
		if err != nil {
			return err
		}
		opts.ResidualMode = rm
	}
	if dyn != "" {
		rd, err := parseRegressorDynamics(dyn)
		if err != nil {
			return err
		}
		opts.RegressorDynamics = rd
	}
	if xlags != 0 {
		opts.RegressorLags = xlags
	}
	if seed != 0 {
		opts.Seed = seed
	}
	if workers != 0 {
		opts.Workers = workers
	}
	if diag {
		opts.UnitDiagnostics = true
	}
	return nil
}

func printResult(res *xtpb.EstimationResult) {
	fmt.Printf("Pooled Bewley estimation: %d units, observations per unit min/avg/max = %d/%.1f/%d\n",
		res.Units, res.MinObs, res.AvgObs, res.MaxObs)
	fmt.Println()
	fmt.Printf("%-16s %12s %12s\n", "regressor", "coef", "std.err")
	for j, name := range res.Names {
		fmt.Printf("%-16s %12.6f %12.6f\n", name, res.Beta[j], math.Sqrt(res.Covariance.At(j, j)))
	}

	if res.Jackknife != nil {
		fmt.Println()
		fmt.Println("Half-panel jackknife corrected:")
		for j, name := range res.Names {
			fmt.Printf("%-16s %12.6f %12.6f\n", name, res.Jackknife.Beta[j], math.Sqrt(res.Jackknife.Covariance.At(j, j)))
		}
	}

	if b := res.Bootstrap; b != nil {
		fmt.Println()
		fmt.Printf("Bootstrap intervals (%d replications, %.0f%% level):\n", b.Reps, 100*b.Level)
		printInterval("uncorrected", res.Names, b.Uncorrected)
		if b.SimulationCorrected != nil {
			fmt.Println("simulation bias-corrected estimate:")
			for j, name := range res.Names {
				fmt.Printf("%-16s %12.6f\n", name, b.SimulationBeta[j])
			}
			printInterval("bias-corrected", res.Names, *b.SimulationCorrected)
		}
		if b.Jackknife != nil {
			printInterval("jackknife", res.Names, *b.Jackknife)
		}
	}

	if len(res.ShortRun) > 0 {
		fmt.Println()
		fmt.Println("Per-unit short-run regressions:")
		for _, row := range res.ShortRun {
			fmt.Printf("unit %s (R²=%.4f)\n", row.Unit, row.R2)
			fmt.Printf("  %-12s %12s %12s %10s %10s\n", "term", "coef", "std.err", "t", "p")
			for j, name := range row.Names {
				fmt.Printf("  %-12s %12.6f %12.6f %10.4f %10.4f\n",
					name, row.Coeffs[j], row.StdErrs[j], row.TStats[j], row.PValues[j])
			}
		}
	}
}

func printInterval(label string, names []string, ci xtpb.Interval) {
	fmt.Printf("%s:\n", label)
	for j, name := range names {
		fmt.Printf("%-16s [%12.6f, %12.6f]\n", name, ci.Lower[j], ci.Upper[j])
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "xtpb:", err)
	os.Exit(1)
}
