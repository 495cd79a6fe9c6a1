package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/timbulwidodostp/xtpb"
)

// fileConfig mirrors the estimation options in YAML form. Zero values mean
// "use the default".
type fileConfig struct {
	LagOrder          int     `yaml:"lag_order"`
	BiasCorrection    string  `yaml:"bias_correction"`
	BootstrapCI       bool    `yaml:"bootstrap_ci"`
	BootstrapReps     int     `yaml:"bootstrap_reps"`
	ResidualMode      string  `yaml:"residual_mode"`
	RegressorDynamics string  `yaml:"regressor_dynamics"`
	RegressorLagOrder int     `yaml:"regressor_lag_order"`
	ConfidenceLevel   float64 `yaml:"confidence_level"`
	RandomSeed        int64   `yaml:"random_seed"`
	Workers           int     `yaml:"workers"`
	UnitDiagnostics   bool    `yaml:"unit_diagnostics"`
}

// loadConfig reads a YAML options file and folds it over the defaults.
func loadConfig(path string) (xtpb.Options, error) {
	opts := xtpb.DefaultOptions()

	b, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("read config: %w", err)
	}
	var c fileConfig
	if err := yaml.Unmarshal(b, &c); err != nil {
		return opts, fmt.Errorf("unmarshal config: %w", err)
	}

	if c.LagOrder != 0 {
		opts.Lags = c.LagOrder
	}
	if c.BiasCorrection != "" {
		bc, err := parseBiasCorrection(c.BiasCorrection)
		if err != nil {
			return opts, err
		}
		opts.BiasCorrection = bc
	}
	opts.BootstrapCI = c.BootstrapCI
	if c.BootstrapReps != 0 {
		opts.BootstrapReps = c.BootstrapReps
	}
	if c.ResidualMode != "" {
		rm, err := parseResidualMode(c.ResidualMode)
		if err != nil {
			return opts, err
		}
		opts.ResidualMode = rm
	}
	if c.RegressorDynamics != "" {
		rd, err := parseRegressorDynamics(c.RegressorDynamics)
		if err != nil {
			return opts, err
		}
		opts.RegressorDynamics = rd
	}
	if c.RegressorLagOrder != 0 {
		opts.RegressorLags = c.RegressorLagOrder
	}
	if c.ConfidenceLevel != 0 {
		opts.ConfidenceLevel = c.ConfidenceLevel
	}
	if c.RandomSeed != 0 {
		opts.Seed = c.RandomSeed
	}
	if c.Workers != 0 {
		opts.Workers = c.Workers
	}
	opts.UnitDiagnostics = c.UnitDiagnostics
	return opts, nil
}

func parseBiasCorrection(s string) (xtpb.BiasCorrection, error) {
	switch s {
	case "none":
		return xtpb.BiasNone, nil
	case "jackknife":
		return xtpb.BiasJackknife, nil
	case "bootstrap":
		return xtpb.BiasBootstrap, nil
	}
	return 0, fmt.Errorf("bias_correction must be none, jackknife, or bootstrap; got %q", s)
}

func parseResidualMode(s string) (xtpb.ResidualMode, error) {
	switch s {
	case "independent":
		return xtpb.ResidualIndependent, nil
	case "cross_sectional_linked":
		return xtpb.ResidualCrossLinked, nil
	}
	return 0, fmt.Errorf("residual_mode must be independent or cross_sectional_linked; got %q", s)
}

func parseRegressorDynamics(s string) (xtpb.RegressorDynamics, error) {
	switch s {
	case "fixed":
		return xtpb.DynamicsFixed, nil
	case "var_x":
		return xtpb.DynamicsVARX, nil
	case "var_xy":
		return xtpb.DynamicsVARXY, nil
	}
	return 0, fmt.Errorf("regressor_dynamics must be fixed, var_x, or var_xy; got %q", s)
}
