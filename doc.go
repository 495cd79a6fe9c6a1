// Package xtpb estimates a single long-run (cointegrating) coefficient
// vector shared across the units of a panel using the pooled Bewley
// approach: each unit contributes an instrumented-projection moment
// condition that partials out its own short-run dynamics and intercept, and
// the conditions are pooled into one set of normal equations.
//
// Alongside the point estimate the package provides the asymptotic sandwich
// covariance, a half-panel jackknife bias correction, a simulation-based
// bias correction, and studentized (percentile-t) bootstrap confidence
// intervals built from parametric resampling of the fitted short-run
// dynamics. Bootstrap replications run on a worker pool but draw from
// per-replication sub-streams, so results are bit-identical for a fixed
// seed regardless of parallelism.
package xtpb
