package xtpb

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// unitShortRun holds one unit's fitted short-run dynamics: the
// error-correction coefficient row g, its residual sequence aligned to the
// unit's original time index (first p periods zero, no lag available), and
// — when the regressor dynamics model requires it — the VAR-in-differences
// coefficients and residuals for the regressors.
type unitShortRun struct {
	g     []float64
	resid []float64 // length T

	se    []float64
	tstat []float64
	pval  []float64
	r2    float64

	gx     *mat.Dense // mx × k coefficient matrix, nil under fixed dynamics
	xresid *mat.Dense // T × k, first px+1 rows zero, nil under fixed dynamics
}

// shortRunFit is the immutable product of one short-run estimation pass on
// the real data; the bootstrap reuses it unchanged across all replications.
type shortRunFit struct {
	p     int
	px    int
	mode  RegressorDynamics
	beta  []float64
	units []*unitShortRun
}

// ecmColumns is the ECM design width for lag order p and k regressors:
// intercept, lagged long-run gap, Δx lags 0..p-1, Δy lags 1..p-1.
func ecmColumns(p, k int) int { return 2 + p*k + (p - 1) }

// fillECMRow writes the ECM regressors for local period t (0-based, t >= p)
// into dst using the supplied y/x paths and long-run coefficient beta.
// Synthetic regeneration evaluates the identical row on its own paths, so
// the layout here is the single source of truth for the g ordering.
func fillECMRow(dst []float64, y []float64, x mat.Matrix, beta []float64, t, p, k int) {
	gap := y[t-1]
	for j := 0; j < k; j++ {
		gap -= beta[j] * x.At(t-1, j)
	}
	dst[0] = 1
	dst[1] = gap
	c := 2
	for lag := 0; lag < p; lag++ {
		for j := 0; j < k; j++ {
			dst[c] = x.At(t-lag, j) - x.At(t-lag-1, j)
			c++
		}
	}
	for lag := 1; lag < p; lag++ {
		dst[c] = y[t-lag] - y[t-lag-1]
		c++
	}
}

// shortRunNames labels the ECM coefficient row for diagnostic output.
func shortRunNames(names []string, p int) []string {
	out := []string{"const", "ec"}
	for lag := 0; lag < p; lag++ {
		for _, nm := range names {
			if lag == 0 {
				out = append(out, "D."+nm)
			} else {
				out = append(out, fmt.Sprintf("L%dD.%s", lag, nm))
			}
		}
	}
	for lag := 1; lag < p; lag++ {
		out = append(out, fmt.Sprintf("L%dD.y", lag))
	}
	return out
}

// fitShortRun estimates each unit's error-correction regression at the
// given long-run coefficient and, unless the dynamics model is fixed, the
// companion regressor VAR in first differences at lag px.
func fitShortRun(panel *Panel, p, px int, beta []float64, mode RegressorDynamics) (*shortRunFit, error) {
	fit := &shortRunFit{
		p:     p,
		px:    px,
		mode:  mode,
		beta:  append([]float64(nil), beta...),
		units: make([]*unitShortRun, panel.N()),
	}
	for i, u := range panel.Units {
		usr, err := fitUnitECM(u, p, panel.K, beta)
		if err != nil {
			return nil, err
		}
		if mode != DynamicsFixed {
			if err := fitUnitXVAR(u, usr, px, panel.K, mode); err != nil {
				return nil, err
			}
		}
		fit.units[i] = usr
	}
	return fit, nil
}

// fitUnitECM runs the unit's Δy regression by ordinary least squares via
// normal equations and aligns the residuals back to the original index.
func fitUnitECM(u *Unit, p, k int, beta []float64) (*unitShortRun, error) {
	T := u.NumObs()
	n := T - p
	m := ecmColumns(p, k)

	H := mat.NewDense(n, m, nil)
	dy := mat.NewVecDense(n, nil)
	row := make([]float64, m)
	for r := 0; r < n; r++ {
		t := r + p
		fillECMRow(row, u.Y, u.X, beta, t, p, k)
		H.SetRow(r, row)
		dy.SetVec(r, u.Y[t]-u.Y[t-1])
	}

	var hth, hthInv mat.Dense
	hth.Mul(H.T(), H)
	if err := hthInv.Inverse(&hth); err != nil {
		return nil, &SingularMatrixError{Unit: u.ID, Stage: "short-run regression", err: err}
	}
	var hty, g mat.VecDense
	hty.MulVec(H.T(), dy)
	g.MulVec(&hthInv, &hty)

	usr := &unitShortRun{
		g:     make([]float64, m),
		resid: make([]float64, T),
	}
	for j := 0; j < m; j++ {
		usr.g[j] = g.AtVec(j)
	}

	rss := 0.0
	dyRaw := make([]float64, n)
	for r := 0; r < n; r++ {
		fitted := 0.0
		for j := 0; j < m; j++ {
			fitted += H.At(r, j) * usr.g[j]
		}
		e := dy.AtVec(r) - fitted
		usr.resid[r+p] = e
		rss += e * e
		dyRaw[r] = dy.AtVec(r)
	}

	// Per-unit inference for the diagnostic table.
	usr.se = make([]float64, m)
	usr.tstat = make([]float64, m)
	usr.pval = make([]float64, m)
	dof := n - m
	dyMean := stat.Mean(dyRaw, nil)
	tss := 0.0
	for _, v := range dyRaw {
		tss += (v - dyMean) * (v - dyMean)
	}
	if tss > 0 {
		usr.r2 = 1 - rss/tss
	}
	if dof > 0 {
		s2 := rss / float64(dof)
		tdist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(dof)}
		for j := 0; j < m; j++ {
			usr.se[j] = math.Sqrt(s2 * hthInv.At(j, j))
			if usr.se[j] > 0 {
				usr.tstat[j] = usr.g[j] / usr.se[j]
				usr.pval[j] = 2 * (1 - tdist.CDF(math.Abs(usr.tstat[j])))
			} else {
				usr.tstat[j] = math.NaN()
				usr.pval[j] = math.NaN()
			}
		}
	} else {
		for j := 0; j < m; j++ {
			usr.se[j] = math.NaN()
			usr.tstat[j] = math.NaN()
			usr.pval[j] = math.NaN()
		}
	}
	return usr, nil
}

// xvarColumns is the regressor-VAR design width: intercept, Δx lags
// 1..px, and under var_xy additionally Δy lags 1..px.
func xvarColumns(px, k int, mode RegressorDynamics) int {
	m := 1 + px*k
	if mode == DynamicsVARXY {
		m += px
	}
	return m
}

// fillXVARRow writes the regressor-VAR design row for local period t
// (t >= px+1) from the supplied paths.
func fillXVARRow(dst []float64, y []float64, x mat.Matrix, t, px, k int, mode RegressorDynamics) {
	dst[0] = 1
	c := 1
	for lag := 1; lag <= px; lag++ {
		for j := 0; j < k; j++ {
			dst[c] = x.At(t-lag, j) - x.At(t-lag-1, j)
			c++
		}
	}
	if mode == DynamicsVARXY {
		for lag := 1; lag <= px; lag++ {
			dst[c] = y[t-lag] - y[t-lag-1]
			c++
		}
	}
}

// fitUnitXVAR fits the VAR in first differences for the unit's regressors,
// one OLS system with k responses, and stores its coefficients and aligned
// residuals on usr.
func fitUnitXVAR(u *Unit, usr *unitShortRun, px, k int, mode RegressorDynamics) error {
	T := u.NumObs()
	n := T - px - 1 // Δx_{t-px} needs levels back to t-px-1
	m := xvarColumns(px, k, mode)
	if n < 1 {
		return &InsufficientDataError{Unit: u.ID, Obs: T, Min: px + 2}
	}

	H := mat.NewDense(n, m, nil)
	DX := mat.NewDense(n, k, nil)
	row := make([]float64, m)
	for r := 0; r < n; r++ {
		t := r + px + 1
		fillXVARRow(row, u.Y, u.X, t, px, k, mode)
		H.SetRow(r, row)
		for j := 0; j < k; j++ {
			DX.Set(r, j, u.X.At(t, j)-u.X.At(t-1, j))
		}
	}

	var hth, hthInv mat.Dense
	hth.Mul(H.T(), H)
	if err := hthInv.Inverse(&hth); err != nil {
		return &SingularMatrixError{Unit: u.ID, Stage: "regressor VAR", err: err}
	}
	var htx mat.Dense
	htx.Mul(H.T(), DX)
	gx := mat.NewDense(m, k, nil)
	gx.Mul(&hthInv, &htx)

	xresid := mat.NewDense(T, k, nil)
	for r := 0; r < n; r++ {
		t := r + px + 1
		for j := 0; j < k; j++ {
			fitted := 0.0
			for c := 0; c < m; c++ {
				fitted += H.At(r, c) * gx.At(c, j)
			}
			xresid.Set(t, j, DX.At(r, j)-fitted)
		}
	}

	usr.gx = gx
	usr.xresid = xresid
	return nil
}
