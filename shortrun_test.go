package xtpb

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFitUnitECMExact(t *testing.T) {
	// Noise-free error-correction process: the regression must reproduce
	// the generating coefficients and leave (numerically) zero residuals.
	rng := rand.New(rand.NewSource(17))
	const (
		beta  = 1.4
		alpha = -0.5
		c     = 0.3
	)
	u := genECMUnit("a", 60, beta, alpha, c, 0, rng)

	usr, err := fitUnitECM(u, 1, 1, []float64{beta})
	require.NoError(t, err)

	// Row layout: const, ec, D.x1.
	require.InDelta(t, 0.0, usr.g[0], 1e-8)
	require.InDelta(t, alpha, usr.g[1], 1e-8)
	require.InDelta(t, c, usr.g[2], 1e-8)

	require.Len(t, usr.resid, 60)
	require.Zero(t, usr.resid[0], "first p residuals are undefined and zero-filled")
	for i := 1; i < 60; i++ {
		require.InDelta(t, 0, usr.resid[i], 1e-8)
	}
	require.InDelta(t, 1.0, usr.r2, 1e-8)
}

func TestFitUnitECMDiagnostics(t *testing.T) {
	rng := rand.New(rand.NewSource(29))
	u := genECMUnit("a", 80, 1.2, -0.4, 0.2, 0.6, rng)

	usr, err := fitUnitECM(u, 1, 1, []float64{1.2})
	require.NoError(t, err)

	m := ecmColumns(1, 1)
	require.Len(t, usr.g, m)
	require.Len(t, usr.se, m)
	for j := 0; j < m; j++ {
		require.Greater(t, usr.se[j], 0.0)
		require.InDelta(t, usr.g[j]/usr.se[j], usr.tstat[j], 1e-12)
		require.GreaterOrEqual(t, usr.pval[j], 0.0)
		require.LessOrEqual(t, usr.pval[j], 1.0)
	}
	require.Greater(t, usr.r2, 0.0)
	require.Less(t, usr.r2, 1.0)
}

func TestShortRunNames(t *testing.T) {
	names := shortRunNames([]string{"inv", "sav"}, 2)
	require.Equal(t, []string{"const", "ec", "D.inv", "D.sav", "L1D.inv", "L1D.sav", "L1D.y"}, names)
}

func TestFitUnitXVAR(t *testing.T) {
	// Regressor differences follow an AR(1); the companion VAR must recover
	// its coefficients, and the stored residuals must be consistent with
	// the fitted row and aligned to the original index.
	rng := rand.New(rand.NewSource(13))
	const (
		c0  = 0.1
		phi = 0.6
	)
	T := 3000
	x := make([]float64, T)
	y := make([]float64, T)
	x[0] = 1
	dx := 0.0
	for i := 1; i < T; i++ {
		dx = c0 + phi*dx + 0.5*rng.NormFloat64()
		x[i] = x[i-1] + dx
		y[i] = y[i-1] + rng.NormFloat64() // irrelevant under var_x
	}
	u := rawUnit("a", y, x)

	usr := &unitShortRun{}
	err := fitUnitXVAR(u, usr, 1, 1, DynamicsVARX)
	require.NoError(t, err)
	require.NotNil(t, usr.gx)
	require.InDelta(t, c0, usr.gx.At(0, 0), 0.1)
	require.InDelta(t, phi, usr.gx.At(1, 0), 0.1)

	r, k := usr.xresid.Dims()
	require.Equal(t, T, r)
	require.Equal(t, 1, k)
	require.Zero(t, usr.xresid.At(0, 0))
	require.Zero(t, usr.xresid.At(1, 0))
	for i := 2; i < 10; i++ {
		fitted := usr.gx.At(0, 0) + usr.gx.At(1, 0)*(x[i-1]-x[i-2])
		require.InDelta(t, (x[i]-x[i-1])-fitted, usr.xresid.At(i, 0), 1e-10)
	}
}

func TestFitShortRunModes(t *testing.T) {
	rng := rand.New(rand.NewSource(37))
	panel := testPanel(1, []string{"x1"},
		genECMUnit("a", 40, 1.0, -0.5, 0.2, 0.4, rng),
		genECMUnit("b", 40, 1.0, -0.4, 0.1, 0.4, rng),
	)
	beta := []float64{1.0}

	fixed, err := fitShortRun(panel, 1, 1, beta, DynamicsFixed)
	require.NoError(t, err)
	for _, usr := range fixed.units {
		require.Nil(t, usr.gx)
		require.Nil(t, usr.xresid)
	}

	varx, err := fitShortRun(panel, 1, 1, beta, DynamicsVARX)
	require.NoError(t, err)
	for _, usr := range varx.units {
		require.NotNil(t, usr.gx)
		rows, _ := usr.gx.Dims()
		require.Equal(t, xvarColumns(1, 1, DynamicsVARX), rows)
	}

	varxy, err := fitShortRun(panel, 1, 2, beta, DynamicsVARXY)
	require.NoError(t, err)
	for _, usr := range varxy.units {
		rows, _ := usr.gx.Dims()
		require.Equal(t, xvarColumns(2, 1, DynamicsVARXY), rows)
	}
}

func TestShortRunTableOnResult(t *testing.T) {
	rng := rand.New(rand.NewSource(41))
	panel := testPanel(1, []string{"x1"},
		genECMUnit("a", 30, 1.3, -0.5, 0.2, 0.4, rng),
		genECMUnit("b", 30, 1.3, -0.4, 0.1, 0.4, rng),
	)
	opts := DefaultOptions()
	opts.UnitDiagnostics = true
	res, err := Estimate(panel, opts)
	require.NoError(t, err)
	require.Len(t, res.ShortRun, 2)
	require.Equal(t, "a", res.ShortRun[0].Unit)
	require.Equal(t, shortRunNames([]string{"x1"}, 1), res.ShortRun[0].Names)
	require.Len(t, res.ShortRun[0].Coeffs, ecmColumns(1, 1))
}
