package xtpb

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestSimulateNoiseFreeReproducesPanel(t *testing.T) {
	// With a noise-free DGP the fitted residuals are numerically zero, so
	// the resampled shocks vanish and the recursion must walk back along
	// the observed path.
	rng := rand.New(rand.NewSource(2))
	const beta = 1.4
	panel := testPanel(1, []string{"x1"},
		genECMUnit("a", 40, beta, -0.5, 0.3, 0, rng),
		genECMUnit("b", 36, beta, -0.4, 0.1, 0, rng),
	)
	fit, err := fitShortRun(panel, 1, 1, []float64{beta}, DynamicsFixed)
	require.NoError(t, err)

	syn := fit.simulate(panel, ResidualIndependent, rand.New(rand.NewSource(99)))
	for i, su := range syn.Units {
		orig := panel.Units[i]
		require.True(t, mat.Equal(su.X, orig.X), "fixed dynamics must reuse the regressor path")
		for tt := range su.Y {
			require.InDelta(t, orig.Y[tt], su.Y[tt], 1e-6)
		}
	}
}

func TestSimulateKeepsInitialObservations(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	panel := testPanel(2, []string{"x1"},
		genECMUnit("a", 30, 1.0, -0.5, 0.2, 0.5, rng),
	)
	beta := []float64{1.0}
	fit, err := fitShortRun(panel, 2, 2, beta, DynamicsVARX)
	require.NoError(t, err)

	syn := fit.simulate(panel, ResidualIndependent, rand.New(rand.NewSource(1)))
	su := syn.Units[0]
	orig := panel.Units[0]

	// y is seeded with the true first p observations, x with the first
	// px+1.
	require.Equal(t, orig.Y[0], su.Y[0])
	require.Equal(t, orig.Y[1], su.Y[1])
	for tt := 0; tt <= 2; tt++ {
		require.Equal(t, orig.X.At(tt, 0), su.X.At(tt, 0))
	}
	// Later periods are regenerated and differ with probability one.
	require.NotEqual(t, orig.Y[29], su.Y[29])
	require.NotEqual(t, orig.X.At(29, 0), su.X.At(29, 0))
}

func TestSimulateCrossLinkedSharesSigns(t *testing.T) {
	// Two units with identical data and time stamps receive identical
	// shocks under cross-sectionally linked resampling, so their synthetic
	// paths coincide exactly.
	rng := rand.New(rand.NewSource(12))
	a := genECMUnit("a", 30, 1.2, -0.5, 0.2, 0.6, rng)
	b := a.clone()
	b.ID = "b"
	panel := testPanel(1, []string{"x1"}, a, b)

	fit, err := fitShortRun(panel, 1, 1, []float64{1.2}, DynamicsFixed)
	require.NoError(t, err)

	syn := fit.simulate(panel, ResidualCrossLinked, rand.New(rand.NewSource(5)))
	require.Equal(t, syn.Units[0].Y, syn.Units[1].Y)

	// Independent resampling breaks the tie with overwhelming probability.
	syn = fit.simulate(panel, ResidualIndependent, rand.New(rand.NewSource(5)))
	require.NotEqual(t, syn.Units[0].Y, syn.Units[1].Y)
}

func TestSimulateReproducibleGivenSeed(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	panel := testPanel(1, []string{"x1"},
		genECMUnit("a", 25, 1.0, -0.5, 0.2, 0.5, rng),
		genECMUnit("b", 25, 1.0, -0.4, 0.1, 0.5, rng),
	)
	fit, err := fitShortRun(panel, 1, 1, []float64{1.0}, DynamicsVARXY)
	require.NoError(t, err)

	s1 := fit.simulate(panel, ResidualIndependent, rand.New(rand.NewSource(77)))
	s2 := fit.simulate(panel, ResidualIndependent, rand.New(rand.NewSource(77)))
	for i := range s1.Units {
		require.Equal(t, s1.Units[i].Y, s2.Units[i].Y)
		require.True(t, mat.Equal(s1.Units[i].X, s2.Units[i].X))
	}

	s3 := fit.simulate(panel, ResidualIndependent, rand.New(rand.NewSource(78)))
	require.NotEqual(t, s1.Units[0].Y, s3.Units[0].Y)
}

func TestSimulateVARXRegeneratesRegressors(t *testing.T) {
	rng := rand.New(rand.NewSource(33))
	panel := testPanel(1, []string{"x1"},
		genECMUnit("a", 40, 1.0, -0.5, 0.2, 0.5, rng),
	)
	fit, err := fitShortRun(panel, 1, 1, []float64{1.0}, DynamicsVARX)
	require.NoError(t, err)

	syn := fit.simulate(panel, ResidualIndependent, rand.New(rand.NewSource(3)))
	require.False(t, mat.Equal(syn.Units[0].X, panel.Units[0].X))
}
