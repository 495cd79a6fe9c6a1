package xtpb

// Data-generating processes shared by the tests. All of them build units
// whose regressors are driftless random walks, so the levels carry the
// stochastic trend a cointegration estimator expects.

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// genExactUnit generates a unit whose dependent variable satisfies
// y_t = beta·x_t + gamma·Δx_t exactly. The deviation from the long-run
// relation lies inside the short-run block the annihilator removes, so the
// pooled estimator must recover beta to floating-point accuracy.
func genExactUnit(id string, T int, beta, gamma float64, rng *rand.Rand) *Unit {
	x := make([]float64, T)
	y := make([]float64, T)
	x[0] = 10 + rng.NormFloat64()
	y[0] = beta * x[0]
	for t := 1; t < T; t++ {
		x[t] = x[t-1] + rng.NormFloat64()
		y[t] = beta*x[t] + gamma*(x[t]-x[t-1])
	}
	return rawUnit(id, y, x)
}

// genExactUnit2 is the two-regressor analogue of genExactUnit.
func genExactUnit2(id string, T int, beta, gamma [2]float64, rng *rand.Rand) *Unit {
	x1 := make([]float64, T)
	x2 := make([]float64, T)
	y := make([]float64, T)
	x1[0] = 5 + rng.NormFloat64()
	x2[0] = -3 + rng.NormFloat64()
	y[0] = beta[0]*x1[0] + beta[1]*x2[0]
	for t := 1; t < T; t++ {
		x1[t] = x1[t-1] + rng.NormFloat64()
		x2[t] = x2[t-1] + rng.NormFloat64()
		y[t] = beta[0]*x1[t] + beta[1]*x2[t] +
			gamma[0]*(x1[t]-x1[t-1]) + gamma[1]*(x2[t]-x2[t-1])
	}
	return rawUnit(id, y, x1, x2)
}

// genECMUnit generates a unit from an error-correction process with
// innovation scale sigma:
//
//	Δy_t = alpha·(y_{t-1} − beta·x_{t-1}) + c·Δx_t + sigma·ε_t
//
// alpha must lie in (−1, 0) for the gap to be stable.
func genECMUnit(id string, T int, beta, alpha, c, sigma float64, rng *rand.Rand) *Unit {
	x := make([]float64, T)
	y := make([]float64, T)
	x[0] = 20 + rng.NormFloat64()
	y[0] = beta*x[0] + sigma*rng.NormFloat64()
	for t := 1; t < T; t++ {
		x[t] = x[t-1] + rng.NormFloat64()
		dy := alpha*(y[t-1]-beta*x[t-1]) + c*(x[t]-x[t-1]) + sigma*rng.NormFloat64()
		y[t] = y[t-1] + dy
	}
	return rawUnit(id, y, x)
}

// testPanel wraps units into a Panel the way BuildPanel would, without the
// column round-trip.
func testPanel(p int, names []string, units ...*Unit) *Panel {
	_, k := units[0].X.Dims()
	panel := &Panel{Units: units, Names: names, K: k, Lags: p}
	for _, u := range units {
		u.srcRows = nil
	}
	return panel
}

// panelThroughColumns rebuilds the panel via BuildPanel so srcRows and
// validation behave exactly as in production.
func panelThroughColumns(p int, names []string, units ...*Unit) (*Panel, error) {
	ids, times, y, x := flattenPanel(units, names, nil)
	return BuildPanel(ids, times, y, x, names, p)
}

// slicedUnit returns a unit holding rows [lo, hi) of u.
func slicedUnit(u *Unit, lo, hi int) *Unit {
	_, k := u.X.Dims()
	s := &Unit{
		ID:    u.ID,
		Times: append([]float64(nil), u.Times[lo:hi]...),
		Y:     append([]float64(nil), u.Y[lo:hi]...),
		X:     mat.NewDense(hi-lo, k, nil),
	}
	for t := lo; t < hi; t++ {
		for j := 0; j < k; j++ {
			s.X.Set(t-lo, j, u.X.At(t, j))
		}
	}
	return s
}
