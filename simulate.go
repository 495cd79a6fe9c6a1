package xtpb

import (
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// rademacher draws a ±1 multiplier.
func rademacher(rng *rand.Rand) float64 {
	if rng.Intn(2) == 0 {
		return -1
	}
	return 1
}

// periodSigns draws one Rademacher multiplier per distinct time stamp in
// the panel, visiting stamps in ascending order so the stream consumption
// is reproducible.
func periodSigns(panel *Panel, rng *rand.Rand) map[float64]float64 {
	seen := make(map[float64]struct{})
	stamps := make([]float64, 0)
	for _, u := range panel.Units {
		for _, ts := range u.Times {
			if _, ok := seen[ts]; !ok {
				seen[ts] = struct{}{}
				stamps = append(stamps, ts)
			}
		}
	}
	sort.Float64s(stamps)
	signs := make(map[float64]float64, len(stamps))
	for _, ts := range stamps {
		signs[ts] = rademacher(rng)
	}
	return signs
}

// simulate generates one synthetic panel replicate from the fitted
// short-run dynamics. Shocks are the stored residuals flipped by Rademacher
// multipliers — per unit and period under ResidualIndependent, shared
// across all units within a period under ResidualCrossLinked — and each
// unit's path is regenerated recursively, regressors first and dependent
// variable second within every period, seeded from the unit's true initial
// observations. Under fixed dynamics the true regressor path is reused
// unchanged.
func (f *shortRunFit) simulate(panel *Panel, rmode ResidualMode, rng *rand.Rand) *Panel {
	var signs map[float64]float64
	if rmode == ResidualCrossLinked {
		signs = periodSigns(panel, rng)
	}

	syn := &Panel{
		Units: make([]*Unit, panel.N()),
		Names: panel.Names,
		K:     panel.K,
		Lags:  panel.Lags,
	}
	k := panel.K
	varX := f.mode != DynamicsFixed

	for i, u := range panel.Units {
		usr := f.units[i]
		T := u.NumObs()
		su := u.clone()

		// Resample this unit's shocks. Draw order is fixed: periods
		// ascending, y pool before regressor pool.
		shockY := make([]float64, T)
		var shockX *mat.Dense
		if varX {
			shockX = mat.NewDense(T, k, nil)
		}
		for t := 0; t < T; t++ {
			switch rmode {
			case ResidualCrossLinked:
				s := signs[u.Times[t]]
				shockY[t] = s * usr.resid[t]
				if varX {
					for j := 0; j < k; j++ {
						shockX.Set(t, j, s*usr.xresid.At(t, j))
					}
				}
			default:
				if t >= f.p {
					shockY[t] = rademacher(rng) * usr.resid[t]
				}
				if varX && t >= f.px+1 {
					s := rademacher(rng)
					for j := 0; j < k; j++ {
						shockX.Set(t, j, s*usr.xresid.At(t, j))
					}
				}
			}
		}

		// Regenerate the paths. Early periods keep the true values copied
		// by clone; the regressor step at period t needs only lags of the
		// synthetic Δy, so running it before the y step lets the var_xy
		// feedback act on synthetic rather than observed differences.
		xrow := make([]float64, 0)
		if varX {
			xrow = make([]float64, xvarColumns(f.px, k, f.mode))
		}
		yrow := make([]float64, ecmColumns(f.p, k))
		for t := 1; t < T; t++ {
			if varX && t >= f.px+1 {
				fillXVARRow(xrow, su.Y, su.X, t, f.px, k, f.mode)
				for j := 0; j < k; j++ {
					dx := shockX.At(t, j)
					for c := range xrow {
						dx += xrow[c] * usr.gx.At(c, j)
					}
					su.X.Set(t, j, su.X.At(t-1, j)+dx)
				}
			}
			if t >= f.p {
				fillECMRow(yrow, su.Y, su.X, f.beta, t, f.p, k)
				dy := shockY[t]
				for c := range yrow {
					dy += yrow[c] * usr.g[c]
				}
				su.Y[t] = su.Y[t-1] + dy
			}
		}
		syn.Units[i] = su
	}
	return syn
}
