package xtpb

import (
	"gonum.org/v1/gonum/stat"
)

// AuxiliarySeries reconstructs the two per-observation columns a caller may
// append to the source dataset: the long-run gap y − β'x, demeaned within
// each unit, and the short-run regression residual (zero over each unit's
// first p periods). Both are returned in the row order of the columns the
// panel was built from. This is a post-hoc pass over the final coefficient
// vector; it does not feed back into estimation.
func AuxiliarySeries(panel *Panel, lags int, beta []float64) (gap, resid []float64, err error) {
	total := 0
	for _, u := range panel.Units {
		total += u.NumObs()
	}
	gap = make([]float64, total)
	resid = make([]float64, total)

	for _, u := range panel.Units {
		T := u.NumObs()
		g := make([]float64, T)
		for t := 0; t < T; t++ {
			v := u.Y[t]
			for j := 0; j < panel.K; j++ {
				v -= beta[j] * u.X.At(t, j)
			}
			g[t] = v
		}
		mu := stat.Mean(g, nil)

		usr, err := fitUnitECM(u, lags, panel.K, beta)
		if err != nil {
			return nil, nil, err
		}
		for t := 0; t < T; t++ {
			gap[u.srcRows[t]] = g[t] - mu
			resid[u.srcRows[t]] = usr.resid[t]
		}
	}
	return gap, resid, nil
}
