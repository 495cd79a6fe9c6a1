package xtpb

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// unitDesign holds everything the pooled moment condition needs from one
// unit on one (possibly half-) sample: the demeaned level stacks and the
// annihilator M that partials short-run dynamics and the unit intercept out
// of them. Rebuilt fresh on every estimator call; half-sampling changes
// both its dimension and its content.
type unitDesign struct {
	Xt *mat.Dense    // (T-p) × k demeaned current regressor levels
	yt *mat.VecDense // (T-p) demeaned dependent levels
	M  *mat.Dense    // (T-p) × (T-p) symmetric idempotent projection
}

// buildDesign constructs the unit's design on the selected half-sample.
//
// Effective rows run t = p..T-1 within the selected span. Per row the long
// instrument block stacks [x_t, y_{t-1}, Δy_{t-1..t-p+1}, Δx_t..Δx_{t-p+1}]
// and the short-run block stacks [Δy_t..Δy_{t-p+1}, Δx_t..Δx_{t-p+1}]; all
// blocks are demeaned over the effective rows, which removes the unit
// intercept. The annihilator is
//
//	M = P - P·D·(D'PD)⁻¹·D'P,  P = Z(Z'Z)⁻¹Z'.
//
// Inversion failures surface as SingularMatrixError; they are not recovered
// because the pooled estimator needs every unit's contribution.
func buildDesign(u *Unit, p int, h halfSample) (*unitDesign, error) {
	y, x, T := u.span(h)
	_, k := u.X.Dims()
	n := T - p
	if n < 1 {
		return nil, &InsufficientDataError{Unit: u.ID, Obs: T, Min: p + 1}
	}

	zc := k + 1 + (p - 1) + p*k // x_t, y_{t-1}, lagged Δy, Δx lags 0..p-1
	dc := p + p*k               // Δy lags 0..p-1, Δx lags 0..p-1

	Xt := mat.NewDense(n, k, nil)
	ytRaw := make([]float64, n)
	Z := mat.NewDense(n, zc, nil)
	D := mat.NewDense(n, dc, nil)

	for r := 0; r < n; r++ {
		t := r + p
		ytRaw[r] = y[t]
		for j := 0; j < k; j++ {
			Xt.Set(r, j, x.At(t, j))
		}

		c := 0
		for j := 0; j < k; j++ {
			Z.Set(r, c, x.At(t, j))
			c++
		}
		Z.Set(r, c, y[t-1])
		c++
		for lag := 1; lag < p; lag++ {
			Z.Set(r, c, y[t-lag]-y[t-lag-1])
			c++
		}
		for lag := 0; lag < p; lag++ {
			for j := 0; j < k; j++ {
				Z.Set(r, c, x.At(t-lag, j)-x.At(t-lag-1, j))
				c++
			}
		}

		c = 0
		for lag := 0; lag < p; lag++ {
			D.Set(r, c, y[t-lag]-y[t-lag-1])
			c++
		}
		for lag := 0; lag < p; lag++ {
			for j := 0; j < k; j++ {
				D.Set(r, c, x.At(t-lag, j)-x.At(t-lag-1, j))
				c++
			}
		}
	}

	demeanColumns(Xt)
	demeanColumns(Z)
	demeanColumns(D)
	yMean := stat.Mean(ytRaw, nil)
	yt := mat.NewVecDense(n, nil)
	for r := 0; r < n; r++ {
		yt.SetVec(r, ytRaw[r]-yMean)
	}

	// P = Z (Z'Z)⁻¹ Z'
	var ztz, ztzInv mat.Dense
	ztz.Mul(Z.T(), Z)
	if err := ztzInv.Inverse(&ztz); err != nil {
		return nil, &SingularMatrixError{Unit: u.ID, Stage: "long-block inner product", err: err}
	}
	var zInv, P mat.Dense
	zInv.Mul(Z, &ztzInv)
	P.Mul(&zInv, Z.T())

	// M = P - PD (D'PD)⁻¹ D'P
	var PD, G, GInv mat.Dense
	PD.Mul(&P, D)
	G.Mul(D.T(), &PD)
	if err := GInv.Inverse(&G); err != nil {
		return nil, &SingularMatrixError{Unit: u.ID, Stage: "short-run block", err: err}
	}
	var PDG, Q mat.Dense
	PDG.Mul(&PD, &GInv)
	Q.Mul(&PDG, PD.T())

	M := mat.NewDense(n, n, nil)
	M.Sub(&P, &Q)

	return &unitDesign{Xt: Xt, yt: yt, M: M}, nil
}

// demeanColumns subtracts each column's mean in place.
func demeanColumns(m *mat.Dense) {
	rows, cols := m.Dims()
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, m)
		mu := stat.Mean(col, nil)
		for r := 0; r < rows; r++ {
			m.Set(r, j, col[r]-mu)
		}
	}
}
