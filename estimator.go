package xtpb

import (
	"gonum.org/v1/gonum/mat"
)

// pooledMoments accumulates the GMM normal equations across units on the
// selected half-sample:
//
//	A = Σ_i X̃_i' M_i X̃_i   (k×k)
//	b = Σ_i X̃_i' M_i ỹ_i   (k)
//
// Units are visited in panel order so the floating-point accumulation is
// deterministic.
func pooledMoments(p *Panel, lags int, h halfSample) (A *mat.Dense, b *mat.VecDense, err error) {
	k := p.K
	A = mat.NewDense(k, k, nil)
	b = mat.NewVecDense(k, nil)

	var xm, contribA mat.Dense
	var contribB mat.VecDense
	for _, u := range p.Units {
		d, err := buildDesign(u, lags, h)
		if err != nil {
			return nil, nil, err
		}
		xm.Mul(d.Xt.T(), d.M)
		contribA.Mul(&xm, d.Xt)
		contribB.MulVec(&xm, d.yt)
		A.Add(A, &contribA)
		b.AddVec(b, &contribB)

		xm.Reset()
		contribA.Reset()
		contribB.Reset()
	}
	return A, b, nil
}

// estimate solves the pooled normal equations for the long-run coefficient
// vector on the given half-sample. It also returns the accumulated A, which
// the covariance estimator reuses.
func estimate(p *Panel, lags int, h halfSample) (beta []float64, A *mat.Dense, err error) {
	A, b, err := pooledMoments(p, lags, h)
	if err != nil {
		return nil, nil, err
	}
	var sol mat.VecDense
	if err := sol.SolveVec(A, b); err != nil {
		return nil, nil, &SingularMatrixError{Stage: "pooled moment", err: err}
	}
	beta = make([]float64, p.K)
	for j := 0; j < p.K; j++ {
		beta[j] = sol.AtVec(j)
	}
	return beta, A, nil
}
