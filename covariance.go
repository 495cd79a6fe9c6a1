package xtpb

import (
	"gonum.org/v1/gonum/mat"
)

// jackknifeKappa weights the full/half-sample score combination in the
// jackknife covariance. The asymmetric (1+κ)/−2κ form matches the jackknife
// point estimator's bias-reduction weighting; do not simplify it.
const jackknifeKappa = 1.0 / 3.0

// unitScore computes one unit's score contribution on a half-sample:
// V = M(ỹ − X̃β), W = X̃'MV.
func unitScore(u *Unit, lags int, beta []float64, h halfSample) (*mat.VecDense, error) {
	d, err := buildDesign(u, lags, h)
	if err != nil {
		return nil, err
	}
	n, k := d.Xt.Dims()

	resid := mat.NewVecDense(n, nil)
	for r := 0; r < n; r++ {
		v := d.yt.AtVec(r)
		for j := 0; j < k; j++ {
			v -= d.Xt.At(r, j) * beta[j]
		}
		resid.SetVec(r, v)
	}

	var V, W mat.VecDense
	V.MulVec(d.M, resid)
	W.MulVec(d.Xt.T(), &V)
	return &W, nil
}

// computeOmega builds the plain asymptotic sandwich covariance
// Ω = A⁻¹ Ω_v A⁻¹ / N with Ω_v = (1/N) Σ_i W_i W_i', where A is the moment
// matrix from the matching point-estimator call and β the coefficient the
// scores are evaluated at.
func computeOmega(p *Panel, lags int, beta []float64, A *mat.Dense) (*mat.SymDense, error) {
	scores := make([]*mat.VecDense, p.N())
	for i, u := range p.Units {
		w, err := unitScore(u, lags, beta, halfFull)
		if err != nil {
			return nil, err
		}
		scores[i] = w
	}
	return sandwich(scores, A, p.K, p.N())
}

// computeOmegaJK builds the jackknife-adjusted covariance: each unit's
// score is the κ-weighted combination of its full- and half-sample scores,
// all evaluated at the (jackknife-corrected) coefficient vector, so the
// variance stays internally consistent with the corrected point estimate.
func computeOmegaJK(p *Panel, lags int, beta []float64, A *mat.Dense) (*mat.SymDense, error) {
	scores := make([]*mat.VecDense, p.N())
	for i, u := range p.Units {
		wf, err := unitScore(u, lags, beta, halfFull)
		if err != nil {
			return nil, err
		}
		w1, err := unitScore(u, lags, beta, halfFirst)
		if err != nil {
			return nil, err
		}
		w2, err := unitScore(u, lags, beta, halfSecond)
		if err != nil {
			return nil, err
		}
		w := mat.NewVecDense(p.K, nil)
		for j := 0; j < p.K; j++ {
			w.SetVec(j, (1+jackknifeKappa)*wf.AtVec(j)-2*jackknifeKappa*(w1.AtVec(j)+w2.AtVec(j)))
		}
		scores[i] = w
	}
	return sandwich(scores, A, p.K, p.N())
}

// sandwich assembles A⁻¹ [(1/N) Σ W W'] A⁻¹ / N and symmetrizes the result.
func sandwich(scores []*mat.VecDense, A *mat.Dense, k, n int) (*mat.SymDense, error) {
	omegaV := mat.NewDense(k, k, nil)
	var outer mat.Dense
	for _, w := range scores {
		outer.Mul(w, w.T())
		omegaV.Add(omegaV, &outer)
		outer.Reset()
	}
	omegaV.Scale(1/float64(n), omegaV)

	var aInv mat.Dense
	if err := aInv.Inverse(A); err != nil {
		return nil, &SingularMatrixError{Stage: "pooled moment", err: err}
	}
	var left, full mat.Dense
	left.Mul(&aInv, omegaV)
	full.Mul(&left, &aInv)
	full.Scale(1/float64(n), &full)

	// Force exact symmetry against round-off before handing the matrix out.
	out := mat.NewSymDense(k, nil)
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			out.SetSym(i, j, 0.5*(full.At(i, j)+full.At(j, i)))
		}
	}
	return out, nil
}
