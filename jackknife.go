package xtpb

// jackknifeEstimate computes the half-panel jackknife corrected coefficient
// vector from the already-computed full-sample estimate:
//
//	β_jk = β − (1/3)·((β_first + β_second)/2 − β)
//
// which removes the leading O(1/T) bias term given the documented half
// split.
func jackknifeEstimate(p *Panel, lags int, bfull []float64) ([]float64, error) {
	bl, _, err := estimate(p, lags, halfFirst)
	if err != nil {
		return nil, err
	}
	br, _, err := estimate(p, lags, halfSecond)
	if err != nil {
		return nil, err
	}
	return combineJackknife(bfull, bl, br), nil
}

// combineJackknife applies the half-panel recombination rule componentwise.
func combineJackknife(bfull, bl, br []float64) []float64 {
	out := make([]float64, len(bfull))
	for j := range bfull {
		out[j] = bfull[j] - jackknifeKappa*((bl[j]+br[j])/2-bfull[j])
	}
	return out
}
