package xtpb

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSingularPanelReportsUnitAndStage(t *testing.T) {
	// A constant regressor demeans to a zero column, so the long instrument
	// block cannot be inverted.
	y := []float64{1, 2.2, 2.9, 4.1, 5, 6.3, 6.9, 8.2}
	x := []float64{3, 3, 3, 3, 3, 3, 3, 3}
	panel := testPanel(1, []string{"x1"}, rawUnit("flat", y, x))

	_, _, err := estimate(panel, 1, halfFull)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrSingular)

	var sme *SingularMatrixError
	require.ErrorAs(t, err, &sme)
	require.Equal(t, "flat", sme.Unit)
	require.Contains(t, err.Error(), "flat")
	require.NotNil(t, errors.Unwrap(sme))
}

func TestErrorMessages(t *testing.T) {
	cfg := &ConfigError{Option: "lag_order", Value: "0", Reason: "must be at least 1"}
	require.Contains(t, cfg.Error(), "lag_order=0")

	ide := &InsufficientDataError{Unit: "u7", Obs: 2, Min: 4}
	require.Contains(t, ide.Error(), "u7")
	require.Contains(t, ide.Error(), "need at least 4")

	sme := &SingularMatrixError{Stage: "pooled moment", Replication: 12}
	require.Contains(t, sme.Error(), "pooled moment")
	require.Contains(t, sme.Error(), "replication 12")
}
