package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopower/domain/power"
	"gopower/internal/errors"
)

func TestExperimentSizeClickThrough(t *testing.T) {
	n, err := ExperimentSize(0.10, 0.12, 0.05, 0.20)
	require.NoError(t, err)
	assert.Equal(t, 2863, n)
}

func TestSolveSampleSizeDetail(t *testing.T) {
	res, err := SolveSampleSize(power.ProportionPair{Null: 0.10, Alt: 0.12}, power.DefaultErrorRates)
	require.NoError(t, err)

	assert.InDelta(t, 2862.643, res.Exact, 1e-2)
	assert.InDelta(t, 1.644854, res.ZAlpha, 1e-6)
	assert.InDelta(t, -0.841621, res.ZBeta, 1e-6)
	assert.InDelta(t, math.Sqrt(0.18), res.SDNull, 1e-12)
	assert.GreaterOrEqual(t, res.Achieved, 0.8)
}

func TestSolverAndEstimatorAgree(t *testing.T) {
	pairs := []power.ProportionPair{
		{Null: 0.10, Alt: 0.12},
		{Null: 0.02, Alt: 0.025},
		{Null: 0.30, Alt: 0.40},
		{Null: 0.50, Alt: 0.51},
		{Null: 0.85, Alt: 0.90},
	}
	rates := []power.ErrorRates{
		{Alpha: 0.05, Beta: 0.20},
		{Alpha: 0.01, Beta: 0.10},
		{Alpha: 0.10, Beta: 0.05},
		{Alpha: 0.25, Beta: 0.40},
	}

	for _, pair := range pairs {
		for _, r := range rates {
			n, err := ExperimentSize(pair.Null, pair.Alt, r.Alpha, r.Beta)
			require.NoError(t, err)
			require.GreaterOrEqual(t, n, 1)

			got, err := Power(pair.Null, pair.Alt, n, r.Alpha)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, got, r.Power()-1e-6, "pair=%+v rates=%+v n=%d", pair, r, n)

			if n > 1 {
				prev, err := Power(pair.Null, pair.Alt, n-1, r.Alpha)
				require.NoError(t, err)
				assert.Less(t, prev, r.Power(), "n-1 should fall short: pair=%+v rates=%+v", pair, r)
			}
		}
	}
}

func TestExperimentSizeLooseRatesNeedOneObservation(t *testing.T) {
	n, err := ExperimentSize(0.10, 0.50, 0.6, 0.6)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestExperimentSizeBeyondIntRange(t *testing.T) {
	n, err := ExperimentSize(0.5, 0.5+1e-9, 0.05, 0.20)
	require.NoError(t, err)
	assert.Greater(t, n, int(1e18))

	for _, diff := range []float64{1e-10, 1e-12} {
		_, err := ExperimentSize(0.5, 0.5+diff, 0.05, 0.20)
		require.Error(t, err, "diff %g", diff)
		assert.True(t, errors.IsNumericDegeneracy(err), "diff %g", diff)
	}
}

func TestExperimentSizeRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name                     string
		pNull, pAlt, alpha, beta float64
		degenerate               bool
	}{
		{"decrease", 0.12, 0.10, 0.05, 0.2, false},
		{"equal", 0.10, 0.10, 0.05, 0.2, true},
		{"alpha zero", 0.10, 0.12, 0, 0.2, false},
		{"beta one", 0.10, 0.12, 0.05, 1, false},
		{"negative p_null", -0.1, 0.12, 0.05, 0.2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExperimentSize(tt.pNull, tt.pAlt, tt.alpha, tt.beta)
			require.Error(t, err)
			assert.True(t, errors.IsInvalidInput(err), "got %v", err)
			assert.Equal(t, tt.degenerate, errors.IsNumericDegeneracy(err))
		})
	}
}
