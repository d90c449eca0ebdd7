package simulation

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopower/domain/power"
	"gopower/internal"
	"gopower/internal/errors"
)

var clickThrough = power.Design{
	Pair:  power.ProportionPair{Null: 0.10, Alt: 0.12},
	N:     2863,
	Alpha: 0.05,
}

func quietLogger() *internal.Logger {
	return internal.NewLogger(internal.LogLevelError)
}

func TestRunApproximatesAnalyticPower(t *testing.T) {
	runner := NewRunner(Config{Trials: 4000, Workers: 4, Seed: 42}, quietLogger())

	res, err := runner.Run(context.Background(), clickThrough)
	require.NoError(t, err)

	assert.Equal(t, 4000, res.Trials)
	assert.InDelta(t, 0.80, res.AnalyticPower, 1e-3)
	assert.InDelta(t, res.AnalyticPower, res.EmpiricalPower, 0.03)
	assert.Less(t, res.CILower, res.EmpiricalPower)
	assert.Greater(t, res.CIUpper, res.EmpiricalPower)
	assert.Less(t, res.CIUpper-res.CILower, 0.03)
	assert.Greater(t, res.BatchStdDev, 0.0)

	_, err = uuid.Parse(res.RunID)
	assert.NoError(t, err)
}

func TestRunIsDeterministicForSeed(t *testing.T) {
	cfg := Config{Trials: 300, Workers: 3, Seed: 7}

	first, err := NewRunner(cfg, quietLogger()).Run(context.Background(), clickThrough)
	require.NoError(t, err)

	second, err := NewRunner(cfg, quietLogger()).Run(context.Background(), clickThrough)
	require.NoError(t, err)

	assert.Equal(t, first.Rejections, second.Rejections)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestRunFewerTrialsThanBatches(t *testing.T) {
	res, err := NewRunner(Config{Trials: 3, Workers: 8, Seed: 1}, quietLogger()).Run(context.Background(), clickThrough)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Trials)
	assert.LessOrEqual(t, res.Rejections, 3)
}

func TestRunRejectsInvalidDesign(t *testing.T) {
	runner := NewRunner(DefaultConfig(), quietLogger())

	bad := clickThrough
	bad.N = 0
	_, err := runner.Run(context.Background(), bad)
	assert.True(t, errors.IsInvalidInput(err))

	_, err = NewRunner(Config{Trials: 0, Workers: 1}, quietLogger()).Run(context.Background(), clickThrough)
	assert.True(t, errors.IsInvalidInput(err))
}

func TestRunHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(Config{Trials: 1000, Workers: 2, Seed: 1}, quietLogger()).Run(ctx, clickThrough)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPlanSplitsTrialsEvenly(t *testing.T) {
	r := NewRunner(Config{Trials: 10, Workers: 1}, quietLogger())
	batches := r.plan()

	require.Len(t, batches, 4)
	sum := 0
	for _, b := range batches {
		sum += b.trials
	}
	assert.Equal(t, 10, sum)
	assert.Equal(t, []int{3, 3, 2, 2}, []int{batches[0].trials, batches[1].trials, batches[2].trials, batches[3].trials})
}
