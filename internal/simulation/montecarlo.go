package simulation

import (
	"context"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/distuv"

	"gopower/domain/power"
	"gopower/internal"
	"gopower/internal/analysis"
	"gopower/internal/errors"
)

const (
	batchesPerWorker = 4
	ciConfidence     = 0.95
	cancelCheckEvery = 256
)

// Config controls a Monte Carlo power run
type Config struct {
	Trials  int
	Workers int
	Seed    uint64
}

// DefaultConfig mirrors the defaults in internal/config
func DefaultConfig() Config {
	return Config{Trials: 2000, Workers: 4, Seed: 42}
}

// Runner estimates power empirically by simulating experiments: each trial
// draws Binomial(n, p_null) and Binomial(n, p_alt) successes and rejects H0
// when the observed difference exceeds the analytic critical value.
type Runner struct {
	cfg    Config
	logger *internal.Logger
}

// NewRunner creates a runner; a nil logger uses the package default
func NewRunner(cfg Config, logger *internal.Logger) *Runner {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Runner{cfg: cfg, logger: logger.With("simulation")}
}

type batch struct {
	index  int
	trials int
}

// Run simulates cfg.Trials experiments for d. Results are deterministic for
// a given seed regardless of scheduling since each batch owns its source.
func (r *Runner) Run(ctx context.Context, d power.Design) (power.SimulationResult, error) {
	if r.cfg.Trials < 1 {
		return power.SimulationResult{}, errors.InvalidInputf("trials must be >= 1, got %d", r.cfg.Trials)
	}

	dists, err := analysis.Distributions(d)
	if err != nil {
		return power.SimulationResult{}, errors.Wrap(err, "simulation")
	}
	analytic, err := analysis.Evaluate(d)
	if err != nil {
		return power.SimulationResult{}, errors.Wrap(err, "simulation")
	}

	runID := uuid.New().String()
	batches := r.plan()
	rejections := make([]int, len(batches))

	r.logger.Debug("run %s: n=%d p_null=%g p_alt=%g trials=%d batches=%d",
		runID, d.N, d.Pair.Null, d.Pair.Alt, r.cfg.Trials, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)
	for _, b := range batches {
		g.Go(func() error {
			count, err := r.simulateBatch(gctx, d, dists.Critical, b)
			if err != nil {
				return err
			}
			rejections[b.index] = count
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.logger.Warn("run %s aborted: %v", runID, err)
		return power.SimulationResult{}, errors.Wrap(err, "simulation cancelled")
	}

	total := 0
	estimates := make([]float64, len(batches))
	for i, b := range batches {
		total += rejections[i]
		estimates[i] = float64(rejections[i]) / float64(b.trials)
	}

	spread := 0.0
	if len(estimates) > 1 {
		if sd, err := stats.StandardDeviationSample(estimates); err == nil {
			spread = sd
		}
	}

	lower, upper := analysis.WilsonInterval(total, r.cfg.Trials, ciConfidence)
	res := power.SimulationResult{
		RunID:          runID,
		Design:         d,
		Trials:         r.cfg.Trials,
		Rejections:     total,
		EmpiricalPower: float64(total) / float64(r.cfg.Trials),
		AnalyticPower:  analytic.Power,
		BatchStdDev:    spread,
		CILower:        lower,
		CIUpper:        upper,
		Seed:           r.cfg.Seed,
	}

	r.logger.Info("run %s: empirical=%.4f analytic=%.4f ci=[%.4f, %.4f]",
		runID, res.EmpiricalPower, res.AnalyticPower, lower, upper)
	return res, nil
}

// plan splits the trials into near-equal batches, larger ones first
func (r *Runner) plan() []batch {
	count := r.cfg.Workers * batchesPerWorker
	if count > r.cfg.Trials {
		count = r.cfg.Trials
	}

	batches := make([]batch, count)
	base, extra := r.cfg.Trials/count, r.cfg.Trials%count
	for i := range batches {
		batches[i] = batch{index: i, trials: base}
		if i < extra {
			batches[i].trials++
		}
	}
	return batches
}

func (r *Runner) simulateBatch(ctx context.Context, d power.Design, critical float64, b batch) (int, error) {
	src := rand.NewPCG(r.cfg.Seed, uint64(b.index))
	n := float64(d.N)
	nullDraws := distuv.Binomial{N: n, P: d.Pair.Null, Src: src}
	altDraws := distuv.Binomial{N: n, P: d.Pair.Alt, Src: src}

	rejected := 0
	for t := 0; t < b.trials; t++ {
		if t%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
		}
		diff := (altDraws.Rand() - nullDraws.Rand()) / n
		if diff > critical {
			rejected++
		}
	}
	return rejected, nil
}
