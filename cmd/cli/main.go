package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"gopower/domain/power"
	"gopower/internal"
	"gopower/internal/analysis"
	"gopower/internal/config"
	"gopower/internal/report"
	"gopower/internal/simulation"
	"gopower/ui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type app struct {
	cfg    *config.Config
	logger *internal.Logger
	asJSON bool
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "gopower",
		Short:         "Power and sample size for two-proportion A/B tests",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// .env is optional
			_ = godotenv.Load()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = internal.NewDefaultLogger()
			return nil
		},
	}
	rootCmd.PersistentFlags().BoolVar(&a.asJSON, "json", false, "Print results as JSON")

	rootCmd.AddCommand(
		newPowerCmd(a),
		newSizeCmd(a),
		newCurveCmd(a),
		newMDECmd(a),
		newSimulateCmd(a),
		newPlotCmd(a),
		newServeCmd(a),
	)
	return rootCmd
}

func (a *app) print(cmd *cobra.Command, v interface{}, text string) error {
	if !a.asJSON {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), text)
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// alphaFlag returns the flag value when set, else the configured default
func (a *app) alphaFlag(cmd *cobra.Command, v float64) float64 {
	if cmd.Flags().Changed("alpha") {
		return v
	}
	return a.cfg.Defaults.Alpha
}

func (a *app) betaFlag(cmd *cobra.Command, v float64) float64 {
	if cmd.Flags().Changed("beta") {
		return v
	}
	return a.cfg.Defaults.Beta
}

func addPairFlags(cmd *cobra.Command, pair *power.ProportionPair) {
	cmd.Flags().Float64Var(&pair.Null, "p-null", 0, "Baseline success rate under the null hypothesis")
	cmd.Flags().Float64Var(&pair.Alt, "p-alt", 0, "Success rate to detect (must exceed p-null)")
	_ = cmd.MarkFlagRequired("p-null")
	_ = cmd.MarkFlagRequired("p-alt")
}

func newPowerCmd(a *app) *cobra.Command {
	var pair power.ProportionPair
	var n int
	var alpha float64

	cmd := &cobra.Command{
		Use:   "power",
		Short: "Compute achieved power for a per-group sample size",
		Long: `Compute the power of a one-sided two-proportion z test.

Example: gopower power --p-null 0.10 --p-alt 0.12 --n 2863`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := analysis.Evaluate(power.Design{Pair: pair, N: n, Alpha: a.alphaFlag(cmd, alpha)})
			if err != nil {
				return err
			}
			return a.print(cmd, res, fmt.Sprintf("power=%.4f beta=%.4f critical=%.6f", res.Power, res.Beta, res.CriticalValue))
		},
	}
	addPairFlags(cmd, &pair)
	cmd.Flags().IntVar(&n, "n", 0, "Observations per group")
	cmd.Flags().Float64Var(&alpha, "alpha", 0.05, "Type-I error rate")
	_ = cmd.MarkFlagRequired("n")
	return cmd
}

func newSizeCmd(a *app) *cobra.Command {
	var pair power.ProportionPair
	var alpha, beta float64

	cmd := &cobra.Command{
		Use:   "size",
		Short: "Compute the minimum sample size per group",
		Long: `Solve for the smallest per-group sample size reaching power 1-beta.

Example: gopower size --p-null 0.10 --p-alt 0.12 --alpha 0.05 --beta 0.2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rates := power.ErrorRates{Alpha: a.alphaFlag(cmd, alpha), Beta: a.betaFlag(cmd, beta)}
			res, err := analysis.SolveSampleSize(pair, rates)
			if err != nil {
				return err
			}
			return a.print(cmd, res, fmt.Sprintf("n=%d per group (exact %.2f, achieved power %.4f)", res.N, res.Exact, res.Achieved))
		},
	}
	addPairFlags(cmd, &pair)
	cmd.Flags().Float64Var(&alpha, "alpha", 0.05, "Type-I error rate")
	cmd.Flags().Float64Var(&beta, "beta", 0.20, "Type-II error rate")
	return cmd
}

func newCurveCmd(a *app) *cobra.Command {
	var pair power.ProportionPair
	var alpha float64
	var minN, maxN, steps int
	var out string

	cmd := &cobra.Command{
		Use:   "curve",
		Short: "Tabulate power over a range of sample sizes",
		Long: `Tabulate power over evenly spaced sample sizes, optionally saving an xlsx workbook.

Example: gopower curve --p-null 0.10 --p-alt 0.12 --min 500 --max 5000 --steps 10 --out curve.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			alpha := a.alphaFlag(cmd, alpha)
			ns, err := analysis.CurveRange(minN, maxN, steps)
			if err != nil {
				return err
			}
			points, err := analysis.PowerCurve(pair, alpha, ns)
			if err != nil {
				return err
			}

			if out != "" {
				var solved *power.SampleSizeResult
				res, err := analysis.SolveSampleSize(pair, power.ErrorRates{Alpha: alpha, Beta: a.cfg.Defaults.Beta})
				if err != nil {
					a.logger.Debug("workbook %s written without sample size summary: %v", out, err)
				} else {
					solved = &res
				}
				if err := report.WriteCurveWorkbook(out, pair, alpha, points, solved); err != nil {
					return err
				}
				a.logger.Info("wrote %s", out)
			}

			text := ""
			for _, pt := range points {
				text += fmt.Sprintf("%8d  %.4f\n", pt.N, pt.Power)
			}
			return a.print(cmd, points, text)
		},
	}
	addPairFlags(cmd, &pair)
	cmd.Flags().Float64Var(&alpha, "alpha", 0.05, "Type-I error rate")
	cmd.Flags().IntVar(&minN, "min", 100, "Smallest per-group size")
	cmd.Flags().IntVar(&maxN, "max", 5000, "Largest per-group size")
	cmd.Flags().IntVar(&steps, "steps", 10, "Number of sample sizes")
	cmd.Flags().StringVar(&out, "out", "", "Optional xlsx output path")
	return cmd
}

func newMDECmd(a *app) *cobra.Command {
	var pNull, alpha, beta float64
	var n int

	cmd := &cobra.Command{
		Use:   "mde",
		Short: "Find the minimum detectable success rate for a fixed sample size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rates := power.ErrorRates{Alpha: a.alphaFlag(cmd, alpha), Beta: a.betaFlag(cmd, beta)}
			pAlt, err := analysis.MinimumDetectableEffect(pNull, n, rates)
			if err != nil {
				return err
			}
			payload := map[string]float64{"p_null": pNull, "p_alt": pAlt, "difference": pAlt - pNull}
			return a.print(cmd, payload, fmt.Sprintf("p_alt=%.5f (difference %.5f)", pAlt, pAlt-pNull))
		},
	}
	cmd.Flags().Float64Var(&pNull, "p-null", 0, "Baseline success rate")
	cmd.Flags().IntVar(&n, "n", 0, "Observations per group")
	cmd.Flags().Float64Var(&alpha, "alpha", 0.05, "Type-I error rate")
	cmd.Flags().Float64Var(&beta, "beta", 0.20, "Type-II error rate")
	_ = cmd.MarkFlagRequired("p-null")
	_ = cmd.MarkFlagRequired("n")
	return cmd
}

func newSimulateCmd(a *app) *cobra.Command {
	var pair power.ProportionPair
	var n, trials int
	var alpha float64
	var seed uint64

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Estimate power by Monte Carlo simulation",
		Long: `Simulate experiments with binomial draws and compare the rejection rate
with the analytic power.

Example: gopower simulate --p-null 0.10 --p-alt 0.12 --n 2863 --trials 5000 --seed 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := simulation.Config{
				Trials:  a.cfg.Simulation.Trials,
				Workers: a.cfg.Simulation.Workers,
				Seed:    a.cfg.Simulation.Seed,
			}
			if cmd.Flags().Changed("trials") {
				cfg.Trials = trials
			}
			if cmd.Flags().Changed("seed") {
				cfg.Seed = seed
			}

			d := power.Design{Pair: pair, N: n, Alpha: a.alphaFlag(cmd, alpha)}
			res, err := simulation.NewRunner(cfg, a.logger).Run(cmd.Context(), d)
			if err != nil {
				return err
			}
			return a.print(cmd, res, fmt.Sprintf("empirical=%.4f [%.4f, %.4f] analytic=%.4f (%d/%d rejected)",
				res.EmpiricalPower, res.CILower, res.CIUpper, res.AnalyticPower, res.Rejections, res.Trials))
		},
	}
	addPairFlags(cmd, &pair)
	cmd.Flags().IntVar(&n, "n", 0, "Observations per group")
	cmd.Flags().Float64Var(&alpha, "alpha", 0.05, "Type-I error rate")
	cmd.Flags().IntVar(&trials, "trials", 2000, "Number of simulated experiments")
	cmd.Flags().Uint64Var(&seed, "seed", 42, "Random seed for deterministic runs")
	_ = cmd.MarkFlagRequired("n")
	return cmd
}

func newPlotCmd(a *app) *cobra.Command {
	var pair power.ProportionPair
	var n int
	var alpha float64
	var out string

	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Render the null/alternative density overlap diagram",
		Long: `Render both sampling distributions with the critical value and shaded
error regions. The format follows the output extension (png, svg, pdf).

Example: gopower plot --p-null 0.10 --p-alt 0.12 --n 1000 --out density.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				if err := os.MkdirAll(a.cfg.Plot.Dir, 0o755); err != nil {
					return err
				}
				out = filepath.Join(a.cfg.Plot.Dir, fmt.Sprintf("density_n%d.png", n))
			}
			d := power.Design{Pair: pair, N: n, Alpha: a.alphaFlag(cmd, alpha)}
			size := report.Size{WidthCm: a.cfg.Plot.WidthCm, HeightCm: a.cfg.Plot.HeightCm}
			if err := report.RenderDensityPlot(d, out, size); err != nil {
				return err
			}
			return a.print(cmd, map[string]string{"path": out}, "wrote "+out)
		},
	}
	addPairFlags(cmd, &pair)
	cmd.Flags().IntVar(&n, "n", 0, "Observations per group")
	cmd.Flags().Float64Var(&alpha, "alpha", 0.05, "Type-I error rate")
	cmd.Flags().StringVar(&out, "out", "", "Output path (default PLOT_DIR/density_n<N>.png)")
	_ = cmd.MarkFlagRequired("n")
	return cmd
}

func newServeCmd(a *app) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the calculators over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}
			return ui.NewServer(a.cfg, a.logger).Start(":" + a.cfg.Server.Port)
		},
	}
	cmd.Flags().StringVar(&port, "port", "8080", "Listen port (overrides PORT)")
	return cmd
}
