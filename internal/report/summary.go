package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"gopower/domain/power"
)

// Summary describes an experiment design in markdown: the solved sample
// size, a power table, and an optional Monte Carlo check.
type Summary struct {
	Solved     power.SampleSizeResult
	Curve      []power.CurvePoint
	Simulation *power.SimulationResult
}

// Markdown renders the summary as a markdown document
func (s Summary) Markdown() string {
	var b strings.Builder
	pair, rates := s.Solved.Pair, s.Solved.Rates

	fmt.Fprintf(&b, "# Experiment size\n\n")
	fmt.Fprintf(&b, "Detecting an increase from **%.2f%%** to **%.2f%%** (difference %.2f points) ",
		pair.Null*100, pair.Alt*100, pair.Difference()*100)
	fmt.Fprintf(&b, "with alpha = %g and power = %g requires **%d observations per group**.\n\n",
		rates.Alpha, rates.Power(), s.Solved.N)

	b.WriteString("| quantity | value |\n|---|---|\n")
	fmt.Fprintf(&b, "| z (1-alpha) | %.4f |\n", s.Solved.ZAlpha)
	fmt.Fprintf(&b, "| z (beta) | %.4f |\n", s.Solved.ZBeta)
	fmt.Fprintf(&b, "| sd null | %.4f |\n", s.Solved.SDNull)
	fmt.Fprintf(&b, "| sd alt | %.4f |\n", s.Solved.SDAlt)
	fmt.Fprintf(&b, "| exact n | %.2f |\n", s.Solved.Exact)
	fmt.Fprintf(&b, "| achieved power | %.4f |\n\n", s.Solved.Achieved)

	if len(s.Curve) > 0 {
		b.WriteString("## Power by sample size\n\n| n per group | power |\n|---:|---:|\n")
		for _, pt := range s.Curve {
			fmt.Fprintf(&b, "| %d | %.4f |\n", pt.N, pt.Power)
		}
		b.WriteString("\n")
	}

	if sim := s.Simulation; sim != nil {
		b.WriteString("## Monte Carlo check\n\n")
		fmt.Fprintf(&b, "Run `%s`: %d of %d simulated experiments rejected H0 ", sim.RunID, sim.Rejections, sim.Trials)
		fmt.Fprintf(&b, "(empirical power %.4f, 95%% interval [%.4f, %.4f], analytic %.4f).\n",
			sim.EmpiricalPower, sim.CILower, sim.CIUpper, sim.AnalyticPower)
		if !sim.Covers() {
			b.WriteString("\n> The analytic power falls outside the simulated interval.\n")
		}
	}

	return b.String()
}

// HTML renders the summary markdown to an HTML fragment
func (s Summary) HTML() []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	r := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(s.Markdown()), p, r)
}
