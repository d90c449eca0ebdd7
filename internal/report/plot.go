package report

import (
	"image/color"
	"io"
	"math"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"gopower/domain/power"
	"gopower/internal/analysis"
	"gopower/internal/errors"
)

const densitySamples = 201

var (
	nullColor = color.NRGBA{R: 31, G: 119, B: 180, A: 255}
	altColor  = color.NRGBA{R: 255, G: 127, B: 14, A: 255}
)

// Size is the rendered plot size in centimetres
type Size struct {
	WidthCm  float64
	HeightCm float64
}

// DefaultSize matches the PLOT_WIDTH_CM / PLOT_HEIGHT_CM defaults
var DefaultSize = Size{WidthCm: 16, HeightCm: 10}

// DensityData is the sampled null and alternative densities for one design
type DensityData struct {
	X        []float64
	Null     []float64
	Alt      []float64
	Critical float64
	// Peak is the height of the critical-value marker: max of both densities at Critical
	Peak float64
}

// SampleDensities evaluates both sampling distributions of d on an even grid
// from the null's 1% quantile to the alternative's 99% quantile.
func SampleDensities(d power.Design) (DensityData, error) {
	dists, err := analysis.Distributions(d)
	if err != nil {
		return DensityData{}, err
	}

	low := dists.Null.Quantile(0.01)
	high := dists.Alt.Quantile(0.99)
	step := (high - low) / float64(densitySamples-1)

	data := DensityData{
		X:        make([]float64, densitySamples),
		Null:     make([]float64, densitySamples),
		Alt:      make([]float64, densitySamples),
		Critical: dists.Critical,
		Peak:     math.Max(dists.Null.Prob(dists.Critical), dists.Alt.Prob(dists.Critical)),
	}
	for i := range data.X {
		x := low + step*float64(i)
		data.X[i] = x
		data.Null[i] = dists.Null.Prob(x)
		data.Alt[i] = dists.Alt.Prob(x)
	}
	return data, nil
}

// DensityPlot builds the overlap diagram: both density curves, a dashed
// line at the critical value, the Type-I area under the null right of it
// and the Type-II area under the alternative left of it.
func DensityPlot(d power.Design) (*plot.Plot, error) {
	data, err := SampleDensities(d)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = "Null vs alternative sampling distributions"
	p.X.Label.Text = "difference"
	p.Y.Label.Text = "density"

	typeI, err := shadedArea(data.X, data.Null, func(x float64) bool { return x >= data.Critical }, nullColor)
	if err != nil {
		return nil, err
	}
	typeII, err := shadedArea(data.X, data.Alt, func(x float64) bool { return x <= data.Critical }, altColor)
	if err != nil {
		return nil, err
	}

	nullLine, err := plotter.NewLine(toXYs(data.X, data.Null))
	if err != nil {
		return nil, err
	}
	nullLine.LineStyle.Color = nullColor
	nullLine.LineStyle.Width = vg.Points(1.5)

	altLine, err := plotter.NewLine(toXYs(data.X, data.Alt))
	if err != nil {
		return nil, err
	}
	altLine.LineStyle.Color = altColor
	altLine.LineStyle.Width = vg.Points(1.5)

	critLine, err := plotter.NewLine(plotter.XYs{{X: data.Critical, Y: 0}, {X: data.Critical, Y: data.Peak}})
	if err != nil {
		return nil, err
	}
	critLine.LineStyle.Color = color.Black
	critLine.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}

	p.Add(typeI, typeII, nullLine, altLine, critLine)
	p.Legend.Add("null", nullLine)
	p.Legend.Add("alt", altLine)
	p.Legend.Top = true

	return p, nil
}

// RenderDensityPlot writes the density plot of d to path. The image format
// follows the file extension (png, svg, pdf, ...).
func RenderDensityPlot(d power.Design, path string, size Size) error {
	p, err := DensityPlot(d)
	if err != nil {
		return err
	}
	if err := p.Save(size.width(), size.height(), path); err != nil {
		return errors.RenderError(filepath.Base(path), err)
	}
	return nil
}

// WriteDensityPlot streams the density plot of d to w in format (png, svg, ...)
func WriteDensityPlot(w io.Writer, d power.Design, format string, size Size) error {
	p, err := DensityPlot(d)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(size.width(), size.height(), strings.ToLower(format))
	if err != nil {
		return errors.RenderError("density plot", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return errors.RenderError("density plot", err)
	}
	return nil
}

func (s Size) width() vg.Length {
	if s.WidthCm <= 0 {
		return vg.Length(DefaultSize.WidthCm) * vg.Centimeter
	}
	return vg.Length(s.WidthCm) * vg.Centimeter
}

func (s Size) height() vg.Length {
	if s.HeightCm <= 0 {
		return vg.Length(DefaultSize.HeightCm) * vg.Centimeter
	}
	return vg.Length(s.HeightCm) * vg.Centimeter
}

func toXYs(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	return pts
}

// shadedArea returns a translucent polygon under ys over the x values kept by include
func shadedArea(xs, ys []float64, include func(float64) bool, c color.NRGBA) (*plotter.Polygon, error) {
	var upper plotter.XYs
	for i, x := range xs {
		if include(x) {
			upper = append(upper, plotter.XY{X: x, Y: ys[i]})
		}
	}
	if len(upper) == 0 {
		upper = plotter.XYs{{X: xs[0], Y: 0}}
	}

	ring := make(plotter.XYs, 0, len(upper)+2)
	ring = append(ring, upper...)
	ring = append(ring, plotter.XY{X: upper[len(upper)-1].X, Y: 0}, plotter.XY{X: upper[0].X, Y: 0})

	poly, err := plotter.NewPolygon(ring)
	if err != nil {
		return nil, err
	}
	c.A = 128
	poly.Color = c
	poly.LineStyle.Width = 0
	return poly, nil
}
