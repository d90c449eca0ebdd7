package ui

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gopower/domain/power"
	"gopower/internal/analysis"
	"gopower/internal/errors"
	"gopower/internal/report"
	"gopower/internal/simulation"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type pairQuery struct {
	PNull float64  `form:"p_null" json:"p_null" binding:"required"`
	PAlt  float64  `form:"p_alt" json:"p_alt" binding:"required"`
	Alpha *float64 `form:"alpha" json:"alpha"`
}

type powerQuery struct {
	pairQuery
	N int `form:"n" json:"n" binding:"required"`
}

type sizeQuery struct {
	pairQuery
	Beta *float64 `form:"beta"`
}

type curveQuery struct {
	pairQuery
	Min    int    `form:"min" binding:"required,min=1"`
	Max    int    `form:"max" binding:"required,gtefield=Min"`
	Steps  int    `form:"steps" binding:"omitempty,min=2,max=1000"`
	Format string `form:"format" binding:"omitempty,oneof=json xlsx"`
}

type mdeQuery struct {
	PNull float64  `form:"p_null" binding:"required"`
	N     int      `form:"n" binding:"required"`
	Alpha *float64 `form:"alpha"`
	Beta  *float64 `form:"beta"`
}

type plotQuery struct {
	powerQuery
	Format string `form:"format" binding:"omitempty,oneof=png svg"`
}

type simulateRequest struct {
	PNull  float64  `json:"p_null" binding:"required"`
	PAlt   float64  `json:"p_alt" binding:"required"`
	N      int      `json:"n" binding:"required"`
	Alpha  *float64 `json:"alpha"`
	Trials int      `json:"trials" binding:"omitempty,min=1,max=200000"`
	Seed   *uint64  `json:"seed"`
}

func (s *Server) alphaOr(v *float64) float64 {
	if v != nil {
		return *v
	}
	return s.cfg.Defaults.Alpha
}

func (s *Server) betaOr(v *float64) float64 {
	if v != nil {
		return *v
	}
	return s.cfg.Defaults.Beta
}

func (q pairQuery) pair() power.ProportionPair {
	return power.ProportionPair{Null: q.PNull, Alt: q.PAlt}
}

func bindError(err error) error {
	return errors.WithCode(errors.CodeInvalidInput, err)
}

func (s *Server) handlePower(c *gin.Context) {
	var q powerQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		s.writeError(c, bindError(err))
		return
	}

	res, err := analysis.Evaluate(power.Design{Pair: q.pair(), N: q.N, Alpha: s.alphaOr(q.Alpha)})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleSampleSize(c *gin.Context) {
	var q sizeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		s.writeError(c, bindError(err))
		return
	}

	res, err := analysis.SolveSampleSize(q.pair(), power.ErrorRates{Alpha: s.alphaOr(q.Alpha), Beta: s.betaOr(q.Beta)})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleCurve(c *gin.Context) {
	var q curveQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		s.writeError(c, bindError(err))
		return
	}
	if q.Steps == 0 {
		q.Steps = 20
	}

	ns, err := analysis.CurveRange(q.Min, q.Max, q.Steps)
	if err != nil {
		s.writeError(c, err)
		return
	}
	alpha := s.alphaOr(q.Alpha)
	points, err := analysis.PowerCurve(q.pair(), alpha, ns)
	if err != nil {
		s.writeError(c, err)
		return
	}

	if q.Format == "xlsx" {
		var buf bytes.Buffer
		if err := report.StreamCurveWorkbook(&buf, q.pair(), alpha, points, nil); err != nil {
			s.writeError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="power_curve.xlsx"`)
		c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
		return
	}
	c.JSON(http.StatusOK, gin.H{"pair": q.pair(), "alpha": alpha, "points": points})
}

func (s *Server) handleMDE(c *gin.Context) {
	var q mdeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		s.writeError(c, bindError(err))
		return
	}

	rates := power.ErrorRates{Alpha: s.alphaOr(q.Alpha), Beta: s.betaOr(q.Beta)}
	pAlt, err := analysis.MinimumDetectableEffect(q.PNull, q.N, rates)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"p_null":     q.PNull,
		"n":          q.N,
		"rates":      rates,
		"p_alt":      pAlt,
		"difference": pAlt - q.PNull,
	})
}

func (s *Server) handlePlot(c *gin.Context) {
	var q plotQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		s.writeError(c, bindError(err))
		return
	}
	format := strings.ToLower(q.Format)
	if format == "" {
		format = "png"
	}

	d := power.Design{Pair: q.pair(), N: q.N, Alpha: s.alphaOr(q.Alpha)}
	if err := d.Validate(); err != nil {
		s.writeError(c, err)
		return
	}

	var buf bytes.Buffer
	size := report.Size{WidthCm: s.cfg.Plot.WidthCm, HeightCm: s.cfg.Plot.HeightCm}
	if err := report.WriteDensityPlot(&buf, d, format, size); err != nil {
		s.writeError(c, err)
		return
	}

	contentType := "image/png"
	if format == "svg" {
		contentType = "image/svg+xml"
	}
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func (s *Server) handleSimulate(c *gin.Context) {
	var req simulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, bindError(err))
		return
	}

	cfg := simulation.Config{
		Trials:  s.cfg.Simulation.Trials,
		Workers: s.cfg.Simulation.Workers,
		Seed:    s.cfg.Simulation.Seed,
	}
	if req.Trials > 0 {
		cfg.Trials = req.Trials
	}
	if req.Seed != nil {
		cfg.Seed = *req.Seed
	}

	d := power.Design{
		Pair:  power.ProportionPair{Null: req.PNull, Alt: req.PAlt},
		N:     req.N,
		Alpha: s.alphaOr(req.Alpha),
	}
	res, err := simulation.NewRunner(cfg, s.logger).Run(c.Request.Context(), d)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleReport(c *gin.Context) {
	var q sizeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		s.writeError(c, bindError(err))
		return
	}

	rates := power.ErrorRates{Alpha: s.alphaOr(q.Alpha), Beta: s.betaOr(q.Beta)}
	solved, err := analysis.SolveSampleSize(q.pair(), rates)
	if err != nil {
		s.writeError(c, err)
		return
	}

	ns, err := analysis.CurveRange(max(1, solved.N/4), solved.N*2, 9)
	if err != nil {
		s.writeError(c, err)
		return
	}
	curve, err := analysis.PowerCurve(q.pair(), rates.Alpha, ns)
	if err != nil {
		s.writeError(c, err)
		return
	}

	body := report.Summary{Solved: solved, Curve: curve}.HTML()
	page := "<!doctype html><html><head><meta charset=\"utf-8\"><title>Experiment size</title></head><body>" +
		string(body) + "</body></html>"
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}
