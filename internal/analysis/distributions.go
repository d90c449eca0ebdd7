package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"gopower/domain/power"
)

// ZQuantile computes the quantile function of the standard normal (inverse CDF)
func ZQuantile(p float64) float64 {
	return distuv.UnitNormal.Quantile(p)
}

// ZCDF computes the cumulative distribution function of the standard normal
func ZCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

// NullSE is the standard error of the difference in proportions when both
// groups share p_null: sqrt(2 p (1-p) / n).
func NullSE(pNull float64, n int) float64 {
	return math.Sqrt(2 * pNull * (1 - pNull) / float64(n))
}

// AltSE is the standard error of the difference when the groups have
// p_null and p_alt respectively.
func AltSE(pair power.ProportionPair, n int) float64 {
	return math.Sqrt((pair.Null*(1-pair.Null) + pair.Alt*(1-pair.Alt)) / float64(n))
}

// SamplingDistributions describes the null and alternative sampling
// distributions of the difference in proportions for one design.
type SamplingDistributions struct {
	Null distuv.Normal
	Alt  distuv.Normal

	// Critical is the (1-alpha) quantile of Null: differences above it reject H0.
	Critical float64
}

// Distributions builds the null and alternative distributions of the
// difference and the one-sided critical value for design d.
func Distributions(d power.Design) (SamplingDistributions, error) {
	if err := d.Validate(); err != nil {
		return SamplingDistributions{}, err
	}
	return distributions(d), nil
}

func distributions(d power.Design) SamplingDistributions {
	null := distuv.Normal{Mu: 0, Sigma: NullSE(d.Pair.Null, d.N)}
	alt := distuv.Normal{Mu: d.Pair.Difference(), Sigma: AltSE(d.Pair, d.N)}
	return SamplingDistributions{
		Null:     null,
		Alt:      alt,
		Critical: null.Quantile(1 - d.Alpha),
	}
}

// TypeIIRate is the probability mass of Alt at or below the critical value
func (s SamplingDistributions) TypeIIRate() float64 {
	return s.Alt.CDF(s.Critical)
}

// TypeIRate is the probability mass of Null above the critical value.
// It equals alpha up to quantile round-off.
func (s SamplingDistributions) TypeIRate() float64 {
	return 1 - s.Null.CDF(s.Critical)
}
