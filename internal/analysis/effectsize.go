package analysis

import (
	"math"

	"gopower/domain/power"
	"gopower/internal/errors"
)

// ProportionEffectSize is Cohen's h for two proportions:
// 2*asin(sqrt(p1)) - 2*asin(sqrt(p2)).
func ProportionEffectSize(p1, p2 float64) float64 {
	return 2*math.Asin(math.Sqrt(p1)) - 2*math.Asin(math.Sqrt(p2))
}

// NormalIndPowerSolve returns the fractional size of the first group for a
// one-sided ("larger") z test on two independent samples with standardized
// effect h, where the second group has ratio times as many observations.
// It is a closed-form reference for cross-checking SolveSampleSize; the two
// differ because h uses an arcsine variance-stabilising transform.
func NormalIndPowerSolve(h, alpha, targetPower, ratio float64) (float64, error) {
	if err := power.ValidateProbability("alpha", alpha); err != nil {
		return 0, err
	}
	if err := power.ValidateProbability("power", targetPower); err != nil {
		return 0, err
	}
	if ratio <= 0 || math.IsNaN(ratio) {
		return 0, errors.InvalidInputf("ratio must be > 0, got %g", ratio)
	}
	if h <= 0 || math.IsNaN(h) {
		return 0, errors.NumericDegeneracy("effect size must be positive for a one-sided test")
	}

	z := (ZQuantile(1-alpha) + ZQuantile(targetPower)) / h
	return (1 + 1/ratio) * z * z, nil
}

// NormalIndPower is the power of the test described by NormalIndPowerSolve
// for a given first-group size n1.
func NormalIndPower(h float64, n1 int, alpha, ratio float64) float64 {
	effN := float64(n1) / (1 + 1/ratio)
	return ZCDF(h*math.Sqrt(effN) - ZQuantile(1-alpha))
}
