package analysis

import (
	"gopower/domain/power"
	"gopower/internal/errors"
)

// Power computes the probability that a one-sided test at level alpha with
// n observations per group detects an increase from pNull to pAlt.
func Power(pNull, pAlt float64, n int, alpha float64) (float64, error) {
	res, err := Evaluate(power.Design{
		Pair:  power.ProportionPair{Null: pNull, Alt: pAlt},
		N:     n,
		Alpha: alpha,
	})
	if err != nil {
		return 0, err
	}
	return res.Power, nil
}

// Evaluate computes the achieved power of d together with the standard
// errors, critical value and Type-II rate it was derived from.
func Evaluate(d power.Design) (power.PowerResult, error) {
	if err := d.Validate(); err != nil {
		return power.PowerResult{}, errors.Wrap(err, "power")
	}

	dists := distributions(d)
	beta := dists.TypeIIRate()

	return power.PowerResult{
		Design:        d,
		Power:         clamp01(1 - beta),
		Beta:          beta,
		CriticalValue: dists.Critical,
		SENull:        dists.Null.Sigma,
		SEAlt:         dists.Alt.Sigma,
	}, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
