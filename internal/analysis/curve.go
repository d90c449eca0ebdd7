package analysis

import (
	"math"

	"gopower/domain/power"
	"gopower/internal/errors"
)

const (
	mdeTolerance     = 1e-7
	mdeMaxIterations = 200
)

// CurveRange returns up to steps sample sizes evenly spaced over [min, max],
// always including both ends, deduplicated and ascending.
func CurveRange(min, max, steps int) ([]int, error) {
	if min < 1 || max < min {
		return nil, errors.InvalidInputf("curve range needs 1 <= min <= max, got [%d, %d]", min, max)
	}
	if min == max {
		return []int{min}, nil
	}
	if steps < 2 {
		return []int{min, max}, nil
	}

	ns := make([]int, 0, steps)
	span := float64(max - min)
	for i := 0; i < steps; i++ {
		n := min + int(math.Round(span*float64(i)/float64(steps-1)))
		if len(ns) > 0 && ns[len(ns)-1] == n {
			continue
		}
		ns = append(ns, n)
	}
	return ns, nil
}

// PowerCurve evaluates power at each sample size in ns
func PowerCurve(pair power.ProportionPair, alpha float64, ns []int) ([]power.CurvePoint, error) {
	if len(ns) == 0 {
		return nil, errors.InvalidInput("power curve needs at least one sample size")
	}

	points := make([]power.CurvePoint, 0, len(ns))
	for _, n := range ns {
		res, err := Evaluate(power.Design{Pair: pair, N: n, Alpha: alpha})
		if err != nil {
			return nil, errors.Wrapf(err, "power curve at n=%d", n)
		}
		points = append(points, power.CurvePoint{N: n, Power: res.Power})
	}
	return points, nil
}

// MinimumDetectableEffect finds the smallest p_alt above pNull that a test
// with n observations per group detects with power 1-beta, by bisection.
func MinimumDetectableEffect(pNull float64, n int, rates power.ErrorRates) (float64, error) {
	if err := power.ValidateProbability("p_null", pNull); err != nil {
		return 0, err
	}
	if err := power.ValidateSampleSize(n); err != nil {
		return 0, err
	}
	if err := rates.Validate(); err != nil {
		return 0, err
	}

	target := rates.Power()
	powerAt := func(pAlt float64) float64 {
		d := power.Design{Pair: power.ProportionPair{Null: pNull, Alt: pAlt}, N: n, Alpha: rates.Alpha}
		return 1 - distributions(d).TypeIIRate()
	}

	lo := pNull
	hi := math.Nextafter(1, 0)
	if powerAt(hi) < target {
		return 0, errors.InvalidInputf(
			"no p_alt below 1 reaches power %.3f with n=%d at p_null=%g", target, n, pNull)
	}

	for i := 0; i < mdeMaxIterations && hi-lo > mdeTolerance; i++ {
		mid := lo + (hi-lo)/2
		if powerAt(mid) >= target {
			hi = mid
		} else {
			lo = mid
		}
	}
	return hi, nil
}
