package analysis

import "math"

// WilsonInterval returns the Wilson score interval for successes out of
// trials at the given two-sided confidence level. Zero trials yields (0, 0).
func WilsonInterval(successes, trials int, confidence float64) (lower, upper float64) {
	if trials <= 0 {
		return 0, 0
	}

	z := ZQuantile(1 - (1-confidence)/2)
	n := float64(trials)
	p := float64(successes) / n

	den := 1 + z*z/n
	center := p + z*z/(2*n)
	rad := z * math.Sqrt(p*(1-p)/n+z*z/(4*n*n))

	lower = math.Max(0, (center-rad)/den)
	upper = math.Min(1, (center+rad)/den)
	if successes <= 0 {
		lower = 0
	}
	if successes >= trials {
		upper = 1
	}
	return lower, upper
}
