package power

import (
	"math"

	"gopower/internal/errors"
)

// ============================================================================
// INPUT VALUES
// ============================================================================

// ProportionPair is the baseline rate and the rate the experiment should detect.
// INVARIANTS:
// - both rates lie strictly in (0,1)
// - Alt > Null (one-directional "increase" framing)
type ProportionPair struct {
	Null float64 `json:"p_null"`
	Alt  float64 `json:"p_alt"`
}

// ErrorRates holds the Type-I (Alpha) and Type-II (Beta) error probabilities
type ErrorRates struct {
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
}

// DefaultErrorRates are the conventional 5% significance and 80% power
var DefaultErrorRates = ErrorRates{Alpha: 0.05, Beta: 0.20}

// Design is a fully specified fixed-n experiment: rates, per-group size, and alpha
type Design struct {
	Pair  ProportionPair `json:"pair"`
	N     int            `json:"n"`
	Alpha float64        `json:"alpha"`
}

// Difference returns Alt - Null
func (p ProportionPair) Difference() float64 {
	return p.Alt - p.Null
}

// Validate checks both rates are probabilities and that Alt exceeds Null.
// Equal rates carry NUMERIC_DEGENERACY wrapping INVALID_INPUT.
func (p ProportionPair) Validate() error {
	if err := ValidateProbability("p_null", p.Null); err != nil {
		return err
	}
	if err := ValidateProbability("p_alt", p.Alt); err != nil {
		return err
	}
	if p.Alt == p.Null {
		return errors.NumericDegeneracyOf("zero effect size",
			errors.InvalidInputf("p_alt (%g) must exceed p_null (%g)", p.Alt, p.Null))
	}
	if p.Alt < p.Null {
		return errors.InvalidInputf("p_alt (%g) must exceed p_null (%g): only increases are supported", p.Alt, p.Null)
	}
	return nil
}

// Validate checks alpha and beta are both in (0,1)
func (r ErrorRates) Validate() error {
	if err := ValidateProbability("alpha", r.Alpha); err != nil {
		return err
	}
	return ValidateProbability("beta", r.Beta)
}

// Power returns 1 - Beta
func (r ErrorRates) Power() float64 {
	return 1 - r.Beta
}

// Validate checks every field of the design
func (d Design) Validate() error {
	if err := d.Pair.Validate(); err != nil {
		return err
	}
	if err := ValidateSampleSize(d.N); err != nil {
		return err
	}
	return ValidateProbability("alpha", d.Alpha)
}

// ValidateProbability rejects NaN and anything outside the open interval (0,1)
func ValidateProbability(name string, v float64) error {
	if math.IsNaN(v) || v <= 0 || v >= 1 {
		return errors.InvalidInputf("%s must be in (0,1), got %g", name, v)
	}
	return nil
}

// ValidateSampleSize rejects non-positive per-group sizes
func ValidateSampleSize(n int) error {
	if n < 1 {
		return errors.InvalidInputf("sample size must be >= 1, got %d", n)
	}
	return nil
}

// ============================================================================
// RESULTS
// ============================================================================

// PowerResult is the achieved power of a design plus the quantities behind it
type PowerResult struct {
	Design        Design  `json:"design"`
	Power         float64 `json:"power"`          // 1 - beta, in [0,1]
	Beta          float64 `json:"beta"`           // P(fail to reject | alt)
	CriticalValue float64 `json:"critical_value"` // decision boundary on the difference scale
	SENull        float64 `json:"se_null"`
	SEAlt         float64 `json:"se_alt"`
}

// SampleSizeResult is the solved per-group size and the inputs that produced it
type SampleSizeResult struct {
	Pair     ProportionPair `json:"pair"`
	Rates    ErrorRates     `json:"rates"`
	N        int            `json:"n"`     // ceiling of Exact
	Exact    float64        `json:"exact"` // unrounded solution
	ZAlpha   float64        `json:"z_alpha"`
	ZBeta    float64        `json:"z_beta"`
	SDNull   float64        `json:"sd_null"`
	SDAlt    float64        `json:"sd_alt"`
	Achieved float64        `json:"achieved_power"` // power at N
}

// CurvePoint is one row of a power-by-sample-size table
type CurvePoint struct {
	N     int     `json:"n"`
	Power float64 `json:"power"`
}

// SimulationResult summarises a Monte Carlo estimate of power
type SimulationResult struct {
	RunID          string  `json:"run_id"`
	Design         Design  `json:"design"`
	Trials         int     `json:"trials"`
	Rejections     int     `json:"rejections"`
	EmpiricalPower float64 `json:"empirical_power"`
	AnalyticPower  float64 `json:"analytic_power"`
	BatchStdDev    float64 `json:"batch_std_dev"` // spread of per-batch power estimates
	CILower        float64 `json:"ci_lower"`
	CIUpper        float64 `json:"ci_upper"`
	Seed           uint64  `json:"seed"`
}

// Covers reports whether the analytic power falls inside the empirical interval
func (r SimulationResult) Covers() bool {
	return r.AnalyticPower >= r.CILower && r.AnalyticPower <= r.CIUpper
}
