package power

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"gopower/internal/errors"
)

func TestProportionPairValidate(t *testing.T) {
	tests := []struct {
		name       string
		pair       ProportionPair
		wantCode   string
		wantErrNil bool
	}{
		{"increase", ProportionPair{Null: 0.10, Alt: 0.12}, "", true},
		{"decrease", ProportionPair{Null: 0.12, Alt: 0.10}, errors.CodeInvalidInput, false},
		{"equal", ProportionPair{Null: 0.10, Alt: 0.10}, errors.CodeNumericDegeneracy, false},
		{"null zero", ProportionPair{Null: 0, Alt: 0.1}, errors.CodeInvalidInput, false},
		{"alt one", ProportionPair{Null: 0.5, Alt: 1}, errors.CodeInvalidInput, false},
		{"nan", ProportionPair{Null: math.NaN(), Alt: 0.1}, errors.CodeInvalidInput, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.pair.Validate()
			if tt.wantErrNil {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.GetCode(err))
		})
	}
}

func TestEqualRatesAreBothDegenerateAndInvalid(t *testing.T) {
	err := ProportionPair{Null: 0.3, Alt: 0.3}.Validate()
	assert.True(t, errors.IsNumericDegeneracy(err))
	assert.True(t, errors.IsInvalidInput(err))
}

func TestErrorRatesValidate(t *testing.T) {
	assert.NoError(t, DefaultErrorRates.Validate())
	assert.InDelta(t, 0.8, DefaultErrorRates.Power(), 1e-12)

	assert.True(t, errors.IsInvalidInput(ErrorRates{Alpha: 0, Beta: 0.2}.Validate()))
	assert.True(t, errors.IsInvalidInput(ErrorRates{Alpha: 0.05, Beta: 1}.Validate()))
}

func TestDesignValidate(t *testing.T) {
	pair := ProportionPair{Null: 0.1, Alt: 0.12}

	assert.NoError(t, Design{Pair: pair, N: 1, Alpha: 0.05}.Validate())
	assert.True(t, errors.IsInvalidInput(Design{Pair: pair, N: 0, Alpha: 0.05}.Validate()))
	assert.True(t, errors.IsInvalidInput(Design{Pair: pair, N: -3, Alpha: 0.05}.Validate()))
	assert.True(t, errors.IsInvalidInput(Design{Pair: pair, N: 100, Alpha: 1.2}.Validate()))
}

func TestSimulationResultCovers(t *testing.T) {
	r := SimulationResult{AnalyticPower: 0.8, CILower: 0.78, CIUpper: 0.83}
	assert.True(t, r.Covers())

	r.AnalyticPower = 0.9
	assert.False(t, r.Covers())
}
