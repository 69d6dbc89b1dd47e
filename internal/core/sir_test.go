package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nhlanhla999/Epidemiologist-Data-Science-Tool/internal/domain/model"
)

func baseParams() model.SIRParams {
	return model.SIRParams{Population: 1000, Beta: 0.3, Gamma: 0.1, Days: 5, InitialInfected: 1}
}

func TestRunSIRFiveDays(t *testing.T) {
	states, err := RunSIR(baseParams())
	require.NoError(t, err)
	require.Len(t, states, 5)

	// First update from S=999, I=1, R=0.
	newInf := 0.3 * 999 * 1 / 1000
	assert.InDelta(t, 999-newInf, states[0].Susceptible, 1e-9)
	assert.InDelta(t, 1+newInf-0.1, states[0].Infected, 1e-9)
	assert.InDelta(t, 0.1, states[0].Recovered, 1e-9)

	for d, s := range states {
		assert.Equal(t, d, s.Day)
		assert.InDelta(t, 1000, s.Total(), 1e-9)
		if d > 0 {
			assert.Less(t, s.Susceptible, states[d-1].Susceptible)
			assert.Greater(t, s.Infected, states[d-1].Infected)
			assert.GreaterOrEqual(t, s.Recovered, states[d-1].Recovered)
		}
	}
}

func TestRunSIRLongRunConservation(t *testing.T) {
	p := baseParams()
	p.Days = 365
	p.InitialRecovered = 50

	states, err := RunSIR(p)
	require.NoError(t, err)
	require.Len(t, states, 365)

	prevR := p.InitialRecovered
	for _, s := range states {
		assert.InDelta(t, 1000, s.Total(), 1e-6)
		assert.GreaterOrEqual(t, s.Recovered, prevR)
		prevR = s.Recovered
	}
}

func TestRunSIRZeroDays(t *testing.T) {
	p := baseParams()
	p.Days = 0
	states, err := RunSIR(p)
	require.NoError(t, err)
	assert.Empty(t, states)
}

func TestRunSIRNoInfectedStaysFlat(t *testing.T) {
	p := baseParams()
	p.InitialInfected = 0
	states, err := RunSIR(p)
	require.NoError(t, err)
	for _, s := range states {
		assert.Equal(t, 1000.0, s.Susceptible)
		assert.Equal(t, 0.0, s.Infected)
		assert.Equal(t, 0.0, s.Recovered)
	}
}

func TestRunSIRValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.SIRParams)
	}{
		{"zero population", func(p *model.SIRParams) { p.Population = 0 }},
		{"zero beta", func(p *model.SIRParams) { p.Beta = 0 }},
		{"negative gamma", func(p *model.SIRParams) { p.Gamma = -0.1 }},
		{"negative days", func(p *model.SIRParams) { p.Days = -1 }},
		{"negative infected", func(p *model.SIRParams) { p.InitialInfected = -1 }},
		{"negative recovered", func(p *model.SIRParams) { p.InitialRecovered = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := baseParams()
			tt.mutate(&p)
			_, err := RunSIR(p)
			assert.ErrorIs(t, err, model.ErrValidation)
		})
	}
}

func TestRunSIRNegativeWithoutClamp(t *testing.T) {
	// A single step with beta*I/N > 1 overshoots S below zero.
	p := model.SIRParams{Population: 10, Beta: 5, Gamma: 0.1, Days: 1, InitialInfected: 5}
	states, err := RunSIR(p)
	require.NoError(t, err)
	assert.Less(t, states[0].Susceptible, 0.0)

	p.ClampNegative = true
	clamped, err := RunSIR(p)
	require.NoError(t, err)
	assert.Equal(t, 0.0, clamped[0].Susceptible)
	assert.GreaterOrEqual(t, clamped[0].Infected, 0.0)
}

func TestRunSIRWithControls(t *testing.T) {
	p := baseParams()
	c := model.ControlMeasures{SocialDistancing: 0.5, VaccinationRate: 0.2}

	states, err := RunSIRWithControls(p, c, 10)
	require.NoError(t, err)
	require.Len(t, states, 5)

	// S0 = 1000*0.8 - 10, beta = 0.15.
	s0 := 790.0
	newInf := 0.15 * s0 * 10 / 1000
	assert.InDelta(t, s0-newInf, states[0].Susceptible, 1e-9)
	assert.InDelta(t, 10+newInf-1, states[0].Infected, 1e-9)
	assert.InDelta(t, 1, states[0].Recovered, 1e-9)

	for _, s := range states {
		assert.InDelta(t, 800, s.Total(), 1e-9)
	}
}

func TestRunSIRWithControlsValidation(t *testing.T) {
	p := baseParams()
	_, err := RunSIRWithControls(p, model.ControlMeasures{SocialDistancing: 1.2}, 1)
	assert.ErrorIs(t, err, model.ErrValidation)
	_, err = RunSIRWithControls(p, model.ControlMeasures{VaccinationRate: -0.1}, 1)
	assert.ErrorIs(t, err, model.ErrValidation)
	_, err = RunSIRWithControls(p, model.ControlMeasures{}, -1)
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestCompareScenariosCarriesFinalInfected(t *testing.T) {
	p := baseParams()
	p.Days = 30
	c := model.ControlMeasures{SocialDistancing: 0.3, VaccinationRate: 0.2}

	cmp, err := CompareScenarios(p, c)
	require.NoError(t, err)
	require.Len(t, cmp.Baseline, 30)
	require.Len(t, cmp.Controlled, 30)

	assert.Equal(t, cmp.Baseline[29].Infected, cmp.CarriedInfected)

	direct, err := RunSIRWithControls(p, c, cmp.Baseline[29].Infected)
	require.NoError(t, err)
	assert.Equal(t, direct, cmp.Controlled)
}

func TestCompareScenariosZeroDays(t *testing.T) {
	p := baseParams()
	p.Days = 0
	p.InitialInfected = 4

	cmp, err := CompareScenarios(p, model.ControlMeasures{})
	require.NoError(t, err)
	assert.Empty(t, cmp.Baseline)
	assert.Empty(t, cmp.Controlled)
	assert.Equal(t, 4.0, cmp.CarriedInfected)
}

func TestCompareScenariosControlsReduceTransmission(t *testing.T) {
	p := model.SIRParams{Population: 1000, Beta: 0.3, Gamma: 0.1, Days: 20, InitialInfected: 1}
	full, err := RunSIRWithControls(p, model.ControlMeasures{}, 5)
	require.NoError(t, err)
	reduced, err := RunSIRWithControls(p, model.ControlMeasures{SocialDistancing: 0.5, VaccinationRate: 0.3}, 5)
	require.NoError(t, err)

	assert.Less(t, reduced[19].Infected, full[19].Infected)
	assert.False(t, math.IsNaN(reduced[19].Infected))
}
