package core

import "github.com/Nhlanhla999/Epidemiologist-Data-Science-Tool/internal/domain/model"

func validateSIR(p model.SIRParams) error {
	if p.Population <= 0 {
		return model.Invalid("population", "must be positive, got %g", p.Population)
	}
	if p.Beta <= 0 {
		return model.Invalid("beta", "must be positive, got %g", p.Beta)
	}
	if p.Gamma <= 0 {
		return model.Invalid("gamma", "must be positive, got %g", p.Gamma)
	}
	if p.Days < 0 {
		return model.Invalid("days", "must not be negative, got %d", p.Days)
	}
	if p.InitialInfected < 0 {
		return model.Invalid("initial_infected", "must not be negative, got %g", p.InitialInfected)
	}
	if p.InitialRecovered < 0 {
		return model.Invalid("initial_recovered", "must not be negative, got %g", p.InitialRecovered)
	}
	return nil
}

func validateControls(c model.ControlMeasures) error {
	if !validProb(c.SocialDistancing) {
		return model.Invalid("social_distancing", "must be in [0,1], got %g", c.SocialDistancing)
	}
	if !validProb(c.VaccinationRate) {
		return model.Invalid("vaccination_rate", "must be in [0,1], got %g", c.VaccinationRate)
	}
	return nil
}

// RunSIR advances the compartments day by day from the initial condition.
// The returned slice has p.Days entries; entry d is the state after the
// (d+1)-th update, the initial condition itself is not included.
func RunSIR(p model.SIRParams) ([]model.CompartmentalState, error) {
	if err := validateSIR(p); err != nil {
		return nil, err
	}
	s := p.Population - p.InitialInfected - p.InitialRecovered
	states, _ := integrate(p, s, p.InitialInfected, p.InitialRecovered)
	return states, nil
}

// RunSIRWithControls runs the same update rule with transmission reduced by
// social distancing and the vaccinated share removed from the susceptible
// pool. carriedInfected seeds the infected compartment.
func RunSIRWithControls(p model.SIRParams, c model.ControlMeasures, carriedInfected float64) ([]model.CompartmentalState, error) {
	if err := validateSIR(p); err != nil {
		return nil, err
	}
	if err := validateControls(c); err != nil {
		return nil, err
	}
	if carriedInfected < 0 {
		return nil, model.Invalid("carried_infected", "must not be negative, got %g", carriedInfected)
	}

	adjusted := p
	adjusted.Beta = p.Beta * (1 - c.SocialDistancing)
	s := p.Population*(1-c.VaccinationRate) - carriedInfected
	states, _ := integrate(adjusted, s, carriedInfected, p.InitialRecovered)
	return states, nil
}

// CompareScenarios runs the unmodified model and then the control-measures
// model, seeding the latter with the infected count the former ended on.
func CompareScenarios(p model.SIRParams, c model.ControlMeasures) (model.Comparison, error) {
	if err := validateSIR(p); err != nil {
		return model.Comparison{}, err
	}
	if err := validateControls(c); err != nil {
		return model.Comparison{}, err
	}

	s := p.Population - p.InitialInfected - p.InitialRecovered
	baseline, finalInfected := integrate(p, s, p.InitialInfected, p.InitialRecovered)

	controlled, err := RunSIRWithControls(p, c, finalInfected)
	if err != nil {
		return model.Comparison{}, err
	}

	return model.Comparison{
		Baseline:        baseline,
		Controlled:      controlled,
		CarriedInfected: finalInfected,
	}, nil
}

// integrate applies the update rule p.Days times and also returns I as it
// stood when the loop finished.
func integrate(p model.SIRParams, s, i, r float64) ([]model.CompartmentalState, float64) {
	states := make([]model.CompartmentalState, 0, p.Days)
	for day := 0; day < p.Days; day++ {
		newInfected := p.Beta * s * i / p.Population
		newRecovered := p.Gamma * i

		s -= newInfected
		i += newInfected - newRecovered
		r += newRecovered

		if p.ClampNegative {
			s = clampZero(s)
			i = clampZero(i)
		}

		states = append(states, model.CompartmentalState{
			Day:         day,
			Susceptible: s,
			Infected:    i,
			Recovered:   r,
		})
	}
	return states, i
}

func clampZero(x float64) float64 {
	if x < 0 {
		return 0
	}
	return x
}
