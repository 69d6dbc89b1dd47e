package model

// CompartmentalState is the S/I/R split after one simulated day. Counts are
// continuous, fractional people are allowed.
type CompartmentalState struct {
	Day         int     `json:"day"`
	Susceptible float64 `json:"susceptible"`
	Infected    float64 `json:"infected"`
	Recovered   float64 `json:"recovered"`
}

// Total returns S+I+R.
func (s CompartmentalState) Total() float64 {
	return s.Susceptible + s.Infected + s.Recovered
}

type SIRParams struct {
	Population       float64 `json:"population"`
	Beta             float64 `json:"beta"`  // transmission rate
	Gamma            float64 `json:"gamma"` // recovery rate
	Days             int     `json:"days"`
	InitialInfected  float64 `json:"initial_infected"`
	InitialRecovered float64 `json:"initial_recovered"`

	// ClampNegative floors S and I at zero after every step. Off by default,
	// the unclamped trajectory is the reference behaviour.
	ClampNegative bool `json:"clamp_negative,omitempty"`
}

// ControlMeasures adjusts a SIR run: transmission is scaled by
// (1 - SocialDistancing) and the vaccinated share of the population is
// removed from the initial susceptible pool.
type ControlMeasures struct {
	SocialDistancing float64 `json:"social_distancing"`
	VaccinationRate  float64 `json:"vaccination_rate"`
}

// Comparison holds the unmodified and control-measures trajectories.
type Comparison struct {
	Baseline        []CompartmentalState `json:"baseline"`
	Controlled      []CompartmentalState `json:"controlled"`
	CarriedInfected float64              `json:"carried_infected"`
}
