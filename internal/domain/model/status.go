package model

type Status string

const (
	Susceptible Status = "Susceptible"
	Infected    Status = "Infected"
	Recovered   Status = "Recovered"
	Vaccinated  Status = "Vaccinated"
)

// Statuses lists every status in presentation order.
var Statuses = []Status{Susceptible, Infected, Recovered, Vaccinated}
