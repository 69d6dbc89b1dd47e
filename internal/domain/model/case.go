package model

import (
	"time"

	"github.com/paulmach/orb"
)

const (
	SexMale   = "M"
	SexFemale = "F"

	// UnknownInfectionType is used for records that carry no infection label.
	UnknownInfectionType = "Unknown"
)

// Case is one simulated or uploaded patient record.
type Case struct {
	ID            int       `json:"id"`
	Age           int       `json:"age"`
	Sex           string    `json:"sex"`
	Lat           float64   `json:"lat"`
	Lon           float64   `json:"lon"`
	DiagnosisDate time.Time `json:"diagnosis_date"`
	Infected      bool      `json:"infected"`
	InfectionType string    `json:"infection_type"`
	Day           int       `json:"day"` // days since the earliest diagnosis in the dataset
}

// Point allows Case to satisfy the orb.Pointer interface.
func (c Case) Point() orb.Point {
	return orb.Point{c.Lon, c.Lat}
}

// CaseRecord is a row handed over by the ingestion layer. Optional columns
// are nil/empty when the source did not provide them.
type CaseRecord struct {
	ID            int       `json:"id,omitempty"`
	Lat           float64   `json:"lat"`
	Lon           float64   `json:"lon"`
	DiagnosisDate time.Time `json:"diagnosis_date"`
	Age           *int      `json:"age,omitempty"`
	Sex           string    `json:"sex,omitempty"`
	InfectionType string    `json:"infection_type,omitempty"`
	Infected      bool      `json:"infected"`
}

// Dataset is an ordered case collection with the derived Day of every case
// measured from Epoch.
type Dataset struct {
	Epoch time.Time `json:"epoch"`
	Cases []Case    `json:"cases"`
}

// Bounds is a latitude/longitude box in degrees.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Bound converts b to an orb.Bound.
func (b Bounds) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.MinLon, b.MinLat},
		Max: orb.Point{b.MaxLon, b.MaxLat},
	}
}
