package model

import "github.com/paulmach/orb"

// HealthFacility is a clinic, hospital or similar OSM object.
type HealthFacility struct {
	ID      int64             `json:"id"`
	Type    string            `json:"type"`
	Name    string            `json:"name"`
	Amenity string            `json:"amenity"`
	Lat     float64           `json:"lat"`
	Lon     float64           `json:"lon"`
	Tags    map[string]string `json:"tags,omitempty"`
}

func (f HealthFacility) Point() orb.Point {
	return orb.Point{f.Lon, f.Lat}
}

// FacilityDistance is the facility closest to a cluster and its distance in metres.
type FacilityDistance struct {
	Facility HealthFacility `json:"facility"`
	Distance float64        `json:"distance_m"`
}
