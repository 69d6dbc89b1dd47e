package model

import "image/color"

// ClusterCell is a grid cell whose case count reached the alert threshold.
// Lat/Lon is the lower corner of the cell, not its centroid.
type ClusterCell struct {
	LatBin int     `json:"lat_bin"`
	LonBin int     `json:"lon_bin"`
	Count  int     `json:"count"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`

	NearestFacility *FacilityDistance `json:"nearest_facility,omitempty"`
}

// Ring is one marker circle drawn around an alert cluster.
type Ring struct {
	Radius float64    `json:"radius"`
	Color  color.RGBA `json:"color"`
}

var clusterRings = [...]Ring{
	{Radius: 1000, Color: color.RGBA{R: 255, G: 0, B: 0, A: 160}},
	{Radius: 1500, Color: color.RGBA{R: 255, G: 140, B: 0, A: 120}},
	{Radius: 2000, Color: color.RGBA{R: 255, G: 215, B: 0, A: 80}},
}

// Rings returns the fixed marker set for an alert cluster.
func (c ClusterCell) Rings() []Ring {
	rings := make([]Ring, len(clusterRings))
	copy(rings, clusterRings[:])
	return rings
}
