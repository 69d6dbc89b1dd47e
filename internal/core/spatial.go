package core

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/Nhlanhla999/Epidemiologist-Data-Science-Tool/internal/domain/model"
)

const (
	// DefaultBinResolution gives 0.01 degree cells.
	DefaultBinResolution    = 100.0
	DefaultClusterThreshold = 5
)

// ClusterDetector groups cases into lat/lon grid cells and reports the
// cells with at least Threshold cases.
type ClusterDetector struct {
	resolution float64
	threshold  int
}

// NewClusterDetector builds a detector. resolution is the number of bins
// per degree.
func NewClusterDetector(resolution float64, threshold int) (*ClusterDetector, error) {
	if resolution <= 0 || math.IsInf(resolution, 0) || math.IsNaN(resolution) {
		return nil, model.Invalid("resolution", "must be positive, got %g", resolution)
	}
	if threshold <= 0 {
		return nil, model.Invalid("threshold", "must be positive, got %d", threshold)
	}
	return &ClusterDetector{resolution: resolution, threshold: threshold}, nil
}

func (d *ClusterDetector) Threshold() int { return d.threshold }

func (d *ClusterDetector) Resolution() float64 { return d.resolution }

type cellKey struct {
	lat, lon int
}

// Bin maps a coordinate to its cell index, truncating toward zero.
func (d *ClusterDetector) Bin(coord float64) int {
	return int(coord * d.resolution)
}

// Detect returns the alert clusters among cases, largest first. Ties are
// ordered by cell index so the output is reproducible.
func (d *ClusterDetector) Detect(cases []model.Case) []model.ClusterCell {
	counts := make(map[cellKey]int)
	for _, c := range cases {
		counts[cellKey{lat: d.Bin(c.Lat), lon: d.Bin(c.Lon)}]++
	}
	return d.collect(counts)
}

// DetectStates is Detect over simulator case states.
func (d *ClusterDetector) DetectStates(states []model.CaseState) []model.ClusterCell {
	counts := make(map[cellKey]int)
	for _, s := range states {
		counts[cellKey{lat: d.Bin(s.Lat), lon: d.Bin(s.Lon)}]++
	}
	return d.collect(counts)
}

func (d *ClusterDetector) collect(counts map[cellKey]int) []model.ClusterCell {
	clusters := make([]model.ClusterCell, 0)
	for key, n := range counts {
		if n < d.threshold {
			continue
		}
		clusters = append(clusters, model.ClusterCell{
			LatBin: key.lat,
			LonBin: key.lon,
			Count:  n,
			Lat:    float64(key.lat) / d.resolution,
			Lon:    float64(key.lon) / d.resolution,
		})
	}

	sort.Slice(clusters, func(i, j int) bool {
		if clusters[i].Count != clusters[j].Count {
			return clusters[i].Count > clusters[j].Count
		}
		if clusters[i].LatBin != clusters[j].LatBin {
			return clusters[i].LatBin < clusters[j].LatBin
		}
		return clusters[i].LonBin < clusters[j].LonBin
	})
	return clusters
}

// NearestFacility returns the facility closest to the cluster's cell corner.
// ok is false when facilities is empty.
func NearestFacility(cluster model.ClusterCell, facilities []model.HealthFacility) (model.FacilityDistance, bool) {
	if len(facilities) == 0 {
		return model.FacilityDistance{}, false
	}

	origin := model.Position{Lat: cluster.Lat, Lon: cluster.Lon}
	best := model.FacilityDistance{Facility: facilities[0], Distance: distance(origin, facilities[0])}
	for _, f := range facilities[1:] {
		if dist := distance(origin, f); dist < best.Distance {
			best = model.FacilityDistance{Facility: f, Distance: dist}
		}
	}
	return best, true
}

// AnnotateClusters returns a copy of clusters with NearestFacility set.
func AnnotateClusters(clusters []model.ClusterCell, facilities []model.HealthFacility) []model.ClusterCell {
	out := make([]model.ClusterCell, len(clusters))
	copy(out, clusters)
	for i := range out {
		if nearest, ok := NearestFacility(out[i], facilities); ok {
			n := nearest
			out[i].NearestFacility = &n
		}
	}
	return out
}

// distance is the geodesic distance in metres.
func distance(p model.Position, f model.HealthFacility) float64 {
	return geo.Distance(orb.Point{p.Lon, p.Lat}, f.Point())
}
