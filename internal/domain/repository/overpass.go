package repository

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/serjvanilla/go-overpass"

	"github.com/Nhlanhla999/Epidemiologist-Data-Science-Tool/internal/domain/model"
)

// healthAmenities are the OSM amenity values treated as health facilities.
const healthAmenities = "clinic|hospital|doctors|health_post|pharmacy"

type FacilityRepository interface {
	GetHealthFacilities(ctx context.Context, bounds model.Bounds) ([]model.HealthFacility, error)
}

type OverpassRepository struct {
	client  *overpass.Client
	timeout time.Duration
}

func NewOverpassRepository(endpoint string, timeout time.Duration) *OverpassRepository {
	httpClient := &http.Client{
		Timeout: timeout,
	}
	client := overpass.NewWithSettings(endpoint, 2, httpClient)
	return &OverpassRepository{
		client:  &client,
		timeout: timeout,
	}
}

// GetHealthFacilities returns clinics, hospitals and similar amenities
// inside bounds, ordered by OSM ID.
func (r *OverpassRepository) GetHealthFacilities(ctx context.Context, bounds model.Bounds) ([]model.HealthFacility, error) {
	bbox := FormatBBox(bounds)
	query := fmt.Sprintf(`
		[out:json];
		(
			node["amenity"~"%s"](%s);
			way["amenity"~"%s"](%s);
		);
		out body;
		>;
		out skel qt;
	`,
		healthAmenities, bbox,
		healthAmenities, bbox)

	result, err := r.executeQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute health facility query: %w", err)
	}

	return convertToFacilities(result), nil
}

// executeQuery runs query and gives up when ctx is done or the repository
// timeout passes, whichever comes first.
func (r *OverpassRepository) executeQuery(ctx context.Context, query string) (*overpass.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	type response struct {
		result overpass.Result
		err    error
	}
	done := make(chan response, 1)
	go func() {
		result, err := r.client.Query(query)
		done <- response{result: result, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("overpass query aborted: %w", ctx.Err())
	case resp := <-done:
		if resp.err != nil {
			return nil, fmt.Errorf("overpass query failed: %w", resp.err)
		}
		return &resp.result, nil
	}
}

func convertToFacilities(result *overpass.Result) []model.HealthFacility {
	facilities := make([]model.HealthFacility, 0)

	for _, node := range result.Nodes {
		// Untagged nodes are way members pulled in by the recurse step.
		if node.Tags["amenity"] == "" {
			continue
		}
		facilities = append(facilities, model.HealthFacility{
			ID:      node.ID,
			Type:    string(overpass.ElementTypeNode),
			Name:    node.Tags["name"],
			Amenity: node.Tags["amenity"],
			Lat:     node.Lat,
			Lon:     node.Lon,
			Tags:    node.Tags,
		})
	}

	for _, way := range result.Ways {
		if way.Tags["amenity"] == "" {
			continue
		}
		var lat, lon float64
		count := 0
		for _, node := range way.Nodes {
			if node == nil {
				continue
			}
			lat += node.Lat
			lon += node.Lon
			count++
		}
		if count > 0 {
			lat /= float64(count)
			lon /= float64(count)
		} else if way.Bounds != nil {
			lat = (way.Bounds.Min.Lat + way.Bounds.Max.Lat) / 2
			lon = (way.Bounds.Min.Lon + way.Bounds.Max.Lon) / 2
		} else {
			continue
		}

		facilities = append(facilities, model.HealthFacility{
			ID:      way.ID,
			Type:    string(overpass.ElementTypeWay),
			Name:    way.Tags["name"],
			Amenity: way.Tags["amenity"],
			Lat:     lat,
			Lon:     lon,
			Tags:    way.Tags,
		})
	}

	sort.Slice(facilities, func(i, j int) bool {
		if facilities[i].ID != facilities[j].ID {
			return facilities[i].ID < facilities[j].ID
		}
		return facilities[i].Type < facilities[j].Type
	})
	return facilities
}

// FormatBBox renders bounds in Overpass (south,west,north,east) order.
func FormatBBox(b model.Bounds) string {
	return fmt.Sprintf("%f,%f,%f,%f", b.MinLat, b.MinLon, b.MaxLat, b.MaxLon)
}

// ParseBBox parses a bbox string in format "lat1,lon1,lat2,lon2".
func ParseBBox(bbox string) (model.Bounds, error) {
	parts := strings.Split(bbox, ",")
	if len(parts) != 4 {
		return model.Bounds{}, model.Invalid("bbox", "must have 4 components, got %d", len(parts))
	}

	var values [4]float64
	names := [4]string{"minLat", "minLon", "maxLat", "maxLon"}
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return model.Bounds{}, model.Invalid("bbox", "invalid %s: %v", names[i], err)
		}
		values[i] = v
	}
	b := model.Bounds{MinLat: values[0], MinLon: values[1], MaxLat: values[2], MaxLon: values[3]}

	if b.MinLat < -90 || b.MinLat > 90 || b.MaxLat < -90 || b.MaxLat > 90 {
		return model.Bounds{}, model.Invalid("bbox", "latitude out of range [-90, 90]")
	}
	if b.MinLon < -180 || b.MinLon > 180 || b.MaxLon < -180 || b.MaxLon > 180 {
		return model.Bounds{}, model.Invalid("bbox", "longitude out of range [-180, 180]")
	}
	if b.MinLat > b.MaxLat || b.MinLon > b.MaxLon {
		return model.Bounds{}, model.Invalid("bbox", "minLat must be <= maxLat and minLon must be <= maxLon")
	}

	return b, nil
}
