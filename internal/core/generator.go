package core

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/Nhlanhla999/Epidemiologist-Data-Science-Tool/internal/domain/model"
)

// InfectionTypes are the mobile clinic categories assigned to generated cases.
var InfectionTypes = []string{
	"Waterborne Infections", "Vector-Borne Diseases", "Respiratory Infections",
	"Gastrointestinal Infections", "Skin Infections", "Trauma/Injuries",
	"Chronic Conditions", "Nutritional Deficiencies", "Vaccine-Preventable Diseases",
	"Hygiene and Sanitation-Related Issues", "Other",
}

const (
	maxAge        = 90
	secondsPerDay = 24 * 60 * 60
)

var (
	DefaultBounds = model.Bounds{MinLat: -30.0, MinLon: 25.5, MaxLat: -29.5, MaxLon: 26.5}
	DefaultEpoch  = time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)
)

type GeneratorConfig struct {
	Count         int          `json:"count"`
	InfectionRate float64      `json:"infection_rate"`
	DaySpan       int          `json:"day_span"`
	Seed          int64        `json:"seed"`
	Bounds        model.Bounds `json:"bounds"`
	Epoch         time.Time    `json:"epoch"`
}

func (c GeneratorConfig) withDefaults() GeneratorConfig {
	if c.Bounds == (model.Bounds{}) {
		c.Bounds = DefaultBounds
	}
	if c.Epoch.IsZero() {
		c.Epoch = DefaultEpoch
	}
	return c
}

func (c GeneratorConfig) Validate() error {
	if c.Count <= 0 {
		return model.Invalid("count", "must be positive, got %d", c.Count)
	}
	if !validProb(c.InfectionRate) {
		return model.Invalid("infection_rate", "must be in [0,1], got %g", c.InfectionRate)
	}
	if c.DaySpan <= 0 {
		return model.Invalid("day_span", "must be positive, got %d", c.DaySpan)
	}
	if c.Bounds.MinLat > c.Bounds.MaxLat || c.Bounds.MinLon > c.Bounds.MaxLon {
		return model.Invalid("bounds", "min must not exceed max")
	}
	return nil
}

// NewRand returns the seeded source every generator and simulator call
// draws from. Each run owns its own source.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// GenerateCases builds a synthetic dataset. Attributes are drawn column by
// column so a given seed always reproduces the same cases.
func GenerateCases(cfg GeneratorConfig, rng *rand.Rand) (model.Dataset, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return model.Dataset{}, err
	}
	if rng == nil {
		return model.Dataset{}, fmt.Errorf("nil random source")
	}

	n := cfg.Count
	cases := make([]model.Case, n)
	for i := range cases {
		cases[i].ID = i + 1
	}
	for i := range cases {
		cases[i].Age = rng.Intn(maxAge)
	}
	for i := range cases {
		cases[i].Sex = randomSex(rng)
	}
	for i := range cases {
		cases[i].Lat = uniform(rng, cfg.Bounds.MinLat, cfg.Bounds.MaxLat)
	}
	for i := range cases {
		cases[i].Lon = uniform(rng, cfg.Bounds.MinLon, cfg.Bounds.MaxLon)
	}
	for i := range cases {
		cases[i].Infected = rng.Float64() < cfg.InfectionRate
	}
	for i := range cases {
		cases[i].InfectionType = InfectionTypes[rng.Intn(len(InfectionTypes))]
	}
	epoch := truncateDay(cfg.Epoch)
	for i := range cases {
		cases[i].DiagnosisDate = epoch.AddDate(0, 0, rng.Intn(cfg.DaySpan))
	}

	return NewDataset(cases)
}

// CasesFromRecords turns ingested rows into a dataset, synthesising the
// optional columns the source did not carry. Rows without a diagnosis date
// are dropped. Rows without an ID are numbered after the largest ID present.
func CasesFromRecords(records []model.CaseRecord, rng *rand.Rand) (model.Dataset, error) {
	if rng == nil {
		return model.Dataset{}, fmt.Errorf("nil random source")
	}

	nextID := 1
	for i, r := range records {
		if err := validateRecord(i, r); err != nil {
			return model.Dataset{}, err
		}
		if r.ID >= nextID {
			nextID = r.ID + 1
		}
	}

	cases := make([]model.Case, 0, len(records))
	dropped := 0
	for _, r := range records {
		if r.DiagnosisDate.IsZero() {
			dropped++
			continue
		}
		c := model.Case{
			ID:            r.ID,
			Lat:           r.Lat,
			Lon:           r.Lon,
			DiagnosisDate: r.DiagnosisDate,
			Infected:      r.Infected,
			Sex:           r.Sex,
			InfectionType: r.InfectionType,
		}
		if c.ID == 0 {
			c.ID = nextID
			nextID++
		}
		if r.Age != nil {
			c.Age = *r.Age
		} else {
			c.Age = rng.Intn(maxAge)
		}
		if c.Sex == "" {
			c.Sex = randomSex(rng)
		}
		if c.InfectionType == "" {
			c.InfectionType = model.UnknownInfectionType
		}
		cases = append(cases, c)
	}
	if dropped > 0 {
		log.Printf("Warning: dropped %d case records without a diagnosis date", dropped)
	}

	return NewDataset(cases)
}

func validateRecord(i int, r model.CaseRecord) error {
	if r.ID < 0 {
		return model.Invalid("id", "record %d: must not be negative, got %d", i, r.ID)
	}
	if r.Age != nil && *r.Age < 0 {
		return model.Invalid("age", "record %d: must not be negative, got %d", i, *r.Age)
	}
	if r.Lat < -90 || r.Lat > 90 {
		return model.Invalid("lat", "record %d: out of range [-90, 90], got %g", i, r.Lat)
	}
	if r.Lon < -180 || r.Lon > 180 {
		return model.Invalid("lon", "record %d: out of range [-180, 180], got %g", i, r.Lon)
	}
	return nil
}

// NewDataset derives the Day of every case from the earliest diagnosis date
// and checks that IDs are unique. The input slice is not modified.
func NewDataset(cases []model.Case) (model.Dataset, error) {
	out := make([]model.Case, len(cases))
	copy(out, cases)
	if len(out) == 0 {
		return model.Dataset{Cases: out}, nil
	}

	seen := make(map[int]struct{}, len(out))
	epoch := truncateDay(out[0].DiagnosisDate)
	for i := range out {
		if _, dup := seen[out[i].ID]; dup {
			return model.Dataset{}, model.Invalid("id", "duplicate case id %d", out[i].ID)
		}
		seen[out[i].ID] = struct{}{}

		out[i].DiagnosisDate = truncateDay(out[i].DiagnosisDate)
		if out[i].DiagnosisDate.Before(epoch) {
			epoch = out[i].DiagnosisDate
		}
	}
	for i := range out {
		out[i].Day = daysBetween(epoch, out[i].DiagnosisDate)
	}

	return model.Dataset{Epoch: epoch, Cases: out}, nil
}

// MaxDay returns the largest Day in ds, or -1 for an empty dataset.
func MaxDay(ds model.Dataset) int {
	max := -1
	for _, c := range ds.Cases {
		if c.Day > max {
			max = c.Day
		}
	}
	return max
}

func randomSex(rng *rand.Rand) string {
	if rng.Intn(2) == 0 {
		return model.SexMale
	}
	return model.SexFemale
}

func uniform(rng *rand.Rand, min, max float64) float64 {
	return min + rng.Float64()*(max-min)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween counts calendar days between two UTC midnights.
func daysBetween(from, to time.Time) int {
	return int((to.Unix() - from.Unix()) / secondsPerDay)
}

func validProb(p float64) bool { return p >= 0.0 && p <= 1.0 }
