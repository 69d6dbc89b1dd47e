package core

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/Nhlanhla999/Epidemiologist-Data-Science-Tool/internal/domain/model"
	"github.com/Nhlanhla999/Epidemiologist-Data-Science-Tool/internal/domain/repository"
	"github.com/Nhlanhla999/Epidemiologist-Data-Science-Tool/internal/infrastructure/cache"
)

// facilityPadding widens the case bounding box, in degrees, before looking
// up facilities so clusters near the edge still find one outside it.
const facilityPadding = 0.05

type Cache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{})
}

type SIRRun struct {
	RunID  string                     `json:"run_id,omitempty"`
	States []model.CompartmentalState `json:"states"`
}

type ComparisonRun struct {
	RunID string `json:"run_id,omitempty"`
	model.Comparison
}

type SimulationRequest struct {
	Dataset    model.Dataset
	Params     RealtimeParams
	Seed       int64
	Resolution float64
	Threshold  int
}

type SimulationResult struct {
	RunID     string              `json:"run_id,omitempty"`
	Snapshots []model.DaySnapshot `json:"snapshots"`
}

// simulationSummary is what gets recorded for a real-time run; the full
// snapshots are too large to keep.
type simulationSummary struct {
	Cases       int                  `json:"cases"`
	DaysRun     int                  `json:"days_run"`
	FinalCounts map[model.Status]int `json:"final_counts"`
	AlertDays   int                  `json:"alert_days"`
	MaxClusters int                  `json:"max_clusters"`
}

type OutbreakService struct {
	cache      Cache
	recorder   repository.RunRecorder
	runs       repository.RunReader
	facilities repository.FacilityRepository
	saveRuns   bool
}

// NewOutbreakService wires the service. cache, recorder, runs and
// facilities may be nil; the matching features are then disabled.
func NewOutbreakService(
	cache Cache,
	recorder repository.RunRecorder,
	runs repository.RunReader,
	facilities repository.FacilityRepository,
	saveRuns bool,
) *OutbreakService {
	return &OutbreakService{
		cache:      cache,
		recorder:   recorder,
		runs:       runs,
		facilities: facilities,
		saveRuns:   saveRuns,
	}
}

// GenerateDataset builds a synthetic dataset; equal configs share one cached
// result.
func (s *OutbreakService) GenerateDataset(cfg GeneratorConfig) (model.Dataset, error) {
	key := cache.Key("dataset", cfg.withDefaults())
	if v, ok := s.cacheGet(key); ok {
		return v.(model.Dataset), nil
	}

	ds, err := GenerateCases(cfg, NewRand(cfg.Seed))
	if err != nil {
		return model.Dataset{}, err
	}
	s.cacheSet(key, ds)
	return ds, nil
}

func (s *OutbreakService) DatasetFromRecords(records []model.CaseRecord, seed int64) (model.Dataset, error) {
	return CasesFromRecords(records, NewRand(seed))
}

func (s *OutbreakService) RunSIR(ctx context.Context, p model.SIRParams) (SIRRun, error) {
	key := cache.Key("sir", p)
	states, ok := s.cachedStates(key)
	if !ok {
		var err error
		states, err = RunSIR(p)
		if err != nil {
			return SIRRun{}, err
		}
		s.cacheSet(key, states)
	}

	return SIRRun{
		RunID:  s.record(ctx, model.RunKindSIR, p, states),
		States: states,
	}, nil
}

func (s *OutbreakService) CompareScenarios(ctx context.Context, p model.SIRParams, c model.ControlMeasures) (ComparisonRun, error) {
	key := cache.Key("compare", p, c)
	var cmp model.Comparison
	if v, ok := s.cacheGet(key); ok {
		cmp = v.(model.Comparison)
	} else {
		var err error
		cmp, err = CompareScenarios(p, c)
		if err != nil {
			return ComparisonRun{}, err
		}
		s.cacheSet(key, cmp)
	}

	params := struct {
		SIR      model.SIRParams       `json:"sir"`
		Controls model.ControlMeasures `json:"controls"`
	}{p, c}
	return ComparisonRun{
		RunID:      s.record(ctx, model.RunKindCompare, params, cmp),
		Comparison: cmp,
	}, nil
}

// DetectClusters finds alert clusters among cases. With withFacilities set
// and a facility repository configured, every cluster is annotated with its
// nearest health facility; a failed lookup only logs a warning.
func (s *OutbreakService) DetectClusters(
	ctx context.Context,
	cases []model.Case,
	resolution float64,
	threshold int,
	withFacilities bool,
) ([]model.ClusterCell, error) {
	detector, err := NewClusterDetector(resolution, threshold)
	if err != nil {
		return nil, err
	}

	clusters := detector.Detect(cases)
	if !withFacilities || s.facilities == nil || len(clusters) == 0 {
		return clusters, nil
	}

	facilities, err := s.FacilitiesNear(ctx, cases)
	if err != nil {
		log.Printf("Warning: failed to get health facilities: %v", err)
		return clusters, nil
	}
	return AnnotateClusters(clusters, facilities), nil
}

// FacilitiesNear returns the health facilities around the cases.
func (s *OutbreakService) FacilitiesNear(ctx context.Context, cases []model.Case) ([]model.HealthFacility, error) {
	if s.facilities == nil {
		return nil, model.ErrFacilitiesUnavailable
	}
	if len(cases) == 0 {
		return []model.HealthFacility{}, nil
	}
	return s.facilities.GetHealthFacilities(ctx, CaseBounds(cases, facilityPadding))
}

// FacilitiesIn returns the health facilities inside bounds.
func (s *OutbreakService) FacilitiesIn(ctx context.Context, bounds model.Bounds) ([]model.HealthFacility, error) {
	if s.facilities == nil {
		return nil, model.ErrFacilitiesUnavailable
	}
	return s.facilities.GetHealthFacilities(ctx, bounds)
}

// Simulate runs the real-time simulation to completion. A cancelled ctx
// stops it between days.
func (s *OutbreakService) Simulate(ctx context.Context, req SimulationRequest) (SimulationResult, error) {
	snaps := make([]model.DaySnapshot, 0)
	err := s.StreamSimulation(ctx, req, func(snap model.DaySnapshot) error {
		snaps = append(snaps, snap)
		return nil
	})
	if err != nil {
		return SimulationResult{}, err
	}

	return SimulationResult{
		RunID:     s.record(ctx, model.RunKindRealtime, realtimeParams(req), summarizeSimulation(req.Dataset, snaps)),
		Snapshots: snaps,
	}, nil
}

// StreamSimulation hands every day's snapshot to fn as soon as it is
// finalised.
func (s *OutbreakService) StreamSimulation(ctx context.Context, req SimulationRequest, fn func(model.DaySnapshot) error) error {
	detector, err := NewClusterDetector(req.Resolution, req.Threshold)
	if err != nil {
		return err
	}
	sim, err := NewSimulator(req.Dataset, req.Params, NewRand(req.Seed), detector)
	if err != nil {
		return err
	}
	return sim.Run(ctx, fn)
}

func (s *OutbreakService) Summarize(ds model.Dataset, infectionType string) model.Summary {
	return Summarize(ds, infectionType)
}

func (s *OutbreakService) GetRun(ctx context.Context, id string) (model.RunRecord, error) {
	if s.runs == nil {
		return model.RunRecord{}, model.ErrRunNotFound
	}
	// Run IDs are UUIDs; anything else cannot exist in the store.
	if _, err := uuid.Parse(id); err != nil {
		return model.RunRecord{}, model.ErrRunNotFound
	}
	return s.runs.GetRun(ctx, id)
}

func (s *OutbreakService) ListRuns(ctx context.Context, kind string, limit int) ([]model.RunRecord, error) {
	if s.runs == nil {
		return []model.RunRecord{}, nil
	}
	if limit <= 0 {
		return nil, model.Invalid("limit", "must be positive, got %d", limit)
	}
	return s.runs.ListRuns(ctx, kind, limit)
}

// record writes the run through the recorder when run recording is on and
// returns its ID, or "" when nothing was recorded.
func (s *OutbreakService) record(ctx context.Context, kind string, params, result interface{}) string {
	if !s.saveRuns || s.recorder == nil {
		return ""
	}

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		log.Printf("Warning: failed to marshal %s run params: %v", kind, err)
		return ""
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		log.Printf("Warning: failed to marshal %s run result: %v", kind, err)
		return ""
	}

	run := model.RunRecord{
		ID:        uuid.New().String(),
		Kind:      kind,
		Params:    paramsJSON,
		Result:    resultJSON,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.recorder.SaveRun(ctx, run); err != nil {
		log.Printf("Warning: failed to record %s run: %v", kind, err)
		return ""
	}
	return run.ID
}

func (s *OutbreakService) cachedStates(key string) ([]model.CompartmentalState, bool) {
	v, ok := s.cacheGet(key)
	if !ok {
		return nil, false
	}
	states, ok := v.([]model.CompartmentalState)
	return states, ok
}

func (s *OutbreakService) cacheGet(key string) (interface{}, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Get(key)
}

func (s *OutbreakService) cacheSet(key string, value interface{}) {
	if s.cache != nil {
		s.cache.Set(key, value)
	}
}

// CaseBounds is the bounding box of cases widened by pad degrees.
func CaseBounds(cases []model.Case, pad float64) model.Bounds {
	points := make(orb.MultiPoint, len(cases))
	for i, c := range cases {
		points[i] = c.Point()
	}
	b := points.Bound().Pad(pad)
	return model.Bounds{MinLat: b.Min.Lat(), MinLon: b.Min.Lon(), MaxLat: b.Max.Lat(), MaxLon: b.Max.Lon()}
}

func realtimeParams(req SimulationRequest) interface{} {
	return struct {
		Params     RealtimeParams `json:"params"`
		Seed       int64          `json:"seed"`
		Resolution float64        `json:"resolution"`
		Threshold  int            `json:"threshold"`
		Cases      int            `json:"cases"`
	}{req.Params, req.Seed, req.Resolution, req.Threshold, len(req.Dataset.Cases)}
}

func summarizeSimulation(ds model.Dataset, snaps []model.DaySnapshot) simulationSummary {
	sum := simulationSummary{
		Cases:       len(ds.Cases),
		DaysRun:     len(snaps),
		FinalCounts: make(map[model.Status]int),
	}
	if len(snaps) > 0 {
		sum.FinalCounts = snaps[len(snaps)-1].StatusCounts()
	}
	for _, snap := range snaps {
		if len(snap.Clusters) > 0 {
			sum.AlertDays++
		}
		if len(snap.Clusters) > sum.MaxClusters {
			sum.MaxClusters = len(snap.Clusters)
		}
	}
	return sum
}
