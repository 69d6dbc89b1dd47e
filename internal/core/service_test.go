package core

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nhlanhla999/Epidemiologist-Data-Science-Tool/internal/domain/model"
	"github.com/Nhlanhla999/Epidemiologist-Data-Science-Tool/internal/infrastructure/cache"
)

type fakeRecorder struct {
	mu   sync.Mutex
	runs []model.RunRecord
	err  error
}

func (f *fakeRecorder) SaveRun(ctx context.Context, run model.RunRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.runs = append(f.runs, run)
	return nil
}

func (f *fakeRecorder) GetRun(ctx context.Context, id string) (model.RunRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.runs {
		if r.ID == id {
			return r, nil
		}
	}
	return model.RunRecord{}, model.ErrRunNotFound
}

func (f *fakeRecorder) ListRuns(ctx context.Context, kind string, limit int) ([]model.RunRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.RunRecord, 0)
	for _, r := range f.runs {
		if kind == "" || r.Kind == kind {
			out = append(out, r)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeFacilities struct {
	facilities []model.HealthFacility
	err        error
	bounds     []model.Bounds
}

func (f *fakeFacilities) GetHealthFacilities(ctx context.Context, bounds model.Bounds) ([]model.HealthFacility, error) {
	f.bounds = append(f.bounds, bounds)
	return f.facilities, f.err
}

func TestServiceGenerateDatasetCached(t *testing.T) {
	c := cache.New(0, 0)
	svc := NewOutbreakService(c, nil, nil, nil, false)

	cfg := GeneratorConfig{Count: 20, InfectionRate: 0.5, DaySpan: 5, Seed: 3}
	first, err := svc.GenerateDataset(cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, c.ItemCount())

	second, err := svc.GenerateDataset(cfg)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, c.ItemCount())

	direct, err := GenerateCases(cfg, NewRand(3))
	require.NoError(t, err)
	assert.Equal(t, direct, first)

	_, err = svc.GenerateDataset(GeneratorConfig{})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestServiceRunSIRRecordsRun(t *testing.T) {
	rec := &fakeRecorder{}
	svc := NewOutbreakService(nil, rec, rec, nil, true)

	run, err := svc.RunSIR(context.Background(), baseParams())
	require.NoError(t, err)
	require.Len(t, run.States, 5)
	require.NotEmpty(t, run.RunID)

	stored, err := svc.GetRun(context.Background(), run.RunID)
	require.NoError(t, err)
	assert.Equal(t, model.RunKindSIR, stored.Kind)

	var params model.SIRParams
	require.NoError(t, json.Unmarshal(stored.Params, &params))
	assert.Equal(t, baseParams(), params)

	var states []model.CompartmentalState
	require.NoError(t, json.Unmarshal(stored.Result, &states))
	assert.Len(t, states, 5)
}

func TestServiceRecorderDisabled(t *testing.T) {
	rec := &fakeRecorder{}
	svc := NewOutbreakService(nil, rec, rec, nil, false)

	run, err := svc.RunSIR(context.Background(), baseParams())
	require.NoError(t, err)
	assert.Empty(t, run.RunID)
	assert.Empty(t, rec.runs)
}

func TestServiceRecorderFailureDoesNotFailRun(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("db down")}
	svc := NewOutbreakService(nil, rec, rec, nil, true)

	cmp, err := svc.CompareScenarios(context.Background(), baseParams(), model.ControlMeasures{VaccinationRate: 0.1})
	require.NoError(t, err)
	assert.Empty(t, cmp.RunID)
	assert.Len(t, cmp.Controlled, 5)
}

func TestServiceCompareScenariosValidation(t *testing.T) {
	svc := NewOutbreakService(cache.New(0, 0), nil, nil, nil, false)
	_, err := svc.CompareScenarios(context.Background(), baseParams(), model.ControlMeasures{SocialDistancing: 2})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestServiceGetRunWithoutStore(t *testing.T) {
	svc := NewOutbreakService(nil, nil, nil, nil, false)
	_, err := svc.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, model.ErrRunNotFound)

	runs, err := svc.ListRuns(context.Background(), "", 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestServiceListRuns(t *testing.T) {
	rec := &fakeRecorder{}
	svc := NewOutbreakService(nil, rec, rec, nil, true)
	ctx := context.Background()

	_, err := svc.RunSIR(ctx, baseParams())
	require.NoError(t, err)
	_, err = svc.CompareScenarios(ctx, baseParams(), model.ControlMeasures{})
	require.NoError(t, err)

	runs, err := svc.ListRuns(ctx, model.RunKindCompare, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, model.RunKindCompare, runs[0].Kind)

	_, err = svc.ListRuns(ctx, "", 0)
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestServiceDetectClustersWithFacilities(t *testing.T) {
	facilities := &fakeFacilities{facilities: []model.HealthFacility{
		{ID: 1, Name: "Clinic", Lat: -29.75, Lon: 26.05},
	}}
	svc := NewOutbreakService(nil, nil, nil, facilities, false)
	cases := casesAt(5, -29.7555, 26.0555, 1)

	clusters, err := svc.DetectClusters(context.Background(), cases, DefaultBinResolution, 5, true)
	require.NoError(t, err)
	require.Len(t, clusters, 1)
	require.NotNil(t, clusters[0].NearestFacility)
	assert.Equal(t, "Clinic", clusters[0].NearestFacility.Facility.Name)

	require.Len(t, facilities.bounds, 1)
	b := facilities.bounds[0]
	assert.InDelta(t, -29.8055, b.MinLat, 1e-9)
	assert.InDelta(t, 26.1055, b.MaxLon, 1e-9)
}

func TestServiceDetectClustersFacilityFailure(t *testing.T) {
	facilities := &fakeFacilities{err: errors.New("overpass unavailable")}
	svc := NewOutbreakService(nil, nil, nil, facilities, false)

	clusters, err := svc.DetectClusters(context.Background(), casesAt(5, -29.7555, 26.0555, 1), DefaultBinResolution, 5, true)
	require.NoError(t, err)
	require.Len(t, clusters, 1)
	assert.Nil(t, clusters[0].NearestFacility)
}

func TestServiceDetectClustersValidation(t *testing.T) {
	svc := NewOutbreakService(nil, nil, nil, nil, false)
	_, err := svc.DetectClusters(context.Background(), nil, DefaultBinResolution, 0, false)
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestServiceFacilitiesUnavailable(t *testing.T) {
	svc := NewOutbreakService(nil, nil, nil, nil, false)
	_, err := svc.FacilitiesIn(context.Background(), DefaultBounds)
	assert.ErrorIs(t, err, model.ErrFacilitiesUnavailable)
	_, err = svc.FacilitiesNear(context.Background(), nil)
	assert.ErrorIs(t, err, model.ErrFacilitiesUnavailable)
}

func TestServiceSimulate(t *testing.T) {
	rec := &fakeRecorder{}
	svc := NewOutbreakService(nil, rec, rec, nil, true)
	ds := testDataset(t, 60, 21)

	req := SimulationRequest{
		Dataset:    ds,
		Params:     RealtimeParams{Days: 6, VaccinationRate: 0.2, RecoveryRate: 0.3},
		Seed:       21,
		Resolution: DefaultBinResolution,
		Threshold:  DefaultClusterThreshold,
	}
	result, err := svc.Simulate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, result.Snapshots, 6)
	require.NotEmpty(t, result.RunID)

	sim := newTestSimulator(t, ds, req.Params, req.Seed)
	direct, err := sim.Snapshots(context.Background())
	require.NoError(t, err)
	assert.Equal(t, direct, result.Snapshots)

	stored, err := svc.GetRun(context.Background(), result.RunID)
	require.NoError(t, err)
	var summary simulationSummary
	require.NoError(t, json.Unmarshal(stored.Result, &summary))
	assert.Equal(t, 60, summary.Cases)
	assert.Equal(t, 6, summary.DaysRun)
}

func TestServiceSimulateCancelled(t *testing.T) {
	svc := NewOutbreakService(nil, nil, nil, nil, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Simulate(ctx, SimulationRequest{
		Params:     RealtimeParams{Days: 3},
		Resolution: DefaultBinResolution,
		Threshold:  DefaultClusterThreshold,
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCaseBounds(t *testing.T) {
	cases := []model.Case{
		{Lat: -29.9, Lon: 26.3},
		{Lat: -29.6, Lon: 25.9},
	}
	b := CaseBounds(cases, 0.1)
	assert.InDelta(t, -30.0, b.MinLat, 1e-9)
	assert.InDelta(t, -29.5, b.MaxLat, 1e-9)
	assert.InDelta(t, 25.8, b.MinLon, 1e-9)
	assert.InDelta(t, 26.4, b.MaxLon, 1e-9)
}

type strictRuns struct {
	t *testing.T
}

func (s strictRuns) GetRun(ctx context.Context, id string) (model.RunRecord, error) {
	s.t.Errorf("store queried with id %q", id)
	return model.RunRecord{}, errors.New("invalid input syntax for type uuid")
}

func (s strictRuns) ListRuns(ctx context.Context, kind string, limit int) ([]model.RunRecord, error) {
	return []model.RunRecord{}, nil
}

func TestServiceGetRunMalformedID(t *testing.T) {
	svc := NewOutbreakService(nil, nil, strictRuns{t: t}, nil, false)

	for _, id := range []string{"does-not-exist", "", "1234"} {
		_, err := svc.GetRun(context.Background(), id)
		assert.ErrorIs(t, err, model.ErrRunNotFound, "id %q", id)
	}
}
