package core

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/Nhlanhla999/Epidemiologist-Data-Science-Tool/internal/domain/model"
)

type RealtimeParams struct {
	Days            int     `json:"days"`
	VaccinationRate float64 `json:"vaccination_rate"`
	RecoveryRate    float64 `json:"recovery_rate"`
}

func (p RealtimeParams) Validate() error {
	if p.Days < 0 {
		return model.Invalid("days", "must not be negative, got %d", p.Days)
	}
	if !validProb(p.VaccinationRate) {
		return model.Invalid("vaccination_rate", "must be in [0,1], got %g", p.VaccinationRate)
	}
	if !validProb(p.RecoveryRate) {
		return model.Invalid("recovery_rate", "must be in [0,1], got %g", p.RecoveryRate)
	}
	return nil
}

// Simulator steps the status of every case one day at a time. A case takes
// part from its diagnosis Day onwards. Infected cases recover with
// probability RecoveryRate per day; nobody becomes infected, infection
// growth only exists in the compartmental model.
//
// A Simulator is not safe for concurrent use. The snapshots it returns are
// copies and may be handed to other goroutines.
type Simulator struct {
	cases    []model.Case
	status   []model.Status
	params   RealtimeParams
	rng      *rand.Rand
	detector *ClusterDetector
	epoch    time.Time
	series   []model.DailyCount
	day      int
}

// NewSimulator assigns the initial statuses: Vaccinated with probability
// VaccinationRate, otherwise Susceptible, and Infected for every case whose
// Infected flag is set. One draw is taken per case in dataset order.
func NewSimulator(ds model.Dataset, p RealtimeParams, rng *rand.Rand, detector *ClusterDetector) (*Simulator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("nil random source")
	}
	if detector == nil {
		return nil, fmt.Errorf("nil cluster detector")
	}

	cases := make([]model.Case, len(ds.Cases))
	copy(cases, ds.Cases)

	status := make([]model.Status, len(cases))
	for i, c := range cases {
		status[i] = model.Susceptible
		if rng.Float64() < p.VaccinationRate {
			status[i] = model.Vaccinated
		}
		if c.Infected {
			status[i] = model.Infected
		}
	}

	return &Simulator{
		cases:    cases,
		status:   status,
		params:   p,
		rng:      rng,
		detector: detector,
		epoch:    ds.Epoch,
		series:   CumulativeInfections(model.Dataset{Epoch: ds.Epoch, Cases: cases}),
	}, nil
}

// Day returns the number of days simulated so far.
func (s *Simulator) Day() int { return s.day }

func (s *Simulator) Done() bool { return s.day >= s.params.Days }

// Step simulates the next day and returns its snapshot. ok is false once
// all Days have been simulated.
func (s *Simulator) Step() (snap model.DaySnapshot, ok bool) {
	if s.Done() {
		return model.DaySnapshot{}, false
	}
	d := s.day

	for i, c := range s.cases {
		if c.Day > d {
			continue
		}
		// Only Infected cases draw.
		if s.status[i] == model.Infected && s.rng.Float64() < s.params.RecoveryRate {
			s.status[i] = model.Recovered
		}
	}

	snap = s.snapshot(d)
	s.day++
	return snap, true
}

func (s *Simulator) snapshot(d int) model.DaySnapshot {
	snap := model.DaySnapshot{
		Day:      d,
		Cases:    make([]model.CaseState, 0),
		ByStatus: make(map[model.Status][]model.Position, len(model.Statuses)),
		Heat:     make([]model.Position, 0),
	}
	if !s.epoch.IsZero() {
		snap.Date = s.epoch.AddDate(0, 0, d)
	}
	for _, st := range model.Statuses {
		snap.ByStatus[st] = make([]model.Position, 0)
	}

	for i, c := range s.cases {
		if c.Day > d {
			continue
		}
		st := s.status[i]
		pos := model.Position{Lat: c.Lat, Lon: c.Lon}
		snap.Cases = append(snap.Cases, model.CaseState{ID: c.ID, Lat: c.Lat, Lon: c.Lon, Status: st})
		snap.ByStatus[st] = append(snap.ByStatus[st], pos)
		if st == model.Infected {
			snap.Heat = append(snap.Heat, pos)
		}
	}

	snap.Clusters = s.detector.DetectStates(snap.Cases)
	snap.Cumulative, snap.CumulativeInfected = cumulativeUpTo(s.series, d)
	return snap
}

// Run steps through the remaining days, handing each snapshot to fn. ctx is
// checked before every day; a cancelled context stops the run and its error
// is returned. An error from fn also stops the run.
func (s *Simulator) Run(ctx context.Context, fn func(model.DaySnapshot) error) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		snap, ok := s.Step()
		if !ok {
			return nil
		}
		if err := fn(snap); err != nil {
			return err
		}
	}
}

// Snapshots runs the simulation to completion and collects every day.
func (s *Simulator) Snapshots(ctx context.Context) ([]model.DaySnapshot, error) {
	snaps := make([]model.DaySnapshot, 0, s.params.Days-s.day)
	err := s.Run(ctx, func(snap model.DaySnapshot) error {
		snaps = append(snaps, snap)
		return nil
	})
	return snaps, err
}
