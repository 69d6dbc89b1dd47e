package render

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/Nhlanhla999/Epidemiologist-Data-Science-Tool/internal/domain/model"
)

var snapshotHeader = []string{
	"day", "date", "visible", "susceptible", "infected", "recovered", "vaccinated",
	"clusters", "largest_cluster", "cumulative_infected",
}

// SnapshotCSV records one row of counts per simulated day.
type SnapshotCSV struct {
	w *csv.Writer
}

func NewSnapshotCSV(w io.Writer) (*SnapshotCSV, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(snapshotHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	return &SnapshotCSV{w: cw}, nil
}

func (s *SnapshotCSV) Write(snap model.DaySnapshot) error {
	counts := snap.StatusCounts()
	largest := 0
	for _, c := range snap.Clusters {
		if c.Count > largest {
			largest = c.Count
		}
	}
	date := ""
	if !snap.Date.IsZero() {
		date = snap.Date.Format("2006-01-02")
	}

	row := []string{
		strconv.Itoa(snap.Day),
		date,
		strconv.Itoa(len(snap.Cases)),
		strconv.Itoa(counts[model.Susceptible]),
		strconv.Itoa(counts[model.Infected]),
		strconv.Itoa(counts[model.Recovered]),
		strconv.Itoa(counts[model.Vaccinated]),
		strconv.Itoa(len(snap.Clusters)),
		strconv.Itoa(largest),
		strconv.Itoa(snap.CumulativeInfected),
	}
	if err := s.w.Write(row); err != nil {
		return fmt.Errorf("failed to write CSV row for day %d: %w", snap.Day, err)
	}
	return nil
}

func (s *SnapshotCSV) Flush() error {
	s.w.Flush()
	return s.w.Error()
}
