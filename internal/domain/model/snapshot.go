package model

import "time"

// CaseState is a visible case together with its status at the end of a day.
type CaseState struct {
	ID     int     `json:"id"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Status Status  `json:"status"`
}

type Position struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// DailyCount is the number of Infected-flagged cases diagnosed on Date and
// the running total up to it.
type DailyCount struct {
	Date       time.Time `json:"date"`
	Day        int       `json:"day"`
	New        int       `json:"new"`
	Cumulative int       `json:"cumulative"`
}

// DaySnapshot is the simulator state at the end of one day. Snapshots are
// independent copies and are never modified after they are returned.
type DaySnapshot struct {
	Day                int                   `json:"day"`
	Date               time.Time             `json:"date"`
	Cases              []CaseState           `json:"cases"`
	ByStatus           map[Status][]Position `json:"by_status"`
	Heat               []Position            `json:"heat"`
	Clusters           []ClusterCell         `json:"clusters"`
	CumulativeInfected int                   `json:"cumulative_infected"`
	Cumulative         []DailyCount          `json:"cumulative"`
}

// StatusCounts returns how many visible cases are in each status.
func (s DaySnapshot) StatusCounts() map[Status]int {
	counts := make(map[Status]int, len(Statuses))
	for _, st := range Statuses {
		counts[st] = 0
	}
	for _, c := range s.Cases {
		counts[c.Status]++
	}
	return counts
}
