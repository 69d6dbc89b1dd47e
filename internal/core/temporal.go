package core

import (
	"sort"
	"time"

	"github.com/Nhlanhla999/Epidemiologist-Data-Science-Tool/internal/domain/model"
)

// CumulativeInfections counts Infected-flagged cases per diagnosis date and
// keeps a running total. Dates without infected cases are omitted. The flag
// is immutable, so the series does not depend on any simulated status.
func CumulativeInfections(ds model.Dataset) []model.DailyCount {
	perDay := make(map[int]int)
	for _, c := range ds.Cases {
		if c.Infected {
			perDay[c.Day]++
		}
	}

	days := make([]int, 0, len(perDay))
	for d := range perDay {
		days = append(days, d)
	}
	sort.Ints(days)

	series := make([]model.DailyCount, 0, len(days))
	total := 0
	for _, d := range days {
		total += perDay[d]
		series = append(series, model.DailyCount{
			Date:       ds.Epoch.AddDate(0, 0, d),
			Day:        d,
			New:        perDay[d],
			Cumulative: total,
		})
	}
	return series
}

// cumulativeUpTo returns a copy of the prefix of series with Day <= day.
func cumulativeUpTo(series []model.DailyCount, day int) ([]model.DailyCount, int) {
	n := sort.Search(len(series), func(i int) bool { return series[i].Day > day })
	if n == 0 {
		return []model.DailyCount{}, 0
	}
	prefix := make([]model.DailyCount, n)
	copy(prefix, series[:n])
	return prefix, series[n-1].Cumulative
}

// DailyTypeSummary counts cases per (diagnosis date, infection type).
func DailyTypeSummary(cases []model.Case) []model.DailyTypeCount {
	type key struct {
		date time.Time
		typ  string
	}
	counts := make(map[key]int)
	for _, c := range cases {
		counts[key{date: c.DiagnosisDate, typ: c.InfectionType}]++
	}

	out := make([]model.DailyTypeCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, model.DailyTypeCount{Date: k.date, InfectionType: k.typ, Cases: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].InfectionType < out[j].InfectionType
	})
	return out
}
