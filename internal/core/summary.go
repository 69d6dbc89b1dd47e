package core

import (
	"sort"

	"github.com/Nhlanhla999/Epidemiologist-Data-Science-Tool/internal/domain/model"
)

// AllInfectionTypes disables type filtering.
const AllInfectionTypes = "All"

// DefaultCenter is used when there are no cases to average.
var DefaultCenter = model.Position{Lat: -29.75, Lon: 26.0}

// InfectionSummary counts cases per infection type, most frequent first.
func InfectionSummary(cases []model.Case) []model.TypeCount {
	counts := make(map[string]int)
	for _, c := range cases {
		counts[c.InfectionType]++
	}

	out := make([]model.TypeCount, 0, len(counts))
	for t, n := range counts {
		out = append(out, model.TypeCount{InfectionType: t, Cases: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Cases != out[j].Cases {
			return out[i].Cases > out[j].Cases
		}
		return out[i].InfectionType < out[j].InfectionType
	})
	return out
}

// InfectionTypesOf returns the distinct infection types in cases, sorted.
func InfectionTypesOf(cases []model.Case) []string {
	seen := make(map[string]struct{})
	types := make([]string, 0)
	for _, c := range cases {
		if _, ok := seen[c.InfectionType]; ok {
			continue
		}
		seen[c.InfectionType] = struct{}{}
		types = append(types, c.InfectionType)
	}
	sort.Strings(types)
	return types
}

func FilterByType(cases []model.Case, infectionType string) []model.Case {
	if infectionType == "" || infectionType == AllInfectionTypes {
		out := make([]model.Case, len(cases))
		copy(out, cases)
		return out
	}
	out := make([]model.Case, 0)
	for _, c := range cases {
		if c.InfectionType == infectionType {
			out = append(out, c)
		}
	}
	return out
}

// MapCenter is the mean case position.
func MapCenter(cases []model.Case) model.Position {
	if len(cases) == 0 {
		return DefaultCenter
	}
	var lat, lon float64
	for _, c := range cases {
		lat += c.Lat
		lon += c.Lon
	}
	n := float64(len(cases))
	return model.Position{Lat: lat / n, Lon: lon / n}
}

// AgeDistribution buckets infected cases by age and sex. Empty buckets
// between the youngest and oldest infected case are kept.
func AgeDistribution(cases []model.Case, binWidth int) ([]model.AgeBin, error) {
	if binWidth <= 0 {
		return nil, model.Invalid("bin_width", "must be positive, got %d", binWidth)
	}

	var minBin, maxBin int
	found := false
	counts := make(map[int]map[string]int)
	for _, c := range cases {
		if !c.Infected {
			continue
		}
		b := floorDiv(c.Age, binWidth)
		if !found || b < minBin {
			minBin = b
		}
		if !found || b > maxBin {
			maxBin = b
		}
		found = true
		if counts[b] == nil {
			counts[b] = make(map[string]int)
		}
		counts[b][c.Sex]++
	}

	bins := make([]model.AgeBin, 0)
	if !found {
		return bins, nil
	}
	for b := minBin; b <= maxBin; b++ {
		bySex := counts[b]
		if bySex == nil {
			bySex = make(map[string]int)
		}
		bins = append(bins, model.AgeBin{MinAge: b * binWidth, MaxAge: (b + 1) * binWidth, BySex: bySex})
	}
	return bins, nil
}

// Summarize builds the dataset overview for the cases of one infection type
// ("All" for every case).
func Summarize(ds model.Dataset, infectionType string) model.Summary {
	filtered := FilterByType(ds.Cases, infectionType)
	ages, _ := AgeDistribution(filtered, 10)

	infected := 0
	for _, c := range filtered {
		if c.Infected {
			infected++
		}
	}

	return model.Summary{
		Total:          len(filtered),
		Infected:       infected,
		Center:         MapCenter(filtered),
		ByType:         InfectionSummary(filtered),
		DailyByType:    DailyTypeSummary(filtered),
		Cumulative:     CumulativeInfections(model.Dataset{Epoch: ds.Epoch, Cases: filtered}),
		AgeOfInfected:  ages,
		InfectionTypes: InfectionTypesOf(ds.Cases),
	}
}

// floorDiv rounds toward negative infinity so negative ages get their own bin.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
