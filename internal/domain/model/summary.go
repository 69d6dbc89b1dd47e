package model

import "time"

type TypeCount struct {
	InfectionType string `json:"infection_type"`
	Cases         int    `json:"cases"`
}

type DailyTypeCount struct {
	Date          time.Time `json:"date"`
	InfectionType string    `json:"infection_type"`
	Cases         int       `json:"cases"`
}

// AgeBin counts infected cases with MinAge <= age < MaxAge, split by sex.
type AgeBin struct {
	MinAge int            `json:"min_age"`
	MaxAge int            `json:"max_age"`
	BySex  map[string]int `json:"by_sex"`
}

// Summary is the dataset overview shown next to the map.
type Summary struct {
	Total          int              `json:"total"`
	Infected       int              `json:"infected"`
	Center         Position         `json:"center"`
	ByType         []TypeCount      `json:"by_type"`
	DailyByType    []DailyTypeCount `json:"daily_by_type"`
	Cumulative     []DailyCount     `json:"cumulative"`
	AgeOfInfected  []AgeBin         `json:"age_of_infected"`
	InfectionTypes []string         `json:"infection_types"`
}
