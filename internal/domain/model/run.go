package model

import (
	"encoding/json"
	"time"
)

const (
	RunKindSIR      = "sir"
	RunKindCompare  = "compare"
	RunKindRealtime = "realtime"
)

// RunRecord is the audit entry written for every simulation run when run
// recording is enabled.
type RunRecord struct {
	ID        string          `json:"id" db:"id"`
	Kind      string          `json:"kind" db:"kind"`
	Params    json.RawMessage `json:"params" db:"params"`
	Result    json.RawMessage `json:"result" db:"result"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}
