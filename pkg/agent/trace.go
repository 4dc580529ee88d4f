package agent

import (
	"time"

	"github.com/google/uuid"
)

// TraceEvent records one observable transition of a run.
type TraceEvent struct {
	State     State     `json:"state"`
	Iteration int       `json:"iteration"`
	Step      string    `json:"step,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	At        time.Time `json:"at"`
}

// TraceFunc receives events as they happen, keyed by the query id so
// subscribers can follow a single run. A nil sink is skipped.
type TraceFunc func(queryId uuid.UUID, event TraceEvent)
