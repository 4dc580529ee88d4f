package agent

import (
	"assembly-rag-be/pkg/rag"
)

// State names the controller's machine states.
type State string

const (
	StateStart      State = "START"
	StateRetrieving State = "RETRIEVING"
	StateReasoning  State = "REASONING"
	StateAnswered   State = "ANSWERED"
	StateFailed     State = "FAILED"
)

// AgentState carries one run's mutable progress. It is owned exclusively by
// the controller for the lifetime of a single request and discarded after.
type AgentState struct {
	State       State
	Iteration   int
	Accumulated []rag.Passage // deduplicated, arrival order
	Context     rag.Context   // current assembled window
	Trace       []TraceEvent
}
