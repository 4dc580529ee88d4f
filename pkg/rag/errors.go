package rag

import (
	"errors"
	"fmt"
)

// Pipeline sentinel errors. Components wrap these with fmt.Errorf("...: %w")
// so callers match them with errors.Is regardless of how deep they surfaced.
var (
	// ErrInvalidQuery marks bad client input. Never retried.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrStoreUnavailable marks a vector store that could not be reached.
	ErrStoreUnavailable = errors.New("vector store unavailable")

	// ErrModelUnavailable marks a generation endpoint that kept failing
	// after the retry budget was spent.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrMalformedResponse marks model output that could not be parsed
	// into a valid step. Retried once with a stricter prompt, then surfaced.
	ErrMalformedResponse = errors.New("malformed model response")

	// ErrNoContext marks a run that reached termination with nothing
	// retrieved to answer from. Terminal, distinct from failure.
	ErrNoContext = errors.New("no context available to answer")
)

// Wire-level error kinds for the HTTP error envelope.
const (
	KindInvalidQuery      = "invalid_query"
	KindStoreUnavailable  = "store_unavailable"
	KindModelUnavailable  = "model_unavailable"
	KindMalformedResponse = "malformed_response"
	KindNoContext         = "no_context"
	KindInternal          = "internal"
)

// Kind maps err onto its wire-level error kind. Unknown errors collapse to
// KindInternal so raw internals never leak across the service boundary.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidQuery):
		return KindInvalidQuery
	case errors.Is(err, ErrStoreUnavailable):
		return KindStoreUnavailable
	case errors.Is(err, ErrModelUnavailable):
		return KindModelUnavailable
	case errors.Is(err, ErrMalformedResponse):
		return KindMalformedResponse
	case errors.Is(err, ErrNoContext):
		return KindNoContext
	default:
		return KindInternal
	}
}

// AgentError is the controller's top-level failure result. It records the
// machine state at failure time and stays transparent to errors.Is/As.
type AgentError struct {
	State string
	Err   error
}

func (e *AgentError) Error() string {
	return fmt.Sprintf("agent failed in state %s: %v", e.State, e.Err)
}

func (e *AgentError) Unwrap() error {
	return e.Err
}
