package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"assembly-rag-be/pkg/rag"
)

// StepKind tags the closed set of actions a reasoning round can take.
type StepKind string

const (
	StepRetrieve StepKind = "retrieve"
	StepAnswer   StepKind = "answer"
)

// Step is the parsed outcome of one reasoning round. Exactly one kind is
// set: a retrieve step carries the follow-up query, an answer step carries
// the final answer text.
type Step struct {
	Kind   StepKind
	Query  string
	Answer string
}

type stepPayload struct {
	Action string `json:"action"`
	Query  string `json:"query"`
	Answer string `json:"answer"`
}

// ParseStep extracts the outermost JSON object from raw model output and
// validates it into a Step. Any failure wraps rag.ErrMalformedResponse so
// callers can decide whether to retry.
func ParseStep(raw string) (Step, error) {
	jsonContent := extractJSON(raw)
	if jsonContent == "" {
		return Step{}, fmt.Errorf("no JSON object in model output: %w", rag.ErrMalformedResponse)
	}

	var payload stepPayload
	if err := json.Unmarshal([]byte(jsonContent), &payload); err != nil {
		return Step{}, fmt.Errorf("unmarshal step: %v: %w", err, rag.ErrMalformedResponse)
	}

	switch StepKind(strings.ToLower(strings.TrimSpace(payload.Action))) {
	case StepRetrieve:
		query := strings.TrimSpace(payload.Query)
		if query == "" {
			return Step{}, fmt.Errorf("retrieve step without a query: %w", rag.ErrMalformedResponse)
		}
		return Step{Kind: StepRetrieve, Query: query}, nil
	case StepAnswer:
		answer := strings.TrimSpace(payload.Answer)
		if answer == "" {
			return Step{}, fmt.Errorf("answer step without answer text: %w", rag.ErrMalformedResponse)
		}
		return Step{Kind: StepAnswer, Answer: answer}, nil
	default:
		return Step{}, fmt.Errorf("unknown step action %q: %w", payload.Action, rag.ErrMalformedResponse)
	}
}

// extractJSON pulls the first balanced-looking JSON object out of a model
// response that may be wrapped in prose or markdown fences.
func extractJSON(response string) string {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")
	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return ""
	}
	return response[startIdx : endIdx+1]
}
