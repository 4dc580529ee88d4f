package dto

import (
	"time"

	"github.com/google/uuid"
)

type QueryRequest struct {
	Query        string   `json:"query" validate:"required"`
	History      []string `json:"history,omitempty" validate:"max=10"`
	TopK         int      `json:"top_k,omitempty" validate:"omitempty,min=1,max=20"`
	IncludeTrace bool     `json:"include_trace,omitempty"`
}

// PassageDTO is one piece of source material an answer was grounded on.
type PassageDTO struct {
	Id       uuid.UUID  `json:"id"`
	Content  string     `json:"content"`
	Score    float64    `json:"score"`
	Speaker  string     `json:"speaker,omitempty"`
	SpokenAt *time.Time `json:"spoken_at,omitempty"`
	Origin   string     `json:"origin"`
	URL      string     `json:"url,omitempty"`
}

type TraceEventDTO struct {
	State     string    `json:"state"`
	Iteration int       `json:"iteration"`
	Step      string    `json:"step,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	At        time.Time `json:"at"`
}

type QueryResponse struct {
	Answer       string          `json:"answer"`
	Sources      []uuid.UUID     `json:"sources"`
	Passages     []PassageDTO    `json:"passages,omitempty"`
	Strategy     string          `json:"strategy"`
	Iterations   int             `json:"iterations"`
	ProcessingMs int64           `json:"processing_ms"`
	Cached       bool            `json:"cached"`
	Trace        []TraceEventDTO `json:"trace,omitempty"`
}
