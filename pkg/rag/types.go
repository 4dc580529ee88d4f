package rag

import (
	"time"

	"github.com/google/uuid"
)

// Passage origin markers. Web passages carry a URL instead of a document
// reference and are never persisted.
const (
	OriginInternal = "internal"
	OriginWeb      = "web"
)

// Query is a single user question flowing through the pipeline.
// Immutable once created; the request id follows it through logs,
// trace events and the websocket hub.
type Query struct {
	Id      uuid.UUID
	Text    string
	History []string
}

// NewQuery builds a Query with a fresh request id.
func NewQuery(text string, history []string) Query {
	return Query{
		Id:      uuid.New(),
		Text:    text,
		History: history,
	}
}

// Passage is a retrievable unit of reference text. Embedding vectors stay in
// the vector store; a passage references them by Id only.
type Passage struct {
	Id         uuid.UUID  `json:"id"`
	DocumentId uuid.UUID  `json:"document_id,omitempty"`
	Content    string     `json:"content"`
	Score      float64    `json:"score"`
	Speaker    string     `json:"speaker,omitempty"`
	SpokenAt   *time.Time `json:"spoken_at,omitempty"`
	Origin     string     `json:"origin"`
	URL        string     `json:"url,omitempty"`
}

// Context is the assembled, budget-bounded reference material handed to the
// model. Passages are unique by Id and keep their ranked order.
type Context struct {
	Passages      []Passage
	TokenEstimate int
}

// Empty reports whether the context holds no passages.
func (c Context) Empty() bool {
	return len(c.Passages) == 0
}

// PassageIds returns the ids of the contained passages in order.
func (c Context) PassageIds() []uuid.UUID {
	ids := make([]uuid.UUID, len(c.Passages))
	for i, p := range c.Passages {
		ids[i] = p.Id
	}
	return ids
}
