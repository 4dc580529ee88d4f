package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MinuteEmbedding is one embedded chunk of a minute's contextual text.
// Document keeps the exact text the vector was computed from so search
// results can be rendered without re-joining the minute.
type MinuteEmbedding struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Document       string
	EmbeddingValue []float32
	MinuteId       uuid.UUID `gorm:"type:uuid;index"`
	ChunkIndex     int
	Metadata       json.RawMessage
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}
