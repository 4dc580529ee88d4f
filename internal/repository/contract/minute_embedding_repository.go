package contract

import (
	"context"

	"assembly-rag-be/internal/entity"
	"assembly-rag-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredMinuteEmbedding wraps MinuteEmbedding with its similarity score
type ScoredMinuteEmbedding struct {
	Embedding  *entity.MinuteEmbedding
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type MinuteEmbeddingRepository interface {
	Create(ctx context.Context, embedding *entity.MinuteEmbedding) error
	CreateBulk(ctx context.Context, embeddings []*entity.MinuteEmbedding) error
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteByMinuteIdUnscoped hard deletes every chunk of a minute, used
	// before re-indexing so stale vectors never shadow fresh ones.
	DeleteByMinuteIdUnscoped(ctx context.Context, minuteId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.MinuteEmbedding, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.MinuteEmbedding, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilarWithScore returns embeddings with their similarity scores, filtered by threshold
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*ScoredMinuteEmbedding, error)
}
