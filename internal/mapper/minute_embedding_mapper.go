package mapper

import (
	"time"

	"assembly-rag-be/internal/entity"
	"assembly-rag-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type MinuteEmbeddingMapper struct{}

func NewMinuteEmbeddingMapper() *MinuteEmbeddingMapper {
	return &MinuteEmbeddingMapper{}
}

func (m *MinuteEmbeddingMapper) ToEntity(e *model.MinuteEmbedding) *entity.MinuteEmbedding {
	if e == nil {
		return nil
	}

	var deletedAt *time.Time
	if e.DeletedAt.Valid {
		t := e.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	return &entity.MinuteEmbedding{
		Id:             e.Id,
		Document:       e.Document,
		EmbeddingValue: e.EmbeddingValue.Slice(),
		MinuteId:       e.MinuteId,
		ChunkIndex:     e.ChunkIndex,
		Metadata:       []byte(e.Metadata),
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
		IsDeleted:      e.DeletedAt.Valid,
	}
}

func (m *MinuteEmbeddingMapper) ToModel(e *entity.MinuteEmbedding) *model.MinuteEmbedding {
	if e == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if e.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *e.DeletedAt, Valid: true}
	} else if e.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	return &model.MinuteEmbedding{
		Id:             e.Id,
		Document:       e.Document,
		EmbeddingValue: pgvector.NewVector(e.EmbeddingValue),
		MinuteId:       e.MinuteId,
		ChunkIndex:     e.ChunkIndex,
		Metadata:       datatypes.JSON(e.Metadata),
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
	}
}

func (m *MinuteEmbeddingMapper) ToEntities(embeddings []*model.MinuteEmbedding) []*entity.MinuteEmbedding {
	entities := make([]*entity.MinuteEmbedding, len(embeddings))
	for i, e := range embeddings {
		entities[i] = m.ToEntity(e)
	}
	return entities
}

func (m *MinuteEmbeddingMapper) ToModels(embeddings []*entity.MinuteEmbedding) []*model.MinuteEmbedding {
	models := make([]*model.MinuteEmbedding, len(embeddings))
	for i, e := range embeddings {
		models[i] = m.ToModel(e)
	}
	return models
}
