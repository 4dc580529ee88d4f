package implementation

import (
	"context"
	"errors"

	"assembly-rag-be/internal/entity"
	"assembly-rag-be/internal/mapper"
	"assembly-rag-be/internal/model"
	"assembly-rag-be/internal/repository/contract"
	"assembly-rag-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type MinuteEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MinuteEmbeddingMapper
}

func NewMinuteEmbeddingRepository(db *gorm.DB) contract.MinuteEmbeddingRepository {
	return &MinuteEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewMinuteEmbeddingMapper(),
	}
}

func (r *MinuteEmbeddingRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *MinuteEmbeddingRepositoryImpl) Create(ctx context.Context, embedding *entity.MinuteEmbedding) error {
	m := r.mapper.ToModel(embedding)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*embedding = *r.mapper.ToEntity(m)
	return nil
}

func (r *MinuteEmbeddingRepositoryImpl) CreateBulk(ctx context.Context, embeddings []*entity.MinuteEmbedding) error {
	if len(embeddings) == 0 {
		return nil
	}
	models := r.mapper.ToModels(embeddings)
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*embeddings[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *MinuteEmbeddingRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.MinuteEmbedding{}, id).Error
}

func (r *MinuteEmbeddingRepositoryImpl) DeleteByMinuteIdUnscoped(ctx context.Context, minuteId uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().
		Where("minute_id = ?", minuteId).
		Delete(&model.MinuteEmbedding{}).Error
}


func (r *MinuteEmbeddingRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.MinuteEmbedding, error) {
	var m model.MinuteEmbedding
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *MinuteEmbeddingRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.MinuteEmbedding, error) {
	var models []*model.MinuteEmbedding
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *MinuteEmbeddingRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.MinuteEmbedding{}).Count(&count).Error
	return count, err
}

// SearchSimilarWithScore returns embeddings with similarity scores, filtered by threshold.
// Cosine distance in pgvector is 1 - cosine_similarity, so
// 1 - (embedding_value <=> query_vector) recovers the similarity.
func (r *MinuteEmbeddingRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*contract.ScoredMinuteEmbedding, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.MinuteEmbedding
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("minute_embeddings").
		Select("minute_embeddings.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Joins("JOIN minutes ON minutes.id = minute_embeddings.minute_id").
		Where("minute_embeddings.deleted_at IS NULL").
		Where("minutes.deleted_at IS NULL").
		Where("1 - (embedding_value <=> ?) >= ?", queryVector, threshold).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	scoredEmbeddings := make([]*contract.ScoredMinuteEmbedding, len(results))
	for i, res := range results {
		scoredEmbeddings[i] = &contract.ScoredMinuteEmbedding{
			Embedding:  r.mapper.ToEntity(&res.MinuteEmbedding),
			Similarity: res.Similarity,
		}
	}
	return scoredEmbeddings, nil
}
