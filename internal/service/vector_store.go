package service

import (
	"context"

	"assembly-rag-be/internal/entity"
	"assembly-rag-be/internal/repository/specification"
	"assembly-rag-be/internal/repository/unitofwork"
	"assembly-rag-be/pkg/rag"
	"assembly-rag-be/pkg/rag/search"

	"github.com/google/uuid"
)

// minuteVectorStore adapts the pgvector repositories to the retrieval layer.
// Each search hydrates speaker and session date from the owning minutes so a
// passage renders as a citation without another round trip.
type minuteVectorStore struct {
	uowFactory unitofwork.RepositoryFactory
	threshold  float64
}

func NewMinuteVectorStore(uowFactory unitofwork.RepositoryFactory, threshold float64) search.VectorStore {
	return &minuteVectorStore{
		uowFactory: uowFactory,
		threshold:  threshold,
	}
}

func (s *minuteVectorStore) Search(ctx context.Context, embedding []float32, k int) ([]rag.Passage, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	scored, err := uow.MinuteEmbeddingRepository().SearchSimilarWithScore(ctx, embedding, k, s.threshold)
	if err != nil {
		return nil, err
	}
	if len(scored) == 0 {
		return nil, nil
	}

	minuteIds := make([]uuid.UUID, 0, len(scored))
	seen := make(map[uuid.UUID]bool, len(scored))
	for _, sc := range scored {
		if !seen[sc.Embedding.MinuteId] {
			seen[sc.Embedding.MinuteId] = true
			minuteIds = append(minuteIds, sc.Embedding.MinuteId)
		}
	}

	minutes, err := uow.MinuteRepository().FindAll(ctx, specification.ByIDs{IDs: minuteIds})
	if err != nil {
		return nil, err
	}
	byId := make(map[uuid.UUID]*entity.Minute, len(minutes))
	for _, m := range minutes {
		byId[m.Id] = m
	}

	passages := make([]rag.Passage, 0, len(scored))
	for _, sc := range scored {
		p := rag.Passage{
			Id:         sc.Embedding.Id,
			DocumentId: sc.Embedding.MinuteId,
			Content:    sc.Embedding.Document,
			Score:      sc.Similarity,
			Origin:     rag.OriginInternal,
		}
		if m, ok := byId[sc.Embedding.MinuteId]; ok {
			p.Speaker = m.Speaker
			spokenAt := m.MinutesDate
			p.SpokenAt = &spokenAt
		}
		passages = append(passages, p)
	}
	return passages, nil
}
