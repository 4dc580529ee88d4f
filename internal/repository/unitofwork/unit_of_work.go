package unitofwork

import (
	"context"

	"assembly-rag-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	MinuteRepository() contract.MinuteRepository
	MinuteEmbeddingRepository() contract.MinuteEmbeddingRepository
}

// RepositoryFactory hands out request-scoped units of work.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
