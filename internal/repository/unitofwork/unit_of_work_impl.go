package unitofwork

import (
	"context"
	"errors"

	"assembly-rag-be/internal/repository/contract"
	"assembly-rag-be/internal/repository/implementation"

	"gorm.io/gorm"
)

var (
	ErrTxActive = errors.New("transaction already started")
	ErrTxNone   = errors.New("no active transaction")
)

var _ UnitOfWork = &unitOfWork{}

// unitOfWork scopes repository work to one request. Until Begin is called
// every repository runs directly against the pool; between Begin and
// Commit/Rollback they all share the same transaction.
type unitOfWork struct {
	db *gorm.DB
	tx *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &unitOfWork{db: db}
}

func (u *unitOfWork) conn() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return ErrTxActive
	}
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	u.tx = tx
	return nil
}

func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return ErrTxNone
	}
	defer func() { u.tx = nil }()
	return u.tx.Commit().Error
}

func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return ErrTxNone
	}
	defer func() { u.tx = nil }()
	return u.tx.Rollback().Error
}

func (u *unitOfWork) MinuteRepository() contract.MinuteRepository {
	return implementation.NewMinuteRepository(u.conn())
}

func (u *unitOfWork) MinuteEmbeddingRepository() contract.MinuteEmbeddingRepository {
	return implementation.NewMinuteEmbeddingRepository(u.conn())
}

// repositoryFactory hands each request a fresh unit of work over the shared
// pool. The context only matters once Begin is called.
type repositoryFactory struct {
	db *gorm.DB
}

func NewRepositoryFactory(db *gorm.DB) RepositoryFactory {
	return &repositoryFactory{db: db}
}

func (f *repositoryFactory) NewUnitOfWork(_ context.Context) UnitOfWork {
	return NewUnitOfWork(f.db)
}
