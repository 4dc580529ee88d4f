package contract

import (
	"context"

	"assembly-rag-be/internal/entity"
	"assembly-rag-be/internal/repository/specification"

	"github.com/google/uuid"
)

type MinuteRepository interface {
	Create(ctx context.Context, minute *entity.Minute) error
	CreateBulk(ctx context.Context, minutes []*entity.Minute) error
	Update(ctx context.Context, minute *entity.Minute) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteBulk(ctx context.Context, ids []uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Minute, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Minute, error)
	// FindAllOrdered lists minutes in speech order, newest session first.
	FindAllOrdered(ctx context.Context, limit, offset int, specs ...specification.Specification) ([]*entity.Minute, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
