package implementation

import (
	"context"
	"errors"

	"assembly-rag-be/internal/entity"
	"assembly-rag-be/internal/mapper"
	"assembly-rag-be/internal/model"
	"assembly-rag-be/internal/repository/contract"
	"assembly-rag-be/internal/repository/scope"
	"assembly-rag-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MinuteRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MinuteMapper
}

func NewMinuteRepository(db *gorm.DB) contract.MinuteRepository {
	return &MinuteRepositoryImpl{
		db:     db,
		mapper: mapper.NewMinuteMapper(),
	}
}

func (r *MinuteRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *MinuteRepositoryImpl) Create(ctx context.Context, minute *entity.Minute) error {
	m := r.mapper.ToModel(minute)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*minute = *r.mapper.ToEntity(m)
	return nil
}

func (r *MinuteRepositoryImpl) CreateBulk(ctx context.Context, minutes []*entity.Minute) error {
	if len(minutes) == 0 {
		return nil
	}
	models := r.mapper.ToModels(minutes)
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*minutes[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *MinuteRepositoryImpl) Update(ctx context.Context, minute *entity.Minute) error {
	m := r.mapper.ToModel(minute)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*minute = *r.mapper.ToEntity(m)
	return nil
}

func (r *MinuteRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Minute{}, id).Error
}

func (r *MinuteRepositoryImpl) DeleteBulk(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.Minute{}).Error
}

func (r *MinuteRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Minute, error) {
	var m model.Minute
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *MinuteRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Minute, error) {
	var models []*model.Minute
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *MinuteRepositoryImpl) FindAllOrdered(ctx context.Context, limit, offset int, specs ...specification.Specification) ([]*entity.Minute, error) {
	if limit <= 0 {
		limit = 50
	}
	var models []*model.Minute
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	query = specification.Pagination{Limit: limit, Offset: offset}.Apply(query)
	err := query.Scopes(scope.OrderBySpeechSequence).Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *MinuteRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.Minute{}).Count(&count).Error
	return count, err
}
