package mapper

import (
	"time"

	"assembly-rag-be/internal/entity"
	"assembly-rag-be/internal/model"

	"gorm.io/gorm"
)

type MinuteMapper struct{}

func NewMinuteMapper() *MinuteMapper {
	return &MinuteMapper{}
}

func (m *MinuteMapper) ToEntity(mm *model.Minute) *entity.Minute {
	if mm == nil {
		return nil
	}

	var deletedAt *time.Time
	if mm.DeletedAt.Valid {
		t := mm.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !mm.UpdatedAt.IsZero() {
		t := mm.UpdatedAt
		updatedAt = &t
	}

	return &entity.Minute{
		Id:             mm.Id,
		MinutesType:    mm.MinutesType,
		MinutesDate:    mm.MinutesDate,
		AssemblyNumber: mm.AssemblyNumber,
		SessionNumber:  mm.SessionNumber,
		SubSession:     mm.SubSession,
		SpeechOrder:    mm.SpeechOrder,
		Speaker:        mm.Speaker,
		Position:       mm.Position,
		Content:        mm.Content,
		CreatedAt:      mm.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
		IsDeleted:      mm.DeletedAt.Valid,
	}
}

func (m *MinuteMapper) ToModel(e *entity.Minute) *model.Minute {
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

	return &model.Minute{
		Id:             e.Id,
		MinutesType:    e.MinutesType,
		MinutesDate:    e.MinutesDate,
		AssemblyNumber: e.AssemblyNumber,
		SessionNumber:  e.SessionNumber,
		SubSession:     e.SubSession,
		SpeechOrder:    e.SpeechOrder,
		Speaker:        e.Speaker,
		Position:       e.Position,
		Content:        e.Content,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
	}
}

func (m *MinuteMapper) ToEntities(minutes []*model.Minute) []*entity.Minute {
	entities := make([]*entity.Minute, len(minutes))
	for i, mm := range minutes {
		entities[i] = m.ToEntity(mm)
	}
	return entities
}

func (m *MinuteMapper) ToModels(minutes []*entity.Minute) []*model.Minute {
	models := make([]*model.Minute, len(minutes))
	for i, e := range minutes {
		models[i] = m.ToModel(e)
	}
	return models
}
