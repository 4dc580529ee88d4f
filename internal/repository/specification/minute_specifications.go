package specification

import (
	"time"

	"gorm.io/gorm"
)

type BySpeaker struct {
	Speaker string
}

func (s BySpeaker) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("speaker = ?", s.Speaker)
}

type ByMinutesType struct {
	MinutesType string
}

func (s ByMinutesType) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("minutes_type = ?", s.MinutesType)
}

// ByDateRange keeps minutes whose session date falls in [From, To). A zero
// bound leaves that side open.
type ByDateRange struct {
	From time.Time
	To   time.Time
}

func (s ByDateRange) Apply(db *gorm.DB) *gorm.DB {
	if !s.From.IsZero() {
		db = db.Where("minutes_date >= ?", s.From)
	}
	if !s.To.IsZero() {
		db = db.Where("minutes_date < ?", s.To)
	}
	return db
}
