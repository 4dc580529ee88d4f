package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Specification is a composable query predicate. Repositories fold any
// number of them onto a base query before executing it.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}

// ByID matches a single row by primary key.
type ByID struct {
	ID uuid.UUID
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

// ByIDs matches any of the given primary keys. An empty list matches
// nothing rather than everything.
type ByIDs struct {
	IDs []uuid.UUID
}

func (s ByIDs) Apply(db *gorm.DB) *gorm.DB {
	if len(s.IDs) == 0 {
		return db.Where("1 = 0")
	}
	return db.Where("id IN ?", s.IDs)
}

// Pagination windows a list query. Non-positive values leave that clause
// off entirely.
type Pagination struct {
	Limit  int
	Offset int
}

func (s Pagination) Apply(db *gorm.DB) *gorm.DB {
	if s.Limit > 0 {
		db = db.Limit(s.Limit)
	}
	if s.Offset > 0 {
		db = db.Offset(s.Offset)
	}
	return db
}
