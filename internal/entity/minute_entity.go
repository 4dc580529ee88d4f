package entity

import (
	"time"

	"github.com/google/uuid"
)

// Minute is a single speech entry from the assembly minutes. Content holds
// the speech summary, the rest locates it within a session.
type Minute struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey"`
	MinutesType    string
	MinutesDate    time.Time
	AssemblyNumber string
	SessionNumber  string
	SubSession     string
	SpeechOrder    int
	Speaker        string
	Position       string
	Content        string
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}
