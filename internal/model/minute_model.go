package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Minute struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	MinutesType    string         `gorm:"type:varchar(50);index"`
	MinutesDate    time.Time      `gorm:"index"`
	AssemblyNumber string         `gorm:"type:varchar(20)"`
	SessionNumber  string         `gorm:"type:varchar(20)"`
	SubSession     string         `gorm:"type:varchar(20)"`
	SpeechOrder    int            `gorm:"default:0"`
	Speaker        string         `gorm:"type:varchar(100);index"`
	Position       string         `gorm:"type:varchar(100)"`
	Content        string         `gorm:"type:text;not null"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

func (Minute) TableName() string {
	return "minutes"
}
