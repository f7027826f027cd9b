package model

import (
	"time"

	"github.com/google/uuid"
)

// Settings is a single-row table (Id=1).
type Settings struct {
	Id                uint       `gorm:"primaryKey"`
	Provider          string     `gorm:"type:varchar(32);not null;default:router"`
	Model             string     `gorm:"type:varchar(255);not null"`
	EndpointURL       string     `gorm:"type:varchar(512)"`
	APIKey            string     `gorm:"type:varchar(512)"`
	Temperature       float64    `gorm:"not null;default:1.0"`
	MinP              float64    `gorm:"not null;default:0.01"`
	PresencePenalty   float64    `gorm:"not null;default:0.1"`
	RepetitionPenalty float64    `gorm:"not null;default:1.1"`
	MaxTokens         int        `gorm:"not null;default:500"`
	DarkMode          bool       `gorm:"not null;default:false"`
	EmbeddingsSearch  bool       `gorm:"not null;default:false"`
	CurrentDocument   *uuid.UUID `gorm:"type:uuid"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime"`
}

func (Settings) TableName() string {
	return "settings"
}
