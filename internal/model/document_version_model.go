package model

import (
	"time"

	"github.com/google/uuid"
)

type DocumentVersion struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey"`
	DocumentId uuid.UUID `gorm:"type:uuid;not null;index"`
	Content    string    `gorm:"type:text"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index"`
}

func (DocumentVersion) TableName() string {
	return "document_versions"
}
