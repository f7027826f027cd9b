package entity

import (
	"time"

	"github.com/google/uuid"
)

// UntitledName is the sentinel name given to new documents; a document still
// carrying it after a successful generation is eligible for autorename.
const UntitledName = "Untitled"

// MaxVersionHistory bounds the per-document version history; the oldest
// entry is dropped once the bound is exceeded.
const MaxVersionHistory = 50

type Document struct {
	Id        uuid.UUID
	Name      string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DocumentVersion is one append-only history entry, captured on every
// content update.
type DocumentVersion struct {
	Id         uuid.UUID
	DocumentId uuid.UUID
	Content    string
	CreatedAt  time.Time
}
