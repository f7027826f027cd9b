package contract

import (
	"context"

	"ai-writepad-be/internal/entity"
)

type SettingsRepository interface {
	// Load returns the settings row, or nil if none has been saved yet.
	Load(ctx context.Context) (*entity.Settings, error)
	Save(ctx context.Context, settings *entity.Settings) error
}
