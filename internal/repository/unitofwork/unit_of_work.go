package unitofwork

import (
	"context"

	"ai-writepad-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	DocumentRepository() contract.DocumentRepository
	DocumentVersionRepository() contract.DocumentVersionRepository
	SettingsRepository() contract.SettingsRepository
}
