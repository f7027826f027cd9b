package contract

import (
	"context"

	"ai-writepad-be/internal/entity"
	"ai-writepad-be/internal/repository/specification"

	"github.com/google/uuid"
)

type DocumentVersionRepository interface {
	Create(ctx context.Context, version *entity.DocumentVersion) error

	// TrimToLimit drops the oldest versions of a document until at most
	// limit remain (FIFO eviction).
	TrimToLimit(ctx context.Context, documentID uuid.UUID, limit int) error

	DeleteByDocumentId(ctx context.Context, documentID uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentVersion, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
