package implementation

import (
	"context"

	"ai-writepad-be/internal/entity"
	"ai-writepad-be/internal/mapper"
	"ai-writepad-be/internal/model"
	"ai-writepad-be/internal/repository/contract"
	"ai-writepad-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentVersionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DocumentMapper
}

func NewDocumentVersionRepository(db *gorm.DB) contract.DocumentVersionRepository {
	return &DocumentVersionRepositoryImpl{
		db:     db,
		mapper: mapper.NewDocumentMapper(),
	}
}

func (r *DocumentVersionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *DocumentVersionRepositoryImpl) Create(ctx context.Context, version *entity.DocumentVersion) error {
	m := r.mapper.VersionToModel(version)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*version = *r.mapper.VersionToEntity(m)
	return nil
}

func (r *DocumentVersionRepositoryImpl) TrimToLimit(ctx context.Context, documentID uuid.UUID, limit int) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.DocumentVersion{}).
		Where("document_id = ?", documentID).
		Count(&count).Error; err != nil {
		return err
	}

	excess := int(count) - limit
	if excess <= 0 {
		return nil
	}

	// Oldest first, so eviction is FIFO.
	var stale []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&model.DocumentVersion{}).
		Where("document_id = ?", documentID).
		Order("created_at ASC").
		Limit(excess).
		Pluck("id", &stale).Error; err != nil {
		return err
	}

	return r.db.WithContext(ctx).Delete(&model.DocumentVersion{}, "id IN ?", stale).Error
}

func (r *DocumentVersionRepositoryImpl) DeleteByDocumentId(ctx context.Context, documentID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("document_id = ?", documentID).Delete(&model.DocumentVersion{}).Error
}

func (r *DocumentVersionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentVersion, error) {
	var models []*model.DocumentVersion
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.VersionsToEntities(models), nil
}

func (r *DocumentVersionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.DocumentVersion{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
