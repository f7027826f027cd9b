package implementation

import (
	"context"
	"errors"

	"ai-writepad-be/internal/entity"
	"ai-writepad-be/internal/mapper"
	"ai-writepad-be/internal/model"
	"ai-writepad-be/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SettingsMapper
}

func NewSettingsRepository(db *gorm.DB) contract.SettingsRepository {
	return &SettingsRepositoryImpl{
		db:     db,
		mapper: mapper.NewSettingsMapper(),
	}
}

func (r *SettingsRepositoryImpl) Load(ctx context.Context) (*entity.Settings, error) {
	var m model.Settings
	if err := r.db.WithContext(ctx).First(&m, 1).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *SettingsRepositoryImpl) Save(ctx context.Context, settings *entity.Settings) error {
	m := r.mapper.ToModel(settings)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(m).Error
}
