package service

import (
	"context"
	"strings"
	"time"

	"ai-writepad-be/internal/config"
	"ai-writepad-be/internal/dto"
	"ai-writepad-be/internal/entity"
	"ai-writepad-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type ISettingsService interface {
	// Get returns the persisted settings, or config-seeded defaults when
	// nothing has been saved yet.
	Get(ctx context.Context) (*entity.Settings, error)
	Update(ctx context.Context, req *dto.UpdateSettingsRequest) error
	SetToken(ctx context.Context, token string) error
	SetCurrentDocument(ctx context.Context, id *uuid.UUID) error
}

type settingsService struct {
	uowFactory unitofwork.RepositoryFactory
	cfg        *config.Config
}

func NewSettingsService(uowFactory unitofwork.RepositoryFactory, cfg *config.Config) ISettingsService {
	return &settingsService{
		uowFactory: uowFactory,
		cfg:        cfg,
	}
}

func (s *settingsService) defaults() *entity.Settings {
	return &entity.Settings{
		Provider:          entity.ProviderKind(s.cfg.Llm.DefaultProvider),
		Model:             s.cfg.Llm.DefaultModel,
		EndpointURL:       s.cfg.Llm.DefaultEndpointURL,
		Temperature:       1.0,
		MinP:              0.01,
		PresencePenalty:   0.1,
		RepetitionPenalty: 1.1,
		MaxTokens:         500,
		UpdatedAt:         time.Now(),
	}
}

func (s *settingsService) Get(ctx context.Context) (*entity.Settings, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	settings, err := uow.SettingsRepository().Load(ctx)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return s.defaults(), nil
	}
	return settings, nil
}

func (s *settingsService) Update(ctx context.Context, req *dto.UpdateSettingsRequest) error {
	settings, err := s.Get(ctx)
	if err != nil {
		return err
	}

	if req.Provider != nil {
		settings.Provider = entity.ProviderKind(*req.Provider)
	}
	if req.Model != nil {
		settings.Model = strings.TrimSpace(*req.Model)
	}
	if req.EndpointURL != nil {
		settings.EndpointURL = strings.TrimSpace(*req.EndpointURL)
	}
	if req.Temperature != nil {
		settings.Temperature = *req.Temperature
	}
	if req.MinP != nil {
		settings.MinP = *req.MinP
	}
	if req.PresencePenalty != nil {
		settings.PresencePenalty = *req.PresencePenalty
	}
	if req.RepetitionPenalty != nil {
		settings.RepetitionPenalty = *req.RepetitionPenalty
	}
	if req.MaxTokens != nil {
		settings.MaxTokens = *req.MaxTokens
	}
	if req.DarkMode != nil {
		settings.DarkMode = *req.DarkMode
	}
	if req.EmbeddingsSearch != nil {
		settings.EmbeddingsSearch = *req.EmbeddingsSearch
	}
	settings.UpdatedAt = time.Now()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.SettingsRepository().Save(ctx, settings)
}

func (s *settingsService) SetToken(ctx context.Context, token string) error {
	settings, err := s.Get(ctx)
	if err != nil {
		return err
	}
	settings.APIKey = strings.TrimSpace(token)
	settings.UpdatedAt = time.Now()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.SettingsRepository().Save(ctx, settings)
}

func (s *settingsService) SetCurrentDocument(ctx context.Context, id *uuid.UUID) error {
	settings, err := s.Get(ctx)
	if err != nil {
		return err
	}
	settings.CurrentDocument = id
	settings.UpdatedAt = time.Now()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.SettingsRepository().Save(ctx, settings)
}
