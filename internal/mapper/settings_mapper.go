package mapper

import (
	"ai-writepad-be/internal/entity"
	"ai-writepad-be/internal/model"
)

type SettingsMapper struct{}

func NewSettingsMapper() *SettingsMapper {
	return &SettingsMapper{}
}

func (m *SettingsMapper) ToEntity(s *model.Settings) *entity.Settings {
	if s == nil {
		return nil
	}
	return &entity.Settings{
		Provider:          entity.ProviderKind(s.Provider),
		Model:             s.Model,
		EndpointURL:       s.EndpointURL,
		APIKey:            s.APIKey,
		Temperature:       s.Temperature,
		MinP:              s.MinP,
		PresencePenalty:   s.PresencePenalty,
		RepetitionPenalty: s.RepetitionPenalty,
		MaxTokens:         s.MaxTokens,
		DarkMode:          s.DarkMode,
		EmbeddingsSearch:  s.EmbeddingsSearch,
		CurrentDocument:   s.CurrentDocument,
		UpdatedAt:         s.UpdatedAt,
	}
}

func (m *SettingsMapper) ToModel(s *entity.Settings) *model.Settings {
	if s == nil {
		return nil
	}
	return &model.Settings{
		Id:                1, // single-row table
		Provider:          string(s.Provider),
		Model:             s.Model,
		EndpointURL:       s.EndpointURL,
		APIKey:            s.APIKey,
		Temperature:       s.Temperature,
		MinP:              s.MinP,
		PresencePenalty:   s.PresencePenalty,
		RepetitionPenalty: s.RepetitionPenalty,
		MaxTokens:         s.MaxTokens,
		DarkMode:          s.DarkMode,
		EmbeddingsSearch:  s.EmbeddingsSearch,
		CurrentDocument:   s.CurrentDocument,
		UpdatedAt:         s.UpdatedAt,
	}
}
