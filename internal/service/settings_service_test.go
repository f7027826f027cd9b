package service

import (
	"context"
	"testing"

	"ai-writepad-be/internal/dto"
	"ai-writepad-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetReturnsDefaultsBeforeFirstSave(t *testing.T) {
	stack := newTestStack(t, &fakeCompletionProvider{})

	settings, err := stack.settings.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, entity.ProviderRouter, settings.Provider)
	assert.Equal(t, "test/model", settings.Model)
	assert.Equal(t, 1.0, settings.Temperature)
	assert.Equal(t, 500, settings.MaxTokens)
	assert.False(t, settings.EmbeddingsSearch)
}

func TestUpdatePersistsAndRoundTrips(t *testing.T) {
	stack := newTestStack(t, &fakeCompletionProvider{})
	ctx := context.Background()

	model := "moonshotai/kimi-k2::deepinfra/fp4"
	temperature := 0.8
	dark := true
	require.NoError(t, stack.settings.Update(ctx, &dto.UpdateSettingsRequest{
		Model:       &model,
		Temperature: &temperature,
		DarkMode:    &dark,
	}))

	settings, err := stack.settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, model, settings.Model)
	assert.Equal(t, 0.8, settings.Temperature)
	assert.True(t, settings.DarkMode)

	// Untouched fields keep their previous values.
	assert.Equal(t, 1.1, settings.RepetitionPenalty)
	assert.Equal(t, 500, settings.MaxTokens)
}

func TestPartialUpdateLeavesOtherFieldsAlone(t *testing.T) {
	stack := newTestStack(t, &fakeCompletionProvider{})
	ctx := context.Background()

	endpoint := "http://localhost:1234/v1"
	require.NoError(t, stack.settings.Update(ctx, &dto.UpdateSettingsRequest{EndpointURL: &endpoint}))

	maxTokens := 2048
	require.NoError(t, stack.settings.Update(ctx, &dto.UpdateSettingsRequest{MaxTokens: &maxTokens}))

	settings, err := stack.settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, endpoint, settings.EndpointURL)
	assert.Equal(t, 2048, settings.MaxTokens)
}

func TestSetTokenStoresTrimmedSecret(t *testing.T) {
	stack := newTestStack(t, &fakeCompletionProvider{})
	ctx := context.Background()

	require.NoError(t, stack.settings.SetToken(ctx, "  sk-or-abc123  "))

	settings, err := stack.settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sk-or-abc123", settings.APIKey)
}

func TestSetCurrentDocumentRoundTrips(t *testing.T) {
	stack := newTestStack(t, &fakeCompletionProvider{})
	ctx := context.Background()
	docID := createDocument(t, stack, "Doc")

	settings, err := stack.settings.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, settings.CurrentDocument)
	assert.Equal(t, docID, *settings.CurrentDocument)

	require.NoError(t, stack.settings.SetCurrentDocument(ctx, nil))
	settings, err = stack.settings.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, settings.CurrentDocument)
}
