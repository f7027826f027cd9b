package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"ai-writepad-be/internal/config"
	"ai-writepad-be/internal/model"
	"ai-writepad-be/internal/repository/memory"
	"ai-writepad-be/internal/repository/unitofwork"
	"ai-writepad-be/pkg/database"
	"ai-writepad-be/pkg/provider"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewGormDB(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Document{}, &model.DocumentVersion{}, &model.Settings{}))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Llm: config.LlmConfig{
			DefaultProvider: "router",
			DefaultModel:    "test/model",
		},
	}
}

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }

type fakePublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (p *fakePublisher) Publish(ctx context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return nil
}

type fakeEmbedder struct {
	vectors map[string][]float32
}

func (e *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := e.vectors[text]; ok {
		return vec, nil
	}
	return []float32{0, 0}, nil
}

// fakeCompletionProvider scripts the upstream: a fixed chunk sequence, an
// endless stream, or a failure at a chosen point.
type fakeCompletionProvider struct {
	chunks       []string
	chunkDelay   time.Duration
	endless      bool
	streamErr    error // fails StreamCompletion itself
	midStreamErr error // delivered as a final Chunk{Err} after the chunks
	completeText string
	completeErr  error
}

func (f *fakeCompletionProvider) StreamCompletion(ctx context.Context, req provider.CompletionRequest) (<-chan provider.Chunk, error) {
	if f.streamErr != nil {
		return nil, f.streamErr
	}

	out := make(chan provider.Chunk)
	go func() {
		defer close(out)
		emit := func(chunk provider.Chunk) bool {
			if f.chunkDelay > 0 {
				time.Sleep(f.chunkDelay)
			}
			select {
			case out <- chunk:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for _, text := range f.chunks {
			if !emit(provider.Chunk{Text: text}) {
				return
			}
		}
		if f.endless {
			for emit(provider.Chunk{Text: "x"}) {
			}
			return
		}
		if f.midStreamErr != nil {
			emit(provider.Chunk{Err: f.midStreamErr})
		}
	}()
	return out, nil
}

func (f *fakeCompletionProvider) Complete(ctx context.Context, req provider.CompletionRequest) (string, error) {
	return f.completeText, f.completeErr
}

func fixedProviderFactory(p provider.CompletionProvider) ProviderFactory {
	return func(endpoint, model, apiKey string) (provider.CompletionProvider, provider.ModelSpec, error) {
		return p, provider.ModelSpec{Kind: provider.KindRouter, Model: model}, nil
	}
}

// testStack bundles the wired services backed by an in-memory database.
type testStack struct {
	uowFactory unitofwork.RepositoryFactory
	registry   *memory.SessionRegistry
	cache      *memory.EmbeddingCache
	publisher  *fakePublisher
	embedder   *fakeEmbedder
	settings   ISettingsService
	documents  IDocumentService
	generation IGenerationService
}

func newTestStack(t *testing.T, prov provider.CompletionProvider) *testStack {
	t.Helper()

	db := newTestDB(t)
	uowFactory := unitofwork.NewRepositoryFactory(db)
	registry := memory.NewSessionRegistry()
	cache := memory.NewEmbeddingCache()
	publisher := &fakePublisher{}
	embedder := &fakeEmbedder{vectors: map[string][]float32{}}

	settings := NewSettingsService(uowFactory, testConfig())
	documents := NewDocumentService(uowFactory, settings, publisher, embedder, cache, noopLogger{})
	generation := NewGenerationService(uowFactory, registry, settings, documents, fixedProviderFactory(prov), noopLogger{})

	return &testStack{
		uowFactory: uowFactory,
		registry:   registry,
		cache:      cache,
		publisher:  publisher,
		embedder:   embedder,
		settings:   settings,
		documents:  documents,
		generation: generation,
	}
}
