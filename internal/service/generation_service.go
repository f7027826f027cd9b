package service

import (
	"context"
	"strings"
	"time"

	"ai-writepad-be/internal/dto"
	"ai-writepad-be/internal/entity"
	"ai-writepad-be/internal/pkg/logger"
	"ai-writepad-be/internal/repository/memory"
	"ai-writepad-be/internal/repository/specification"
	"ai-writepad-be/internal/repository/unitofwork"
	"ai-writepad-be/pkg/provider"
	"ai-writepad-be/pkg/writebehind"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ProviderFactory resolves settings into a completion backend. Swappable so
// tests can run the pipeline against a scripted provider.
type ProviderFactory func(endpoint, model, apiKey string) (provider.CompletionProvider, provider.ModelSpec, error)

type IGenerationService interface {
	// Submit validates, cancels any running generation on the same document,
	// schedules the streaming pipeline and returns immediately.
	Submit(ctx context.Context, req *dto.SubmitRequest) (*dto.SubmitResponse, error)

	// OpenStream attaches the single live subscriber to a session's event
	// channel. Terminal sessions within the grace window replay the terminal
	// event.
	OpenStream(generationID string) (*memory.Session, <-chan entity.StreamEvent, error)

	// Release frees the subscriber slot after a stream ends or disconnects.
	Release(session *memory.Session)

	// Cancel requests cooperative cancellation. Idempotent: terminal or
	// unknown sessions succeed with no state change.
	Cancel(ctx context.Context, generationID string) error
}

const (
	autosaveQuiet    = 750 * time.Millisecond
	autosaveMaxBytes = 4096

	priorCancelWait   = 5 * time.Second
	autorenameTimeout = 30 * time.Second
	autorenameMaxName = 80
)

type generationService struct {
	uowFactory      unitofwork.RepositoryFactory
	registry        *memory.SessionRegistry
	settingsService ISettingsService
	documentService IDocumentService
	providerFactory ProviderFactory
	sysLogger       logger.ILogger
	autosave        *writebehind.Coalescer
}

func NewGenerationService(
	uowFactory unitofwork.RepositoryFactory,
	registry *memory.SessionRegistry,
	settingsService ISettingsService,
	documentService IDocumentService,
	providerFactory ProviderFactory,
	sysLogger logger.ILogger,
) IGenerationService {
	g := &generationService{
		uowFactory:      uowFactory,
		registry:        registry,
		settingsService: settingsService,
		documentService: documentService,
		providerFactory: providerFactory,
		sysLogger:       sysLogger,
	}
	g.autosave = writebehind.New(autosaveQuiet, autosaveMaxBytes, g.flushDocument)
	return g
}

func (g *generationService) Submit(ctx context.Context, req *dto.SubmitRequest) (*dto.SubmitResponse, error) {
	docID, err := uuid.Parse(req.DocumentId)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid document id")
	}

	uow := g.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: docID})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "document not found")
	}

	settings, err := g.settingsService.Get(ctx)
	if err != nil {
		return nil, err
	}

	// Config problems surface here, before any session exists.
	prov, spec, err := g.providerFactory(settings.EndpointURL, settings.Model, settings.APIKey)
	if err != nil {
		return nil, err
	}

	// One generation per document: the prior session must reach a terminal
	// state before the new pipeline starts, so the two never write the same
	// content concurrently.
	if prior, ok := g.registry.ActiveForDocument(docID); ok {
		prior.RequestCancel()
		waitCtx, cancelWait := context.WithTimeout(ctx, priorCancelWait)
		err := prior.WaitTerminal(waitCtx)
		cancelWait()
		if err != nil {
			return nil, fiber.NewError(fiber.StatusConflict, "previous generation did not stop in time")
		}
	}

	session := g.registry.Create(docID, req.Prompt)

	completionReq := provider.CompletionRequest{
		Model:             spec.Model,
		ProviderHint:      spec.ProviderHint,
		Prompt:            req.Prompt,
		Temperature:       settings.Temperature,
		MinP:              settings.MinP,
		PresencePenalty:   settings.PresencePenalty,
		RepetitionPenalty: settings.RepetitionPenalty,
		MaxTokens:         settings.MaxTokens,
	}

	go g.runPipeline(session, prov, completionReq, doc.Name)

	g.sysLogger.Info("generation", "generation submitted", map[string]interface{}{
		"generation_id": session.ID,
		"document_id":   docID.String(),
	})

	return &dto.SubmitResponse{
		Success:      true,
		GenerationId: session.ID,
	}, nil
}

func (g *generationService) OpenStream(generationID string) (*memory.Session, <-chan entity.StreamEvent, error) {
	session, ok := g.registry.Get(generationID)
	if !ok {
		return nil, nil, fiber.NewError(fiber.StatusNotFound, "generation not found")
	}
	events, err := session.Subscribe()
	if err != nil {
		return nil, nil, fiber.NewError(fiber.StatusConflict, err.Error())
	}
	return session, events, nil
}

func (g *generationService) Release(session *memory.Session) {
	session.Unsubscribe()
}

func (g *generationService) Cancel(ctx context.Context, generationID string) error {
	session, ok := g.registry.Get(generationID)
	if !ok {
		// Already evicted past the grace window; nothing left to stop.
		return nil
	}
	session.RequestCancel()
	return nil
}

// runPipeline owns the session from first byte to terminal state.
func (g *generationService) runPipeline(session *memory.Session, prov provider.CompletionProvider, req provider.CompletionRequest, docName string) {
	ctx, cancel := context.WithCancel(context.Background())
	session.SetUpstreamCancel(cancel)
	defer cancel()

	chunks, err := prov.StreamCompletion(ctx, req)
	if err != nil {
		g.finalizeErrored(session, err)
		return
	}

	docKey := session.DocumentID.String()
	for chunk := range chunks {
		// Chunk boundary: the only place cancellation is observed. At most
		// one fragment can arrive after a cancel request.
		if session.CancelRequested() {
			g.finalizeCancelled(session)
			return
		}
		if chunk.Err != nil {
			g.finalizeErrored(session, chunk.Err)
			return
		}
		session.AppendText(chunk.Text)
		g.autosave.Note(docKey, len(chunk.Text))
	}

	if session.CancelRequested() {
		g.finalizeCancelled(session)
		return
	}

	// Provider end-of-stream: synchronous final flush, then autorename while
	// the event channel is still open.
	g.persistFinal(session)
	if docName == entity.UntitledName {
		g.autorename(session, prov, req)
	}
	session.Finalize(entity.GenerationDone, entity.StreamEvent{Done: true})
	g.registry.Retire(session)

	g.sysLogger.Info("generation", "generation finished", map[string]interface{}{
		"generation_id": session.ID,
		"document_id":   session.DocumentID.String(),
	})
}

func (g *generationService) finalizeCancelled(session *memory.Session) {
	// Accumulated text is flushed even on cancel; only future chunks are
	// suppressed.
	g.persistPartial(session)
	session.Finalize(entity.GenerationCancelled, entity.StreamEvent{Cancelled: true})
	session.CancelUpstream()
	g.registry.Retire(session)

	g.sysLogger.Info("generation", "generation cancelled", map[string]interface{}{
		"generation_id": session.ID,
		"document_id":   session.DocumentID.String(),
	})
}

func (g *generationService) finalizeErrored(session *memory.Session, cause error) {
	cause = provider.ClassifyTransportError(cause)
	g.persistPartial(session)
	session.Finalize(entity.GenerationErrored, entity.StreamEvent{Error: cause.Error()})
	g.registry.Retire(session)

	g.sysLogger.Error("generation", "generation failed", map[string]interface{}{
		"generation_id": session.ID,
		"document_id":   session.DocumentID.String(),
		"error":         cause.Error(),
	})
}

// flushDocument is the write-behind callback: persist the current prompt +
// accumulated text without touching version history.
func (g *generationService) flushDocument(key string) {
	docID, err := uuid.Parse(key)
	if err != nil {
		return
	}
	session, ok := g.registry.ActiveForDocument(docID)
	if !ok {
		return
	}
	g.persistPartial(session)
}

func (g *generationService) persistPartial(session *memory.Session) {
	ctx := context.Background()
	uow := g.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: session.DocumentID})
	if err != nil || doc == nil {
		return
	}

	content := session.Prompt + session.Accumulated()
	if doc.Content == content {
		return
	}
	doc.Content = content
	doc.UpdatedAt = time.Now()
	if err := uow.DocumentRepository().Update(ctx, doc); err != nil {
		g.sysLogger.Warn("generation", "autosave flush failed", map[string]interface{}{
			"document_id": session.DocumentID.String(),
			"error":       err.Error(),
		})
	}
}

// persistFinal writes the completed content through the document service so
// it lands with a version history entry and an embedding refresh.
func (g *generationService) persistFinal(session *memory.Session) {
	content := session.Prompt + session.Accumulated()
	err := g.documentService.Update(context.Background(), session.DocumentID, &dto.UpdateDocumentRequest{
		Content: &content,
	})
	if err != nil {
		g.sysLogger.Warn("generation", "final flush failed", map[string]interface{}{
			"document_id": session.DocumentID.String(),
			"error":       err.Error(),
		})
	}
}

func (g *generationService) autorename(session *memory.Session, prov provider.CompletionProvider, base provider.CompletionRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), autorenameTimeout)
	defer cancel()

	content := session.Prompt + session.Accumulated()
	if len(content) > 2000 {
		content = content[:2000]
	}

	req := base
	req.Prompt = "Here is the beginning of a document:\n\n" + content +
		"\n\nReply with only a short title (at most five words) for this document.\nTitle:"
	req.MaxTokens = 16

	raw, err := prov.Complete(ctx, req)
	if err != nil {
		// Non-fatal: the document stays Untitled and is eligible again on
		// the next generation.
		g.sysLogger.Warn("generation", "autorename failed", map[string]interface{}{
			"document_id": session.DocumentID.String(),
			"error":       err.Error(),
		})
		return
	}

	name := sanitizeTitle(raw)
	if name == "" {
		return
	}

	uow := g.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: session.DocumentID})
	if err != nil || doc == nil || doc.Name != entity.UntitledName {
		return
	}
	doc.Name = name
	doc.UpdatedAt = time.Now()
	if err := uow.DocumentRepository().Update(ctx, doc); err != nil {
		g.sysLogger.Warn("generation", "autorename persist failed", map[string]interface{}{
			"document_id": session.DocumentID.String(),
			"error":       err.Error(),
		})
		return
	}

	session.Emit(entity.StreamEvent{AutoRenamed: name})
}

func sanitizeTitle(raw string) string {
	name := strings.TrimSpace(raw)
	if i := strings.IndexByte(name, '\n'); i >= 0 {
		name = name[:i]
	}
	name = strings.Trim(name, `"'`)
	name = strings.TrimSpace(name)
	if len(name) > autorenameMaxName {
		name = strings.TrimSpace(name[:autorenameMaxName])
	}
	return name
}
