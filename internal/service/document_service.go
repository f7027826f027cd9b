package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ai-writepad-be/internal/dto"
	"ai-writepad-be/internal/entity"
	"ai-writepad-be/internal/pkg/logger"
	"ai-writepad-be/internal/repository/memory"
	"ai-writepad-be/internal/repository/specification"
	"ai-writepad-be/internal/repository/unitofwork"
	"ai-writepad-be/pkg/embedding"
	pkgSearch "ai-writepad-be/pkg/search"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDocumentService interface {
	List(ctx context.Context) (*dto.ListDocumentsResponse, error)
	Create(ctx context.Context, req *dto.CreateDocumentRequest) (*dto.CreateDocumentResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.ShowDocumentResponse, error)
	Update(ctx context.Context, id uuid.UUID, req *dto.UpdateDocumentRequest) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetCurrent(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string) (*dto.SearchDocumentsResponse, error)
}

type documentService struct {
	uowFactory        unitofwork.RepositoryFactory
	settingsService   ISettingsService
	publisherService  IPublisherService
	embeddingProvider embedding.Provider
	embeddingCache    *memory.EmbeddingCache
	sysLogger         logger.ILogger
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	settingsService ISettingsService,
	publisherService IPublisherService,
	embeddingProvider embedding.Provider,
	embeddingCache *memory.EmbeddingCache,
	sysLogger logger.ILogger,
) IDocumentService {
	return &documentService{
		uowFactory:        uowFactory,
		settingsService:   settingsService,
		publisherService:  publisherService,
		embeddingProvider: embeddingProvider,
		embeddingCache:    embeddingCache,
		sysLogger:         sysLogger,
	}
}

func (c *documentService) List(ctx context.Context) (*dto.ListDocumentsResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	docs, err := uow.DocumentRepository().FindAll(ctx, specification.OrderBy{Field: "updated_at", Desc: true})
	if err != nil {
		return nil, err
	}

	settings, err := c.settingsService.Get(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]dto.DocumentSummary, 0, len(docs))
	for _, doc := range docs {
		summaries = append(summaries, dto.DocumentSummary{
			Id:        doc.Id,
			Name:      doc.Name,
			CreatedAt: doc.CreatedAt,
			UpdatedAt: doc.UpdatedAt,
		})
	}

	return &dto.ListDocumentsResponse{
		Success:         true,
		Documents:       summaries,
		CurrentDocument: settings.CurrentDocument,
	}, nil
}

func (c *documentService) Create(ctx context.Context, req *dto.CreateDocumentRequest) (*dto.CreateDocumentResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = entity.UntitledName
	}

	doc := entity.Document{
		Id:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.DocumentRepository().Create(ctx, &doc); err != nil {
		return nil, err
	}

	// A fresh document becomes the current one.
	id := doc.Id
	if err := c.settingsService.SetCurrentDocument(ctx, &id); err != nil {
		return nil, err
	}

	return &dto.CreateDocumentResponse{
		Success:  true,
		Document: toDetail(&doc),
	}, nil
}

func (c *documentService) Show(ctx context.Context, id uuid.UUID) (*dto.ShowDocumentResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "document not found")
	}

	return &dto.ShowDocumentResponse{
		Success:  true,
		Document: toDetail(doc),
	}, nil
}

func (c *documentService) Update(ctx context.Context, id uuid.UUID, req *dto.UpdateDocumentRequest) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if doc == nil {
		return fiber.NewError(fiber.StatusNotFound, "document not found")
	}

	if req.Name != nil {
		doc.Name = strings.TrimSpace(*req.Name)
	}

	contentChanged := req.Content != nil && *req.Content != doc.Content
	if req.Content != nil {
		doc.Content = *req.Content
	}
	doc.UpdatedAt = time.Now()

	if err := uow.DocumentRepository().Update(ctx, doc); err != nil {
		return err
	}

	if contentChanged {
		if err := c.appendVersion(ctx, uow, doc); err != nil {
			return err
		}
		c.publishEmbed(ctx, doc.Id)
	}

	return nil
}

func (c *documentService) appendVersion(ctx context.Context, uow unitofwork.UnitOfWork, doc *entity.Document) error {
	version := entity.DocumentVersion{
		Id:         uuid.New(),
		DocumentId: doc.Id,
		Content:    doc.Content,
		CreatedAt:  time.Now(),
	}
	if err := uow.DocumentVersionRepository().Create(ctx, &version); err != nil {
		return err
	}
	return uow.DocumentVersionRepository().TrimToLimit(ctx, doc.Id, entity.MaxVersionHistory)
}

func (c *documentService) publishEmbed(ctx context.Context, id uuid.UUID) {
	payload, err := json.Marshal(dto.PublishEmbedDocumentMessage{DocumentId: id})
	if err != nil {
		return
	}
	if err := c.publisherService.Publish(ctx, payload); err != nil {
		c.sysLogger.Warn("document", "failed to publish embed request", map[string]interface{}{
			"document_id": id.String(),
			"error":       err.Error(),
		})
	}
}

func (c *documentService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if doc == nil {
		return fiber.NewError(fiber.StatusNotFound, "document not found")
	}

	if err := uow.DocumentVersionRepository().DeleteByDocumentId(ctx, id); err != nil {
		return err
	}
	if err := uow.DocumentRepository().Delete(ctx, id); err != nil {
		return err
	}
	c.embeddingCache.Forget(id)

	settings, err := c.settingsService.Get(ctx)
	if err != nil {
		return err
	}
	if settings.CurrentDocument != nil && *settings.CurrentDocument == id {
		return c.advanceCurrent(ctx, uow)
	}
	return nil
}

// advanceCurrent moves the current-document cursor to the most recently
// updated survivor, or clears it when the corpus is empty.
func (c *documentService) advanceCurrent(ctx context.Context, uow unitofwork.UnitOfWork) error {
	next, err := uow.DocumentRepository().FindOne(ctx, specification.OrderBy{Field: "updated_at", Desc: true})
	if err != nil {
		return err
	}
	if next == nil {
		return c.settingsService.SetCurrentDocument(ctx, nil)
	}
	id := next.Id
	return c.settingsService.SetCurrentDocument(ctx, &id)
}

func (c *documentService) SetCurrent(ctx context.Context, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if doc == nil {
		return fiber.NewError(fiber.StatusNotFound, "document not found")
	}
	return c.settingsService.SetCurrentDocument(ctx, &doc.Id)
}

func (c *documentService) Search(ctx context.Context, query string) (*dto.SearchDocumentsResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	docs, err := uow.DocumentRepository().FindAll(ctx, specification.OrderBy{Field: "updated_at", Desc: true})
	if err != nil {
		return nil, err
	}

	settings, err := c.settingsService.Get(ctx)
	if err != nil {
		return nil, err
	}

	searchType := "keyword"
	if settings.EmbeddingsSearch {
		searchType = "embedding"
	}

	query = strings.TrimSpace(query)
	if query == "" {
		// Full corpus in recency order, no metric fields.
		summaries := make([]dto.DocumentSummary, 0, len(docs))
		for _, doc := range docs {
			summaries = append(summaries, dto.DocumentSummary{
				Id:        doc.Id,
				Name:      doc.Name,
				CreatedAt: doc.CreatedAt,
				UpdatedAt: doc.UpdatedAt,
			})
		}
		return &dto.SearchDocumentsResponse{
			Success:    true,
			Documents:  summaries,
			Query:      query,
			SearchType: searchType,
		}, nil
	}

	byID := make(map[string]*entity.Document, len(docs))
	for _, doc := range docs {
		byID[doc.Id.String()] = doc
	}

	var ranked []pkgSearch.Result
	if settings.EmbeddingsSearch {
		ranked, err = c.rankByEmbedding(ctx, query, docs)
		if err != nil {
			return nil, err
		}
	} else {
		ranked = rankByKeyword(query, docs)
	}

	summaries := make([]dto.DocumentSummary, 0, len(ranked))
	for _, result := range ranked {
		doc := byID[result.ID]
		summary := dto.DocumentSummary{
			Id:        doc.Id,
			Name:      doc.Name,
			CreatedAt: doc.CreatedAt,
			UpdatedAt: doc.UpdatedAt,
		}
		if settings.EmbeddingsSearch {
			score := pkgSearch.Round2(result.Similarity)
			summary.SimilarityScore = &score
		} else {
			count := result.Count
			summary.OccurrenceCount = &count
		}
		summaries = append(summaries, summary)
	}

	return &dto.SearchDocumentsResponse{
		Success:    true,
		Documents:  summaries,
		Query:      query,
		SearchType: searchType,
	}, nil
}

func rankByKeyword(query string, docs []*entity.Document) []pkgSearch.Result {
	terms := pkgSearch.Tokenize(query)
	results := make([]pkgSearch.Result, 0, len(docs))
	for _, doc := range docs {
		count := pkgSearch.CountOccurrences(doc.Content, terms)
		if count == 0 {
			continue
		}
		results = append(results, pkgSearch.Result{
			ID:        doc.Id.String(),
			UpdatedAt: doc.UpdatedAt,
			Count:     count,
		})
	}
	pkgSearch.RankByCount(results)
	return results
}

func (c *documentService) rankByEmbedding(ctx context.Context, query string, docs []*entity.Document) ([]pkgSearch.Result, error) {
	queryVector, err := c.embeddingProvider.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results := make([]pkgSearch.Result, 0, len(docs))
	for _, doc := range docs {
		vector, ok := c.embeddingCache.Get(doc.Id, doc.Content)
		if !ok {
			// Cache miss (cold start or content changed since the last
			// background refresh): compute inline and backfill.
			vector, err = c.embeddingProvider.Embed(ctx, doc.Content)
			if err != nil {
				c.sysLogger.Warn("document", "embedding failed for document, skipping", map[string]interface{}{
					"document_id": doc.Id.String(),
					"error":       err.Error(),
				})
				continue
			}
			c.embeddingCache.Put(doc.Id, doc.Content, vector)
		}
		results = append(results, pkgSearch.Result{
			ID:         doc.Id.String(),
			UpdatedAt:  doc.UpdatedAt,
			Similarity: pkgSearch.Cosine(queryVector, vector),
		})
	}
	pkgSearch.RankBySimilarity(results)
	return results, nil
}

func toDetail(doc *entity.Document) dto.DocumentDetail {
	return dto.DocumentDetail{
		Id:        doc.Id,
		Name:      doc.Name,
		Content:   doc.Content,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}
