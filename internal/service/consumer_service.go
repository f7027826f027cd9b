package service

import (
	"context"
	"encoding/json"

	"ai-writepad-be/internal/dto"
	"ai-writepad-be/internal/pkg/logger"
	"ai-writepad-be/internal/repository/memory"
	"ai-writepad-be/internal/repository/specification"
	"ai-writepad-be/internal/repository/unitofwork"
	"ai-writepad-be/pkg/embedding"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService keeps the per-document embedding cache warm: every content
// write publishes an embed request, this worker recomputes the vector in the
// background so embedding search rarely pays the provider round-trip inline.
type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.Provider
	embeddingCache    *memory.EmbeddingCache
	sysLogger         logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.Provider,
	embeddingCache *memory.EmbeddingCache,
	sysLogger logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		embeddingCache:    embeddingCache,
		sysLogger:         sysLogger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.sysLogger.Error("consumer", "failed to unmarshal embed message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // invalid payloads are never retriable
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: payload.DocumentId})
	if err != nil {
		cs.sysLogger.Error("consumer", "failed to load document for embedding", map[string]interface{}{
			"document_id": payload.DocumentId.String(),
			"error":       err.Error(),
		})
		msg.Nack()
		return
	}
	if doc == nil {
		// Deleted between publish and consume.
		cs.embeddingCache.Forget(payload.DocumentId)
		msg.Ack()
		return
	}

	if _, ok := cs.embeddingCache.Get(doc.Id, doc.Content); ok {
		msg.Ack()
		return
	}

	vector, err := cs.embeddingProvider.Embed(ctx, doc.Content)
	if err != nil {
		// Search falls back to computing lazily at query time.
		cs.sysLogger.Warn("consumer", "embedding computation failed", map[string]interface{}{
			"document_id": doc.Id.String(),
			"error":       err.Error(),
		})
		msg.Ack()
		return
	}

	cs.embeddingCache.Put(doc.Id, doc.Content, vector)
	msg.Ack()
}
