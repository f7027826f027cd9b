package service

import (
	"context"

	"ai-writepad-be/internal/dto"
	"ai-writepad-be/pkg/reroll"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RerollBackend adapts the document and generation services to the reroll
// controller's contract, so a cancel-restore-resubmit sequence can be driven
// against the real pipeline.
type RerollBackend struct {
	documents  IDocumentService
	generation IGenerationService
}

var _ reroll.Backend = &RerollBackend{}

func NewRerollBackend(documents IDocumentService, generation IGenerationService) *RerollBackend {
	return &RerollBackend{
		documents:  documents,
		generation: generation,
	}
}

func (b *RerollBackend) RestoreContent(ctx context.Context, documentID, content string) error {
	id, err := uuid.Parse(documentID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid document id")
	}
	return b.documents.Update(ctx, id, &dto.UpdateDocumentRequest{Content: &content})
}

func (b *RerollBackend) CancelGeneration(ctx context.Context, generationID string) error {
	return b.generation.Cancel(ctx, generationID)
}

func (b *RerollBackend) SubmitGeneration(ctx context.Context, documentID, prompt string) (string, error) {
	res, err := b.generation.Submit(ctx, &dto.SubmitRequest{
		DocumentId: documentID,
		Prompt:     prompt,
	})
	if err != nil {
		return "", err
	}
	return res.GenerationId, nil
}
