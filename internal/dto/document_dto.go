package dto

import (
	"time"

	"github.com/google/uuid"
)

// DocumentSummary is the list/search row. The metric fields are only present
// in search responses: occurrence_count in keyword mode, similarity_score
// (2dp, display only) in embedding mode. Both absent for empty queries.
type DocumentSummary struct {
	Id              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	OccurrenceCount *int      `json:"occurrence_count,omitempty"`
	SimilarityScore *float64  `json:"similarity_score,omitempty"`
}

type DocumentDetail struct {
	Id        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ListDocumentsResponse struct {
	Success         bool              `json:"success"`
	Documents       []DocumentSummary `json:"documents"`
	CurrentDocument *uuid.UUID        `json:"current_document"`
}

type SearchDocumentsResponse struct {
	Success    bool              `json:"success"`
	Documents  []DocumentSummary `json:"documents"`
	Query      string            `json:"query"`
	SearchType string            `json:"search_type"`
}

type ShowDocumentResponse struct {
	Success  bool           `json:"success"`
	Document DocumentDetail `json:"document"`
}

type CreateDocumentRequest struct {
	Name string `form:"name" json:"name"`
}

type CreateDocumentResponse struct {
	Success  bool           `json:"success"`
	Document DocumentDetail `json:"document"`
}

// UpdateDocumentRequest carries a partial update: content, name, or both.
type UpdateDocumentRequest struct {
	Content *string `json:"content"`
	Name    *string `json:"name"`
}

// PublishEmbedDocumentMessage is the event-bus payload asking the consumer
// to refresh a document's embedding vector.
type PublishEmbedDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
}
