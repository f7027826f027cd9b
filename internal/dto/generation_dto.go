package dto

type SubmitRequest struct {
	Prompt     string `form:"prompt" json:"prompt"`
	DocumentId string `form:"document_id" json:"document_id" validate:"required"`
}

type SubmitResponse struct {
	Success      bool   `json:"success"`
	GenerationId string `json:"generation_id"`
}
