package dto

// UpdateSettingsRequest is a partial update: only the fields present in the
// form are applied.
type UpdateSettingsRequest struct {
	Provider          *string  `form:"provider" json:"provider"`
	Model             *string  `form:"model" json:"model"`
	EndpointURL       *string  `form:"endpoint_url" json:"endpoint_url"`
	Temperature       *float64 `form:"temperature" json:"temperature"`
	MinP              *float64 `form:"min_p" json:"min_p"`
	PresencePenalty   *float64 `form:"presence_penalty" json:"presence_penalty"`
	RepetitionPenalty *float64 `form:"repetition_penalty" json:"repetition_penalty"`
	MaxTokens         *int     `form:"max_tokens" json:"max_tokens"`
	DarkMode          *bool    `form:"dark_mode" json:"dark_mode"`
	EmbeddingsSearch  *bool    `form:"embeddings_search" json:"embeddings_search"`
}

type SetTokenRequest struct {
	Token string `form:"token" json:"token" validate:"required"`
}
