package entity

import (
	"time"

	"github.com/google/uuid"
)

// ProviderKind selects the completion backend shape.
type ProviderKind string

const (
	ProviderRouter           ProviderKind = "router"
	ProviderOpenAICompatible ProviderKind = "openai_compatible"
	ProviderCustomNamed      ProviderKind = "custom_named"
)

// Settings is the process-wide configuration record. It is loaded at
// startup, mutated by settings updates and persisted on every change.
type Settings struct {
	Provider          ProviderKind
	Model             string
	EndpointURL       string
	APIKey            string
	Temperature       float64
	MinP              float64
	PresencePenalty   float64
	RepetitionPenalty float64
	MaxTokens         int
	DarkMode          bool
	EmbeddingsSearch  bool
	CurrentDocument   *uuid.UUID
	UpdatedAt         time.Time
}
