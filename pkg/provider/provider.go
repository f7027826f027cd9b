package provider

import (
	"context"
)

// Chunk is a single text fragment from a streaming completion.
// A chunk with Err set is always the last one delivered.
type Chunk struct {
	Text string
	Err  error
}

// CompletionRequest is the provider-agnostic completion payload.
type CompletionRequest struct {
	Model             string
	ProviderHint      string // router-only routing hint, e.g. "deepinfra/fp4"
	Prompt            string
	Temperature       float64
	MinP              float64
	PresencePenalty   float64
	RepetitionPenalty float64
	MaxTokens         int
}

// CompletionProvider defines the contract for any completion backend.
type CompletionProvider interface {
	// StreamCompletion starts a streaming completion and returns a channel of
	// text fragments in upstream order. The channel is closed when the
	// provider signals end-of-stream; the stream is finite and cannot be
	// restarted. A mid-stream failure is delivered as a final Chunk with Err
	// set. The provider never retries on its own.
	StreamCompletion(ctx context.Context, req CompletionRequest) (<-chan Chunk, error)

	// Complete runs a non-streaming completion and returns the full text.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
