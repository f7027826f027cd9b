package router

import (
	"context"
	"net/http"
	"time"

	"ai-writepad-be/pkg/provider"
)

// DefaultBaseURL is the hosted router's completions base.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// Provider streams completions through a multi-model router gateway.
// Requests may carry a provider routing hint to pin the upstream.
type Provider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

var _ provider.CompletionProvider = &Provider{}

func New(baseURL, apiKey string) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Provider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			// Streaming responses stay open; per-call deadlines come from ctx.
			Timeout: 0,
		},
	}
}

func (p *Provider) StreamCompletion(ctx context.Context, req provider.CompletionRequest) (<-chan provider.Chunk, error) {
	if p.APIKey == "" {
		return nil, &provider.AuthError{Reason: "router API key is not set"}
	}

	body, err := provider.NewCompletionPayload(req, true)
	if err != nil {
		return nil, err
	}

	resp, err := provider.PostCompletion(ctx, p.Client, p.BaseURL+"/completions", p.APIKey, body)
	if err != nil {
		return nil, err
	}

	out := make(chan provider.Chunk)
	go provider.RelayStream(ctx, resp.Body, out)
	return out, nil
}

func (p *Provider) Complete(ctx context.Context, req provider.CompletionRequest) (string, error) {
	if p.APIKey == "" {
		return "", &provider.AuthError{Reason: "router API key is not set"}
	}

	body, err := provider.NewCompletionPayload(req, false)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	resp, err := provider.PostCompletion(ctx, p.Client, p.BaseURL+"/completions", p.APIKey, body)
	if err != nil {
		return "", err
	}
	return provider.ReadCompletion(resp.Body)
}
