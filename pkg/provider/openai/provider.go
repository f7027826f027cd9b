package openai

import (
	"context"
	"net/http"
	"time"

	"ai-writepad-be/pkg/provider"
)

// Provider streams completions from any OpenAI-compatible server at a
// user-supplied base URL ending in /v1. The API key is optional; local
// servers typically run without one.
type Provider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

var _ provider.CompletionProvider = &Provider{}

func New(baseURL, apiKey string) *Provider {
	return &Provider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: 0},
	}
}

func (p *Provider) StreamCompletion(ctx context.Context, req provider.CompletionRequest) (<-chan provider.Chunk, error) {
	// Routing hints are a router concept; never forward them to a plain
	// OpenAI-compatible server.
	req.ProviderHint = ""

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
	req.ProviderHint = ""

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
