package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Shared wire types for the router and OpenAI-compatible backends. Both speak
// the same completions shape; they differ only in base URL, auth requirements
// and the provider routing hint.

type completionPayload struct {
	Model             string       `json:"model"`
	Prompt            string       `json:"prompt"`
	Temperature       float64      `json:"temperature"`
	MinP              float64      `json:"min_p,omitempty"`
	PresencePenalty   float64      `json:"presence_penalty,omitempty"`
	RepetitionPenalty float64      `json:"repetition_penalty,omitempty"`
	MaxTokens         int          `json:"max_tokens,omitempty"`
	Stream            bool         `json:"stream"`
	Provider          *routingHint `json:"provider,omitempty"`
}

type routingHint struct {
	Order []string `json:"order"`
}

type completionChunk struct {
	Choices []struct {
		Text         string `json:"text"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

type errorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewCompletionPayload maps a CompletionRequest onto the wire payload.
func NewCompletionPayload(req CompletionRequest, stream bool) ([]byte, error) {
	p := completionPayload{
		Model:             req.Model,
		Prompt:            req.Prompt,
		Temperature:       req.Temperature,
		MinP:              req.MinP,
		PresencePenalty:   req.PresencePenalty,
		RepetitionPenalty: req.RepetitionPenalty,
		MaxTokens:         req.MaxTokens,
		Stream:            stream,
	}
	if req.ProviderHint != "" {
		p.Provider = &routingHint{Order: []string{req.ProviderHint}}
	}
	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal completion payload: %w", err)
	}
	return body, nil
}

// PostCompletion sends the payload and returns the raw response. Non-200
// responses are drained and converted to the typed error taxonomy.
func PostCompletion(ctx context.Context, client *http.Client, url, apiKey string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, ClassifyTransportError(err)
	}

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 8*1024))
		resp.Body.Close()
		return nil, upstreamError(resp.StatusCode, raw)
	}
	return resp, nil
}

func upstreamError(status int, raw []byte) error {
	var parsed errorBody
	if json.Unmarshal(raw, &parsed) == nil && parsed.Error.Message != "" {
		if status == 401 {
			return &AuthError{Reason: parsed.Error.Message}
		}
		if status == 503 {
			// The router reports exhausted fallback routing as 503.
			return fmt.Errorf("%w: %s", ErrAllProvidersFailed, parsed.Error.Message)
		}
		return &UpstreamHTTPError{StatusCode: status, Body: parsed.Error.Message}
	}
	if status == 401 {
		return &AuthError{Reason: "invalid API key"}
	}
	return &UpstreamHTTPError{StatusCode: status, Body: string(raw)}
}

// RelayStream reads SSE completion chunks from body and forwards the text
// fragments to out in upstream order. It closes out and body when the stream
// ends. A mid-stream failure is forwarded as a final Chunk with Err set.
func RelayStream(ctx context.Context, body io.ReadCloser, out chan<- Chunk) {
	defer close(out)
	defer body.Close()

	reader := NewSSEReader(body)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		data, err := reader.ReadData()
		if err != nil {
			if err == io.EOF {
				return
			}
			if ctx.Err() != nil {
				return
			}
			out <- Chunk{Err: ClassifyTransportError(err)}
			return
		}

		if bytes.Equal(data, []byte("[DONE]")) {
			return
		}

		var chunk completionChunk
		if err := json.Unmarshal(data, &chunk); err != nil {
			// Malformed chunks are skipped, matching upstream keep-alives.
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		if text := chunk.Choices[0].Text; text != "" {
			select {
			case out <- Chunk{Text: text}:
			case <-ctx.Done():
				return
			}
		}
		if chunk.Choices[0].FinishReason != "" {
			return
		}
	}
}

// ReadCompletion parses a non-streaming completion response body.
func ReadCompletion(body io.ReadCloser) (string, error) {
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return "", ClassifyTransportError(err)
	}
	var parsed completionChunk
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("unmarshal completion response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("completion response has no choices")
	}
	return parsed.Choices[0].Text, nil
}
