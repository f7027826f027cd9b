package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ai-writepad-be/pkg/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sseHandler(t *testing.T, fragments []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t.Helper()
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, true, payload["stream"])

		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, text := range fragments {
			fmt.Fprintf(w, "data: {\"choices\":[{\"text\":%q}]}\n\n", text)
			flusher.Flush()
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
		flusher.Flush()
	}
}

func collect(t *testing.T, chunks <-chan provider.Chunk) (string, error) {
	t.Helper()
	var sb strings.Builder
	for chunk := range chunks {
		if chunk.Err != nil {
			return sb.String(), chunk.Err
		}
		sb.WriteString(chunk.Text)
	}
	return sb.String(), nil
}

func TestStreamCompletionOrderedFragments(t *testing.T) {
	srv := httptest.NewServer(sseHandler(t, []string{"Once ", "upon ", "a ", "time"}))
	defer srv.Close()

	p := New(srv.URL, "test-key")
	chunks, err := p.StreamCompletion(context.Background(), provider.CompletionRequest{
		Model:  "moonshotai/kimi-k2",
		Prompt: "Tell a story",
	})
	require.NoError(t, err)

	text, err := collect(t, chunks)
	require.NoError(t, err)
	assert.Equal(t, "Once upon a time", text)
}

func TestStreamCompletionMissingKey(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	p := New(srv.URL, "")
	_, err := p.StreamCompletion(context.Background(), provider.CompletionRequest{Model: "m"})

	var authErr *provider.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.False(t, called, "no network call should happen without a key")
}

func TestStreamCompletionUpstreamErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "401 maps to AuthError",
			status: http.StatusUnauthorized,
			body:   `{"error":{"code":401,"message":"bad key"}}`,
			check: func(t *testing.T, err error) {
				var authErr *provider.AuthError
				require.ErrorAs(t, err, &authErr)
			},
		},
		{
			name:   "429 preserves status code",
			status: http.StatusTooManyRequests,
			body:   `{"error":{"code":429,"message":"slow down"}}`,
			check: func(t *testing.T, err error) {
				var upErr *provider.UpstreamHTTPError
				require.ErrorAs(t, err, &upErr)
				assert.Equal(t, http.StatusTooManyRequests, upErr.StatusCode)
				assert.Equal(t, "rate limited", upErr.Category())
			},
		},
		{
			name:   "503 maps to all providers failed",
			status: http.StatusServiceUnavailable,
			body:   `{"error":{"code":503,"message":"no instances for model"}}`,
			check: func(t *testing.T, err error) {
				require.ErrorIs(t, err, provider.ErrAllProvidersFailed)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			p := New(srv.URL, "test-key")
			_, err := p.StreamCompletion(context.Background(), provider.CompletionRequest{Model: "m"})
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestStreamCompletionConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	p := New(srv.URL, "test-key")
	_, err := p.StreamCompletion(context.Background(), provider.CompletionRequest{Model: "m"})

	var connErr *provider.ConnectionError
	if !errors.As(err, &connErr) {
		var toErr *provider.TimeoutError
		require.ErrorAs(t, err, &toErr, "expected connection or timeout error, got %T", err)
	}
}

func TestStreamCompletionRoutingHint(t *testing.T) {
	var gotProvider struct {
		Provider *struct {
			Order []string `json:"order"`
		} `json:"provider"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotProvider))
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	p := New(srv.URL, "test-key")
	chunks, err := p.StreamCompletion(context.Background(), provider.CompletionRequest{
		Model:        "moonshotai/kimi-k2",
		ProviderHint: "deepinfra/fp4",
	})
	require.NoError(t, err)
	_, err = collect(t, chunks)
	require.NoError(t, err)

	require.NotNil(t, gotProvider.Provider)
	assert.Equal(t, []string{"deepinfra/fp4"}, gotProvider.Provider.Order)
}

func TestCompleteNonStreaming(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, false, payload["stream"])
		fmt.Fprint(w, `{"choices":[{"text":"A Short Title"}]}`)
	}))
	defer srv.Close()

	p := New(srv.URL, "test-key")
	text, err := p.Complete(context.Background(), provider.CompletionRequest{Model: "m", Prompt: "name this"})
	require.NoError(t, err)
	assert.Equal(t, "A Short Title", text)
}
