package generate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnthropicComplete(t *testing.T) {
	fastBackoff(t)
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		var req anthropicRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, SystemPrompt, req.System)
		assert.Equal(t, 256, req.MaxTokens)
		if assert.Len(t, req.Messages, 1) {
			assert.Contains(t, req.Messages[0].Content, "Question: What grew?")
		}
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Revenue grew "},{"type":"text","text":"(Chapter 1)."}]}`))
	}))
	defer srv.Close()

	g, err := NewAnthropic(AnthropicConfig{BaseURL: srv.URL + "/", APIKey: "secret", Model: "claude", MaxTokens: 256}, testLogger())
	require.NoError(t, err)
	defer g.Close()

	got, err := g.Complete(context.Background(), "What grew?", resultsChunk)
	require.NoError(t, err)
	assert.Equal(t, "Revenue grew (Chapter 1).", got)
	assert.Equal(t, int32(2), calls.Load())
}

func TestAnthropicAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"type":"authentication_error","message":"bad key"}}`))
	}))
	defer srv.Close()

	g, err := NewAnthropic(AnthropicConfig{BaseURL: srv.URL, APIKey: "x", Model: "claude"}, testLogger())
	require.NoError(t, err)
	_, err = g.Complete(context.Background(), "q", resultsChunk)
	require.Error(t, err)
	assert.False(t, IsRetryable(err))
	assert.Contains(t, err.Error(), "401")
}

func TestNewAnthropicValidates(t *testing.T) {
	_, err := NewAnthropic(AnthropicConfig{Model: "claude"}, testLogger())
	assert.Error(t, err)
	_, err = NewAnthropic(AnthropicConfig{APIKey: "k"}, testLogger())
	assert.Error(t, err)
}
