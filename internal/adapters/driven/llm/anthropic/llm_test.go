package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/llm/prompt"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

var chunks = []domain.SourceChunk{
	{Content: "Support is available 24/7.", Score: 0.66, Source: "support.txt"},
}

func TestNewLLMService(t *testing.T) {
	_, err := NewLLMService(Config{})
	assert.ErrorIs(t, err, domain.ErrMissingCredential)

	s, err := NewLLMService(Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, s.ModelName())
	assert.Equal(t, DefaultMaxTokens, s.maxTokens)
}

func TestAnswer_NoChunks(t *testing.T) {
	s, err := NewLLMService(Config{APIKey: "k", BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)

	answer, err := s.Answer(context.Background(), "q", nil)

	require.NoError(t, err)
	assert.Equal(t, prompt.NoContextAnswer, answer)
}

func TestAnswer_Request(t *testing.T) {
	var got messagesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Always "},{"type":"text","text":"open."}],"stop_reason":"end_turn"}`))
	}))
	defer srv.Close()

	s, err := NewLLMService(Config{APIKey: "sk-ant", BaseURL: srv.URL})
	require.NoError(t, err)

	answer, err := s.Answer(context.Background(), "When is support open?", chunks)

	require.NoError(t, err)
	assert.Equal(t, "Always open.", answer)
	assert.Equal(t, 2048, got.MaxTokens)
	assert.Contains(t, got.System, "exclusively on the provided context")
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Contains(t, got.Messages[0].Content, "[Source 1 - Score: 0.660]")
}

func TestAnswer_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer srv.Close()

	s, err := NewLLMService(Config{APIKey: "bad", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = s.Answer(context.Background(), "q", chunks)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid x-api-key")
}

func TestAnswer_EmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content":[]}`))
	}))
	defer srv.Close()

	s, err := NewLLMService(Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = s.Answer(context.Background(), "q", chunks)
	assert.ErrorContains(t, err, "no response content")
}

func TestMessagesResponse_Text(t *testing.T) {
	resp := messagesResponse{Content: []contentBlock{
		{Type: "text", Text: " Support "},
		{Type: "tool_use"},
		{Type: "text", Text: "never sleeps. "},
	}}
	assert.Equal(t, "Support never sleeps.", resp.text())
	assert.Empty(t, messagesResponse{}.text())
}

func TestAnswer_OverloadedIsRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(529)
			_, _ = w.Write([]byte(`{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"24/7."}]}`))
	}))
	defer srv.Close()

	s, err := NewLLMService(Config{APIKey: "k", BaseURL: srv.URL, Retries: 1})
	require.NoError(t, err)

	answer, err := s.Answer(context.Background(), "q", chunks)
	require.NoError(t, err)
	assert.Equal(t, "24/7.", answer)
	assert.Equal(t, 2, calls)
}
