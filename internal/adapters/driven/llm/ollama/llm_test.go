package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/llm/prompt"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

var chunks = []domain.SourceChunk{
	{Content: "The office opens at 9am.", Score: 0.8, Source: "hours.txt"},
}

func TestAnswer_NoChunksSkipsBackend(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	s := NewLLMService(LLMConfig{BaseURL: srv.URL})
	answer, err := s.Answer(context.Background(), "When do you open?", nil)

	require.NoError(t, err)
	assert.Equal(t, prompt.NoContextAnswer, answer)
	assert.Zero(t, hits.Load())
}

func TestAnswer_SendsPromptAndOptions(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"response":"  It opens at 9am [Source 1].\n","done":true}`))
	}))
	defer srv.Close()

	s := NewLLMService(LLMConfig{BaseURL: srv.URL, Model: "mistral"})
	answer, err := s.Answer(context.Background(), "When do you open?", chunks)

	require.NoError(t, err)
	assert.Equal(t, "It opens at 9am [Source 1].", answer)

	assert.Equal(t, "mistral", got["model"])
	assert.Equal(t, false, got["stream"])
	assert.Contains(t, got["prompt"], "Content: The office opens at 9am.")
	assert.Contains(t, got["prompt"], "Question: When do you open?")

	opts := got["options"].(map[string]any)
	assert.Equal(t, 0.0, opts["temperature"])
	assert.Equal(t, 1.0, opts["top_k"])
	assert.Equal(t, 1.0, opts["top_p"])
}

func TestAnswer_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"model 'x' not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewLLMService(LLMConfig{BaseURL: srv.URL}).Answer(context.Background(), "q", chunks)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ollama error (status 404): model 'x' not found")
}

func TestAnswer_RetriesOverloadedServer(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"response":"9am"}`))
	}))
	defer srv.Close()

	answer, err := NewLLMService(LLMConfig{BaseURL: srv.URL, Retries: 1}).Answer(context.Background(), "q", chunks)

	require.NoError(t, err)
	assert.Equal(t, "9am", answer)
	assert.Equal(t, int32(2), hits.Load())
}

type stubPrompts map[string]string

func (p stubPrompts) Load(name string) (string, error) { return p[name], nil }

func TestAnswer_UsesPromptStore(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"response":"ok"}`))
	}))
	defer srv.Close()

	s := NewLLMService(LLMConfig{
		BaseURL: srv.URL,
		Prompts: stubPrompts{"answer_completion": "CTX<%s> Q<%s>"},
	})
	_, err := s.Answer(context.Background(), "open?", chunks)

	require.NoError(t, err)
	assert.Contains(t, got.Prompt, "CTX<[Source 1")
	assert.True(t, strings.HasSuffix(got.Prompt, "Q<open?>"))
}

func TestNewLLMService_Defaults(t *testing.T) {
	s := NewLLMService(LLMConfig{})

	assert.Equal(t, DefaultLLMModel, s.ModelName())
	assert.Equal(t, DefaultBaseURL, s.api.BaseURL())
	assert.Equal(t, options{Temperature: 0, TopK: 1, TopP: 1}, s.opts)
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	assert.NoError(t, NewLLMService(LLMConfig{BaseURL: srv.URL}).Ping(context.Background()))
}
