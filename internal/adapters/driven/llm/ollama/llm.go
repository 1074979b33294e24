// Package ollama answers questions with a local model through Ollama's
// /api/generate endpoint.
package ollama

import (
	"context"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/httpapi"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/llm/prompt"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultLLMModel   = "llama3.2"
	DefaultLLMTimeout = 120 * time.Second
	DefaultTopK       = 1
	DefaultTopP       = 1.0
)

// LLMConfig configures the Ollama synthesizer. Zero values take the defaults above.
type LLMConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration

	// Sampling. TopK 1 with TopP 1 keeps answers close to deterministic;
	// a zero Temperature is sent as-is.
	Temperature float64
	TopK        int
	TopP        float64

	// Retries is passed to httpapi.Config.
	Retries int

	// Prompts overrides the built-in templates. Optional.
	Prompts driven.PromptStore
}

// LLMService sends one completion-style prompt per question.
type LLMService struct {
	api     *httpapi.Client
	model   string
	opts    options
	prompts *prompt.Builder
}

type generateRequest struct {
	Model   string  `json:"model"`
	Prompt  string  `json:"prompt"`
	Stream  bool    `json:"stream"`
	Options options `json:"options"`
}

// options are always sent so a zero temperature is honoured.
type options struct {
	Temperature float64 `json:"temperature"`
	TopK        int     `json:"top_k"`
	TopP        float64 `json:"top_p"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// NewLLMService creates the synthesizer. Ollama needs no credentials.
func NewLLMService(cfg LLMConfig) *LLMService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}
	if cfg.TopK == 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.TopP == 0 {
		cfg.TopP = DefaultTopP
	}

	return &LLMService{
		api: httpapi.New(httpapi.Config{
			Provider: "ollama",
			BaseURL:  cfg.BaseURL,
			Timeout:  cfg.Timeout,
			Retries:  cfg.Retries,
		}),
		model:   cfg.Model,
		opts:    options{Temperature: cfg.Temperature, TopK: cfg.TopK, TopP: cfg.TopP},
		prompts: prompt.NewBuilder(cfg.Prompts),
	}
}

// Answer returns prompt.NoContextAnswer for empty chunks without calling Ollama.
func (s *LLMService) Answer(ctx context.Context, question string, chunks []domain.SourceChunk) (string, error) {
	if len(chunks) == 0 {
		return prompt.NoContextAnswer, nil
	}

	var resp generateResponse
	err := s.api.PostJSON(ctx, "/api/generate", generateRequest{
		Model:   s.model,
		Prompt:  s.prompts.Completion(question, chunks),
		Options: s.opts,
	}, &resp)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Response), nil
}

// ModelName returns the configured model.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists local models, which needs no inference.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.api.Get(ctx, "/api/tags")
}

// Close is a no-op.
func (s *LLMService) Close() error {
	return nil
}
