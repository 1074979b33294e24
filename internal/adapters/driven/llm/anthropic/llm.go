// Package anthropic answers questions through the Anthropic Messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/httpapi"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/llm/prompt"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-3-5-sonnet-latest"
	DefaultTimeout   = 120 * time.Second
	DefaultMaxTokens = 2048

	anthropicVersion = "2023-06-01"
)

// Config configures the Anthropic synthesizer. APIKey is required.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration

	// MaxTokens caps the answer length. The API rejects requests without it.
	MaxTokens   int
	Temperature float64

	// Retries is passed to httpapi.Config.
	Retries int

	// Prompts overrides the built-in templates. Optional.
	Prompts driven.PromptStore
}

// LLMService sends the system prompt separately and the context plus
// question as a single user message.
type LLMService struct {
	api         *httpapi.Client
	model       string
	maxTokens   int
	temperature float64
	prompts     *prompt.Builder
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model       string    `json:"model"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type messagesResponse struct {
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
}

// text joins the text blocks, skipping tool use and other block types.
func (r messagesResponse) text() string {
	var b strings.Builder
	for _, block := range r.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(b.String())
}

// NewLLMService creates the synthesizer.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: %w: API key is required", domain.ErrMissingCredential)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}

	return &LLMService{
		api: httpapi.New(httpapi.Config{
			Provider: "anthropic",
			BaseURL:  cfg.BaseURL,
			Timeout:  cfg.Timeout,
			Header: http.Header{
				"X-Api-Key":         {cfg.APIKey},
				"Anthropic-Version": {anthropicVersion},
			},
			Retries: cfg.Retries,
		}),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		prompts:     prompt.NewBuilder(cfg.Prompts),
	}, nil
}

// Answer returns prompt.NoContextAnswer for empty chunks without calling the API.
func (s *LLMService) Answer(ctx context.Context, question string, chunks []domain.SourceChunk) (string, error) {
	if len(chunks) == 0 {
		return prompt.NoContextAnswer, nil
	}

	var resp messagesResponse
	err := s.api.PostJSON(ctx, "/v1/messages", messagesRequest{
		Model:       s.model,
		System:      s.prompts.System(),
		Messages:    []message{{Role: "user", Content: s.prompts.User(question, chunks)}},
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	}, &resp)
	if err != nil {
		return "", err
	}

	answer := resp.text()
	if answer == "" {
		return "", errors.New("anthropic: no response content returned")
	}
	return answer, nil
}

// ModelName returns the configured model.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists models, which validates the key without inference.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.api.Get(ctx, "/v1/models")
}

// Close is a no-op.
func (s *LLMService) Close() error {
	return nil
}
