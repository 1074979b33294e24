// Package openai answers questions through the chat completions API. Any
// OpenAI-compatible server works by changing BaseURL.
package openai

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
	DefaultBaseURL    = "https://api.openai.com/v1"
	DefaultLLMModel   = "gpt-4o-mini"
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig configures the OpenAI synthesizer. APIKey is required.
type LLMConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	Temperature float64

	// Retries is passed to httpapi.Config.
	Retries int

	// Prompts overrides the built-in templates. Optional.
	Prompts driven.PromptStore
}

// LLMService sends the context and question as system and user messages.
type LLMService struct {
	api         *httpapi.Client
	model       string
	temperature float64
	prompts     *prompt.Builder
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

// NewLLMService creates the synthesizer.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: %w: API key is required", domain.ErrMissingCredential)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	return &LLMService{
		api: httpapi.New(httpapi.Config{
			Provider: "openai",
			BaseURL:  cfg.BaseURL,
			Timeout:  cfg.Timeout,
			Header:   http.Header{"Authorization": {"Bearer " + cfg.APIKey}},
			Retries:  cfg.Retries,
		}),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		prompts:     prompt.NewBuilder(cfg.Prompts),
	}, nil
}

// Answer returns prompt.NoContextAnswer for empty chunks without calling the API.
func (s *LLMService) Answer(ctx context.Context, question string, chunks []domain.SourceChunk) (string, error) {
	if len(chunks) == 0 {
		return prompt.NoContextAnswer, nil
	}

	var resp chatResponse
	err := s.api.PostJSON(ctx, "/chat/completions", chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: s.prompts.System()},
			{Role: "user", Content: s.prompts.User(question, chunks)},
		},
		Temperature: s.temperature,
	}, &resp)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: no choices returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// ModelName returns the configured model.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists models, which validates the key without inference.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.api.Get(ctx, "/models")
}

// Close is a no-op.
func (s *LLMService) Close() error {
	return nil
}
