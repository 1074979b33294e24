// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"fmt"

	embedhash "github.com/custodia-labs/sercha-rag/internal/adapters/driven/embedding/hash"
	ollamaembed "github.com/custodia-labs/sercha-rag/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/sercha-rag/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/embedding/ratelimit"
	anthropicllm "github.com/custodia-labs/sercha-rag/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/sercha-rag/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/sercha-rag/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// CreateEmbeddingService creates the embedding backend named by settings.Provider,
// throttled when settings.RequestsPerSecond is positive.
func CreateEmbeddingService(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings.Provider.RequiresAPIKey() && settings.APIKey == "" {
		return nil, fmt.Errorf("%w: %s embeddings need an API key", domain.ErrMissingCredential, settings.Provider)
	}

	var (
		svc driven.EmbeddingService
		err error
	)
	switch settings.Provider {
	case domain.AIProviderHash:
		svc = embedhash.NewEmbeddingService(embedhash.Config{Dimensions: settings.Dimensions})

	case domain.AIProviderOllama:
		svc = ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
			Retries:    settings.Retries,
		})

	case domain.AIProviderOpenAI:
		svc, err = openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
			Retries:    settings.Retries,
		})
		if err != nil {
			return nil, err
		}

	case domain.AIProviderAnthropic:
		return nil, fmt.Errorf("%w: anthropic does not support embeddings, use hash, ollama or openai",
			domain.ErrUnknownProvider)

	default:
		return nil, fmt.Errorf("%w: embedding provider %q", domain.ErrUnknownProvider, settings.Provider)
	}

	return ratelimit.Wrap(svc, settings.RequestsPerSecond), nil
}

// CreateLLMService creates the answer synthesizer named by settings.Provider.
// prompts may be nil, in which case the built-in templates are used.
func CreateLLMService(settings domain.LLMSettings, prompts driven.PromptStore) (driven.LLMService, error) {
	if settings.Provider.RequiresAPIKey() && settings.APIKey == "" {
		return nil, fmt.Errorf("%w: %s needs an API key", domain.ErrMissingCredential, settings.Provider)
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL:     settings.BaseURL,
			Model:       settings.Model,
			Timeout:     settings.Timeout,
			Retries:     settings.Retries,
			Temperature: settings.Temperature,
			TopK:        settings.TopK,
			TopP:        settings.TopP,
			Prompts:     prompts,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:      settings.APIKey,
			BaseURL:     settings.BaseURL,
			Model:       settings.Model,
			Timeout:     settings.Timeout,
			Retries:     settings.Retries,
			Temperature: settings.Temperature,
			Prompts:     prompts,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:      settings.APIKey,
			BaseURL:     settings.BaseURL,
			Model:       settings.Model,
			Timeout:     settings.Timeout,
			Retries:     settings.Retries,
			Temperature: settings.Temperature,
			Prompts:     prompts,
		})

	default:
		return nil, fmt.Errorf("%w: LLM provider %q", domain.ErrUnknownProvider, settings.Provider)
	}
}
