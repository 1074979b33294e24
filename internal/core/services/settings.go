package services

import (
	"fmt"
	"slices"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
	keyLLMTemperature   = "llm.temperature"
	keyLLMTopK          = "llm.top_k"
	keyLLMTopP          = "llm.top_p"
	keyLLMTimeout       = "llm.timeout"
	keyLLMRetries       = "llm.retries"
	keyOpenAIAPIKey     = "openai.api_key"
	keyAnthropicAPIKey  = "anthropic.api_key"
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyEmbedDimensions  = "embedding.dimensions"
	keyEmbedRPS         = "embedding.requests_per_second"
	keyEmbedRetries     = "embedding.retries"
	keyVectorBackend    = "vector_store.backend"
	keyVectorCollection = "vector_store.collection"
	keyVectorPath       = "vector_store.path"
	keyVectorURL        = "vector_store.url"
	keyVectorAPIKey     = "vector_store.api_key"
	keyRetrievalTopK    = "retrieval.top_k"
	keyChunkSize        = "chunking.size"
	keyChunkOverlap     = "chunking.overlap"
	keyDatabaseURL      = "database.url"
	keyServerAddr       = "server.addr"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
// Unknown provider or backend names fall back to their defaults.
func (s *SettingsService) Get() (*domain.Settings, error) {
	defaults := domain.DefaultSettings()

	llmProvider := s.getProvider(keyLLMProvider, defaults.LLM.Provider)
	embedProvider := s.getProvider(keyEmbedProvider, defaults.Embedding.Provider)

	settings := &domain.Settings{
		LLM: domain.LLMSettings{
			Provider:    llmProvider,
			Model:       s.getString(keyLLMModel, s.defaultLLMModel(llmProvider, defaults)),
			BaseURL:     s.getString(keyLLMBaseURL, s.defaultBaseURL(llmProvider, defaults.LLM.BaseURL)),
			APIKey:      s.apiKey(keyLLMAPIKey, llmProvider),
			Temperature: s.getFloat(keyLLMTemperature, defaults.LLM.Temperature),
			TopK:        s.getInt(keyLLMTopK, defaults.LLM.TopK),
			TopP:        s.getFloat(keyLLMTopP, defaults.LLM.TopP),
			Timeout:     s.getDuration(keyLLMTimeout, defaults.LLM.Timeout),
			Retries:     s.configStore.GetInt(keyLLMRetries),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:          embedProvider,
			Model:             s.getString(keyEmbedModel, domain.DefaultEmbeddingModels()[embedProvider]),
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL), // No default - adapters know their own
			APIKey:            s.apiKey(keyEmbedAPIKey, embedProvider),
			Dimensions:        s.configStore.GetInt(keyEmbedDimensions),
			RequestsPerSecond: s.getFloat(keyEmbedRPS, defaults.Embedding.RequestsPerSecond),
			Retries:           s.configStore.GetInt(keyEmbedRetries),
		},
		VectorStore: domain.VectorStoreSettings{
			Backend:    s.getBackend(defaults.VectorStore.Backend),
			Collection: s.getString(keyVectorCollection, defaults.VectorStore.Collection),
			Path:       s.configStore.GetString(keyVectorPath),
			URL:        s.getString(keyVectorURL, defaults.VectorStore.URL),
			APIKey:     s.configStore.GetString(keyVectorAPIKey),
		},
		Chunking: domain.ChunkingSettings{
			Size:    s.getInt(keyChunkSize, defaults.Chunking.Size),
			Overlap: s.getInt(keyChunkOverlap, defaults.Chunking.Overlap),
		},
		RetrievalTopK: s.getInt(keyRetrievalTopK, defaults.RetrievalTopK),
		DatabaseURL:   s.configStore.GetString(keyDatabaseURL),
		ServerAddr:    s.getString(keyServerAddr, defaults.ServerAddr),
	}

	// The hash embedder has a fixed default; model lookups happen in the adapters.
	if settings.Embedding.Provider == domain.AIProviderHash && settings.Embedding.Dimensions == 0 {
		settings.Embedding.Dimensions = defaults.Embedding.Dimensions
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.Settings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMTemperature, settings.LLM.Temperature},
		{keyLLMTopK, settings.LLM.TopK},
		{keyLLMTopP, settings.LLM.TopP},
		{keyLLMTimeout, settings.LLM.Timeout.String()},
		{keyLLMRetries, settings.LLM.Retries},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedDimensions, settings.Embedding.Dimensions},
		{keyEmbedRPS, settings.Embedding.RequestsPerSecond},
		{keyEmbedRetries, settings.Embedding.Retries},
		{keyVectorBackend, settings.VectorStore.Backend.String()},
		{keyVectorCollection, settings.VectorStore.Collection},
		{keyVectorPath, settings.VectorStore.Path},
		{keyVectorURL, settings.VectorStore.URL},
		{keyChunkSize, settings.Chunking.Size},
		{keyChunkOverlap, settings.Chunking.Overlap},
		{keyRetrievalTopK, settings.RetrievalTopK},
		{keyDatabaseURL, settings.DatabaseURL},
		{keyServerAddr, settings.ServerAddr},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// Credentials are only written when present.
	secrets := map[string]string{
		keyLLMAPIKey:    settings.LLM.APIKey,
		keyEmbedAPIKey:  settings.Embedding.APIKey,
		keyVectorAPIKey: settings.VectorStore.APIKey,
	}
	for key, value := range secrets {
		if value == "" {
			continue
		}
		if err := s.configStore.Set(key, value); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}

	return nil
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !slices.Contains(domain.AllLLMProviders(), provider) {
		return fmt.Errorf("%w: %s does not synthesize answers", domain.ErrUnknownProvider, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	if provider.RequiresAPIKey() && apiKey == "" && settings.LLM.APIKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrMissingCredential, provider)
	}

	settings.LLM.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.LLM.Model = model
	} else {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}

	// Cloud providers use their public endpoint.
	if provider.IsLocal() {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = domain.DefaultSettings().LLM.BaseURL
		}
	} else {
		settings.LLM.BaseURL = ""
	}

	if apiKey != "" {
		settings.LLM.APIKey = apiKey
	}

	return s.Save(settings)
}

// SetEmbeddingProvider configures the embedding provider.
// Switching providers clears a dimension override so the model's size applies.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("%w: %s does not support embeddings", domain.ErrUnknownProvider, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	if provider.RequiresAPIKey() && apiKey == "" && settings.Embedding.APIKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrMissingCredential, provider)
	}

	if settings.Embedding.Provider != provider {
		settings.Embedding.Dimensions = 0
		settings.Embedding.BaseURL = ""
	}
	settings.Embedding.Provider = provider

	if model != "" {
		settings.Embedding.Model = model
	} else {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}
	if d, ok := domain.EmbeddingDimensions()[settings.Embedding.Model]; ok {
		settings.Embedding.Dimensions = d
	}

	if apiKey != "" {
		settings.Embedding.APIKey = apiKey
	}

	return s.Save(settings)
}

// SetVectorBackend configures the vector index. location is the on-disk
// path for sqlite and chromem, or the server URL / DSN otherwise.
func (s *SettingsService) SetVectorBackend(backend domain.VectorBackend, location string) error {
	if !backend.IsValid() {
		return fmt.Errorf("%w: vector backend %s", domain.ErrUnknownProvider, backend)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.VectorStore.Backend = backend
	if location != "" {
		switch backend {
		case domain.VectorBackendSQLite, domain.VectorBackendChromem:
			settings.VectorStore.Path = location
		case domain.VectorBackendQdrant, domain.VectorBackendPGVector:
			settings.VectorStore.URL = location
		}
	}

	return s.Save(settings)
}

// Validate checks that the configured providers can be constructed.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("embedding provider %q is not configured", settings.Embedding.Provider)
	}
	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("LLM provider %q is not configured", settings.LLM.Provider)
	}
	if settings.VectorStore.Backend == domain.VectorBackendPGVector && settings.VectorStore.URL == domain.DefaultSettings().VectorStore.URL {
		return fmt.Errorf("pgvector backend needs vector_store.url set to a postgres DSN")
	}
	if settings.Chunking.Overlap >= settings.Chunking.Size {
		return fmt.Errorf("chunk overlap %d must be smaller than chunk size %d", settings.Chunking.Overlap, settings.Chunking.Size)
	}
	return nil
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

// getFloat honours an explicit zero, which is a meaningful temperature.
func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.VectorBackend) domain.VectorBackend {
	backend := domain.VectorBackend(s.configStore.GetString(keyVectorBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

// apiKey prefers the section key, then the provider-wide key.
func (s *SettingsService) apiKey(key string, provider domain.AIProvider) string {
	if v := s.configStore.GetString(key); v != "" {
		return v
	}
	switch provider {
	case domain.AIProviderOpenAI:
		return s.configStore.GetString(keyOpenAIAPIKey)
	case domain.AIProviderAnthropic:
		return s.configStore.GetString(keyAnthropicAPIKey)
	default:
		return ""
	}
}

func (s *SettingsService) defaultLLMModel(provider domain.AIProvider, defaults domain.Settings) string {
	if m, ok := domain.DefaultLLMModels()[provider]; ok {
		return m
	}
	return defaults.LLM.Model
}

// defaultBaseURL applies the local endpoint only to local providers.
func (s *SettingsService) defaultBaseURL(provider domain.AIProvider, local string) string {
	if provider.IsLocal() {
		return local
	}
	return ""
}
