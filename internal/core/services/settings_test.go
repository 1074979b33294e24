package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(newMockConfigStore())

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultSettings()
	assert.Equal(t, defaults.LLM.Provider, settings.LLM.Provider)
	assert.Equal(t, "llama3.2", settings.LLM.Model)
	assert.Equal(t, "http://localhost:11434", settings.LLM.BaseURL)
	assert.Zero(t, settings.LLM.Temperature)
	assert.Equal(t, 1, settings.LLM.TopK)
	assert.InDelta(t, 1.0, settings.LLM.TopP, 1e-9)
	assert.Equal(t, domain.AIProviderHash, settings.Embedding.Provider)
	assert.Equal(t, 384, settings.Embedding.Dimensions)
	assert.Equal(t, domain.VectorBackendChromem, settings.VectorStore.Backend)
	assert.Equal(t, "documents", settings.VectorStore.Collection)
	assert.Equal(t, 5, settings.RetrievalTopK)
	assert.Equal(t, 1000, settings.Chunking.Size)
	assert.Equal(t, 200, settings.Chunking.Overlap)
	assert.Equal(t, ":8000", settings.ServerAddr)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := newMockConfigStore()
	_ = store.Set("llm.provider", "openai")
	_ = store.Set("openai.api_key", "sk-test")
	_ = store.Set("llm.temperature", 0.4)
	_ = store.Set("llm.timeout", "30s")
	_ = store.Set("vector_store.backend", "qdrant")
	_ = store.Set("retrieval.top_k", 9)
	_ = store.Set("database.url", "sqlite:///tmp/app.db")
	_ = store.Set("llm.retries", 4)
	_ = store.Set("embedding.retries", -1)

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, settings.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", settings.LLM.Model, "provider default model")
	assert.Empty(t, settings.LLM.BaseURL, "cloud providers use their public endpoint")
	assert.Equal(t, "sk-test", settings.LLM.APIKey, "provider-wide key")
	assert.InDelta(t, 0.4, settings.LLM.Temperature, 1e-9)
	assert.Equal(t, 30*time.Second, settings.LLM.Timeout)
	assert.Equal(t, domain.VectorBackendQdrant, settings.VectorStore.Backend)
	assert.Equal(t, 9, settings.RetrievalTopK)
	assert.Equal(t, "sqlite:///tmp/app.db", settings.DatabaseURL)
	assert.Equal(t, 4, settings.LLM.Retries)
	assert.Equal(t, -1, settings.Embedding.Retries)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	store := newMockConfigStore()
	_ = store.Set("llm.provider", "invalid_provider")
	_ = store.Set("vector_store.backend", "invalid_backend")
	_ = store.Set("llm.timeout", "soon")

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	defaults := domain.DefaultSettings()
	assert.Equal(t, defaults.LLM.Provider, settings.LLM.Provider)
	assert.Equal(t, defaults.VectorStore.Backend, settings.VectorStore.Backend)
	assert.Equal(t, defaults.LLM.Timeout, settings.LLM.Timeout)
}

func TestSettingsService_Get_ExplicitZeroTemperature(t *testing.T) {
	store := newMockConfigStore()
	_ = store.Set("llm.top_p", 0.0)

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	assert.Zero(t, settings.LLM.TopP)
}

func TestSettingsService_SaveRoundTrip(t *testing.T) {
	store := newMockConfigStore()
	service := NewSettingsService(store)

	want := domain.DefaultSettings()
	want.LLM.Provider = domain.AIProviderAnthropic
	want.LLM.Model = "claude-3-5-haiku-latest"
	want.LLM.BaseURL = ""
	want.LLM.APIKey = "ant-key"
	want.LLM.Retries = 3
	want.Chunking.Size = 500
	want.Chunking.Overlap = 50

	require.NoError(t, service.Save(&want))
	got, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, want.LLM, got.LLM)
	assert.Equal(t, want.Chunking, got.Chunking)
}

func TestSettingsService_Save_SkipsEmptyAPIKeys(t *testing.T) {
	store := newMockConfigStore()
	settings := domain.DefaultSettings()

	require.NoError(t, NewSettingsService(store).Save(&settings))

	_, exists := store.Get("llm.api_key")
	assert.False(t, exists)
}

func TestSettingsService_SetLLMProvider(t *testing.T) {
	tests := []struct {
		name      string
		provider  domain.AIProvider
		model     string
		apiKey    string
		wantModel string
		wantErr   error
	}{
		{name: "ollama default model", provider: domain.AIProviderOllama, wantModel: "llama3.2"},
		{name: "openai with key", provider: domain.AIProviderOpenAI, apiKey: "sk", model: "gpt-4o", wantModel: "gpt-4o"},
		{name: "openai without key", provider: domain.AIProviderOpenAI, wantErr: domain.ErrMissingCredential},
		{name: "hash cannot answer", provider: domain.AIProviderHash, wantErr: domain.ErrUnknownProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewSettingsService(newMockConfigStore())

			err := service.SetLLMProvider(tt.provider, tt.model, tt.apiKey)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			got, err := service.Get()
			require.NoError(t, err)
			assert.Equal(t, tt.provider, got.LLM.Provider)
			assert.Equal(t, tt.wantModel, got.LLM.Model)
		})
	}
}

func TestSettingsService_SetEmbeddingProvider(t *testing.T) {
	service := NewSettingsService(newMockConfigStore())

	require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOllama, "", ""))

	got, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, got.Embedding.Provider)
	assert.Equal(t, "nomic-embed-text", got.Embedding.Model)
	assert.Equal(t, 768, got.Embedding.Dimensions)

	err = service.SetEmbeddingProvider(domain.AIProviderAnthropic, "", "key")
	assert.ErrorIs(t, err, domain.ErrUnknownProvider)
}

func TestSettingsService_SetVectorBackend(t *testing.T) {
	service := NewSettingsService(newMockConfigStore())

	require.NoError(t, service.SetVectorBackend(domain.VectorBackendSQLite, "/data/rag"))
	got, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.VectorBackendSQLite, got.VectorStore.Backend)
	assert.Equal(t, "/data/rag", got.VectorStore.Path)

	require.NoError(t, service.SetVectorBackend(domain.VectorBackendQdrant, "http://qdrant:6333"))
	got, err = service.Get()
	require.NoError(t, err)
	assert.Equal(t, "http://qdrant:6333", got.VectorStore.URL)

	err = service.SetVectorBackend("faiss", "")
	assert.ErrorIs(t, err, domain.ErrUnknownProvider)
}

func TestSettingsService_Validate(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]any
		wantErr string
	}{
		{name: "defaults are valid"},
		{name: "openai llm without key", values: map[string]any{"llm.provider": "openai"}, wantErr: "LLM provider"},
		{name: "openai embedding without key", values: map[string]any{"embedding.provider": "openai"}, wantErr: "embedding provider"},
		{name: "overlap too large", values: map[string]any{"chunking.size": 100, "chunking.overlap": 100}, wantErr: "chunk overlap"},
		{name: "pgvector without dsn", values: map[string]any{"vector_store.backend": "pgvector"}, wantErr: "pgvector"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockConfigStore()
			for k, v := range tt.values {
				_ = store.Set(k, v)
			}

			err := NewSettingsService(store).Validate()

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
