package driving

import "github.com/custodia-labs/sercha-rag/internal/core/domain"

// SettingsService manages which providers and vector index the pipelines
// use. Changes are persisted; pipelines already running keep their
// providers until rebuilt.
type SettingsService interface {
	// Get returns stored settings layered over domain.DefaultSettings.
	Get() (*domain.Settings, error)

	// Save persists every non-empty field. Blank API keys never
	// overwrite stored ones.
	Save(settings *domain.Settings) error

	// SetLLMProvider, SetEmbeddingProvider and SetVectorBackend switch
	// one component, filling in the provider's default model or location.
	// Hosted providers fail with domain.ErrMissingCredential when no key is given or stored.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error
	SetVectorBackend(backend domain.VectorBackend, location string) error

	// Validate reports the first setting that cannot work as configured.
	Validate() error
}
