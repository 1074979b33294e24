package domain

import "time"

// AIProvider names a backend for embeddings, answers or both.
type AIProvider string

const (
	AIProviderOllama    AIProvider = "ollama"
	AIProviderOpenAI    AIProvider = "openai"
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderHash is the built-in feature-hashing embedder. It needs no
	// network and gives the same vector for the same text on every run.
	AIProviderHash AIProvider = "hash"
)

type providerInfo struct {
	description string
	needsKey    bool
	local       bool
	embeds      bool
	answers     bool
	embedModel  string
	answerModel string
}

// providerOrder is the order providers are listed in.
var providerOrder = []AIProvider{AIProviderHash, AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic}

var providers = map[AIProvider]providerInfo{
	AIProviderHash: {
		description: "Feature hashing (built-in)",
		local:       true,
		embeds:      true,
	},
	AIProviderOllama: {
		description: "Ollama (local)",
		local:       true,
		embeds:      true,
		answers:     true,
		embedModel:  "nomic-embed-text",
		answerModel: "llama3.2",
	},
	AIProviderOpenAI: {
		description: "OpenAI (cloud)",
		needsKey:    true,
		embeds:      true,
		answers:     true,
		embedModel:  "text-embedding-3-small",
		answerModel: "gpt-4o-mini",
	},
	AIProviderAnthropic: {
		description: "Anthropic (cloud)",
		needsKey:    true,
		answers:     true,
		answerModel: "claude-3-5-sonnet-latest",
	},
}

const unknownDescription = "Unknown"

func (p AIProvider) IsValid() bool {
	_, ok := providers[p]
	return ok
}

// RequiresAPIKey reports whether the hosted API needs a credential.
func (p AIProvider) RequiresAPIKey() bool {
	return providers[p].needsKey
}

// IsLocal reports whether the provider runs on this machine.
func (p AIProvider) IsLocal() bool {
	return providers[p].local
}

func (p AIProvider) String() string {
	return string(p)
}

// Description is the label shown in the settings screens.
func (p AIProvider) Description() string {
	if info, ok := providers[p]; ok {
		return info.description
	}
	return unknownDescription
}

// VectorBackend names a vector index implementation.
type VectorBackend string

const (
	VectorBackendMemory   VectorBackend = "memory"
	VectorBackendSQLite   VectorBackend = "sqlite"
	VectorBackendChromem  VectorBackend = "chromem"
	VectorBackendQdrant   VectorBackend = "qdrant"
	VectorBackendPGVector VectorBackend = "pgvector"
)

// backendOrder lists backends from zero-setup to server-backed.
var backendOrder = []VectorBackend{
	VectorBackendChromem,
	VectorBackendSQLite,
	VectorBackendMemory,
	VectorBackendQdrant,
	VectorBackendPGVector,
}

var backendDescriptions = map[VectorBackend]string{
	VectorBackendMemory:   "In-memory (not persisted)",
	VectorBackendSQLite:   "SQLite (local file)",
	VectorBackendChromem:  "chromem (local directory)",
	VectorBackendQdrant:   "Qdrant (server)",
	VectorBackendPGVector: "PostgreSQL pgvector (server)",
}

func (b VectorBackend) IsValid() bool {
	_, ok := backendDescriptions[b]
	return ok
}

// IsPersistent reports whether stored points survive a restart.
func (b VectorBackend) IsPersistent() bool {
	return b.IsValid() && b != VectorBackendMemory
}

func (b VectorBackend) String() string {
	return string(b)
}

func (b VectorBackend) Description() string {
	if d, ok := backendDescriptions[b]; ok {
		return d
	}
	return unknownDescription
}

// AllVectorBackends returns every supported backend in display order.
func AllVectorBackends() []VectorBackend {
	return append([]VectorBackend(nil), backendOrder...)
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions overrides the model's known vector size.
	Dimensions int

	// RequestsPerSecond throttles calls to the backend. Zero disables throttling.
	RequestsPerSecond float64

	// Retries bounds retries of rate-limited or failed requests.
	// Zero uses the client default, negative disables retries.
	Retries int
}

// IsConfigured reports whether the provider can embed with the stored credentials.
func (e EmbeddingSettings) IsConfigured() bool {
	info, ok := providers[e.Provider]
	return ok && info.embeds && (!info.needsKey || e.APIKey != "")
}

// LLMSettings holds answer synthesizer configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64

	// TopK limits sampling to the K most likely tokens (Ollama only).
	TopK int

	// TopP is the nucleus sampling threshold (Ollama only).
	TopP float64

	// Timeout bounds a single generation request.
	Timeout time.Duration

	// Retries bounds retries of rate-limited or failed requests.
	// Zero uses the client default, negative disables retries.
	Retries int
}

// IsConfigured reports whether the provider can answer with the stored credentials.
func (l LLMSettings) IsConfigured() bool {
	info, ok := providers[l.Provider]
	return ok && info.answers && (!info.needsKey || l.APIKey != "")
}

// VectorStoreSettings holds vector index configuration.
type VectorStoreSettings struct {
	// Backend selects the index implementation.
	Backend VectorBackend

	// Collection is the collection (or table) name.
	Collection string

	// Path is the on-disk location for sqlite and chromem.
	Path string

	// URL is the server address for qdrant or the DSN for pgvector.
	URL string

	// APIKey authenticates against a hosted qdrant.
	APIKey string
}

// ChunkingSettings holds chunk splitter configuration.
type ChunkingSettings struct {
	// Size is the maximum characters per chunk.
	Size int

	// Overlap is the characters shared between consecutive chunks.
	Overlap int
}

// Settings holds all application settings.
type Settings struct {
	LLM         LLMSettings
	Embedding   EmbeddingSettings
	VectorStore VectorStoreSettings
	Chunking    ChunkingSettings

	// RetrievalTopK is the default number of fragments retrieved per query.
	RetrievalTopK int

	// DatabaseURL is the default relational source.
	DatabaseURL string

	// ServerAddr is the HTTP listen address.
	ServerAddr string
}

// DefaultSettings returns settings that work without any external service
// except a local Ollama for answer generation.
func DefaultSettings() Settings {
	return Settings{
		LLM: LLMSettings{
			Provider:    AIProviderOllama,
			Model:       providers[AIProviderOllama].answerModel,
			BaseURL:     "http://localhost:11434",
			Temperature: 0.0,
			TopK:        1,
			TopP:        1.0,
			Timeout:     120 * time.Second,
		},
		Embedding: EmbeddingSettings{
			Provider:   AIProviderHash,
			Dimensions: 384,
		},
		VectorStore: VectorStoreSettings{
			Backend:    VectorBackendChromem,
			Collection: "documents",
			URL:        "http://localhost:6333",
		},
		Chunking: ChunkingSettings{
			Size:    1000,
			Overlap: 200,
		},
		RetrievalTopK: 5,
		ServerAddr:    ":8000",
	}
}

// AllLLMProviders returns the providers that synthesise answers.
func AllLLMProviders() []AIProvider {
	return filterProviders(func(i providerInfo) bool { return i.answers })
}

// AllEmbeddingProviders returns the providers that produce vectors.
func AllEmbeddingProviders() []AIProvider {
	return filterProviders(func(i providerInfo) bool { return i.embeds })
}

func filterProviders(keep func(providerInfo) bool) []AIProvider {
	var out []AIProvider
	for _, p := range providerOrder {
		if keep(providers[p]) {
			out = append(out, p)
		}
	}
	return out
}

// DefaultEmbeddingModels maps each hosted embedding provider to its default model.
// The hash embedder has no model.
func DefaultEmbeddingModels() map[AIProvider]string {
	return defaultModels(func(i providerInfo) string { return i.embedModel })
}

// DefaultLLMModels maps each answer provider to its default model.
func DefaultLLMModels() map[AIProvider]string {
	return defaultModels(func(i providerInfo) string { return i.answerModel })
}

func defaultModels(model func(providerInfo) string) map[AIProvider]string {
	out := make(map[AIProvider]string)
	for p, info := range providers {
		if m := model(info); m != "" {
			out[p] = m
		}
	}
	return out
}

// EmbeddingDimensions gives the vector size of well-known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"nomic-embed-text":       768,
		"mxbai-embed-large":      1024,
		"all-minilm":             384,
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
