// Package app constructs every collaborator once and hands the same
// instances to both pipelines and every driving adapter.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/ai"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/config/env"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/llm/prompt"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
	"github.com/custodia-labs/sercha-rag/internal/ingesters"
	"github.com/custodia-labs/sercha-rag/internal/logger"
	"github.com/custodia-labs/sercha-rag/internal/postprocessors/chunker"
)

// Options control where configuration comes from.
type Options struct {
	// Dir holds config.toml, prompts and the default vector store.
	// Empty uses ~/.sercha-rag.
	Dir string

	// EnvFiles are loaded before reading configuration. Empty loads .env.
	EnvFiles []string

	// Lookup reads environment variables. Nil reads the process environment.
	Lookup env.LookupFunc
}

// App is the application context.
type App struct {
	Dir      string
	Settings *domain.Settings

	Config   driven.ConfigStore
	Prompts  *file.PromptStore
	Embedder driven.EmbeddingService
	Index    driven.VectorIndex
	LLM      driven.LLMService

	SettingsService *services.SettingsService
	Ingestion       *services.IngestionService
	Query           *services.QueryService
}

// LoadSettings resolves settings without opening any backend.
func LoadSettings(opts Options) (string, driven.ConfigStore, *domain.Settings, error) {
	dir := opts.Dir
	if dir == "" {
		d, err := file.DefaultDir()
		if err != nil {
			return "", nil, nil, fmt.Errorf("resolve config directory: %w", err)
		}
		dir = d
	}

	if err := env.Load(opts.EnvFiles...); err != nil {
		return "", nil, nil, err
	}

	fileStore, err := file.NewConfigStore(dir)
	if err != nil {
		return "", nil, nil, fmt.Errorf("open config: %w", err)
	}
	store := env.NewOverlay(fileStore, opts.Lookup)

	settings, err := services.NewSettingsService(store).Get()
	if err != nil {
		return "", nil, nil, fmt.Errorf("load settings: %w", err)
	}
	return dir, store, settings, nil
}

// New builds the application context. The vector collection is created
// with the embedding backend's dimension if it does not exist yet.
func New(ctx context.Context, opts Options) (*App, error) {
	dir, store, settings, err := LoadSettings(opts)
	if err != nil {
		return nil, err
	}

	logger.Section("Configuration")
	logger.Debug("Config: %s", store.Path())
	logger.Debug("LLM: %s (%s)", settings.LLM.Provider, settings.LLM.Model)
	logger.Debug("Embedding: %s (%s)", settings.Embedding.Provider, settings.Embedding.Model)
	logger.Debug("Vector store: %s", settings.VectorStore.Backend)

	a := &App{
		Dir:             dir,
		Settings:        settings,
		Config:          store,
		SettingsService: services.NewSettingsService(store),
	}

	a.Prompts, err = file.NewPromptStore(filepath.Join(dir, "prompts"), prompt.Defaults())
	if err != nil {
		return nil, fmt.Errorf("open prompts: %w", err)
	}

	a.Embedder, err = ai.CreateEmbeddingService(settings.Embedding)
	if err != nil {
		return nil, fmt.Errorf("create embedding service: %w", err)
	}

	a.LLM, err = ai.CreateLLMService(settings.LLM, a.Prompts)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("create LLM service: %w", err)
	}

	a.Index, err = storage.NewVectorIndex(ctx, settings.VectorStore, dir)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("open vector index: %w", err)
	}

	if err := a.Index.EnsureCollection(ctx, a.Embedder.Dimensions()); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("ensure collection: %w", err)
	}
	if got, want := a.Index.Dimension(), a.Embedder.Dimensions(); got != want {
		logger.Warn("Collection %q has dimension %d but %s produces %d; ingest and query will fail until they match",
			settings.VectorStore.Collection, got, a.Embedder.ModelName(), want)
	}

	splitter := chunker.New(
		chunker.WithChunkSize(settings.Chunking.Size),
		chunker.WithOverlap(settings.Chunking.Overlap),
	)

	a.Ingestion = services.NewIngestionService(
		ingesters.NewFactory(settings.DatabaseURL),
		splitter,
		a.Embedder,
		a.Index,
	)
	a.Query = services.NewQueryService(a.Embedder, a.Index, a.LLM, settings.RetrievalTopK)

	return a, nil
}

// indexPinger adapts a pingable index to ai.Pinger.
type indexPinger struct {
	ping    func(ctx context.Context) error
	backend string
}

func (p indexPinger) Ping(ctx context.Context) error { return p.ping(ctx) }
func (p indexPinger) ModelName() string              { return p.backend }

// Checks pings the embedding backend, the LLM and, for networked
// backends, the vector store.
func (a *App) Checks(ctx context.Context) []ai.Check {
	targets := map[string]ai.Pinger{
		"embedding": a.Embedder,
		"llm":       a.LLM,
	}
	if p, ok := a.Index.(interface{ Ping(context.Context) error }); ok {
		targets["vector_store"] = indexPinger{ping: p.Ping, backend: a.Settings.VectorStore.Backend.String()}
	}
	return ai.CheckServices(ctx, targets)
}

// Close releases every backend that was opened.
func (a *App) Close() error {
	var errs []error
	if a.Index != nil {
		errs = append(errs, a.Index.Close())
	}
	if a.LLM != nil {
		errs = append(errs, a.LLM.Close())
	}
	if a.Embedder != nil {
		errs = append(errs, a.Embedder.Close())
	}
	return errors.Join(errs...)
}
