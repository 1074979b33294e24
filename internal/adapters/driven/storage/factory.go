// Package storage selects the vector index implementation from settings.
package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/chromem"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/pgvector"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/qdrant"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// DefaultDirName is the on-disk directory used when settings give no path.
const DefaultDirName = "vectors"

// NewVectorIndex opens the index named by settings.Backend. dataDir is the
// fallback parent directory for the sqlite and chromem backends.
func NewVectorIndex(ctx context.Context, settings domain.VectorStoreSettings, dataDir string) (driven.VectorIndex, error) {
	collection := settings.Collection
	if collection == "" {
		collection = domain.DefaultSettings().VectorStore.Collection
	}

	path := settings.Path
	if path == "" {
		path = filepath.Join(dataDir, DefaultDirName)
	}

	switch settings.Backend {
	case domain.VectorBackendMemory:
		return memory.NewVectorIndex(), nil

	case domain.VectorBackendSQLite:
		return sqlite.NewVectorIndex(ctx, path, collection)

	case domain.VectorBackendChromem:
		return chromem.NewVectorIndex(ctx, path, collection)

	case domain.VectorBackendQdrant:
		return qdrant.NewVectorIndex(qdrant.Config{
			URL:        settings.URL,
			APIKey:     settings.APIKey,
			Collection: collection,
		}), nil

	case domain.VectorBackendPGVector:
		return pgvector.NewVectorIndex(ctx, settings.URL, collection)

	default:
		return nil, fmt.Errorf("%w: vector backend %q", domain.ErrUnknownProvider, settings.Backend)
	}
}
