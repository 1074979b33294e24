package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// VectorIndex stores chunk vectors with their payload and answers
// cosine-similarity queries restricted by exact-match metadata filters.
type VectorIndex interface {
	// EnsureCollection creates the collection with the given dimension,
	// or reuses an existing one. An existing collection's dimension is trusted.
	EnsureCollection(ctx context.Context, dimension int) error

	// Upsert stores one point per chunk under a freshly generated id.
	// Fails with domain.ErrLengthMismatch when len(chunks) != len(vectors)
	// and domain.ErrDimensionMismatch when a vector has the wrong length.
	Upsert(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error

	// Search returns at most topK points ordered by descending similarity.
	// Every filter pair must match the point payload exactly.
	Search(ctx context.Context, query []float32, topK int, filter domain.Filter) ([]domain.SourceChunk, error)

	// Dimension returns the collection dimension, or 0 before EnsureCollection.
	Dimension() int

	// Close releases resources.
	Close() error
}
