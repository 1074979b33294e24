// Package memory provides an in-process vector index for tests and
// throwaway sessions. Points are lost when the process exits.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/vecmath"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

type point struct {
	id      string
	vector  []float32
	payload map[string]any
}

// VectorIndex scores every stored point against the query.
type VectorIndex struct {
	mu        sync.RWMutex
	dimension int
	points    []point
}

// NewVectorIndex creates an empty in-memory index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{}
}

// EnsureCollection fixes the dimension on first call. Later calls keep it.
func (x *VectorIndex) EnsureCollection(_ context.Context, dimension int) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.dimension == 0 {
		x.dimension = dimension
	}
	return nil
}

// Upsert stores one point per chunk under a new id.
func (x *VectorIndex) Upsert(_ context.Context, chunks []domain.Chunk, vectors [][]float32) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.dimension == 0 {
		return domain.ErrCollectionNotReady
	}
	if err := vecmath.CheckBatch(chunks, vectors, x.dimension); err != nil {
		return err
	}

	for i, c := range chunks {
		x.points = append(x.points, point{
			id:      uuid.New().String(),
			vector:  append([]float32(nil), vectors[i]...),
			payload: domain.PointPayload(c),
		})
	}
	return nil
}

// Search ranks every point that matches filter.
func (x *VectorIndex) Search(_ context.Context, query []float32, topK int, filter domain.Filter) ([]domain.SourceChunk, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.dimension == 0 {
		return nil, domain.ErrCollectionNotReady
	}
	if err := vecmath.CheckDimension(query, x.dimension); err != nil {
		return nil, err
	}

	candidates := make([]vecmath.Candidate, 0, len(x.points))
	for _, p := range x.points {
		if !filter.Matches(p.payload) {
			continue
		}
		candidates = append(candidates, vecmath.Candidate{
			ID:      p.id,
			Score:   vecmath.Cosine(query, p.vector),
			Payload: p.payload,
		})
	}
	return vecmath.TopK(candidates, topK), nil
}

// Dimension returns the collection dimension.
func (x *VectorIndex) Dimension() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.dimension
}

// Count returns the number of stored points.
func (x *VectorIndex) Count() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.points)
}

// Close releases resources.
func (x *VectorIndex) Close() error {
	return nil
}
