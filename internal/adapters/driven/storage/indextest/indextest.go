// Package indextest is a behavioural test suite run against every
// driven.VectorIndex implementation that can be exercised in-process.
package indextest

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Factory returns a fresh, empty index. Cleanup is the factory's job.
type Factory func(t *testing.T) driven.VectorIndex

// Run executes every contract test against indexes built by newIndex.
func Run(t *testing.T, newIndex Factory) {
	t.Helper()

	tests := []struct {
		name string
		fn   func(t *testing.T, x driven.VectorIndex)
	}{
		{"RoundTrip", roundTrip},
		{"RankingAndTopK", rankingAndTopK},
		{"Filter", filter},
		{"ZeroVector", zeroVector},
		{"EmptyAndZeroTopK", emptyAndZeroTopK},
		{"EnsureCollectionIdempotent", ensureIdempotent},
		{"LengthMismatch", lengthMismatch},
		{"DimensionMismatch", dimensionMismatch},
		{"NotReady", notReady},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := newIndex(t)
			tt.fn(t, x)
		})
	}
}

func ctx() context.Context { return context.Background() }

func roundTrip(t *testing.T, x driven.VectorIndex) {
	require.NoError(t, x.EnsureCollection(ctx(), 3))

	chunk := domain.Chunk{
		Content:  "Paris is the capital of France.",
		Source:   "geo.txt",
		Metadata: map[string]any{"lang": "en"},
	}
	require.NoError(t, x.Upsert(ctx(), []domain.Chunk{chunk}, [][]float32{{0.2, 0.4, 0.9}}))

	got, err := x.Search(ctx(), []float32{0.2, 0.4, 0.9}, 1, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.NotEmpty(t, got[0].ID)
	assert.Equal(t, chunk.Content, got[0].Content)
	assert.Equal(t, chunk.Source, got[0].Source)
	assert.InDelta(t, 1.0, got[0].Score, 1e-4)
	assert.Equal(t, "en", got[0].Metadata["lang"])
	assert.NotContains(t, got[0].Metadata, domain.PayloadContent)
	assert.NotContains(t, got[0].Metadata, domain.PayloadSource)
}

func rankingAndTopK(t *testing.T, x driven.VectorIndex) {
	require.NoError(t, x.EnsureCollection(ctx(), 2))

	chunks := []domain.Chunk{
		{Content: "east", Source: "e"},
		{Content: "north", Source: "n"},
		{Content: "north-east", Source: "ne"},
	}
	vectors := [][]float32{{1, 0}, {0, 1}, {1, 1}}
	require.NoError(t, x.Upsert(ctx(), chunks, vectors))

	got, err := x.Search(ctx(), []float32{1, 0.1}, 2, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "east", got[0].Content)
	assert.Equal(t, "north-east", got[1].Content)
	assert.GreaterOrEqual(t, got[0].Score, got[1].Score)

	all, err := x.Search(ctx(), []float32{1, 0.1}, 10, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func filter(t *testing.T, x driven.VectorIndex) {
	require.NoError(t, x.EnsureCollection(ctx(), 2))

	chunks := []domain.Chunk{
		{Content: "a", Source: "s1", Metadata: map[string]any{"category": "finance", "row_index": 0}},
		{Content: "b", Source: "s2", Metadata: map[string]any{"category": "sports", "row_index": 1}},
		{Content: "c", Source: "s3", Metadata: map[string]any{"category": "finance", "row_index": 2}},
	}
	require.NoError(t, x.Upsert(ctx(), chunks, [][]float32{{1, 0}, {1, 0}, {0, 1}}))

	got, err := x.Search(ctx(), []float32{1, 0}, 10, domain.Filter{"category": "finance"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, sc := range got {
		assert.Equal(t, "finance", sc.Metadata["category"])
	}

	got, err = x.Search(ctx(), []float32{1, 0}, 10, domain.Filter{"category": "finance", "row_index": 2})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].Content)

	got, err = x.Search(ctx(), []float32{1, 0}, 10, domain.Filter{"row_index": "1"})
	require.NoError(t, err)
	require.Len(t, got, 1, "string filter matches a numeric payload")
	assert.Equal(t, "b", got[0].Content)

	got, err = x.Search(ctx(), []float32{1, 0}, 10, domain.Filter{"source": "s2"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].Content)

	got, err = x.Search(ctx(), []float32{1, 0}, 10, domain.Filter{"category": "weather"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func zeroVector(t *testing.T, x driven.VectorIndex) {
	require.NoError(t, x.EnsureCollection(ctx(), 2))

	chunks := []domain.Chunk{
		{Content: "east", Source: "e"},
		{Content: "--- ... ---", Source: "blank"},
		{Content: "west", Source: "w"},
	}
	require.NoError(t, x.Upsert(ctx(), chunks, [][]float32{{1, 0}, {0, 0}, {-1, 0}}))

	got, err := x.Search(ctx(), []float32{1, 0}, 3, nil)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assertFinite(t, got)
	assert.Equal(t, []string{"east", "--- ... ---", "west"}, contents(got))
	assert.InDelta(t, 0, got[1].Score, 1e-6)

	got, err = x.Search(ctx(), []float32{0, 0}, 3, nil)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assertFinite(t, got)
	for _, sc := range got {
		assert.InDelta(t, 0, sc.Score, 1e-6, sc.Content)
	}

	got, err = x.Search(ctx(), []float32{0, 0}, 1, domain.Filter{"source": "w"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "west", got[0].Content)
}

func assertFinite(t *testing.T, got []domain.SourceChunk) {
	t.Helper()
	for _, sc := range got {
		assert.False(t, math.IsNaN(sc.Score) || math.IsInf(sc.Score, 0), "%s scored %v", sc.Content, sc.Score)
	}
}

func contents(got []domain.SourceChunk) []string {
	out := make([]string, len(got))
	for i, sc := range got {
		out[i] = sc.Content
	}
	return out
}

func emptyAndZeroTopK(t *testing.T, x driven.VectorIndex) {
	require.NoError(t, x.EnsureCollection(ctx(), 2))

	got, err := x.Search(ctx(), []float32{1, 0}, 5, nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, x.Upsert(ctx(), []domain.Chunk{{Content: "a", Source: "s"}}, [][]float32{{1, 0}}))
	got, err = x.Search(ctx(), []float32{1, 0}, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func ensureIdempotent(t *testing.T, x driven.VectorIndex) {
	require.NoError(t, x.EnsureCollection(ctx(), 4))
	require.NoError(t, x.Upsert(ctx(), []domain.Chunk{{Content: "kept", Source: "s"}}, [][]float32{{1, 0, 0, 0}}))

	require.NoError(t, x.EnsureCollection(ctx(), 4))
	require.NoError(t, x.EnsureCollection(ctx(), 8), "existing dimension is trusted")
	assert.Equal(t, 4, x.Dimension())

	got, err := x.Search(ctx(), []float32{1, 0, 0, 0}, 5, nil)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func lengthMismatch(t *testing.T, x driven.VectorIndex) {
	require.NoError(t, x.EnsureCollection(ctx(), 2))

	err := x.Upsert(ctx(), []domain.Chunk{{Content: "a"}, {Content: "b"}}, [][]float32{{1, 0}})
	assert.ErrorIs(t, err, domain.ErrLengthMismatch)
}

func dimensionMismatch(t *testing.T, x driven.VectorIndex) {
	require.NoError(t, x.EnsureCollection(ctx(), 2))

	err := x.Upsert(ctx(), []domain.Chunk{{Content: "a"}}, [][]float32{{1, 0, 0}})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	_, err = x.Search(ctx(), []float32{1}, 1, nil)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func notReady(t *testing.T, x driven.VectorIndex) {
	assert.Equal(t, 0, x.Dimension())

	err := x.Upsert(ctx(), []domain.Chunk{{Content: "a"}}, [][]float32{{1}})
	assert.ErrorIs(t, err, domain.ErrCollectionNotReady)

	_, err = x.Search(ctx(), []float32{1}, 1, nil)
	assert.ErrorIs(t, err, domain.ErrCollectionNotReady)
}
