package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func sampleSources() []domain.SourceChunk {
	return []domain.SourceChunk{
		{ID: "1", Content: "Paris is the capital of France.", Score: 0.92, Source: "geo.txt"},
		{ID: "2", Content: "France is in Europe.", Score: 0.71, Source: "geo.txt"},
	}
}

func TestNewQueryService_DefaultTopK(t *testing.T) {
	s := NewQueryService(&mockEmbedder{}, &mockIndex{}, &mockLLM{}, 0)
	assert.Equal(t, DefaultTopK, s.TopK())

	s = NewQueryService(&mockEmbedder{}, &mockIndex{}, &mockLLM{}, 8)
	assert.Equal(t, 8, s.TopK())
}

func TestQueryService_Query(t *testing.T) {
	embedder := &mockEmbedder{dim: 3}
	index := &mockIndex{results: sampleSources()}
	llm := &mockLLM{answer: "Paris."}
	s := NewQueryService(embedder, index, llm, 5)
	filters := domain.Filter{"source": "geo.txt"}

	resp, err := s.Query(context.Background(), domain.QueryRequest{
		Question: "What is the capital of France?",
		Filters:  filters,
	})

	require.NoError(t, err)
	assert.Equal(t, "Paris.", resp.Answer)
	assert.Equal(t, sampleSources(), resp.Sources, "sources unmodified and in order")
	assert.Equal(t, "What is the capital of France?", resp.Query)

	assert.Equal(t, 1, embedder.oneCalls)
	assert.Equal(t, 5, index.searchTopK)
	assert.Equal(t, filters, index.filter)
	assert.Equal(t, 1, llm.calls)
	assert.Equal(t, "What is the capital of France?", llm.question)
	assert.Equal(t, sampleSources(), llm.chunks)
}

func TestQueryService_Query_TopK(t *testing.T) {
	tests := []struct {
		name        string
		serviceTopK int
		requestTopK int
		want        int
	}{
		{"request wins", 5, 2, 2},
		{"configured default", 7, 0, 7},
		{"built-in default", 0, 0, DefaultTopK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			index := &mockIndex{results: sampleSources()}
			s := NewQueryService(&mockEmbedder{dim: 3}, index, &mockLLM{answer: "a"}, tt.serviceTopK)

			_, err := s.Query(context.Background(), domain.QueryRequest{Question: "q", TopK: tt.requestTopK})

			require.NoError(t, err)
			assert.Equal(t, tt.want, index.searchTopK)
		})
	}
}

func TestQueryService_Query_NoSourcesShortCircuits(t *testing.T) {
	for _, results := range [][]domain.SourceChunk{nil, {}} {
		llm := &mockLLM{answer: "should not be used"}
		s := NewQueryService(&mockEmbedder{dim: 3}, &mockIndex{results: results}, llm, 5)

		resp, err := s.Query(context.Background(), domain.QueryRequest{Question: "anything?"})

		require.NoError(t, err)
		assert.Equal(t, domain.NoContextAnswer, resp.Answer)
		assert.NotNil(t, resp.Sources)
		assert.Empty(t, resp.Sources)
		assert.Equal(t, "anything?", resp.Query)
		assert.Zero(t, llm.calls, "synthesizer never invoked")
	}
}

func TestQueryService_Query_BlankQuestion(t *testing.T) {
	for _, q := range []string{"", "   ", "\n\t"} {
		embedder := &mockEmbedder{dim: 3}
		s := NewQueryService(embedder, &mockIndex{}, &mockLLM{}, 5)

		resp, err := s.Query(context.Background(), domain.QueryRequest{Question: q})

		assert.Nil(t, resp)
		assert.ErrorIs(t, err, domain.ErrEmptyQuestion)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
		assert.Zero(t, embedder.oneCalls, "checked before embedding")
	}
}

func TestQueryService_Query_Failures(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name     string
		embedder *mockEmbedder
		index    *mockIndex
		llm      *mockLLM
		wantErr  error
	}{
		{"embed fails", &mockEmbedder{err: boom}, &mockIndex{}, &mockLLM{}, boom},
		{"search fails", &mockEmbedder{dim: 3}, &mockIndex{searchErr: domain.ErrDimensionMismatch}, &mockLLM{}, domain.ErrDimensionMismatch},
		{"answer fails", &mockEmbedder{dim: 3}, &mockIndex{results: sampleSources()}, &mockLLM{err: boom}, boom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewQueryService(tt.embedder, tt.index, tt.llm, 5)

			resp, err := s.Query(context.Background(), domain.QueryRequest{Question: "q"})

			assert.Nil(t, resp)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
