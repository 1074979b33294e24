package services

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// --- Mock implementations ---

type mockIngester struct {
	docs  []domain.Document
	err   error
	input driven.IngestInput
	calls int
}

func (m *mockIngester) Ingest(_ context.Context, in driven.IngestInput) ([]domain.Document, error) {
	m.calls++
	m.input = in
	return m.docs, m.err
}

type mockFactory struct {
	ingester driven.Ingester
	err      error
	req      domain.IngestRequest
}

func (m *mockFactory) ForRequest(req domain.IngestRequest) (driven.Ingester, error) {
	m.req = req
	if m.err != nil {
		return nil, m.err
	}
	return m.ingester, nil
}

// passthroughSplitter returns every non-empty document as one chunk.
type passthroughSplitter struct {
	calls int
}

func (s *passthroughSplitter) ChunkDocuments(docs []domain.Document) []domain.Chunk {
	s.calls++
	var out []domain.Chunk
	for _, d := range docs {
		if d.Content != "" {
			out = append(out, d)
		}
	}
	return out
}

type mockEmbedder struct {
	dim        int
	err        error
	batchCalls int
	oneCalls   int
	texts      []string
	short      bool
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.oneCalls++
	m.texts = append(m.texts, text)
	if m.err != nil {
		return nil, m.err
	}
	return make([]float32, m.dim), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.batchCalls++
	m.texts = append(m.texts, texts...)
	if m.err != nil {
		return nil, m.err
	}
	n := len(texts)
	if m.short {
		n--
	}
	out := make([][]float32, n)
	for i := range out {
		out[i] = make([]float32, m.dim)
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int              { return m.dim }
func (m *mockEmbedder) ModelName() string            { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

type mockIndex struct {
	results     []domain.SourceChunk
	upsertErr   error
	searchErr   error
	upserts     int
	chunks      []domain.Chunk
	vectors     [][]float32
	searchTopK  int
	searchQuery []float32
	filter      domain.Filter
}

func (m *mockIndex) EnsureCollection(_ context.Context, _ int) error { return nil }

func (m *mockIndex) Upsert(_ context.Context, chunks []domain.Chunk, vectors [][]float32) error {
	m.upserts++
	if m.upsertErr != nil {
		return m.upsertErr
	}
	if len(chunks) != len(vectors) {
		return domain.ErrLengthMismatch
	}
	m.chunks, m.vectors = chunks, vectors
	return nil
}

func (m *mockIndex) Search(_ context.Context, q []float32, topK int, f domain.Filter) ([]domain.SourceChunk, error) {
	m.searchQuery, m.searchTopK, m.filter = q, topK, f
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.results, nil
}

func (m *mockIndex) Dimension() int { return 3 }
func (m *mockIndex) Close() error   { return nil }

type mockLLM struct {
	answer   string
	err      error
	calls    int
	question string
	chunks   []domain.SourceChunk
}

func (m *mockLLM) Answer(_ context.Context, question string, chunks []domain.SourceChunk) (string, error) {
	m.calls++
	m.question, m.chunks = question, chunks
	return m.answer, m.err
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// mockConfigStore keeps values in a map.
type mockConfigStore struct {
	data map[string]any
}

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{data: map[string]any{}}
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	v, ok := m.data[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	s, _ := m.data[key].(string)
	return s
}

func (m *mockConfigStore) GetInt(key string) int {
	switch v := m.data[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	}
	return 0
}

func (m *mockConfigStore) GetFloat(key string) float64 {
	switch v := m.data[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func (m *mockConfigStore) GetBool(key string) bool {
	b, _ := m.data[key].(bool)
	return b
}

func (m *mockConfigStore) GetStringSlice(key string) []string {
	s, _ := m.data[key].([]string)
	return s
}

func (m *mockConfigStore) Set(key string, value any) error {
	m.data[key] = value
	return nil
}

func (m *mockConfigStore) Save() error  { return nil }
func (m *mockConfigStore) Load() error  { return nil }
func (m *mockConfigStore) Path() string { return "mock.toml" }
