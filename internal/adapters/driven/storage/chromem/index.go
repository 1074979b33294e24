// Package chromem provides the default vector index, backed by chromem-go.
//
// chromem keeps every collection in memory and, when given a path, persists
// it as gob files so the knowledge base survives restarts. Metadata values are
// stored in their canonical string form so exact-match filters run natively
// through chromem's where clause; the original typed payload travels
// alongside as JSON.
//
// chromem normalizes every embedding, which turns a zero vector into NaN.
// Zero-norm points are therefore stored under a placeholder unit vector and
// flagged, and always score 0.
package chromem

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/vecmath"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

const (
	// metaCollection records each collection's dimension.
	metaCollection = "_collections"

	// payloadKey holds the JSON-encoded typed payload on every point.
	payloadKey = "_payload"

	// zeroKey flags points whose real vector has zero norm.
	zeroKey = "_zero"

	dimensionKey = "dimension"
)

// placeholder is the unit vector stored for zero-norm points.
func placeholder(dim int) []float32 {
	v := make([]float32, dim)
	v[0] = 1
	return v
}

// VectorIndex stores one chromem collection.
type VectorIndex struct {
	db   *chromem.DB
	name string

	mu        sync.RWMutex
	col       *chromem.Collection
	dimension int
}

// NewVectorIndex opens a persistent database at path, or an in-memory one
// when path is empty. An existing collection's dimension is restored.
func NewVectorIndex(ctx context.Context, path, collection string) (*VectorIndex, error) {
	var (
		db  *chromem.DB
		err error
	)
	if path == "" {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(path, false)
		if err != nil {
			return nil, fmt.Errorf("open chromem db: %w", err)
		}
	}

	x := &VectorIndex{db: db, name: collection}
	if err := x.restore(ctx); err != nil {
		return nil, err
	}
	return x, nil
}

func (x *VectorIndex) metaCol() (*chromem.Collection, error) {
	col, err := x.db.GetOrCreateCollection(metaCollection, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", metaCollection, err)
	}
	return col, nil
}

func (x *VectorIndex) restore(ctx context.Context) error {
	meta, err := x.metaCol()
	if err != nil {
		return err
	}
	doc, err := meta.GetByID(ctx, x.name)
	if err != nil {
		// Not created yet.
		return nil
	}
	dim, err := strconv.Atoi(doc.Metadata[dimensionKey])
	if err != nil || dim <= 0 {
		return fmt.Errorf("collection %s has invalid dimension %q", x.name, doc.Metadata[dimensionKey])
	}

	col := x.db.GetCollection(x.name, nil)
	if col == nil {
		return fmt.Errorf("collection %s recorded but missing", x.name)
	}
	x.col, x.dimension = col, dim
	return nil
}

// EnsureCollection creates the collection and records its dimension.
// An existing collection is reused as-is.
func (x *VectorIndex) EnsureCollection(ctx context.Context, dimension int) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.col != nil {
		return nil
	}

	col, err := x.db.GetOrCreateCollection(x.name, map[string]string{"hnsw:space": "cosine"}, nil)
	if err != nil {
		return fmt.Errorf("create collection %s: %w", x.name, err)
	}

	meta, err := x.metaCol()
	if err != nil {
		return err
	}
	err = meta.AddDocument(ctx, chromem.Document{
		ID:        x.name,
		Metadata:  map[string]string{dimensionKey: strconv.Itoa(dimension)},
		Embedding: []float32{1},
		Content:   x.name,
	})
	if err != nil {
		return fmt.Errorf("record dimension of %s: %w", x.name, err)
	}

	x.col, x.dimension = col, dimension
	return nil
}

// Upsert adds one chromem document per chunk under a new id.
func (x *VectorIndex) Upsert(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error {
	col, dim := x.collection()
	if col == nil {
		return domain.ErrCollectionNotReady
	}
	if err := vecmath.CheckBatch(chunks, vectors, dim); err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}

	ids := make([]string, len(chunks))
	metadatas := make([]map[string]string, len(chunks))
	contents := make([]string, len(chunks))
	embeddings := make([][]float32, len(chunks))

	for i, c := range chunks {
		payload := domain.PointPayload(c)
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload %d: %w", i, err)
		}

		meta := make(map[string]string, len(payload)+1)
		for k, v := range payload {
			meta[k] = domain.FilterValue(v)
		}
		meta[payloadKey] = string(raw)
		meta[zeroKey] = "0"

		embedding := append([]float32(nil), vectors[i]...)
		if vecmath.IsZero(embedding) {
			meta[zeroKey] = "1"
			embedding = placeholder(dim)
		}

		ids[i] = uuid.New().String()
		metadatas[i] = meta
		contents[i] = c.Content
		embeddings[i] = embedding
	}

	if err := col.Add(ctx, ids, embeddings, metadatas, contents); err != nil {
		return fmt.Errorf("add points: %w", err)
	}
	return nil
}

// Search queries chromem with the filter as a where clause. Zero-norm
// points join the ranking at score 0.
func (x *VectorIndex) Search(ctx context.Context, query []float32, topK int, filter domain.Filter) ([]domain.SourceChunk, error) {
	col, dim := x.collection()
	if col == nil {
		return nil, domain.ErrCollectionNotReady
	}
	if err := vecmath.CheckDimension(query, dim); err != nil {
		return nil, err
	}

	// chromem rejects n outside [1, Count].
	n := min(topK, col.Count())
	if n <= 0 {
		return []domain.SourceChunk{}, nil
	}

	where := func(zero string) map[string]string {
		w := make(map[string]string, len(filter)+1)
		for k, v := range filter {
			w[k] = domain.FilterValue(v)
		}
		if zero != "" {
			w[zeroKey] = zero
		}
		return w
	}

	// A zero query has no direction: every point scores 0.
	if vecmath.IsZero(query) {
		results, err := x.query(ctx, col, placeholder(dim), n, where(""))
		if err != nil {
			return nil, err
		}
		for i := range results {
			results[i].Score = 0
		}
		return vecmath.TopK(results, n), nil
	}

	scored, err := x.query(ctx, col, query, n, where("0"))
	if err != nil {
		return nil, err
	}
	zero, err := x.query(ctx, col, placeholder(dim), n, where("1"))
	if err != nil {
		return nil, err
	}
	for i := range zero {
		zero[i].Score = 0
	}
	return vecmath.TopK(append(scored, zero...), n), nil
}

// query runs one chromem query and decodes the typed payloads.
func (x *VectorIndex) query(ctx context.Context, col *chromem.Collection, embedding []float32, n int, where map[string]string) ([]vecmath.Candidate, error) {
	results, err := col.QueryEmbedding(ctx, embedding, n, where, nil)
	if err != nil {
		return nil, fmt.Errorf("query collection %s: %w", x.name, err)
	}

	out := make([]vecmath.Candidate, 0, len(results))
	for _, r := range results {
		var payload map[string]any
		if err := json.Unmarshal([]byte(r.Metadata[payloadKey]), &payload); err != nil {
			return nil, fmt.Errorf("decode payload of %s: %w", r.ID, err)
		}
		out = append(out, vecmath.Candidate{ID: r.ID, Score: vecmath.Score(float64(r.Similarity)), Payload: payload})
	}
	return out, nil
}

func (x *VectorIndex) collection() (*chromem.Collection, int) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.col, x.dimension
}

// Dimension returns the collection dimension, or 0 before EnsureCollection.
func (x *VectorIndex) Dimension() int {
	_, dim := x.collection()
	return dim
}

// Close releases resources. Persistent writes happen on every Add.
func (x *VectorIndex) Close() error {
	return nil
}
