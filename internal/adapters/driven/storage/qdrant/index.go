// Package qdrant provides a vector index backed by a Qdrant server over its
// REST API. Collections use cosine distance.
package qdrant

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/httpapi"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/vecmath"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// Default configuration values.
const (
	DefaultURL     = "http://localhost:6333"
	DefaultTimeout = 15 * time.Second
)

// Config holds configuration for the Qdrant index.
type Config struct {
	// URL is the Qdrant REST endpoint (default: http://localhost:6333).
	URL string

	// APIKey is sent as the api-key header when set.
	APIKey string

	// Collection is the collection name.
	Collection string

	// Timeout is the per-request timeout (default: 15s).
	Timeout time.Duration

	// Retries is passed to httpapi.Config.
	Retries int
}

// VectorIndex stores points in one Qdrant collection.
type VectorIndex struct {
	api        *httpapi.Client
	collection string

	mu        sync.RWMutex
	dimension int
}

// NewVectorIndex creates a Qdrant index. No request is made until
// EnsureCollection.
func NewVectorIndex(cfg Config) *VectorIndex {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	header := http.Header{}
	if cfg.APIKey != "" {
		header.Set("api-key", cfg.APIKey)
	}
	return &VectorIndex{
		api: httpapi.New(httpapi.Config{
			Provider: "qdrant",
			BaseURL:  cfg.URL,
			Timeout:  cfg.Timeout,
			Header:   header,
			Retries:  cfg.Retries,
		}),
		collection: cfg.Collection,
	}
}

type point struct {
	ID      string         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

type searchRequest struct {
	Vector      []float32 `json:"vector"`
	Limit       int       `json:"limit"`
	WithPayload bool      `json:"with_payload"`
	Filter      *filter   `json:"filter,omitempty"`
}

type filter struct {
	Must []condition `json:"must"`
}

// condition is either a field condition or a nested should clause.
type condition struct {
	Key    string      `json:"key,omitempty"`
	Match  *match      `json:"match,omitempty"`
	Range  *valueRange `json:"range,omitempty"`
	Should []condition `json:"should,omitempty"`
}

type match struct {
	Value any `json:"value"`
}

type valueRange struct {
	GTE float64 `json:"gte"`
	LTE float64 `json:"lte"`
}

type searchResponse struct {
	Result []struct {
		ID      any            `json:"id"`
		Score   float64        `json:"score"`
		Payload map[string]any `json:"payload"`
	} `json:"result"`
}

func (x *VectorIndex) collectionPath(suffix string) string {
	return "/collections/" + url.PathEscape(x.collection) + suffix
}

// EnsureCollection reads the existing collection's vector size, creating
// the collection with dimension when it does not exist.
func (x *VectorIndex) EnsureCollection(ctx context.Context, dimension int) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.dimension != 0 {
		return nil
	}

	var info json.RawMessage
	err := x.api.GetJSON(ctx, x.collectionPath(""), &info)
	switch {
	case err == nil:
		size := gjson.GetBytes(info, "result.config.params.vectors.size").Int()
		if size <= 0 {
			return fmt.Errorf("collection %s: unreadable vector size", x.collection)
		}
		x.dimension = int(size)
		return nil
	case !httpapi.IsNotFound(err):
		return fmt.Errorf("get collection %s: %w", x.collection, err)
	}

	create := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	if err := x.api.PutJSON(ctx, x.collectionPath(""), create, nil); err != nil {
		return fmt.Errorf("create collection %s: %w", x.collection, err)
	}
	x.dimension = dimension
	return nil
}

// Upsert writes one point per chunk and waits for the write to apply.
func (x *VectorIndex) Upsert(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error {
	dim := x.Dimension()
	if dim == 0 {
		return domain.ErrCollectionNotReady
	}
	if err := vecmath.CheckBatch(chunks, vectors, dim); err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}

	points := make([]point, len(chunks))
	for i, c := range chunks {
		points[i] = point{
			ID:      uuid.New().String(),
			Vector:  vectors[i],
			Payload: domain.PointPayload(c),
		}
	}

	body := map[string]any{"points": points}
	if err := x.api.PutJSON(ctx, x.collectionPath("/points?wait=true"), body, nil); err != nil {
		return fmt.Errorf("upsert points: %w", err)
	}
	return nil
}

// Search runs a filtered nearest-neighbour query.
func (x *VectorIndex) Search(ctx context.Context, query []float32, topK int, f domain.Filter) ([]domain.SourceChunk, error) {
	dim := x.Dimension()
	if dim == 0 {
		return nil, domain.ErrCollectionNotReady
	}
	if err := vecmath.CheckDimension(query, dim); err != nil {
		return nil, err
	}
	if topK <= 0 {
		return []domain.SourceChunk{}, nil
	}

	req := searchRequest{
		Vector:      query,
		Limit:       topK,
		WithPayload: true,
		Filter:      buildFilter(f),
	}

	var resp searchResponse
	if err := x.api.PostJSON(ctx, x.collectionPath("/points/search"), req, &resp); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	out := make([]domain.SourceChunk, 0, len(resp.Result))
	for _, r := range resp.Result {
		out = append(out, domain.SourceChunkFromPayload(fmt.Sprint(r.ID), vecmath.Score(r.Score), r.Payload))
	}
	return out, nil
}

// buildFilter maps exact-match pairs to must conditions.
// The in-process indexes compare canonical string forms, so "1" matches a
// stored 1 and true matches "true". Qdrant matches by payload type, so each
// pair becomes a should over every typed form of its canonical string.
func buildFilter(f domain.Filter) *filter {
	if len(f) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := &filter{Must: make([]condition, 0, len(f))}
	for _, k := range keys {
		alts := alternatives(k, domain.FilterValue(f[k]))
		if len(alts) == 1 {
			out.Must = append(out.Must, alts[0])
			continue
		}
		out.Must = append(out.Must, condition{Should: alts})
	}
	return out
}

// alternatives lists the conditions whose payload values share the
// canonical form s.
func alternatives(key, s string) []condition {
	out := []condition{{Key: key, Match: &match{Value: s}}}

	n, err := strconv.ParseFloat(s, 64)
	if err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) && domain.FilterValue(n) == s {
		out = append(out, condition{Key: key, Range: &valueRange{GTE: n, LTE: n}})
	}
	if b, err := strconv.ParseBool(s); err == nil && strconv.FormatBool(b) == s {
		out = append(out, condition{Key: key, Match: &match{Value: b}})
	}
	return out
}

// Dimension returns the collection dimension, or 0 before EnsureCollection.
func (x *VectorIndex) Dimension() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.dimension
}

// Ping checks that the server answers.
func (x *VectorIndex) Ping(ctx context.Context) error {
	return x.api.Get(ctx, "/collections")
}

// Close releases resources.
func (x *VectorIndex) Close() error {
	x.api.Close()
	return nil
}
