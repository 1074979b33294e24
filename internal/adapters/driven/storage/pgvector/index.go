// Package pgvector provides a vector index stored in a PostgreSQL table
// using the pgvector extension.
package pgvector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/vecmath"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex stores points as rows of one table.
type VectorIndex struct {
	pool  *pgxpool.Pool
	table string

	mu        sync.RWMutex
	dimension int
}

// NewVectorIndex connects to dsn. The table is named after the collection.
func NewVectorIndex(ctx context.Context, dsn, collection string) (*VectorIndex, error) {
	if collection == "" {
		return nil, errors.New("collection name is required")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &VectorIndex{pool: pool, table: collection}, nil
}

func quote(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func createTableSQL(table string, dimension int) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    seq       BIGSERIAL PRIMARY KEY,
    id        UUID NOT NULL UNIQUE,
    content   TEXT NOT NULL,
    source    TEXT NOT NULL,
    payload   JSONB NOT NULL,
    embedding vector(%d) NOT NULL
)`, quote(table), dimension)
}

// searchSQL builds the ranked query. Filter pairs compare the payload
// field's text form, so 2 and "2" are interchangeable. Cosine distance is
// NaN when either side has zero norm; such rows score 0.
func searchSQL(table string, query pgvector.Vector, topK int, f domain.Filter) (string, []any) {
	var b strings.Builder
	args := []any{query}

	fmt.Fprintf(&b, "SELECT id, payload, COALESCE(NULLIF(1 - (embedding <=> $1), 'NaN'::float8), 0) AS score FROM %s", quote(table))

	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for i, k := range keys {
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		args = append(args, k, domain.FilterValue(f[k]))
		fmt.Fprintf(&b, "payload ->> $%d = $%d", len(args)-1, len(args))
	}

	args = append(args, topK)
	fmt.Fprintf(&b, " ORDER BY score DESC, seq ASC LIMIT $%d", len(args))
	return b.String(), args
}

// EnsureCollection reads the dimension of an existing table or creates it.
func (x *VectorIndex) EnsureCollection(ctx context.Context, dimension int) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.dimension != 0 {
		return nil
	}

	var typmod int
	err := x.pool.QueryRow(ctx,
		`SELECT atttypmod FROM pg_attribute
         WHERE attrelid = to_regclass($1) AND attname = 'embedding'`,
		quote(x.table)).Scan(&typmod)
	switch {
	case err == nil:
		x.dimension = typmod
		return nil
	case !errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("read dimension: %w", err)
	}

	if _, err := x.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("create extension: %w", err)
	}
	if _, err := x.pool.Exec(ctx, createTableSQL(x.table, dimension)); err != nil {
		return fmt.Errorf("create table %s: %w", x.table, err)
	}
	x.dimension = dimension
	return nil
}

// Upsert inserts one row per chunk in a single batch.
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

	insert := fmt.Sprintf(
		"INSERT INTO %s (id, content, source, payload, embedding) VALUES ($1, $2, $3, $4, $5)",
		quote(x.table))

	batch := &pgx.Batch{}
	for i, c := range chunks {
		payload, err := json.Marshal(domain.PointPayload(c))
		if err != nil {
			return fmt.Errorf("marshal payload %d: %w", i, err)
		}
		batch.Queue(insert, uuid.New(), c.Content, c.Source, payload, pgvector.NewVector(vectors[i]))
	}

	if err := x.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert points: %w", err)
	}
	return nil
}

// Search ranks rows by cosine similarity.
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

	sql, args := searchSQL(x.table, pgvector.NewVector(query), topK, f)
	rows, err := x.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer rows.Close()

	out := []domain.SourceChunk{}
	for rows.Next() {
		var (
			id      uuid.UUID
			raw     []byte
			score   float64
			payload map[string]any
		)
		if err := rows.Scan(&id, &raw, &score); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if err := json.Unmarshal(raw, &payload); err != nil {
			return nil, fmt.Errorf("decode payload of %s: %w", id, err)
		}
		out = append(out, domain.SourceChunkFromPayload(id.String(), vecmath.Score(score), payload))
	}
	return out, rows.Err()
}

// Dimension returns the collection dimension, or 0 before EnsureCollection.
func (x *VectorIndex) Dimension() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.dimension
}

// Ping checks the connection.
func (x *VectorIndex) Ping(ctx context.Context) error {
	return x.pool.Ping(ctx)
}

// Close closes the pool.
func (x *VectorIndex) Close() error {
	x.pool.Close()
	return nil
}
