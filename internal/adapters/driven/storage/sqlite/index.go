package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/vecmath"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// DBFileName is the database file created inside the data directory.
const DBFileName = "vectors.db"

// VectorIndex stores one collection in a SQLite database.
type VectorIndex struct {
	db         *sql.DB
	path       string
	collection string

	mu        sync.RWMutex
	dimension int
}

// NewVectorIndex opens (or creates) dataDir/vectors.db and applies migrations.
// The collection itself is created by EnsureCollection.
func NewVectorIndex(ctx context.Context, dataDir, collection string) (*VectorIndex, error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, DBFileName)

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := migrate(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	x := &VectorIndex{db: db, path: dbPath, collection: collection}
	if err := x.loadDimension(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return x, nil
}

func (x *VectorIndex) loadDimension(ctx context.Context) error {
	var dim int
	err := x.db.QueryRowContext(ctx, "SELECT dimension FROM collections WHERE name = ?", x.collection).Scan(&dim)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading collection %s: %w", x.collection, err)
	}
	x.dimension = dim
	return nil
}

// EnsureCollection creates the collection row if absent. An existing
// collection keeps its recorded dimension.
func (x *VectorIndex) EnsureCollection(ctx context.Context, dimension int) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.dimension > 0 {
		return nil
	}
	_, err := x.db.ExecContext(ctx,
		"INSERT INTO collections (name, dimension) VALUES (?, ?) ON CONFLICT(name) DO NOTHING",
		x.collection, dimension)
	if err != nil {
		return fmt.Errorf("create collection %s: %w", x.collection, err)
	}
	return x.loadDimension(ctx)
}

// Upsert inserts one row per chunk inside a single transaction.
func (x *VectorIndex) Upsert(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error {
	dim := x.Dimension()
	if dim == 0 {
		return domain.ErrCollectionNotReady
	}
	if err := vecmath.CheckBatch(chunks, vectors, dim); err != nil {
		return err
	}

	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO points (id, collection, content, source, payload, embedding)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for i, c := range chunks {
		payload, err := json.Marshal(domain.PointPayload(c))
		if err != nil {
			return fmt.Errorf("marshal payload %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx,
			uuid.New().String(), x.collection, c.Content, c.Source, string(payload), vecmath.Encode(vectors[i]),
		); err != nil {
			return fmt.Errorf("insert point %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

// Search scans the collection in insertion order and ranks matching points.
func (x *VectorIndex) Search(ctx context.Context, query []float32, topK int, filter domain.Filter) ([]domain.SourceChunk, error) {
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

	rows, err := x.db.QueryContext(ctx,
		"SELECT id, payload, embedding FROM points WHERE collection = ? ORDER BY seq", x.collection)
	if err != nil {
		return nil, fmt.Errorf("query points: %w", err)
	}
	defer rows.Close()

	var candidates []vecmath.Candidate
	for rows.Next() {
		var (
			id, rawPayload string
			blob           []byte
		)
		if err := rows.Scan(&id, &rawPayload, &blob); err != nil {
			return nil, fmt.Errorf("scan point: %w", err)
		}

		var payload map[string]any
		if err := json.Unmarshal([]byte(rawPayload), &payload); err != nil {
			return nil, fmt.Errorf("decode payload of %s: %w", id, err)
		}
		if !filter.Matches(payload) {
			continue
		}

		candidates = append(candidates, vecmath.Candidate{
			ID:      id,
			Score:   vecmath.Cosine(query, vecmath.Decode(blob)),
			Payload: payload,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate points: %w", err)
	}

	return vecmath.TopK(candidates, topK), nil
}

// Dimension returns the collection dimension, or 0 before EnsureCollection.
func (x *VectorIndex) Dimension() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.dimension
}

// Path returns the database file path.
func (x *VectorIndex) Path() string {
	return x.path
}

// Close closes the database connection.
func (x *VectorIndex) Close() error {
	return x.db.Close()
}
