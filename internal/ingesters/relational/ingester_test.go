package relational

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// seedDB creates a SQLite database with a products table and returns its path.
func seedDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shop.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE products (id INTEGER PRIMARY KEY, name TEXT, price REAL, note TEXT);
		INSERT INTO products (id, name, price, note) VALUES
			(1, 'Widget', 9.5, 'best seller'),
			(2, 'Gadget', 20, NULL);
	`)
	require.NoError(t, err)
	return path
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{"missing url", Config{TableName: "t"}, ErrMissingDatabaseURL},
		{"missing table and query", Config{DatabaseURL: "x.db"}, domain.ErrMissingQueryOrTable},
		{"injected table", Config{DatabaseURL: "x.db", TableName: "t; DROP TABLE t"}, ErrInvalidTableName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNew_QueryModeSkipsTableValidation(t *testing.T) {
	_, err := New(Config{DatabaseURL: "x.db", TableName: "bad name!", Query: "SELECT 1"})
	assert.NoError(t, err)
}

func TestResolveDriver(t *testing.T) {
	tests := []struct {
		url        string
		wantDriver string
		wantDSN    string
		wantDial   dialect
	}{
		{"postgres://u:p@localhost/db", "pgx", "postgres://u:p@localhost/db", dialectPostgres},
		{"postgresql://localhost/db", "pgx", "postgresql://localhost/db", dialectPostgres},
		{"sqlite:///tmp/x.db", "sqlite", "/tmp/x.db", dialectSQLite},
		{"file:x.db?mode=ro", "sqlite", "file:x.db?mode=ro", dialectSQLite},
		{"./data.db", "sqlite", "./data.db", dialectSQLite},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			d, driver, dsn := resolveDriver(tt.url)
			assert.Equal(t, tt.wantDial, d)
			assert.Equal(t, tt.wantDriver, driver)
			assert.Equal(t, tt.wantDSN, dsn)
		})
	}
}

func TestIngest_TableMode(t *testing.T) {
	path := seedDB(t)
	ing, err := New(Config{DatabaseURL: "sqlite://" + path, TableName: "products"})
	require.NoError(t, err)

	docs, err := ing.Ingest(context.Background(), driven.IngestInput{
		Metadata: map[string]any{"origin": "erp"},
	})

	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "database:products:row_0", docs[0].Source)
	assert.Equal(t, "database:products:row_1", docs[1].Source)
	assert.Equal(t, "id: 1\nname: Widget\nprice: 9.5\nnote: best seller", docs[0].Content)
	assert.Equal(t, "id: 2\nname: Gadget\nprice: 20\nnote: NULL", docs[1].Content)

	meta := docs[1].Metadata
	assert.Equal(t, "products", meta[domain.MetaTableName])
	assert.Equal(t, 1, meta[domain.MetaRowIndex])
	assert.Equal(t, []string{"id", "name", "price", "note"}, meta[domain.MetaColumns])
	assert.Equal(t, "erp", meta["origin"])
	assert.NotContains(t, meta, domain.MetaQuery)
}

func TestIngest_QueryMode(t *testing.T) {
	path := seedDB(t)
	query := "SELECT name FROM products WHERE price > 10"
	ing, err := New(Config{DatabaseURL: path, TableName: "products", Query: query})
	require.NoError(t, err)

	docs, err := ing.Ingest(context.Background(), driven.IngestInput{})

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "database:query_result_0", docs[0].Source)
	assert.Equal(t, "name: Gadget", docs[0].Content)
	assert.Equal(t, 0, docs[0].Metadata[domain.MetaQueryIndex])
	assert.Equal(t, query, docs[0].Metadata[domain.MetaQuery])
	assert.Equal(t, []string{"name"}, docs[0].Metadata[domain.MetaColumns])
	assert.NotContains(t, docs[0].Metadata, domain.MetaTableName)
}

func TestIngest_EmptyResult(t *testing.T) {
	path := seedDB(t)
	ing, err := New(Config{DatabaseURL: path, Query: "SELECT * FROM products WHERE id < 0"})
	require.NoError(t, err)

	docs, err := ing.Ingest(context.Background(), driven.IngestInput{})

	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestIngest_TableNotFound(t *testing.T) {
	path := seedDB(t)
	ing, err := New(Config{DatabaseURL: path, TableName: "orders"})
	require.NoError(t, err)

	_, err = ing.Ingest(context.Background(), driven.IngestInput{})

	assert.ErrorIs(t, err, domain.ErrTableNotFound)
}

func TestIngest_BadQuery(t *testing.T) {
	path := seedDB(t)
	ing, err := New(Config{DatabaseURL: path, Query: "SELECT nope FROM nowhere"})
	require.NoError(t, err)

	_, err = ing.Ingest(context.Background(), driven.IngestInput{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "execute query")
}

func TestRenderValue(t *testing.T) {
	assert.Equal(t, "NULL", renderValue(nil))
	assert.Equal(t, "abc", renderValue([]byte("abc")))
	assert.Equal(t, "42", renderValue(int64(42)))
	assert.Equal(t, "true", renderValue(true))
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"users"`, quoteIdent("users"))
	assert.Equal(t, `"public"."users"`, quoteIdent("public.users"))
}
