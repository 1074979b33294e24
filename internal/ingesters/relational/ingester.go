// Package relational ingests rows from a SQL database, one Document per row.
//
// The connection URL selects the driver: postgres:// and postgresql:// use
// pgx, while sqlite://, file: and bare paths use the pure Go SQLite driver.
package relational

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure Ingester implements the interface.
var _ driven.Ingester = (*Ingester)(nil)

const (
	// SourcePrefix begins every Document source produced by this package.
	SourcePrefix = "database"

	// NullValue is how SQL NULL renders in row content.
	NullValue = "NULL"
)

// Errors returned by New.
var (
	ErrMissingDatabaseURL = errors.New("database URL is required")
	ErrInvalidTableName   = errors.New("invalid table name")
)

// identPattern limits table names to plain or schema-qualified identifiers.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Config selects what to read. Query wins when both Query and TableName are set.
type Config struct {
	DatabaseURL string
	TableName   string
	Query       string
}

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// Ingester reads one table or query result. Its configuration is fixed at construction.
type Ingester struct {
	cfg     Config
	dialect dialect
	driver  string
	dsn     string
}

// New validates cfg and resolves the driver. No connection is opened until Ingest.
func New(cfg Config) (*Ingester, error) {
	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)
	cfg.TableName = strings.TrimSpace(cfg.TableName)
	cfg.Query = strings.TrimSpace(cfg.Query)

	if cfg.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}
	if cfg.TableName == "" && cfg.Query == "" {
		return nil, domain.ErrMissingQueryOrTable
	}
	if cfg.Query == "" && !identPattern.MatchString(cfg.TableName) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTableName, cfg.TableName)
	}

	ing := &Ingester{cfg: cfg}
	ing.dialect, ing.driver, ing.dsn = resolveDriver(cfg.DatabaseURL)
	return ing, nil
}

func resolveDriver(url string) (dialect, string, string) {
	lower := strings.ToLower(url)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return dialectPostgres, "pgx", url
	case strings.HasPrefix(lower, "sqlite://"):
		return dialectSQLite, "sqlite", url[len("sqlite://"):]
	default:
		return dialectSQLite, "sqlite", url
	}
}

// Ingest runs the configured query (or a full table scan) and returns one
// Document per row. Path and Content of in are ignored.
func (i *Ingester) Ingest(ctx context.Context, in driven.IngestInput) ([]domain.Document, error) {
	db, err := sql.Open(i.driver, i.dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if i.cfg.Query != "" {
		return i.ingestQuery(ctx, db, in.Metadata)
	}
	return i.ingestTable(ctx, db, in.Metadata)
}

func (i *Ingester) ingestQuery(ctx context.Context, db *sql.DB, base map[string]any) ([]domain.Document, error) {
	logger.Debug("relational: running query %q", i.cfg.Query)

	return i.collect(ctx, db, i.cfg.Query, func(idx int, meta map[string]any) string {
		meta[domain.MetaQueryIndex] = idx
		meta[domain.MetaQuery] = i.cfg.Query
		return fmt.Sprintf("%s:query_result_%d", SourcePrefix, idx)
	}, base)
}

func (i *Ingester) ingestTable(ctx context.Context, db *sql.DB, base map[string]any) ([]domain.Document, error) {
	exists, err := i.tableExists(ctx, db)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrTableNotFound, i.cfg.TableName)
	}

	logger.Debug("relational: scanning table %s", i.cfg.TableName)

	query := "SELECT * FROM " + quoteIdent(i.cfg.TableName)
	return i.collect(ctx, db, query, func(idx int, meta map[string]any) string {
		meta[domain.MetaTableName] = i.cfg.TableName
		return fmt.Sprintf("%s:%s:row_%d", SourcePrefix, i.cfg.TableName, idx)
	}, base)
}

func (i *Ingester) tableExists(ctx context.Context, db *sql.DB) (bool, error) {
	var (
		query string
		arg   = i.cfg.TableName
	)
	switch i.dialect {
	case dialectPostgres:
		query = "SELECT to_regclass($1) IS NOT NULL"
	default:
		query = "SELECT COUNT(*) > 0 FROM sqlite_master WHERE type IN ('table', 'view') AND name = ?"
	}

	var exists bool
	if err := db.QueryRowContext(ctx, query, arg).Scan(&exists); err != nil {
		return false, fmt.Errorf("check table %s: %w", i.cfg.TableName, err)
	}
	return exists, nil
}

// collect scans every row of query. annotate adds mode-specific metadata
// and returns the Document source for the row.
func (i *Ingester) collect(
	ctx context.Context,
	db *sql.DB,
	query string,
	annotate func(idx int, meta map[string]any) string,
	base map[string]any,
) ([]domain.Document, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	var docs []domain.Document
	for idx := 0; rows.Next(); idx++ {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for j := range values {
			ptrs[j] = &values[j]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row %d: %w", idx, err)
		}

		meta := domain.CloneMetadata(base)
		meta[domain.MetaRowIndex] = idx
		meta[domain.MetaColumns] = append([]string(nil), columns...)
		source := annotate(idx, meta)

		docs = append(docs, domain.Document{
			Content:  formatRow(columns, values),
			Metadata: meta,
			Source:   source,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return docs, nil
}

func formatRow(columns []string, values []any) string {
	lines := make([]string, len(columns))
	for j, col := range columns {
		lines[j] = col + ": " + renderValue(values[j])
	}
	return strings.Join(lines, "\n")
}

func renderValue(v any) string {
	switch x := v.(type) {
	case nil:
		return NullValue
	case []byte:
		return string(x)
	case string:
		return x
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}

// quoteIdent double-quotes each part of a validated identifier.
func quoteIdent(name string) string {
	parts := strings.Split(name, ".")
	for j, p := range parts {
		parts[j] = `"` + p + `"`
	}
	return strings.Join(parts, ".")
}
