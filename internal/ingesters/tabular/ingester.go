// Package tabular ingests CSV data, one Document per row.
package tabular

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/ingesters/input"
)

// Ensure Ingester implements the interface.
var _ driven.Ingester = (*Ingester)(nil)

// InlineOrigin is the source prefix for CSV supplied as content.
const InlineOrigin = "direct_csv_input"

// Ingester reads CSV with a header row.
type Ingester struct{}

// New creates a new tabular ingester.
func New() *Ingester {
	return &Ingester{}
}

// Ingest turns each data row into a Document whose content is the
// newline-joined "column: value" pairs. Source is "<origin>:row_<index>".
func (i *Ingester) Ingest(_ context.Context, in driven.IngestInput) ([]domain.Document, error) {
	text, origin, err := input.Load(in, InlineOrigin)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(strings.NewReader(text))
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: parse csv header: %w", domain.ErrEncoding, err)
	}
	columns := make([]string, len(header))
	for j, h := range header {
		columns[j] = strings.TrimSpace(h)
	}

	var docs []domain.Document
	for idx := 0; ; idx++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: parse csv row %d: %w", domain.ErrEncoding, idx, err)
		}

		meta := domain.CloneMetadata(in.Metadata)
		meta[domain.MetaRowIndex] = idx
		meta[domain.MetaColumns] = append([]string(nil), columns...)

		docs = append(docs, domain.Document{
			Content:  input.FormatRow(columns, record),
			Metadata: meta,
			Source:   fmt.Sprintf("%s:row_%d", origin, idx),
		})
	}

	return docs, nil
}
