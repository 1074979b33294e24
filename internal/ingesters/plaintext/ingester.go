// Package plaintext ingests a text file or string as a single Document.
package plaintext

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/ingesters/input"
)

// Ensure Ingester implements the interface.
var _ driven.Ingester = (*Ingester)(nil)

// InlineOrigin is the source for text supplied as content.
const InlineOrigin = "direct_text_input"

// FileType is recorded in metadata under file_type.
const FileType = "text"

// Ingester handles plain text.
type Ingester struct{}

// New creates a new plain text ingester.
func New() *Ingester {
	return &Ingester{}
}

// Ingest returns exactly one Document holding the entire content.
func (i *Ingester) Ingest(_ context.Context, in driven.IngestInput) ([]domain.Document, error) {
	text, origin, err := input.Load(in, InlineOrigin)
	if err != nil {
		return nil, err
	}

	meta := domain.CloneMetadata(in.Metadata)
	meta[domain.MetaFileType] = FileType

	return []domain.Document{{
		Content:  text,
		Metadata: meta,
		Source:   origin,
	}}, nil
}
