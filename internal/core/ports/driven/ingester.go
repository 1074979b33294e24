package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// IngestInput is the raw source handed to an Ingester.
// File-like ingesters need Path or Content; the relational ingester
// ignores both and uses the configuration it was constructed with.
type IngestInput struct {
	// Path is a file to read.
	Path string

	// Content is inline data, used when Path is empty.
	Content string

	// Metadata is merged into every produced Document.
	Metadata map[string]any
}

// Ingester turns a raw source into a sequence of logical Documents.
type Ingester interface {
	// Ingest parses the source. An empty result is not an error.
	Ingest(ctx context.Context, in IngestInput) ([]domain.Document, error)
}

// IngesterFactory resolves the Ingester variant for a request.
type IngesterFactory interface {
	// ForRequest returns the Ingester for req.SourceType.
	// Returns domain.ErrUnsupportedSourceType for unmapped types.
	ForRequest(req domain.IngestRequest) (Ingester, error)
}

// Splitter breaks Documents into Chunks.
type Splitter interface {
	// ChunkDocuments splits each document in order and concatenates the results.
	ChunkDocuments(docs []domain.Document) []domain.Chunk
}
