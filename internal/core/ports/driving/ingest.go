package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// IngestionService adds sources to the knowledge base.
type IngestionService interface {
	// Ingest parses, chunks, embeds and stores one source.
	// Returns the number of chunks stored.
	Ingest(ctx context.Context, req domain.IngestRequest) (int, error)
}
