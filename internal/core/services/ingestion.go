package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

// IngestionService runs parse, chunk, embed and upsert for one source.
// A call either stores every chunk or fails before the upsert.
type IngestionService struct {
	ingesters driven.IngesterFactory
	splitter  driven.Splitter
	embedder  driven.EmbeddingService
	index     driven.VectorIndex
}

// NewIngestionService creates an ingestion pipeline over the given collaborators.
func NewIngestionService(
	ingesters driven.IngesterFactory,
	splitter driven.Splitter,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
) *IngestionService {
	return &IngestionService{
		ingesters: ingesters,
		splitter:  splitter,
		embedder:  embedder,
		index:     index,
	}
}

// Ingest stores one source and returns the number of chunks written.
// Zero documents or zero chunks is a successful no-op.
func (s *IngestionService) Ingest(ctx context.Context, req domain.IngestRequest) (int, error) {
	logger.Section("Ingest")
	logger.Debug("Source type: %s, path: %q, inline: %t", req.SourceType, req.SourcePath, req.Content != "")

	ingester, err := s.ingesters.ForRequest(req)
	if err != nil {
		return 0, fmt.Errorf("resolve ingester: %w", err)
	}

	docs, err := ingester.Ingest(ctx, driven.IngestInput{
		Path:     req.SourcePath,
		Content:  req.Content,
		Metadata: req.Metadata,
	})
	if err != nil {
		return 0, fmt.Errorf("ingest %s: %w", req.SourceType, err)
	}
	if len(docs) == 0 {
		logger.Debug("No documents produced")
		return 0, nil
	}
	logger.Debug("Documents: %d", len(docs))

	chunks := s.splitter.ChunkDocuments(docs)
	if len(chunks) == 0 {
		logger.Debug("No chunks produced")
		return 0, nil
	}
	logger.Debug("Chunks: %d", len(chunks))

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}

	if err := s.index.Upsert(ctx, chunks, vectors); err != nil {
		return 0, fmt.Errorf("upsert chunks: %w", err)
	}

	logger.Info("Ingested %d chunks from %d documents", len(chunks), len(docs))
	return len(chunks), nil
}
