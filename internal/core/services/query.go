package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// DefaultTopK is used when neither the request nor the service sets a depth.
const DefaultTopK = 5

// QueryService embeds a question, retrieves fragments and synthesizes an answer.
type QueryService struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	llm      driven.LLMService
	topK     int
}

// NewQueryService creates a query pipeline. topK <= 0 uses DefaultTopK.
func NewQueryService(
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	llm driven.LLMService,
	topK int,
) *QueryService {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &QueryService{
		embedder: embedder,
		index:    index,
		llm:      llm,
		topK:     topK,
	}
}

// Query answers req.Question from the knowledge base.
// Sources are returned exactly as ranked by the index.
func (s *QueryService) Query(ctx context.Context, req domain.QueryRequest) (*domain.QueryResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	topK := req.TopK
	if topK <= 0 {
		topK = s.topK
	}

	logger.Section("Query")
	logger.Debug("Question: %q", req.Question)
	logger.Debug("Top K: %d, filters: %v", topK, req.Filters)

	vector, err := s.embedder.Embed(ctx, req.Question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	sources, err := s.index.Search(ctx, vector, topK, req.Filters)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	if sources == nil {
		sources = []domain.SourceChunk{}
	}
	logger.Debug("Retrieved %d sources", len(sources))

	if len(sources) == 0 {
		return &domain.QueryResponse{
			Answer:  domain.NoContextAnswer,
			Sources: sources,
			Query:   req.Question,
		}, nil
	}

	answer, err := s.llm.Answer(ctx, req.Question, sources)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &domain.QueryResponse{
		Answer:  answer,
		Sources: sources,
		Query:   req.Question,
	}, nil
}

// TopK returns the default retrieval depth.
func (s *QueryService) TopK() int {
	return s.topK
}
