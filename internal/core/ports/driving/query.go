package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// QueryService answers questions from the knowledge base.
type QueryService interface {
	// Query retrieves relevant fragments and synthesizes an answer.
	Query(ctx context.Context, req domain.QueryRequest) (*domain.QueryResponse, error)
}
