package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// LLMService writes the answer to a question from ranked fragments.
//
// With no chunks, Answer returns domain.NoContextAnswer without contacting
// the model, so an empty knowledge base never produces an invented answer.
type LLMService interface {
	// Answer must draw only on chunks, which arrive best match first.
	Answer(ctx context.Context, question string, chunks []domain.SourceChunk) (string, error)

	ModelName() string

	// Ping checks the backend is reachable without running inference.
	Ping(ctx context.Context) error

	Close() error
}
