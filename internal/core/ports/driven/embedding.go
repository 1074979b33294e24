package driven

import "context"

// EmbeddingService maps text to vectors of a fixed size. The same
// service must embed chunks at ingest time and questions at query time,
// or similarity scores are meaningless.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns exactly one vector per input, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is fixed at construction and must equal the vector
	// index's dimension.
	Dimensions() int

	ModelName() string

	// Ping checks the backend is reachable without embedding anything.
	Ping(ctx context.Context) error

	Close() error
}
