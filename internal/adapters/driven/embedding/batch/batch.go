// Package batch splits embedding inputs into provider-sized requests.
package batch

import (
	"context"
	"fmt"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// EmbedFunc embeds one request worth of texts, returning vectors in input order.
type EmbedFunc func(ctx context.Context, texts []string) ([][]float32, error)

// Embed calls fn on consecutive slices of at most size texts and
// concatenates the results. The first failing slice aborts the rest.
func Embed(ctx context.Context, texts []string, size int, fn EmbedFunc) ([][]float32, error) {
	if size <= 0 {
		size = len(texts)
	}
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += size {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(start+size, len(texts))
		vecs, err := fn(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed batch at %d: %w", start, err)
		}
		if len(vecs) != end-start {
			return nil, fmt.Errorf("embed batch at %d: %w: got %d vectors for %d inputs",
				start, domain.ErrLengthMismatch, len(vecs), end-start)
		}
		out = append(out, vecs...)
	}
	return out, nil
}

// Vector narrows a JSON-decoded embedding, checking it has dim elements.
func Vector(model string, v []float64, dim int) ([]float32, error) {
	if len(v) != dim {
		return nil, fmt.Errorf("%w: %s returned %d, configured %d",
			domain.ErrDimensionMismatch, model, len(v), dim)
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out, nil
}
