// Package vecmath holds the vector checks and brute-force ranking shared by
// the in-process vector indexes.
package vecmath

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// Cosine returns the cosine similarity of a and b.
// A zero vector has similarity 0 with everything.
func Cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// IsZero reports whether v has zero norm. Such a vector has no direction,
// so every index scores it 0 against everything.
func IsZero(v []float32) bool {
	for _, f := range v {
		if f != 0 {
			return false
		}
	}
	return true
}

// Score maps a backend similarity to a finite value. NaN and infinities,
// which some backends produce for zero-norm vectors, become 0.
func Score(s float64) float64 {
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return 0
	}
	return s
}

// CheckDimension returns domain.ErrDimensionMismatch unless len(v) == dim.
func CheckDimension(v []float32, dim int) error {
	if len(v) != dim {
		return fmt.Errorf("%w: got %d, collection has %d", domain.ErrDimensionMismatch, len(v), dim)
	}
	return nil
}

// CheckBatch validates an upsert batch against the collection dimension.
func CheckBatch(chunks []domain.Chunk, vectors [][]float32, dim int) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("%w: %d chunks, %d vectors", domain.ErrLengthMismatch, len(chunks), len(vectors))
	}
	for i, v := range vectors {
		if err := CheckDimension(v, dim); err != nil {
			return fmt.Errorf("vector %d: %w", i, err)
		}
	}
	return nil
}

// Candidate is a scored point awaiting ranking.
type Candidate struct {
	ID      string
	Score   float64
	Payload map[string]any
}

// TopK orders candidates by descending score and keeps the first k.
// Equal scores keep their input order.
func TopK(candidates []Candidate, k int) []domain.SourceChunk {
	if k <= 0 || len(candidates) == 0 {
		return []domain.SourceChunk{}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}

	out := make([]domain.SourceChunk, len(candidates))
	for i, c := range candidates {
		out[i] = domain.SourceChunkFromPayload(c.ID, c.Score, c.Payload)
	}
	return out
}

// Encode packs v as little-endian float32 bytes.
func Encode(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// Decode unpacks bytes written by Encode.
func Decode(data []byte) []float32 {
	v := make([]float32, len(data)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return v
}
