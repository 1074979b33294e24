// Package chunker splits documents into bounded, overlapping chunks,
// preferring to break at sentence ends and newlines.
package chunker

import (
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure Splitter implements the interface.
var _ driven.Splitter = (*Splitter)(nil)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Splitter breaks document content into windows of at most chunkSize
// characters. Offsets and sizes count runes, not bytes.
type Splitter struct {
	chunkSize int
	overlap   int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
// An overlap at or above the chunk size is accepted; the splitter
// still makes forward progress.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// New creates a new splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ChunkSize returns the configured window size.
func (s *Splitter) ChunkSize() int {
	return s.chunkSize
}

// Overlap returns the configured overlap.
func (s *Splitter) Overlap() int {
	return s.overlap
}

// ChunkDocuments splits each document in order and concatenates the results.
func (s *Splitter) ChunkDocuments(docs []domain.Document) []domain.Chunk {
	chunks := make([]domain.Chunk, 0, len(docs))
	for i := range docs {
		chunks = append(chunks, s.ChunkDocument(docs[i])...)
	}
	return chunks
}

// ChunkDocument splits one document.
// A document that fits in a single window is returned unchanged.
func (s *Splitter) ChunkDocument(doc domain.Document) []domain.Chunk {
	text := []rune(doc.Content)
	n := len(text)
	if n <= s.chunkSize {
		return []domain.Chunk{doc}
	}

	step := s.chunkSize - s.overlap
	if step < 1 {
		step = 1
	}
	chunks := make([]domain.Chunk, 0, n/step+1)

	start := 0
	for start < n {
		end := min(start+s.chunkSize, n)

		// Pull the cut back to the last sentence end or newline in the window.
		if end < n {
			if b := lastBoundary(text, start, end); b > start {
				end = b + 1
			}
		}

		if piece := strings.TrimSpace(string(text[start:end])); piece != "" {
			meta := domain.CloneMetadata(doc.Metadata)
			meta[domain.MetaChunkIndex] = len(chunks)
			meta[domain.MetaChunkStart] = start
			meta[domain.MetaChunkEnd] = end

			chunks = append(chunks, domain.Chunk{
				Content:  piece,
				Metadata: meta,
				Source:   doc.Source,
			})
		}

		next := end - s.overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}

// lastBoundary returns the index of the last '.' or '\n' in text[start:end],
// or -1 if there is none.
func lastBoundary(text []rune, start, end int) int {
	for i := end - 1; i >= start; i-- {
		if text[i] == '.' || text[i] == '\n' {
			return i
		}
	}
	return -1
}
