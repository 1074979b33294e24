package domain

import (
	"fmt"
	"strings"
)

// Filter restricts search results to points whose payload matches
// every key/value pair exactly. An empty filter matches everything.
type Filter map[string]any

// Matches reports whether payload satisfies every pair in f.
// Values are compared by their canonical string form, so 1 and "1" match.
func (f Filter) Matches(payload map[string]any) bool {
	for k, want := range f {
		got, ok := payload[k]
		if !ok || FilterValue(got) != FilterValue(want) {
			return false
		}
	}
	return true
}

// FilterValue returns the canonical string form used for equality matching.
// Whole floats render without a fraction so JSON-decoded numbers match ints.
func FilterValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
	case float32:
		if x == float32(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
	}
	return fmt.Sprint(v)
}

// NoContextAnswer is the fixed answer when retrieval finds no fragments.
// No model is consulted in that case.
const NoContextAnswer = "No relevant context found in the knowledge base."

// SourceChunk is a ranked fragment returned by similarity search.
type SourceChunk struct {
	// ID is the indexed point identifier.
	ID string `json:"id,omitempty"`

	// Content is the fragment text.
	Content string `json:"content"`

	// Score is the cosine similarity to the query vector.
	Score float64 `json:"score"`

	// Source is the originating document's source identifier.
	Source string `json:"source"`

	// Metadata is the payload excluding content and source.
	Metadata map[string]any `json:"metadata"`
}

// QueryRequest asks a question of the knowledge base.
type QueryRequest struct {
	// Question is the natural-language question (required, non-blank).
	Question string `json:"question"`

	// TopK overrides the configured retrieval depth when positive.
	TopK int `json:"top_k,omitempty"`

	// Filters restricts retrieval by exact metadata match.
	Filters Filter `json:"filters,omitempty"`
}

// Validate checks the request shape at the boundary.
func (r QueryRequest) Validate() error {
	if strings.TrimSpace(r.Question) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, ErrEmptyQuestion)
	}
	if r.TopK < 0 {
		return fmt.Errorf("%w: top_k must be positive", ErrInvalidRequest)
	}
	return nil
}

// QueryResponse is the synthesized answer with its supporting fragments.
type QueryResponse struct {
	// Answer is the synthesized answer text.
	Answer string `json:"answer"`

	// Sources are the retrieved fragments in rank order.
	Sources []SourceChunk `json:"sources"`

	// Query echoes the original question.
	Query string `json:"query"`
}

// PointPayload returns the stored payload for a chunk: its metadata plus
// the reserved content and source keys, which take precedence.
func PointPayload(c Chunk) map[string]any {
	p := CloneMetadata(c.Metadata)
	p[PayloadContent] = c.Content
	p[PayloadSource] = c.Source
	return p
}

// SourceChunkFromPayload rebuilds a SourceChunk from a stored payload.
// A payload without a source reports UnknownSource.
func SourceChunkFromPayload(id string, score float64, payload map[string]any) SourceChunk {
	sc := SourceChunk{
		ID:       id,
		Score:    score,
		Source:   UnknownSource,
		Metadata: make(map[string]any, len(payload)),
	}
	for k, v := range payload {
		switch k {
		case PayloadContent:
			sc.Content = fmt.Sprint(v)
		case PayloadSource:
			if s := fmt.Sprint(v); s != "" {
				sc.Source = s
			}
		default:
			sc.Metadata[k] = v
		}
	}
	return sc
}
