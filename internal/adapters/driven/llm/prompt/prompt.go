// Package prompt builds the grounded-answer prompts shared by every LLM adapter.
package prompt

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// NoContextAnswer is returned without calling a model when retrieval found nothing.
const NoContextAnswer = domain.NoContextAnswer

// entrySeparator divides consecutive context entries.
const entrySeparator = "\n---\n"

// defaults are used when no store is set or a template cannot be loaded.
var defaults = map[string]string{
	driven.PromptAnswerSystem: "You are a helpful assistant that answers questions based exclusively on the provided context. " +
		"Cite sources in your answer. " +
		"If the context does not contain enough information to answer, say so plainly instead of guessing.",

	driven.PromptAnswerUser: "Context:\n%s\n\nQuestion: %s",

	driven.PromptAnswerCompletion: "Answer based exclusively on the context below. " +
		"If the context does not contain enough information to answer, say so.\n\n" +
		"Context:\n%s\n\nQuestion: %s\n\nAnswer:",
}

// Defaults returns a copy of the built-in templates keyed by prompt name.
func Defaults() map[string]string {
	out := make(map[string]string, len(defaults))
	for k, v := range defaults {
		out[k] = v
	}
	return out
}

// Builder renders prompts from a store, falling back to the defaults.
type Builder struct {
	store driven.PromptStore
}

// NewBuilder creates a builder. store may be nil.
func NewBuilder(store driven.PromptStore) *Builder {
	return &Builder{store: store}
}

// System returns the system instruction.
func (b *Builder) System() string {
	return b.load(driven.PromptAnswerSystem)
}

// User returns the user turn carrying context and question.
func (b *Builder) User(question string, chunks []domain.SourceChunk) string {
	return fmt.Sprintf(b.load(driven.PromptAnswerUser), Context(chunks), question)
}

// Completion returns a single prompt for completion-style models.
func (b *Builder) Completion(question string, chunks []domain.SourceChunk) string {
	return fmt.Sprintf(b.load(driven.PromptAnswerCompletion), Context(chunks), question)
}

func (b *Builder) load(name string) string {
	if b != nil && b.store != nil {
		if tmpl, err := b.store.Load(name); err == nil && tmpl != "" {
			return tmpl
		}
	}
	return defaults[name]
}

// Context renders chunks as numbered, scored entries in rank order.
func Context(chunks []domain.SourceChunk) string {
	entries := make([]string, len(chunks))
	for i, c := range chunks {
		entries[i] = fmt.Sprintf("[Source %d - Score: %.3f]\nSource: %s\nContent: %s\n",
			i+1, c.Score, c.Source, c.Content)
	}
	return strings.Join(entries, entrySeparator)
}
