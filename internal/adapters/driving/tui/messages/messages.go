// Package messages holds the Bubble Tea messages passed between the TUI views.
package messages

import (
	"fmt"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// Querying.

// QuestionSubmitted asks the knowledge base a question.
type QuestionSubmitted struct {
	Question string
	TopK     int
}

// AnswerReceived carries the query pipeline's result and how long it took.
type AnswerReceived struct {
	Response *domain.QueryResponse
	Elapsed  time.Duration
	Err      error
}

// Ingestion.

// IngestCompleted reports the outcome of ingesting one file.
type IngestCompleted struct {
	Path    string
	Type    domain.SourceType
	Count   int
	Elapsed time.Duration
	Err     error
}

// Summary is the one-line history entry for the ingestion.
func (m IngestCompleted) Summary() string {
	if m.Err != nil {
		return m.Path + ": failed"
	}
	if m.Count == 1 {
		return m.Path + ": 1 chunk"
	}
	return fmt.Sprintf("%s: %d chunks", m.Path, m.Count)
}

// Settings.

// SettingsLoaded carries the stored settings. Invalid holds the
// validation failure, if any; Err means they could not be read at all.
type SettingsLoaded struct {
	Settings *domain.Settings
	Invalid  error
	Err      error
}

// SettingsSaved reports a persisted change. Running pipelines keep their
// providers until the next start.
type SettingsSaved struct {
	Err error
}

// Navigation.

// ViewType identifies a top-level view.
type ViewType int

const (
	ViewMenu ViewType = iota
	ViewAsk
	ViewIngest
	ViewSettings
	ViewHelp
)

var viewNames = [...]string{
	ViewMenu:     "menu",
	ViewAsk:      "ask",
	ViewIngest:   "ingest",
	ViewSettings: "settings",
	ViewHelp:     "help",
}

func (v ViewType) String() string {
	if v < 0 || int(v) >= len(viewNames) {
		return "unknown"
	}
	return viewNames[v]
}

// ViewChanged switches the active view.
type ViewChanged struct {
	View ViewType
}

// ErrorOccurred surfaces an error outside any pipeline.
type ErrorOccurred struct {
	Err error
}

// Quit exits the program.
type Quit struct{}
