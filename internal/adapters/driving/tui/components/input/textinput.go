// Package input provides the labelled single-line inputs used by the ask
// and ingest views.
package input

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// maxHistory bounds the remembered entries.
const maxHistory = 50

// minInputWidth keeps the field usable in narrow terminals.
const minInputWidth = 20

// Field is a focused text input rendered as "label: [input]".
//
// A field with recall enabled steps through earlier entries with up and
// down; otherwise up and down move through completion suggestions.
type Field struct {
	textinput textinput.Model
	styles    *styles.Styles
	label     string
	width     int

	recall  bool
	history []string
	// cursor indexes history while recalling; len(history) is the draft.
	cursor int
	draft  string
}

// NewField creates a focused field.
func NewField(s *styles.Styles, label, placeholder string, charLimit int) *Field {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = charLimit
	ti.Width = 50
	ti.Focus()

	return &Field{textinput: ti, styles: s, label: label, width: 50}
}

// NewQuestionInput is the ask field. Up and down recall earlier questions.
func NewQuestionInput(s *styles.Styles) *Field {
	f := NewField(s, "Ask", "Ask a question about your documents...", 1024)
	f.recall = true
	return f
}

// NewPathInput is the ingest field. Tab completes ingestible files
// found by SuggestFiles.
func NewPathInput(s *styles.Styles) *Field {
	f := NewField(s, "File", "path/to/file.csv, .json, .txt or .html", 4096)
	f.textinput.ShowSuggestions = true
	return f
}

// Init starts the cursor blinking.
func (f *Field) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles key presses and cursor blinks.
func (f *Field) Update(msg tea.Msg) (*Field, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && f.recall {
		switch key.Type {
		case tea.KeyUp:
			f.step(-1)
			return f, nil
		case tea.KeyDown:
			f.step(1)
			return f, nil
		}
	}

	var cmd tea.Cmd
	f.textinput, cmd = f.textinput.Update(msg)
	return f, cmd
}

// step moves through history by delta, keeping the unsent draft at the end.
func (f *Field) step(delta int) {
	if len(f.history) == 0 {
		return
	}
	if f.cursor == len(f.history) {
		f.draft = f.textinput.Value()
	}
	f.cursor = max(0, min(len(f.history), f.cursor+delta))
	if f.cursor == len(f.history) {
		f.textinput.SetValue(f.draft)
	} else {
		f.textinput.SetValue(f.history[f.cursor])
	}
	f.textinput.CursorEnd()
}

// Remember records a submitted value for recall. Blank values and
// repeats of the latest entry are skipped.
func (f *Field) Remember(value string) {
	value = strings.TrimSpace(value)
	if value != "" && (len(f.history) == 0 || f.history[len(f.history)-1] != value) {
		f.history = append(f.history, value)
		if len(f.history) > maxHistory {
			f.history = f.history[len(f.history)-maxHistory:]
		}
	}
	f.cursor = len(f.history)
	f.draft = ""
}

// History returns remembered values, oldest first.
func (f *Field) History() []string {
	return slices.Clone(f.history)
}

// SuggestFiles offers the files in dir with an ingestible extension as
// completions, sorted by name. Unreadable directories leave no suggestions.
func (f *Field) SuggestFiles(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		f.textinput.SetSuggestions(nil)
		return
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := domain.SourceTypeFromFilename(e.Name()); err != nil {
			continue
		}
		if dir == "." {
			paths = append(paths, e.Name())
		} else {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	f.textinput.SetSuggestions(paths)
}

// Suggestions returns the available completions.
func (f *Field) Suggestions() []string {
	return f.textinput.AvailableSuggestions()
}

// View renders the label and input side by side.
func (f *Field) View() string {
	label := f.styles.Title.Render(f.label + ": ")
	return lipgloss.JoinHorizontal(lipgloss.Center, label, f.styles.InputField.Render(f.textinput.View()))
}

func (f *Field) Label() string { return f.label }

func (f *Field) Value() string { return f.textinput.Value() }

func (f *Field) SetValue(value string) { f.textinput.SetValue(value) }

func (f *Field) Focus() tea.Cmd { return f.textinput.Focus() }

func (f *Field) Blur() { f.textinput.Blur() }

func (f *Field) Focused() bool { return f.textinput.Focused() }

// SetWidth sizes the input to fill width after the label and padding.
func (f *Field) SetWidth(width int) {
	f.width = width
	f.textinput.Width = max(width-len(f.label)-8, minInputWidth)
}

func (f *Field) Width() int { return f.width }

// Reset clears the value and leaves history alone.
func (f *Field) Reset() {
	f.textinput.Reset()
	f.cursor = len(f.history)
	f.draft = ""
}
