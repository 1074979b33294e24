// Package status provides the status line shown under the ask and ingest views.
package status

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/styles"
)

// State is the pipeline phase the bar reports.
type State string

const (
	StateReady     State = "ready"
	StateThinking  State = "thinking"
	StateIngesting State = "ingesting"
	StateError     State = "error"
	StateAnswered  State = "answered"
	StateIngested  State = "ingested"
)

// Bar reports the last pipeline run on the left and key hints on the right.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	state   State
	message string
	width   int

	// hints replace the question hints when set.
	hints []key.Binding

	// Outcome of the last run: sources or chunks, top score, duration.
	count   int
	best    float64
	hasBest bool
	elapsed time.Duration
}

// NewBar creates a status bar in the ready state.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Bar{styles: s, keymap: km, state: StateReady, width: 80}
}

// Init implements the component contract.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update is a no-op; the owning view drives the bar through setters.
func (s *Bar) Update(_ tea.Msg) (*Bar, tea.Cmd) {
	return s, nil
}

// View renders the bar at full width.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := max(s.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return s.styles.StatusBar.Width(s.width).Render(left + strings.Repeat(" ", padding) + right)
}

func (s *Bar) renderLeft() string {
	switch s.state {
	case StateThinking:
		return s.styles.Muted.Render("Retrieving and answering...")
	case StateIngesting:
		return s.styles.Muted.Render("Parsing, chunking and embedding...")
	case StateError:
		if s.message != "" {
			return s.styles.Error.Render("Error: " + s.message)
		}
		return s.styles.Error.Render("Error")
	case StateAnswered:
		parts := []string{s.styles.Normal.Render(plural(s.count, "source"))}
		if s.hasBest {
			parts = append(parts, "best "+s.styles.Score(s.best).Render(fmt.Sprintf("%.3f", s.best)))
		}
		return s.join(parts)
	case StateIngested:
		return s.join([]string{s.styles.Success.Render(plural(s.count, "chunk") + " stored")})
	case StateReady:
	}
	if s.message != "" {
		return s.styles.Normal.Render(s.message)
	}
	return s.styles.Muted.Render("Ready")
}

// join appends the elapsed time and separates parts with a dot.
func (s *Bar) join(parts []string) string {
	if s.elapsed > 0 {
		parts = append(parts, s.styles.Muted.Render(s.elapsed.Round(time.Millisecond).String()))
	}
	return strings.Join(parts, s.styles.Muted.Render(" · "))
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func (s *Bar) renderRight() string {
	bindings := s.keymap.ShortHelp()
	if s.hints != nil {
		bindings = s.hints
	}
	if s.state == StateAnswered && s.count > 0 {
		bindings = s.keymap.SourcesHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		hints = append(hints, hint(b))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

func hint(b key.Binding) string {
	h := b.Help()
	return h.Key + ": " + h.Desc
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets the text shown for errors and the ready state.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetCount sets the number of sources retrieved or chunks stored.
func (s *Bar) SetCount(count int) {
	s.count = count
	s.hasBest = false
}

// Count returns the current count.
func (s *Bar) Count() int {
	return s.count
}

// SetBestScore records the top similarity score of the last answer.
func (s *Bar) SetBestScore(score float64) {
	s.best = score
	s.hasBest = true
}

// SetElapsed records how long the last run took.
func (s *Bar) SetElapsed(d time.Duration) {
	s.elapsed = d
}

// Elapsed returns the duration of the last run.
func (s *Bar) Elapsed() time.Duration {
	return s.elapsed
}

// SetHints sets the key hints shown on the right.
func (s *Bar) SetHints(bindings []key.Binding) {
	s.hints = bindings
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear resets the bar to the ready state.
func (s *Bar) Clear() {
	*s = Bar{styles: s.styles, keymap: s.keymap, hints: s.hints, state: StateReady, width: s.width}
}
