// Package ingest provides the file ingestion view for the TUI.
package ingest

import (
	"context"
	"errors"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// ErrNoIngestionService is returned when ingesting without an ingestion service.
var ErrNoIngestionService = errors.New("ingestion service not available")

// maxHistory bounds the number of completed ingestions shown.
const maxHistory = 10

// View is the ingestion form: a file path whose type is inferred from its extension.
type View struct {
	styles    *styles.Styles
	input     *input.Field
	statusbar *status.Bar

	ingestionService driving.IngestionService
	ctx              context.Context

	history []messages.IngestCompleted
	busy    bool
	err     error
	width   int
	height  int
	ready   bool
}

// NewView creates a new ingest view.
func NewView(s *styles.Styles, km *keymap.KeyMap, ingestionService driving.IngestionService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetHints(km.IngestHelp())

	return &View{
		styles:           s,
		input:            input.NewPathInput(s),
		statusbar:        bar,
		ingestionService: ingestionService,
		ctx:              context.Background(),
		width:            80,
		height:           24,
	}
}

// WithContext sets the context used for ingestion.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init offers the ingestible files in the working directory as completions.
func (v *View) Init() tea.Cmd {
	v.input.SuggestFiles(".")
	return v.input.Init()
}

// Update handles messages for the ingest view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.IngestCompleted:
		v.handleCompleted(msg)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyEsc:
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case tea.KeyEnter:
		if v.busy {
			return v, nil
		}
		path := strings.TrimSpace(v.input.Value())
		if path == "" {
			return v, nil
		}
		sourceType, err := domain.SourceTypeFromFilename(path)
		if err != nil {
			v.setError(err)
			return v, nil
		}
		v.err = nil
		v.busy = true
		v.statusbar.SetState(status.StateIngesting)
		v.statusbar.SetMessage("")
		return v, v.performIngest(path, sourceType)
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// performIngest runs the ingestion pipeline for one file.
func (v *View) performIngest(path string, sourceType domain.SourceType) tea.Cmd {
	svc := v.ingestionService
	ctx := v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.IngestCompleted{Path: path, Type: sourceType, Err: ErrNoIngestionService}
		}
		start := time.Now()
		count, err := svc.Ingest(ctx, domain.IngestRequest{SourceType: sourceType, SourcePath: path})
		return messages.IngestCompleted{Path: path, Type: sourceType, Count: count, Elapsed: time.Since(start), Err: err}
	}
}

func (v *View) handleCompleted(msg messages.IngestCompleted) {
	v.busy = false
	v.history = append([]messages.IngestCompleted{msg}, v.history...)
	if len(v.history) > maxHistory {
		v.history = v.history[:maxHistory]
	}

	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}
	v.err = nil
	v.input.SetValue("")
	v.statusbar.SetState(status.StateIngested)
	v.statusbar.SetCount(msg.Count)
	v.statusbar.SetElapsed(msg.Elapsed)
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// View renders the ingest view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 12)
	sections = append(sections,
		v.styles.Title.Render("Ingest"),
		v.styles.Muted.Render("Supported: ."+strings.Join(domain.SupportedExtensions(), ", .")),
		"",
		v.input.View(),
		"",
	)

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if len(v.history) > 0 {
		sections = append(sections, v.styles.Subtitle.Render("Recent"))
		for _, h := range v.history {
			sections = append(sections, v.renderHistory(h))
		}
	}

	sections = append(sections, "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderHistory(h messages.IngestCompleted) string {
	label := v.styles.Label.Render(string(h.Type))
	if h.Err != nil {
		return label + v.styles.Error.Render(h.Summary())
	}
	return label + v.styles.Normal.Render(h.Summary())
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
}

// Path returns the path currently typed in.
func (v *View) Path() string {
	return v.input.Value()
}

// History returns completed ingestions, most recent first.
func (v *View) History() []messages.IngestCompleted {
	return v.history
}

// Busy reports whether an ingestion is in flight.
func (v *View) Busy() bool {
	return v.busy
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Reset clears the form. History is kept across visits.
func (v *View) Reset() {
	v.input.SetValue("")
	v.input.Focus()
	v.err = nil
	v.statusbar.SetState(status.StateReady)
	v.statusbar.SetMessage("")
}
