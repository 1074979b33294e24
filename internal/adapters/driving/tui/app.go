package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/views/ask"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/views/ingest"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/views/settings"
)

// Option configures the App.
type Option func(*App)

// WithTopK sets how many fragments each question retrieves.
// Zero leaves the depth to the query service.
func WithTopK(k int) Option {
	return func(a *App) {
		a.topK = k
	}
}

// WithStyles replaces the default theme.
func WithStyles(s *styles.Styles) Option {
	return func(a *App) {
		if s != nil {
			a.styles = s
		}
	}
}

// App routes messages between the menu, ask, ingest, settings and help screens.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap
	topK   int

	menuView     *menu.View
	askView      *ask.View
	ingestView   *ingest.View
	settingsView *settings.View

	current messages.ViewType
	err     error

	width  int
	height int
	ready  bool
}

var _ tea.Model = (*App)(nil)

// NewApp validates ports and builds every view up front.
func NewApp(ports *Ports, opts ...Option) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	a := &App{
		ports:   ports,
		ctx:     context.Background(),
		styles:  styles.DefaultStyles(),
		keymap:  keymap.DefaultKeyMap(),
		current: messages.ViewMenu,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.menuView = menu.NewView(a.styles)
	a.askView = ask.NewView(a.styles, a.keymap, ports.Query, a.topK)
	a.ingestView = ingest.NewView(a.styles, a.keymap, ports.Ingestion)
	a.settingsView = settings.NewView(a.styles, ports.Settings)
	return a, nil
}

// WithContext sets the context queries and ingests run under.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.askView.WithContext(ctx)
	a.ingestView.WithContext(ctx)
	return a
}

// Init loads settings up front so the menu can show the active pipeline.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("sercha-rag"),
		a.settingsView.Init(),
	)
}

// Update handles app-wide messages and forwards the rest to the active view.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}
		if a.current == messages.ViewHelp {
			if msg.Type == tea.KeyEsc {
				a.current = messages.ViewMenu
			}
			return a, nil
		}

	case messages.ViewChanged:
		return a, a.show(msg.View)

	case messages.QuestionSubmitted:
		a.current = messages.ViewAsk
		a.askView, cmd = a.askView.Update(msg)
		return a, cmd

	case messages.AnswerReceived:
		a.askView, cmd = a.askView.Update(msg)
		a.err = a.askView.Err()
		return a, cmd

	case messages.IngestCompleted:
		a.ingestView, cmd = a.ingestView.Update(msg)
		a.err = a.ingestView.Err()
		return a, cmd

	case messages.SettingsLoaded:
		// The menu summarises the pipeline even while another view is active.
		a.menuView, _ = a.menuView.Update(msg)
		a.settingsView, cmd = a.settingsView.Update(msg)
		return a, cmd

	case messages.SettingsSaved:
		a.settingsView, cmd = a.settingsView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		if a.current == messages.ViewAsk {
			a.askView, cmd = a.askView.Update(msg)
		}
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	return a, a.forward(msg)
}

// show switches to view and resets it.
func (a *App) show(view messages.ViewType) tea.Cmd {
	a.current = view
	switch view {
	case messages.ViewAsk:
		a.askView.Reset()
		return a.askView.Init()
	case messages.ViewIngest:
		a.ingestView.Reset()
		return a.ingestView.Init()
	case messages.ViewSettings:
		a.settingsView.Reset()
		return a.settingsView.Init()
	case messages.ViewMenu, messages.ViewHelp:
	}
	return nil
}

func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.current {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewAsk:
		a.askView, cmd = a.askView.Update(msg)
	case messages.ViewIngest:
		a.ingestView, cmd = a.ingestView.Update(msg)
	case messages.ViewSettings:
		a.settingsView, cmd = a.settingsView.Update(msg)
	case messages.ViewHelp:
	}
	return cmd
}

// View renders the active screen.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.current {
	case messages.ViewAsk:
		return a.askView.View()
	case messages.ViewIngest:
		return a.ingestView.View()
	case messages.ViewSettings:
		return a.settingsView.View()
	case messages.ViewHelp:
		return renderHelp(a.styles, a.keymap)
	case messages.ViewMenu:
	}
	return a.menuView.View()
}

// Run blocks until the user quits or the context is cancelled.
func (a *App) Run() error {
	_, err := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx)).Run()
	return err
}

func (a *App) CurrentView() messages.ViewType { return a.current }

// Err returns the last query, ingest or app-level error.
func (a *App) Err() error { return a.err }

// Ready reports whether the terminal size is known.
func (a *App) Ready() bool { return a.ready }

// TopK returns the retrieval depth the ask view requests.
func (a *App) TopK() int { return a.topK }

// SetDimensions resizes every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.askView.SetDimensions(width, height)
	a.ingestView.SetDimensions(width, height)
	a.settingsView.SetDimensions(width, height)
}
