// Package ask provides the question and answer view for the TUI.
package ask

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// View is the ask view: question input, synthesized answer and its sources.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.Field
	sources   *list.SourceList
	statusbar *status.Bar

	queryService driving.QueryService
	ctx          context.Context
	topK         int

	response   *domain.QueryResponse
	width      int
	height     int
	ready      bool
	err        error
	focusInput bool // true = typing a question, false = browsing sources
}

// NewView creates a new ask view.
// A topK of zero leaves the retrieval depth to the query service.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	queryService driving.QueryService,
	topK int,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:       s,
		keymap:       km,
		input:        input.NewQuestionInput(s),
		sources:      list.NewSourceList(s),
		statusbar:    status.NewBar(s, km),
		queryService: queryService,
		ctx:          context.Background(),
		topK:         topK,
		width:        80,
		height:       24,
		focusInput:   true,
	}
}

// WithContext sets the context used for queries.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the ask view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.QuestionSubmitted:
		v.input.SetValue(msg.Question)
		v.input.Remember(msg.Question)
		topK := msg.TopK
		if topK == 0 {
			topK = v.topK
		}
		return v, v.submit(msg.Question, topK)

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if v.focusInput {
		if msg.Type == tea.KeyEnter {
			question := strings.TrimSpace(v.input.Value())
			if question == "" {
				return v, nil
			}
			v.input.Remember(question)
			return v, v.submit(question, v.topK)
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	if msg.String() == "n" {
		v.focusInput = true
		v.input.SetValue("")
		return v, v.input.Focus()
	}

	var cmd tea.Cmd
	v.sources, cmd = v.sources.Update(msg)
	return v, cmd
}

// submit switches to the thinking state and returns the query command.
func (v *View) submit(question string, topK int) tea.Cmd {
	v.err = nil
	v.statusbar.SetState(status.StateThinking)
	v.statusbar.SetMessage("")
	v.input.Blur()
	v.focusInput = false
	return v.performQuery(question, topK)
}

// performQuery asks the query service and reports the outcome.
func (v *View) performQuery(question string, topK int) tea.Cmd {
	svc := v.queryService
	ctx := v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.AnswerReceived{Err: ErrNoQueryService}
		}
		start := time.Now()
		resp, err := svc.Query(ctx, domain.QueryRequest{Question: question, TopK: topK})
		return messages.AnswerReceived{Response: resp, Elapsed: time.Since(start), Err: err}
	}
}

func (v *View) handleAnswer(msg messages.AnswerReceived) {
	if msg.Err != nil {
		v.setError(msg.Err)
		v.focusInput = true
		v.input.Focus()
		return
	}

	v.err = nil
	v.response = msg.Response
	var sources []domain.SourceChunk
	if msg.Response != nil {
		sources = msg.Response.Sources
	}
	v.sources.SetSources(sources)
	v.statusbar.SetState(status.StateAnswered)
	v.statusbar.SetCount(len(sources))
	v.statusbar.SetElapsed(msg.Elapsed)
	if len(sources) > 0 {
		v.statusbar.SetBestScore(sources[0].Score)
	}
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// View renders the ask view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 10)
	sections = append(sections, v.styles.Title.Render("sercha-rag"), "", v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if v.response != nil {
		answer := v.styles.Answer.Width(max(v.width-4, 20)).Render(v.response.Answer)
		sections = append(sections, answer, "")
		if !v.sources.IsEmpty() {
			sections = append(sections, v.sources.View())
		}
	}

	sections = append(sections, "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.sources.SetDimensions(width, height/2)
	v.statusbar.SetWidth(width)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Question returns the current question text.
func (v *View) Question() string {
	return v.input.Value()
}

// Response returns the last answer, if any.
func (v *View) Response() *domain.QueryResponse {
	return v.response
}

// SelectedSource returns the highlighted source fragment.
func (v *View) SelectedSource() *domain.SourceChunk {
	return v.sources.SelectedSource()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// InputFocused returns whether the question input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// Reset returns the view to an empty question.
func (v *View) Reset() {
	v.focusInput = true
	v.input.Focus()
	v.input.SetValue("")
	v.sources.SetSources(nil)
	v.response = nil
	v.err = nil
	v.statusbar.SetState(status.StateReady)
	v.statusbar.SetMessage("")
}
