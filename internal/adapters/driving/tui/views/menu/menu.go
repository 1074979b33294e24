// Package menu provides the start screen of the TUI.
package menu

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// Item is one menu entry. Entries without a view quit the app.
type Item struct {
	Label       string
	Description string
	View        messages.ViewType
	Quit        bool
}

// Items are the entries in display order. Digits 1-n select them directly.
var Items = []Item{
	{Label: "Ask", Description: "Ask a question and browse the fragments behind the answer", View: messages.ViewAsk},
	{Label: "Ingest", Description: "Add a .csv, .json, .txt or .html file to the knowledge base", View: messages.ViewIngest},
	{Label: "Settings", Description: "Choose embedding and LLM providers and the vector store", View: messages.ViewSettings},
	{Label: "Help", Description: "Keyboard shortcuts", View: messages.ViewHelp},
	{Label: "Quit", Description: "Leave sercha-rag", Quit: true},
}

// View is the start screen.
type View struct {
	styles   *styles.Styles
	selected int
	width    int
	height   int
	ready    bool

	// summary describes the active pipeline, empty until settings arrive.
	summary string
}

// NewView creates the menu.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{styles: s, width: 80, height: 24}
}

// Init does nothing; the menu has no data to load.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles navigation and selection.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case messages.SettingsLoaded:
		if msg.Err == nil {
			v.SetSettings(msg.Settings)
		}

	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "up", "k":
			if v.selected > 0 {
				v.selected--
			}
		case "down", "j":
			if v.selected < len(Items)-1 {
				v.selected++
			}
		case "enter":
			return v, v.choose(v.selected)
		case "q":
			return v, tea.Quit
		default:
			if len(key) == 1 && key[0] >= '1' && int(key[0]-'0') <= len(Items) {
				v.selected = int(key[0] - '1')
				return v, v.choose(v.selected)
			}
		}
	}
	return v, nil
}

func (v *View) choose(i int) tea.Cmd {
	item := Items[i]
	if item.Quit {
		return tea.Quit
	}
	return func() tea.Msg {
		return messages.ViewChanged{View: item.View}
	}
}

// SetSettings updates the pipeline summary under the title.
func (v *View) SetSettings(s *domain.Settings) {
	if s == nil {
		v.summary = ""
		return
	}
	v.summary = Summary(s)
}

// Summary renders the active embedding, LLM and store on one line.
func Summary(s *domain.Settings) string {
	embed := string(s.Embedding.Provider)
	if s.Embedding.Model != "" {
		embed += "/" + s.Embedding.Model
	}
	return fmt.Sprintf("embedding %s · llm %s/%s · store %s (%s)",
		embed, s.LLM.Provider, s.LLM.Model, s.VectorStore.Backend, s.VectorStore.Collection)
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("sercha-rag"))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render("Ask questions of your documents"))
	b.WriteString("\n")
	if v.summary != "" {
		b.WriteString(v.styles.Help.Render(v.summary))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for i, item := range Items {
		line := fmt.Sprintf("%d. %s", i+1, item.Label)
		if i == v.selected {
			b.WriteString("> " + v.styles.Selected.Render(line))
		} else {
			b.WriteString("  " + v.styles.Normal.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(Items[v.selected].Description))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [1-5] Jump  [Enter] Select  [q] Quit"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Selected returns the highlighted index.
func (v *View) Selected() int {
	return v.selected
}

// PipelineSummary returns the line shown under the title.
func (v *View) PipelineSummary() string {
	return v.summary
}
