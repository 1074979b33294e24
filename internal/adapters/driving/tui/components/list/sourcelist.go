// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// SourceList displays retrieved fragments in a navigable list.
// The selected fragment can be expanded to its full text.
type SourceList struct {
	sources  []domain.SourceChunk
	selected int
	expanded bool
	styles   *styles.Styles
	width    int
	height   int
}

// NewSourceList creates a new source list component.
func NewSourceList(s *styles.Styles) *SourceList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &SourceList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the source list.
func (l *SourceList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (l *SourceList) Update(msg tea.Msg) (*SourceList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		//nolint:exhaustive // handling only relevant key types
		switch msg.Type {
		case tea.KeyUp:
			l.MoveUp()
		case tea.KeyDown:
			l.MoveDown()
		case tea.KeyEnter:
			l.ToggleExpanded()
		default:
			switch msg.String() {
			case "k":
				l.MoveUp()
			case "j":
				l.MoveDown()
			}
		}
	}
	return l, nil
}

// View renders the source list.
func (l *SourceList) View() string {
	if len(l.sources) == 0 {
		return l.styles.Muted.Render("No sources")
	}

	lines := make([]string, 0, len(l.sources)*2+2)
	header := l.styles.Subtitle.Render(fmt.Sprintf("Sources (%d)", len(l.sources)))
	lines = append(lines, header, "")

	// Each source takes two lines
	visibleCount := (l.height - 4) / 2
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if l.selected >= visibleCount {
		start = l.selected - visibleCount + 1
	}
	end := min(start+visibleCount, len(l.sources))

	for i := start; i < end; i++ {
		lines = append(lines, l.renderSource(i, &l.sources[i]))
	}

	if l.expanded {
		if sc := l.SelectedSource(); sc != nil {
			lines = append(lines, "", l.styles.Border.Padding(0, 1).Render(sc.Content))
		}
	}

	return strings.Join(lines, "\n")
}

// renderSource formats one fragment as a title line and a preview line.
func (l *SourceList) renderSource(index int, sc *domain.SourceChunk) string {
	indicator := "  "
	if index == l.selected {
		indicator = "> "
	}

	title := truncate(sc.Source, max(l.width-20, 10))
	score := fmt.Sprintf("%.3f", sc.Score)

	var titleLine string
	if index == l.selected {
		titleLine = l.styles.Selected.Render(fmt.Sprintf("%s%d. %s  %s", indicator, index+1, title, score))
	} else {
		titleLine = fmt.Sprintf("%s%d. %s  %s", indicator, index+1,
			l.styles.Citation.Render(title), l.styles.Score(sc.Score).Render(score))
	}

	preview := strings.Join(strings.Fields(sc.Content), " ")
	preview = truncate(preview, max(l.width-6, 20))

	return titleLine + "\n" + l.styles.Muted.Render("    "+preview)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// SetSources replaces the list contents and resets the selection.
func (l *SourceList) SetSources(sources []domain.SourceChunk) {
	l.sources = sources
	l.selected = 0
	l.expanded = false
}

// Sources returns the current sources.
func (l *SourceList) Sources() []domain.SourceChunk {
	return l.sources
}

// Selected returns the index of the selected source.
func (l *SourceList) Selected() int {
	return l.selected
}

// SetSelected sets the selected index.
func (l *SourceList) SetSelected(index int) {
	if index >= 0 && index < len(l.sources) {
		l.selected = index
	}
}

// SelectedSource returns the currently selected source, or nil if none.
func (l *SourceList) SelectedSource() *domain.SourceChunk {
	if len(l.sources) == 0 || l.selected < 0 || l.selected >= len(l.sources) {
		return nil
	}
	return &l.sources[l.selected]
}

// ToggleExpanded shows or hides the full text of the selected source.
func (l *SourceList) ToggleExpanded() {
	if len(l.sources) > 0 {
		l.expanded = !l.expanded
	}
}

// Expanded reports whether the selected source is shown in full.
func (l *SourceList) Expanded() bool {
	return l.expanded
}

// MoveUp moves selection up.
func (l *SourceList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *SourceList) MoveDown() {
	if l.selected < len(l.sources)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *SourceList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Width returns the current width.
func (l *SourceList) Width() int {
	return l.width
}

// Height returns the current height.
func (l *SourceList) Height() int {
	return l.height
}

// Count returns the number of sources.
func (l *SourceList) Count() int {
	return len(l.sources)
}

// IsEmpty returns whether the list is empty.
func (l *SourceList) IsEmpty() bool {
	return len(l.sources) == 0
}
