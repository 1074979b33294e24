// Package keymap defines the TUI key bindings and the help derived from them.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap holds every binding. Several share "enter" and are told apart by the active view.
type KeyMap struct {
	Quit key.Binding
	Help key.Binding
	Back key.Binding
	Up   key.Binding
	Down key.Binding

	// Select picks a menu entry or provider.
	Select key.Binding
	// Jump picks a menu entry by its number.
	Jump key.Binding

	// Ask submits the typed question.
	Ask key.Binding
	// NewQuestion returns from the sources list to the question input.
	NewQuestion key.Binding
	// Expand toggles the full text of the selected source.
	Expand key.Binding

	// Ingest submits the typed file path.
	Ingest key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Back:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Select:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Jump:        key.NewBinding(key.WithKeys("1", "2", "3", "4", "5"), key.WithHelp("1-5", "jump")),
		Ask:         key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "ask")),
		NewQuestion: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new question")),
		Expand:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "expand")),
		Ingest:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "ingest")),
	}
}

// ShortHelp is shown while typing a question.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Ask, k.Back}
}

// SourcesHelp is shown while browsing the sources of an answer.
func (k *KeyMap) SourcesHelp() []key.Binding {
	return []key.Binding{k.NewQuestion, k.Up, k.Expand, k.Back}
}

// IngestHelp is shown on the ingest form.
func (k *KeyMap) IngestHelp() []key.Binding {
	return []key.Binding{k.Ingest, k.Back}
}

// Section is a titled group of bindings on the help screen.
type Section struct {
	Title    string
	Bindings []key.Binding
}

// Sections lists the bindings per view, in help screen order.
func (k *KeyMap) Sections() []Section {
	return []Section{
		{Title: "Menu", Bindings: []key.Binding{k.Up, k.Down, k.Select, k.Jump, k.Quit}},
		{Title: "Ask", Bindings: []key.Binding{k.Ask, k.NewQuestion, k.Up, k.Down, k.Expand}},
		{Title: "Ingest", Bindings: []key.Binding{k.Ingest}},
		{Title: "Everywhere", Bindings: []key.Binding{k.Back}},
	}
}

// Matches reports whether keyStr triggers binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
