package input

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/styles"
)

func typeText(f *Field, s string) {
	for _, r := range s {
		f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestConstructors(t *testing.T) {
	ask := NewQuestionInput(styles.DefaultStyles())
	assert.Equal(t, "Ask", ask.Label())
	assert.True(t, ask.Focused())
	assert.True(t, ask.recall)
	assert.NotNil(t, ask.Init())

	path := NewPathInput(nil)
	assert.Equal(t, "File", path.Label())
	assert.False(t, path.recall)
	assert.True(t, path.textinput.ShowSuggestions)
	assert.NotNil(t, path.styles)

	assert.Contains(t, ask.View(), "Ask")
	assert.Contains(t, path.View(), "File")
}

func TestField_TypingAndBackspace(t *testing.T) {
	f := NewQuestionInput(nil)

	typeText(f, "why?")
	assert.Equal(t, "why?", f.Value())

	updated, _ := f.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Same(t, f, updated)
	assert.Equal(t, "why", f.Value())
}

func TestField_Recall(t *testing.T) {
	f := NewQuestionInput(nil)
	up := tea.KeyMsg{Type: tea.KeyUp}
	down := tea.KeyMsg{Type: tea.KeyDown}

	f.Update(up)
	assert.Empty(t, f.Value(), "nothing to recall yet")

	f.Remember("Who founded Acme?")
	f.Remember("  Who founded Acme?  ")
	f.Remember("")
	f.Remember("When is support open?")
	assert.Equal(t, []string{"Who founded Acme?", "When is support open?"}, f.History())

	typeText(f, "draft")
	f.Update(up)
	assert.Equal(t, "When is support open?", f.Value())
	f.Update(up)
	assert.Equal(t, "Who founded Acme?", f.Value())
	f.Update(up)
	assert.Equal(t, "Who founded Acme?", f.Value(), "stops at the oldest entry")

	f.Update(down)
	f.Update(down)
	assert.Equal(t, "draft", f.Value(), "the unsent draft comes back")
	f.Update(down)
	assert.Equal(t, "draft", f.Value())
}

func TestField_RememberCapsHistory(t *testing.T) {
	f := NewQuestionInput(nil)
	for i := range maxHistory + 5 {
		f.Remember(string(rune('a'+i%26)) + string(rune('0'+i/26)))
	}
	assert.Len(t, f.History(), maxHistory)
	assert.Equal(t, "f0", f.History()[0])
}

func TestField_SuggestFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.csv", "a.txt", "page.HTML", "image.png", "noext"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "data.json"), 0700))

	f := NewPathInput(nil)
	f.SuggestFiles(dir)

	assert.Equal(t, []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.csv"),
		filepath.Join(dir, "page.HTML"),
	}, f.Suggestions())

	f.SuggestFiles(filepath.Join(dir, "missing"))
	assert.Empty(t, f.Suggestions())
}

func TestField_SetValueAndReset(t *testing.T) {
	f := NewQuestionInput(nil)
	f.Remember("kept")

	f.SetValue("data/people.csv")
	assert.Equal(t, "data/people.csv", f.Value())

	f.Reset()
	assert.Empty(t, f.Value())
	assert.Equal(t, []string{"kept"}, f.History())
}

func TestField_FocusAndBlur(t *testing.T) {
	f := NewQuestionInput(nil)

	f.Blur()
	assert.False(t, f.Focused())

	f.Focus()
	assert.True(t, f.Focused())
}

func TestField_SetWidth(t *testing.T) {
	f := NewQuestionInput(nil)

	f.SetWidth(100)
	assert.Equal(t, 100, f.Width())
	assert.Equal(t, 89, f.textinput.Width)

	f.SetWidth(10)
	assert.Equal(t, minInputWidth, f.textinput.Width)
}
