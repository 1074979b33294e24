// Package settings is the TUI screen for switching providers and the
// vector backend, and for tuning chunking and retrieval depth.
package settings

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Section is the screen the view currently shows.
type Section int

const (
	SectionOverview Section = iota
	SectionEmbedding
	SectionLLM
	SectionVectorStore
	SectionPipeline
)

// ErrNoSettingsService is reported when the view was built without a settings service.
var ErrNoSettingsService = errors.New("settings service not available")

// overviewItems are the editable sections in overview order.
var overviewItems = []Section{SectionEmbedding, SectionLLM, SectionVectorStore, SectionPipeline}

// Pipeline form fields, in tab order.
const (
	fieldChunkSize = iota
	fieldChunkOverlap
	fieldTopK
	fieldCount
)

var fieldLabels = [fieldCount]string{"Chunk size", "Chunk overlap", "Top k"}

// choice is one row of a selection list.
type choice struct {
	id       string
	label    string
	detail   string
	current  bool
	needsKey bool
}

// View edits the stored settings.
type View struct {
	styles          *styles.Styles
	settingsService driving.SettingsService

	settings *domain.Settings
	invalid  error
	err      error
	saved    bool

	section  Section
	selected int

	// keyFocused is set while the API key input has focus.
	keyFocused  bool
	apiKeyInput textinput.Model

	fields [fieldCount]textinput.Model
	field  int

	width  int
	height int
	ready  bool
}

// NewView creates the view on the overview screen.
func NewView(s *styles.Styles, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	apiKey := textinput.New()
	apiKey.Placeholder = "Enter API key"
	apiKey.EchoMode = textinput.EchoPassword
	apiKey.CharLimit = 256

	v := &View{
		styles:          s,
		settingsService: settingsService,
		apiKeyInput:     apiKey,
	}
	for i := range v.fields {
		in := textinput.New()
		in.CharLimit = 7
		in.Width = 10
		in.Validate = digitsOnly
		v.fields[i] = in
	}
	return v
}

func digitsOnly(s string) error {
	for _, r := range s {
		if r < '0' || r > '9' {
			return errors.New("digits only")
		}
	}
	return nil
}

// Init loads the stored settings.
func (v *View) Init() tea.Cmd {
	return v.load()
}

func (v *View) load() tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsLoaded{Err: ErrNoSettingsService}
		}
		settings, err := svc.Get()
		if err != nil {
			return messages.SettingsLoaded{Err: err}
		}
		return messages.SettingsLoaded{Settings: settings, Invalid: svc.Validate()}
	}
}

// save runs fn against the service off the UI goroutine.
func (v *View) save(fn func(driving.SettingsService) error) tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsSaved{Err: ErrNoSettingsService}
		}
		return messages.SettingsSaved{Err: fn(svc)}
	}
}

// Update handles loads, saves and keys.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case messages.SettingsLoaded:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.settings = msg.Settings
		v.invalid = msg.Invalid
		v.err = nil

	case messages.SettingsSaved:
		v.err = msg.Err
		if msg.Err != nil {
			return v, nil
		}
		v.saved = true
		v.toOverview()
		return v, v.load()

	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		if v.section == SectionOverview {
			return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
		}
		v.toOverview()
		return v, nil
	}

	switch {
	case v.section == SectionPipeline:
		return v.handlePipelineKey(msg)
	case v.keyFocused:
		return v.handleAPIKey(msg)
	}

	switch msg.String() {
	case "up", "k":
		v.selected = max(v.selected-1, 0)
	case "down", "j":
		v.selected = min(v.selected+1, v.rows()-1)
	case "tab":
		if v.selectedNeedsKey() {
			v.keyFocused = true
			return v, v.apiKeyInput.Focus()
		}
	case "enter":
		return v.activate()
	}
	return v, nil
}

// rows is the length of the list on the current screen.
func (v *View) rows() int {
	if v.section == SectionOverview {
		return len(overviewItems)
	}
	return len(v.choices())
}

func (v *View) selectedNeedsKey() bool {
	c := v.choices()
	return v.selected < len(c) && c[v.selected].needsKey
}

// activate applies enter on a list row.
func (v *View) activate() (*View, tea.Cmd) {
	if v.section == SectionOverview {
		v.saved = false
		v.section = overviewItems[v.selected]
		v.selected = v.currentIndex()
		if v.section == SectionPipeline {
			return v, v.openPipeline()
		}
		return v, nil
	}
	if v.selectedNeedsKey() {
		v.keyFocused = true
		return v, v.apiKeyInput.Focus()
	}
	return v, v.commit("")
}

func (v *View) handleAPIKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab":
		v.keyFocused = false
		v.apiKeyInput.Blur()
		return v, nil
	case "enter":
		return v, v.commit(v.apiKeyInput.Value())
	}
	var cmd tea.Cmd
	v.apiKeyInput, cmd = v.apiKeyInput.Update(msg)
	return v, cmd
}

// commit saves the selected row of a provider or backend list.
func (v *View) commit(apiKey string) tea.Cmd {
	switch v.section {
	case SectionEmbedding:
		p := domain.AllEmbeddingProviders()[v.selected]
		model := domain.DefaultEmbeddingModels()[p]
		return v.save(func(svc driving.SettingsService) error {
			return svc.SetEmbeddingProvider(p, model, apiKey)
		})
	case SectionLLM:
		p := domain.AllLLMProviders()[v.selected]
		model := domain.DefaultLLMModels()[p]
		return v.save(func(svc driving.SettingsService) error {
			return svc.SetLLMProvider(p, model, apiKey)
		})
	case SectionVectorStore:
		b := domain.AllVectorBackends()[v.selected]
		return v.save(func(svc driving.SettingsService) error {
			return svc.SetVectorBackend(b, "")
		})
	case SectionOverview, SectionPipeline:
	}
	return nil
}

// openPipeline fills the form from the loaded settings and focuses the first field.
func (v *View) openPipeline() tea.Cmd {
	values := [fieldCount]int{}
	if v.settings != nil {
		values = [fieldCount]int{v.settings.Chunking.Size, v.settings.Chunking.Overlap, v.settings.RetrievalTopK}
	}
	for i := range v.fields {
		v.fields[i].SetValue(strconv.Itoa(values[i]))
		v.fields[i].Blur()
	}
	v.field = fieldChunkSize
	return v.fields[v.field].Focus()
}

func (v *View) handlePipelineKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		return v, v.focusField((v.field + 1) % fieldCount)
	case "shift+tab", "up":
		return v, v.focusField((v.field + fieldCount - 1) % fieldCount)
	case "enter":
		return v.submitPipeline()
	}
	var cmd tea.Cmd
	v.fields[v.field], cmd = v.fields[v.field].Update(msg)
	return v, cmd
}

func (v *View) focusField(i int) tea.Cmd {
	v.fields[v.field].Blur()
	v.field = i
	return v.fields[i].Focus()
}

// submitPipeline validates the form locally so bad numbers never reach the store.
func (v *View) submitPipeline() (*View, tea.Cmd) {
	var values [fieldCount]int
	for i := range v.fields {
		n, err := strconv.Atoi(strings.TrimSpace(v.fields[i].Value()))
		if err != nil {
			v.err = fmt.Errorf("%s must be a number", strings.ToLower(fieldLabels[i]))
			return v, nil
		}
		values[i] = n
	}
	size, overlap, topK := values[fieldChunkSize], values[fieldChunkOverlap], values[fieldTopK]
	switch {
	case size <= 0:
		v.err = errors.New("chunk size must be positive")
	case overlap >= size:
		v.err = fmt.Errorf("chunk overlap must be smaller than chunk size (%d)", size)
	case topK <= 0:
		v.err = errors.New("top k must be positive")
	default:
		v.err = nil
	}
	if v.err != nil {
		return v, nil
	}

	return v, v.save(func(svc driving.SettingsService) error {
		s, err := svc.Get()
		if err != nil {
			return err
		}
		s.Chunking.Size, s.Chunking.Overlap, s.RetrievalTopK = size, overlap, topK
		return svc.Save(s)
	})
}

// currentIndex is the list position of the active choice in v.section.
func (v *View) currentIndex() int {
	for i, c := range v.choices() {
		if c.current {
			return i
		}
	}
	return 0
}

// choices lists the rows of a provider or backend screen.
func (v *View) choices() []choice {
	var out []choice
	switch v.section {
	case SectionEmbedding:
		out = providerChoices(domain.AllEmbeddingProviders(), domain.DefaultEmbeddingModels())
		v.markCurrent(out, func(s *domain.Settings) string { return s.Embedding.Provider.String() })
	case SectionLLM:
		out = providerChoices(domain.AllLLMProviders(), domain.DefaultLLMModels())
		v.markCurrent(out, func(s *domain.Settings) string { return s.LLM.Provider.String() })
	case SectionVectorStore:
		for _, b := range domain.AllVectorBackends() {
			out = append(out, choice{id: b.String(), label: b.Description()})
		}
		v.markCurrent(out, func(s *domain.Settings) string { return s.VectorStore.Backend.String() })
	case SectionOverview, SectionPipeline:
	}
	return out
}

func providerChoices(providers []domain.AIProvider, models map[domain.AIProvider]string) []choice {
	out := make([]choice, 0, len(providers))
	for _, p := range providers {
		c := choice{id: p.String(), label: p.Description(), needsKey: p.RequiresAPIKey()}
		if m, ok := models[p]; ok {
			c.detail = "model " + m
		}
		out = append(out, c)
	}
	return out
}

func (v *View) markCurrent(cs []choice, active func(*domain.Settings) string) {
	if v.settings == nil {
		return
	}
	want := active(v.settings)
	for i := range cs {
		cs[i].current = cs[i].id == want
	}
}

func (v *View) toOverview() {
	v.section = SectionOverview
	v.selected = 0
	v.keyFocused = false
	v.apiKeyInput.SetValue("")
	v.apiKeyInput.Blur()
	for i := range v.fields {
		v.fields[i].Blur()
	}
}

// View renders the current screen.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n\n")
	}
	if v.settings == nil {
		b.WriteString(v.styles.Muted.Render("Loading settings..."))
		return b.String()
	}

	switch v.section {
	case SectionOverview:
		b.WriteString(v.renderOverview())
	case SectionEmbedding:
		b.WriteString(v.renderList("Select Embedding Provider", ""))
	case SectionLLM:
		b.WriteString(v.renderList("Select LLM Provider", ""))
	case SectionVectorStore:
		b.WriteString(v.renderList("Select Vector Store", "Switching backends starts from an empty collection."))
	case SectionPipeline:
		b.WriteString(v.renderPipeline())
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render(v.helpLine()))
	return b.String()
}

func (v *View) renderOverview() string {
	st := v.settings

	embedding := st.Embedding.Provider.Description()
	if st.Embedding.Model != "" {
		embedding += " (" + st.Embedding.Model + ")"
	}
	rows := [][2]string{
		{"Embedding", embedding + " " + v.status(st.Embedding.IsConfigured())},
		{"LLM", fmt.Sprintf("%s (%s) %s", st.LLM.Provider.Description(), st.LLM.Model, v.status(st.LLM.IsConfigured()))},
		{"Vector Store", fmt.Sprintf("%s, collection %q", st.VectorStore.Backend.Description(), st.VectorStore.Collection)},
		{"Pipeline", fmt.Sprintf("chunks of %d chars, %d overlap, top %d", st.Chunking.Size, st.Chunking.Overlap, st.RetrievalTopK)},
	}

	var b strings.Builder
	for i, row := range rows {
		b.WriteString(v.row(i == v.selected, row[0]+": "+row[1]))
	}
	b.WriteString("\n")

	switch {
	case v.invalid != nil:
		b.WriteString(v.styles.Warning.Render("Warning: " + v.invalid.Error()))
	case v.saved:
		b.WriteString(v.styles.Success.Render("Saved. Restart to apply the new configuration."))
	default:
		b.WriteString(v.styles.Success.Render("Configuration is valid"))
	}
	b.WriteString("\n")
	return b.String()
}

func (v *View) renderList(title, note string) string {
	var b strings.Builder
	b.WriteString(v.styles.Subtitle.Render(title))
	b.WriteString("\n\n")

	cs := v.choices()
	for i, c := range cs {
		line := c.label
		if c.current {
			line += v.styles.Success.Render(" (current)")
		}
		b.WriteString(v.row(i == v.selected && !v.keyFocused, line))
		if c.detail != "" {
			b.WriteString(v.styles.Muted.Render("    " + c.detail))
			b.WriteString("\n")
		}
	}

	if v.selected < len(cs) && cs[v.selected].needsKey {
		b.WriteString("\n")
		b.WriteString(v.styles.Normal.Render("API Key:"))
		b.WriteString("\n")
		b.WriteString(v.apiKeyInput.View())
		b.WriteString("\n")
	}
	if note != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(note))
		b.WriteString("\n")
	}
	return b.String()
}

func (v *View) renderPipeline() string {
	var b strings.Builder
	b.WriteString(v.styles.Subtitle.Render("Chunking and Retrieval"))
	b.WriteString("\n\n")
	for i := range v.fields {
		b.WriteString("  " + v.styles.Label.Render(fieldLabels[i]) + " " + v.fields[i].View() + "\n")
	}
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render("New chunk sizes apply to sources ingested after the restart."))
	b.WriteString("\n")
	return b.String()
}

// row renders one list line with the selection marker.
func (v *View) row(selected bool, text string) string {
	if selected {
		return v.styles.Selected.Render("> "+text) + "\n"
	}
	return v.styles.Normal.Render("  "+text) + "\n"
}

func (v *View) status(configured bool) string {
	if configured {
		return v.styles.Success.Render("[configured]")
	}
	return v.styles.Warning.Render("[needs API key]")
}

func (v *View) helpLine() string {
	switch {
	case v.section == SectionOverview:
		return "[j/k] navigate  [enter] edit  [esc] back"
	case v.section == SectionPipeline:
		return "[tab] next field  [enter] save  [esc] back"
	case v.keyFocused:
		return "[tab] back to list  [enter] save  [esc] back"
	case v.section == SectionVectorStore:
		return "[j/k] navigate  [enter] select  [esc] back"
	}
	return "[j/k] navigate  [tab] API key  [enter] select  [esc] back"
}

// SetDimensions records the terminal size.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

func (v *View) Section() Section { return v.section }

// Err returns the last load, save or validation error.
func (v *View) Err() error { return v.err }

// Reset returns to the overview and clears errors.
func (v *View) Reset() {
	v.toOverview()
	v.err = nil
	v.saved = false
}
