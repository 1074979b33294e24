package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

var (
	settingsProvider string
	settingsModel    string
	settingsAPIKey   string
	settingsBackend  string
	settingsLocation string
	settingsJSON     bool

	settingsChunkSize    int
	settingsChunkOverlap int
	settingsTopK         int
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure AI providers and the vector store.

Changes are written to config.toml and take effect on the next run.
Environment variables still override the file.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long: `Configure the backend that turns text into vectors.

Without --provider the command prompts interactively.
Changing provider or model changes the vector dimension, so re-ingest
into a new collection afterwards.`,
	RunE: runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long: `Configure the model that synthesizes answers.

Without --provider the command prompts interactively.`,
	RunE: runSettingsLLM,
}

var settingsVectorCmd = &cobra.Command{
	Use:   "vector",
	Short: "Configure vector store",
	Long: `Configure where chunks are stored.

Backends: chromem, sqlite, memory, qdrant, pgvector.
--location is a directory or file for chromem and sqlite, and a URL or DSN
for qdrant and pgvector. Without --backend the command prompts interactively.`,
	RunE: runSettingsVector,
}

var settingsPipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Configure chunking and retrieval depth",
	Long: `Set the chunk size and overlap used when ingesting, and how many
fragments a question retrieves by default. Only the flags given change.`,
	RunE: runSettingsPipeline,
}

func init() {
	for _, c := range []*cobra.Command{settingsEmbeddingCmd, settingsLLMCmd} {
		c.Flags().StringVar(&settingsProvider, "provider", "", "provider name")
		c.Flags().StringVar(&settingsModel, "model", "", "model name (default per provider)")
		c.Flags().StringVar(&settingsAPIKey, "api-key", "", "API key for cloud providers")
	}
	settingsVectorCmd.Flags().StringVar(&settingsBackend, "backend", "", "vector backend")
	settingsVectorCmd.Flags().StringVar(&settingsLocation, "location", "", "path, URL or DSN for the backend")

	for _, c := range []*cobra.Command{settingsCmd, settingsShowCmd} {
		c.Flags().BoolVar(&settingsJSON, "json", false, "print settings as JSON")
	}
	settingsPipelineCmd.Flags().IntVar(&settingsChunkSize, "chunk-size", 0, "maximum characters per chunk")
	settingsPipelineCmd.Flags().IntVar(&settingsChunkOverlap, "chunk-overlap", 0, "characters shared by neighbouring chunks")
	settingsPipelineCmd.Flags().IntVar(&settingsTopK, "top-k", 0, "fragments retrieved per question")

	settingsCmd.AddCommand(settingsShowCmd, settingsEmbeddingCmd, settingsLLMCmd, settingsVectorCmd, settingsPipelineCmd)
	rootCmd.AddCommand(settingsCmd)
}

// settingsSection is one titled block of the show output.
type settingsSection struct {
	Title string        `json:"title"`
	Rows  []settingsRow `json:"rows"`
}

type settingsRow struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func (s *settingsSection) add(name, value string) {
	s.Rows = append(s.Rows, settingsRow{Name: name, Value: value})
}

// describeSettings lays settings out for display. API keys are masked.
func describeSettings(st *domain.Settings) []settingsSection {
	emb := settingsSection{Title: "Embedding"}
	emb.add("Provider", st.Embedding.Provider.Description())
	if st.Embedding.Model != "" {
		emb.add("Model", st.Embedding.Model)
	}
	switch st.Embedding.Provider {
	case domain.AIProviderHash:
		emb.add("Dimensions", strconv.Itoa(st.Embedding.Dimensions))
	case domain.AIProviderOllama:
		emb.add("Base URL", st.Embedding.BaseURL)
	case domain.AIProviderOpenAI, domain.AIProviderAnthropic:
	}
	addCredential(&emb, st.Embedding.Provider, st.Embedding.APIKey)
	emb.add("Status", statusText(st.Embedding.IsConfigured()))

	llm := settingsSection{Title: "LLM"}
	llm.add("Provider", st.LLM.Provider.Description())
	llm.add("Model", st.LLM.Model)
	if st.LLM.Provider.IsLocal() {
		llm.add("Base URL", st.LLM.BaseURL)
	}
	addCredential(&llm, st.LLM.Provider, st.LLM.APIKey)
	llm.add("Status", statusText(st.LLM.IsConfigured()))

	store := settingsSection{Title: "Vector Store"}
	store.add("Backend", st.VectorStore.Backend.Description())
	store.add("Collection", st.VectorStore.Collection)
	switch st.VectorStore.Backend {
	case domain.VectorBackendChromem, domain.VectorBackendSQLite:
		if st.VectorStore.Path != "" {
			store.add("Path", st.VectorStore.Path)
		}
	case domain.VectorBackendQdrant, domain.VectorBackendPGVector:
		store.add("URL", st.VectorStore.URL)
	case domain.VectorBackendMemory:
	}

	pipe := settingsSection{Title: "Pipeline"}
	pipe.add("Chunk size", strconv.Itoa(st.Chunking.Size))
	pipe.add("Chunk overlap", strconv.Itoa(st.Chunking.Overlap))
	pipe.add("Retrieval top-k", strconv.Itoa(st.RetrievalTopK))
	pipe.add("Server address", st.ServerAddr)

	return []settingsSection{emb, llm, store, pipe}
}

func addCredential(s *settingsSection, provider domain.AIProvider, key string) {
	if !provider.RequiresAPIKey() {
		return
	}
	if key == "" {
		s.add("API Key", "(not set)")
		return
	}
	s.add("API Key", maskAPIKey(key))
}

func statusText(configured bool) string {
	if configured {
		return "configured"
	}
	return "not configured"
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	svc, err := loadSettingsService()
	if err != nil {
		return err
	}

	settings, err := svc.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	sections := describeSettings(settings)
	invalid := svc.Validate()

	if settingsJSON {
		out := struct {
			Sections []settingsSection `json:"sections"`
			Valid    bool              `json:"valid"`
			Problem  string            `json:"problem,omitempty"`
		}{Sections: sections, Valid: invalid == nil}
		if invalid != nil {
			out.Problem = invalid.Error()
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	for _, section := range sections {
		cmd.Printf("\n[%s]\n", section.Title)
		for _, row := range section.Rows {
			cmd.Printf("  %s: %s\n", row.Name, row.Value)
		}
	}
	cmd.Println()

	if invalid != nil {
		cmd.Printf("Warning: %v\n", invalid)
		cmd.Println("Run 'sercha-rag settings llm' or 'sercha-rag settings embedding' to fix it.")
		return nil
	}
	cmd.Println("Configuration is valid.")
	return nil
}

func runSettingsPipeline(cmd *cobra.Command, _ []string) error {
	svc, err := loadSettingsService()
	if err != nil {
		return err
	}
	settings, err := svc.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	flags := cmd.Flags()
	if !flags.Changed("chunk-size") && !flags.Changed("chunk-overlap") && !flags.Changed("top-k") {
		return errors.New("nothing to change: pass --chunk-size, --chunk-overlap or --top-k")
	}
	if flags.Changed("chunk-size") {
		settings.Chunking.Size = settingsChunkSize
	}
	if flags.Changed("chunk-overlap") {
		settings.Chunking.Overlap = settingsChunkOverlap
	}
	if flags.Changed("top-k") {
		settings.RetrievalTopK = settingsTopK
	}

	switch c := settings.Chunking; {
	case c.Size <= 0:
		return fmt.Errorf("chunk size must be positive, got %d", c.Size)
	case c.Overlap < 0 || c.Overlap >= c.Size:
		return fmt.Errorf("chunk overlap must be in [0, %d), got %d", c.Size, c.Overlap)
	case settings.RetrievalTopK <= 0:
		return fmt.Errorf("top-k must be positive, got %d", settings.RetrievalTopK)
	}

	if err := svc.Save(settings); err != nil {
		return fmt.Errorf("failed to save pipeline settings: %w", err)
	}
	cmd.Printf("Pipeline configured: chunks of %d chars, %d overlap, top %d\n",
		settings.Chunking.Size, settings.Chunking.Overlap, settings.RetrievalTopK)
	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	svc, err := loadSettingsService()
	if err != nil {
		return err
	}

	choice, err := chooseProvider(cmd, "Embedding", domain.AllEmbeddingProviders(), domain.DefaultEmbeddingModels())
	if err != nil {
		return err
	}
	if err := svc.SetEmbeddingProvider(choice.provider, choice.model, choice.apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	cmd.Printf("Embedding provider configured: %s", choice.provider.Description())
	if choice.model != "" {
		cmd.Printf(" (%s)", choice.model)
	}
	cmd.Println()
	return nil
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	svc, err := loadSettingsService()
	if err != nil {
		return err
	}

	choice, err := chooseProvider(cmd, "LLM", domain.AllLLMProviders(), domain.DefaultLLMModels())
	if err != nil {
		return err
	}
	if err := svc.SetLLMProvider(choice.provider, choice.model, choice.apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	cmd.Printf("LLM provider configured: %s (%s)\n", choice.provider.Description(), choice.model)
	return nil
}

func runSettingsVector(cmd *cobra.Command, _ []string) error {
	svc, err := loadSettingsService()
	if err != nil {
		return err
	}

	backends := domain.AllVectorBackends()
	var backend domain.VectorBackend
	location := settingsLocation

	if settingsBackend != "" {
		backend = domain.VectorBackend(strings.ToLower(settingsBackend))
		if !backend.IsValid() {
			return fmt.Errorf("%w: vector backend %q", domain.ErrUnknownProvider, settingsBackend)
		}
	} else {
		reader := bufio.NewReader(cmd.InOrStdin())
		cmd.Println("Select Vector Store")
		for i, b := range backends {
			cmd.Printf("  %d. %s\n", i+1, b.Description())
		}
		cmd.Print("\nEnter choice [1]: ")
		backend = backends[parseChoice(readLine(reader), len(backends), 1)-1]

		if backend != domain.VectorBackendMemory && location == "" {
			cmd.Print("Enter location (blank keeps the current one): ")
			location = readLine(reader)
		}
	}

	if err := svc.SetVectorBackend(backend, location); err != nil {
		return fmt.Errorf("failed to configure vector store: %w", err)
	}
	cmd.Printf("Vector store configured: %s\n", backend.Description())
	return nil
}

type providerChoice struct {
	provider domain.AIProvider
	model    string
	apiKey   string
}

// chooseProvider reads the provider from flags or, without --provider, from prompts.
func chooseProvider(
	cmd *cobra.Command,
	kind string,
	providers []domain.AIProvider,
	defaults map[domain.AIProvider]string,
) (providerChoice, error) {
	var choice providerChoice

	if settingsProvider != "" {
		choice.provider = domain.AIProvider(strings.ToLower(settingsProvider))
		if !slices.Contains(providers, choice.provider) {
			return choice, fmt.Errorf("%w: %s provider %q", domain.ErrUnknownProvider, strings.ToLower(kind), settingsProvider)
		}
		choice.model = settingsModel
		if choice.model == "" {
			choice.model = defaults[choice.provider]
		}
		choice.apiKey = settingsAPIKey
		return choice, nil
	}

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Printf("Select %s Provider\n", kind)
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	choice.provider = providers[parseChoice(readLine(reader), len(providers), 1)-1]

	if defaultModel, ok := defaults[choice.provider]; ok {
		cmd.Printf("Enter model name [%s]: ", defaultModel)
		choice.model = readLine(reader)
		if choice.model == "" {
			choice.model = defaultModel
		}
	}

	if choice.provider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		choice.apiKey = readPassword(cmd.InOrStdin(), reader)
		cmd.Println()
		if choice.apiKey == "" {
			return choice, errors.New("API key is required for this provider")
		}
	}

	return choice, nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when in is the terminal.
func readPassword(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
