package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/ai"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// mockIngestion records the last request and returns count or err.
type mockIngestion struct {
	count int
	err   error
	reqs  []domain.IngestRequest
}

func (m *mockIngestion) Ingest(_ context.Context, req domain.IngestRequest) (int, error) {
	m.reqs = append(m.reqs, req)
	return m.count, m.err
}

func (m *mockIngestion) last() domain.IngestRequest {
	if len(m.reqs) == 0 {
		return domain.IngestRequest{}
	}
	return m.reqs[len(m.reqs)-1]
}

// mockQuery records the last request and returns resp or err.
type mockQuery struct {
	resp *domain.QueryResponse
	err  error
	req  domain.QueryRequest
}

func (m *mockQuery) Query(_ context.Context, req domain.QueryRequest) (*domain.QueryResponse, error) {
	m.req = req
	if m.err != nil {
		return nil, m.err
	}
	if m.resp == nil {
		return &domain.QueryResponse{Answer: domain.NoContextAnswer, Sources: []domain.SourceChunk{}, Query: req.Question}, nil
	}
	return m.resp, nil
}

// mockSettings is an in-memory settings service.
type mockSettings struct {
	settings    domain.Settings
	validateErr error
	saveErr     error
}

func newMockSettings() *mockSettings {
	return &mockSettings{settings: domain.DefaultSettings()}
}

func (m *mockSettings) Get() (*domain.Settings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettings) Save(settings *domain.Settings) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.settings = *settings
	return nil
}

func (m *mockSettings) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.LLM.Provider = provider
	m.settings.LLM.Model = model
	m.settings.LLM.APIKey = apiKey
	return m.saveErr
}

func (m *mockSettings) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.Embedding.Provider = provider
	m.settings.Embedding.Model = model
	m.settings.Embedding.APIKey = apiKey
	return m.saveErr
}

func (m *mockSettings) SetVectorBackend(backend domain.VectorBackend, location string) error {
	m.settings.VectorStore.Backend = backend
	if location != "" {
		m.settings.VectorStore.URL = location
	}
	return m.saveErr
}

func (m *mockSettings) Validate() error {
	return m.validateErr
}

// testEnv installs stub services for one test.
type testEnv struct {
	ingestion *mockIngestion
	query     *mockQuery
	settings  *mockSettings
	checks    []ai.Check
	closed    int
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		ingestion: &mockIngestion{count: 2},
		query:     &mockQuery{},
		settings:  newMockSettings(),
	}
	SetServices(&Services{
		Ingestion: env.ingestion,
		Query:     env.query,
		Settings:  &env.settings.settings,
		Checks:    func(context.Context) []ai.Check { return env.checks },
		Close: func() error {
			env.closed++
			return nil
		},
	})
	SetSettingsService(env.settings)
	t.Cleanup(func() {
		SetServices(nil)
		SetSettingsService(nil)
		SetServicesBuilder(nil)
		SetSettingsBuilder(nil)
	})
	return env
}

// execute runs the root command with args and returns the combined output.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		resetFlags(rootCmd)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// resetFlags restores every flag in the tree to its default.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func TestRootCmd_Commands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "ingest", "query", "watch", "tui", "mcp", "settings", "check", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("verbose"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("log-level"))
	assert.Equal(t, "text", rootCmd.PersistentFlags().Lookup("log-format").DefValue)
}

func TestRootCmd_LogFlags(t *testing.T) {
	t.Cleanup(func() {
		logger.SetVerbose(false)
		_ = logger.SetFormat(logger.FormatText)
	})

	tests := []struct {
		name    string
		args    []string
		wantErr string
		level   string
	}{
		{name: "defaults", args: []string{"version", "--short"}, level: "warning"},
		{name: "verbose", args: []string{"-v", "version", "--short"}, level: "debug"},
		{name: "level overrides verbose", args: []string{"-v", "--log-level", "error", "version", "--short"}, level: "error"},
		{name: "json", args: []string{"--log-format", "json", "version", "--short"}, level: "warning"},
		{name: "bad level", args: []string{"--log-level", "loud", "version"}, wantErr: "--log-level"},
		{name: "bad format", args: []string{"--log-format", "xml", "version"}, wantErr: "unknown log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, "", tt.args...)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.level, logger.Level())
		})
	}
}

func TestLoadServices_NotConfigured(t *testing.T) {
	SetServices(nil)
	SetServicesBuilder(nil)

	_, err := loadServices(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = loadSettingsService()
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestLoadServices_BuildsOnceWithConfigDir(t *testing.T) {
	t.Cleanup(func() {
		SetServices(nil)
		SetServicesBuilder(nil)
		configDir = ""
	})
	SetServices(nil)
	configDir = "/tmp/cfg"

	calls := 0
	SetServicesBuilder(func(_ context.Context, dir string) (*Services, error) {
		calls++
		assert.Equal(t, "/tmp/cfg", dir)
		return &Services{Query: &mockQuery{}, Ingestion: &mockIngestion{}}, nil
	})

	first, err := loadServices(context.Background())
	require.NoError(t, err)
	second, err := loadServices(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestLoadServices_BuilderError(t *testing.T) {
	t.Cleanup(func() { SetServicesBuilder(nil) })
	SetServices(nil)
	SetServicesBuilder(func(context.Context, string) (*Services, error) {
		return nil, errors.New("no qdrant")
	})

	_, err := loadServices(context.Background())
	assert.EqualError(t, err, "no qdrant")
}

func TestLoadSettingsService_Builder(t *testing.T) {
	t.Cleanup(func() {
		SetSettingsService(nil)
		SetSettingsBuilder(nil)
	})
	SetSettingsService(nil)
	svc := newMockSettings()
	SetSettingsBuilder(func(string) (driving.SettingsService, error) { return svc, nil })

	got, err := loadSettingsService()
	require.NoError(t, err)
	assert.Equal(t, svc, got)
}

func TestExecute_ClosesServices(t *testing.T) {
	env := newTestEnv(t)
	rootCmd.SetArgs([]string{"version"})
	rootCmd.SetOut(new(bytes.Buffer))
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
	})

	require.NoError(t, Execute(context.Background()))
	assert.Equal(t, 1, env.closed)

	// Services are dropped after closing.
	assert.NoError(t, closeServices())
	assert.Equal(t, 1, env.closed)
}

func TestParseKeyValues(t *testing.T) {
	tests := []struct {
		name    string
		in      []string
		want    map[string]any
		wantErr bool
	}{
		{name: "none", in: nil, want: nil},
		{name: "pairs", in: []string{"a=1", "b=x=y"}, want: map[string]any{"a": "1", "b": "x=y"}},
		{name: "last wins", in: []string{"a=1", "a=2"}, want: map[string]any{"a": "2"}},
		{name: "empty value", in: []string{"a="}, want: map[string]any{"a": ""}},
		{name: "missing equals", in: []string{"a"}, wantErr: true},
		{name: "empty key", in: []string{"=1"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseKeyValues(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
