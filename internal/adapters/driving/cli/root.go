// Package cli provides the cobra command tree for sercha-rag.
package cli

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/ai"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// version is set at build time through SetVersion.
var version = "dev"

var (
	configDir string
	verbose   bool
	logLevel  string
	logFormat string
)

// ErrNotConfigured is returned when a command runs before main wired its services.
var ErrNotConfigured = errors.New("services not configured")

var rootCmd = &cobra.Command{
	Use:   "sercha-rag",
	Short: "Ingest documents and ask questions about them",
	Long: `sercha-rag ingests CSV, JSON, text, HTML and SQL sources into a vector
store and answers questions from the most relevant fragments using an LLM.

Run 'sercha-rag serve' for the HTTP API, 'sercha-rag tui' for the
interactive console or 'sercha-rag mcp serve' for AI assistants.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		if err := logger.SetLevel(logLevel); err != nil {
			return fmt.Errorf("--log-level: %w", err)
		}
		return logger.SetFormat(logFormat)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "configuration directory (default ~/.sercha-rag)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error); overrides --verbose")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", logger.FormatText, "log line format (text or json)")
}

// Services are the driving ports the commands use, opened together.
type Services struct {
	Ingestion driving.IngestionService
	Query     driving.QueryService

	// Settings is the resolved configuration the services were built with.
	Settings *domain.Settings

	// Checks pings every backend. Optional.
	Checks func(ctx context.Context) []ai.Check

	// Close releases the backends. Optional.
	Close func() error
}

// ServicesBuilder opens the services for the given configuration directory.
type ServicesBuilder func(ctx context.Context, configDir string) (*Services, error)

// SettingsBuilder opens the settings service without touching any backend.
type SettingsBuilder func(configDir string) (driving.SettingsService, error)

var (
	mu              sync.Mutex
	servicesBuilder ServicesBuilder
	settingsBuilder SettingsBuilder
	services        *Services
	settingsService driving.SettingsService
)

// SetVersion sets the version reported by the version command and the API.
func SetVersion(v string) {
	version = v
}

// SetServicesBuilder registers how the pipelines are opened.
func SetServicesBuilder(b ServicesBuilder) {
	mu.Lock()
	defer mu.Unlock()
	servicesBuilder = b
}

// SetSettingsBuilder registers how the settings service is opened.
func SetSettingsBuilder(b SettingsBuilder) {
	mu.Lock()
	defer mu.Unlock()
	settingsBuilder = b
}

// SetServices installs already-built services.
func SetServices(s *Services) {
	mu.Lock()
	defer mu.Unlock()
	services = s
}

// SetSettingsService installs an already-built settings service.
func SetSettingsService(s driving.SettingsService) {
	mu.Lock()
	defer mu.Unlock()
	settingsService = s
}

// loadServices builds the services on first use.
func loadServices(ctx context.Context) (*Services, error) {
	mu.Lock()
	defer mu.Unlock()

	if services != nil {
		return services, nil
	}
	if servicesBuilder == nil {
		return nil, ErrNotConfigured
	}
	s, err := servicesBuilder(ctx, configDir)
	if err != nil {
		return nil, err
	}
	services = s
	return services, nil
}

// loadSettingsService builds the settings service on first use.
func loadSettingsService() (driving.SettingsService, error) {
	mu.Lock()
	defer mu.Unlock()

	if settingsService != nil {
		return settingsService, nil
	}
	if settingsBuilder == nil {
		return nil, ErrNotConfigured
	}
	s, err := settingsBuilder(configDir)
	if err != nil {
		return nil, err
	}
	settingsService = s
	return settingsService, nil
}

// closeServices releases whatever loadServices opened.
func closeServices() error {
	mu.Lock()
	defer mu.Unlock()

	if services == nil || services.Close == nil {
		return nil
	}
	err := services.Close()
	services = nil
	if err != nil {
		return fmt.Errorf("close services: %w", err)
	}
	return nil
}

// Execute runs the command tree and closes any opened backend.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	return errors.Join(err, closeServices())
}
