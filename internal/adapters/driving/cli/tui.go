package cli

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// TUIConfig holds configuration for the TUI command.
// Nil fields fall back to the lazily built services.
type TUIConfig struct {
	QueryService     driving.QueryService
	IngestionService driving.IngestionService
	SettingsService  driving.SettingsService
}

var (
	tuiConfig  *TUIConfig
	tuiLogFile string
	tuiTopK    int
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for sercha-rag.

Ask questions and browse the fragments each answer was built from,
ingest files, and switch providers.

Controls:
  ↑/k, ↓/j - Navigate
  Enter    - Ask / Select / Expand source
  n        - New question
  Esc      - Back
  q        - Quit (from the menu)

Log lines would corrupt the screen, so they are dropped while the UI
runs unless --log-file names a file to append them to.`,
	RunE: runTUI,
}

// SetTUIConfig sets the configuration for the TUI command.
func SetTUIConfig(config *TUIConfig) {
	tuiConfig = config
}

func init() {
	tuiCmd.Flags().IntVarP(&tuiTopK, "top-k", "k", 0, "fragments retrieved per question (default from settings)")
	tuiCmd.Flags().StringVar(&tuiLogFile, "log-file", "", "append log lines to this file while the UI runs")
	rootCmd.AddCommand(tuiCmd)
}

// redirectLogs points the logger away from the terminal and returns the undo func.
func redirectLogs(path string) (func(), error) {
	if path == "" {
		return logger.Redirect(io.Discard), nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	restore := logger.Redirect(f)
	return func() {
		restore()
		_ = f.Close()
	}, nil
}

// tuiPorts resolves the ports from tuiConfig and the shared services.
func tuiPorts(cmd *cobra.Command) (*tui.Ports, error) {
	ports := &tui.Ports{}
	if tuiConfig != nil {
		ports.Query = tuiConfig.QueryService
		ports.Ingestion = tuiConfig.IngestionService
		ports.Settings = tuiConfig.SettingsService
	}

	if ports.Query == nil || ports.Ingestion == nil {
		svc, err := loadServices(cmd.Context())
		if err != nil {
			return nil, err
		}
		if ports.Query == nil {
			ports.Query = svc.Query
		}
		if ports.Ingestion == nil {
			ports.Ingestion = svc.Ingestion
		}
	}

	if ports.Settings == nil {
		// Settings are optional in the TUI.
		if s, err := loadSettingsService(); err == nil {
			ports.Settings = s
		}
	}
	return ports, nil
}

func runTUI(cmd *cobra.Command, _ []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	ports, err := tuiPorts(cmd)
	if err != nil {
		return err
	}

	if tuiTopK < 0 {
		return fmt.Errorf("--top-k must not be negative, got %d", tuiTopK)
	}
	app, err := tui.NewApp(ports, tui.WithTopK(tuiTopK))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	restore, err := redirectLogs(tuiLogFile)
	if err != nil {
		return err
	}
	defer restore()

	if err := app.WithContext(cmd.Context()).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
