package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/api"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Start the HTTP API on the configured address (default :8000).

Endpoints:
  GET  /                       service description
  GET  /api/v1/health          liveness
  POST /api/v1/ingest          ingest a source described as JSON
  POST /api/v1/ingest/upload   ingest an uploaded file (multipart "file")
  POST /api/v1/query           ask a question`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	svc, err := loadServices(ctx)
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" && svc.Settings != nil {
		addr = svc.Settings.ServerAddr
	}
	if addr == "" {
		addr = api.DefaultAddr
	}

	server := api.NewServer(svc.Ingestion, svc.Query, api.Config{Addr: addr, Version: version})
	logger.Info("API listening on %s", server.Addr())
	cmd.Printf("API listening on %s\n", server.Addr())
	return server.ListenAndServe(ctx)
}
