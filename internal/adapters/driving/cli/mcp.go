package cli

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/mcp"
)

var mcpAddr string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose query and ingest to AI assistants over MCP",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server",
	Long: `Run a Model Context Protocol server offering the "query" and "ingest"
tools plus source type and settings resources.

Without --addr the server speaks JSON-RPC on stdio, which is how desktop
assistants launch it. With --addr it serves streamable HTTP at /mcp.

  sercha-rag mcp serve
  sercha-rag mcp serve --addr :8080`,
	RunE: runMCPServe,
}

var mcpConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the assistant configuration that launches this binary",
	RunE:  runMCPConfig,
}

func init() {
	mcpServeCmd.Flags().StringVar(&mcpAddr, "addr", "", "serve streamable HTTP on this address instead of stdio")
	mcpCmd.AddCommand(mcpServeCmd, mcpConfigCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	svc, err := loadServices(ctx)
	if err != nil {
		return err
	}

	ports := &mcp.Ports{Query: svc.Query, Ingestion: svc.Ingestion, Version: version}
	if s, err := loadSettingsService(); err == nil {
		ports.Settings = s
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}
	if mcpAddr == "" {
		return server.Run(ctx)
	}
	return server.RunHTTP(ctx, mcpAddr)
}

type mcpServerEntry struct {
	Command string   `json:"command"`
	Args    []string `json:"args"`
}

type mcpClientConfig struct {
	MCPServers map[string]mcpServerEntry `json:"mcpServers"`
}

func runMCPConfig(cmd *cobra.Command, _ []string) error {
	exe, err := os.Executable()
	if err != nil {
		exe = "sercha-rag"
	}
	args := []string{"mcp", "serve"}
	if configDir != "" {
		args = append([]string{"--config", configDir}, args...)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(mcpClientConfig{
		MCPServers: map[string]mcpServerEntry{"sercha-rag": {Command: exe, Args: args}},
	})
}
