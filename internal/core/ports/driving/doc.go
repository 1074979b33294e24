// Package driving holds the use cases the CLI, TUI, HTTP API and MCP
// server call: ingest a source, answer a question, read or change settings.
// core/services implements them; adapters never reach past these interfaces.
package driving
