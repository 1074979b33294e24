package mcp

import (
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Ports are the services the MCP tools and resources call.
type Ports struct {
	// Query answers questions.
	Query driving.QueryService

	// Ingestion adds sources to the knowledge base.
	Ingestion driving.IngestionService

	// Settings backs the settings resource. Optional.
	Settings driving.SettingsService

	// Version is reported to clients during initialisation.
	Version string
}

// Validate reports the first missing pipeline.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	if p.Ingestion == nil {
		return ErrMissingIngestionService
	}
	return nil
}
