// Package tui is the interactive terminal front end: ask questions and
// browse the cited sources, ingest files, and switch providers.
package tui

import (
	"errors"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

var (
	ErrInvalidPorts            = errors.New("tui: invalid ports configuration")
	ErrMissingQueryService     = errors.New("tui: query service is required")
	ErrMissingIngestionService = errors.New("tui: ingestion service is required")
)

// Ports are the services behind the views. Settings is optional; without
// it the settings view reports that settings are unavailable.
type Ports struct {
	Query     driving.QueryService
	Ingestion driving.IngestionService
	Settings  driving.SettingsService
}

// NewPorts bundles the services.
func NewPorts(query driving.QueryService, ingestion driving.IngestionService, settings driving.SettingsService) *Ports {
	return &Ports{Query: query, Ingestion: ingestion, Settings: settings}
}

// Validate reports the first required service that is missing.
func (p *Ports) Validate() error {
	switch {
	case p == nil:
		return ErrInvalidPorts
	case p.Query == nil:
		return ErrMissingQueryService
	case p.Ingestion == nil:
		return ErrMissingIngestionService
	}
	return nil
}
