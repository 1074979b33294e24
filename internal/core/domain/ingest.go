package domain

import (
	"fmt"
	"strings"
)

// IngestRequest describes one source to ingest.
type IngestRequest struct {
	// SourceType selects the ingester variant.
	SourceType SourceType `json:"source_type"`

	// SourcePath is a file to read (file-like types).
	SourcePath string `json:"source_path,omitempty"`

	// Content is inline data (file-like types).
	Content string `json:"content,omitempty"`

	// DatabaseURL overrides the configured database (relational type).
	DatabaseURL string `json:"database_url,omitempty"`

	// TableName requests a full-table scan (relational type).
	TableName string `json:"table_name,omitempty"`

	// Query is an arbitrary SQL query (relational type).
	Query string `json:"query,omitempty"`

	// Metadata is merged into every produced Document.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Validate checks the request shape at the boundary.
// File-like types need exactly one of SourcePath or Content;
// the relational type needs TableName or Query.
func (r IngestRequest) Validate() error {
	if !r.SourceType.IsValid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidRequest, ErrUnsupportedSourceType, r.SourceType)
	}

	if r.SourceType == SourceTypeRelational {
		if strings.TrimSpace(r.TableName) == "" && strings.TrimSpace(r.Query) == "" {
			return fmt.Errorf("%w: %w", ErrInvalidRequest, ErrMissingQueryOrTable)
		}
		return nil
	}

	hasPath := r.SourcePath != ""
	hasContent := r.Content != ""
	switch {
	case !hasPath && !hasContent:
		return fmt.Errorf("%w: %w", ErrInvalidRequest, ErrMissingSource)
	case hasPath && hasContent:
		return fmt.Errorf("%w: only one of source path or content may be provided", ErrInvalidRequest)
	}
	return nil
}

// IngestResponse reports the outcome of an ingest call.
type IngestResponse struct {
	Success           bool   `json:"success"`
	DocumentsIngested int    `json:"documents_ingested"`
	Message           string `json:"message"`
}

// NewIngestResponse builds the success response for count stored chunks.
func NewIngestResponse(count int) IngestResponse {
	return IngestResponse{
		Success:           true,
		DocumentsIngested: count,
		Message:           fmt.Sprintf("Successfully ingested %d document chunks", count),
	}
}
