package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// QueryInput is the input schema for the query tool.
type QueryInput struct {
	Question string         `json:"question" jsonschema:"the natural-language question to answer"`
	TopK     int            `json:"top_k,omitempty" jsonschema:"number of fragments to retrieve (default from configuration)"`
	Filters  map[string]any `json:"filters,omitempty" jsonschema:"exact-match metadata filters"`
}

// QueryOutput is the output schema for the query tool.
type QueryOutput struct {
	Answer  string         `json:"answer"`
	Sources []SourceOutput `json:"sources"`
	Count   int            `json:"count"`
}

// SourceOutput represents one retrieved fragment.
type SourceOutput struct {
	ID       string         `json:"id,omitempty"`
	Source   string         `json:"source"`
	Score    float64        `json:"score"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// IngestInput is the input schema for the ingest tool.
type IngestInput struct {
	SourceType  string         `json:"source_type" jsonschema:"one of csv, json, text, html, database"`
	SourcePath  string         `json:"source_path,omitempty" jsonschema:"path of a file to ingest"`
	Content     string         `json:"content,omitempty" jsonschema:"inline content to ingest instead of a file"`
	TableName   string         `json:"table_name,omitempty" jsonschema:"table to read for database sources"`
	Query       string         `json:"query,omitempty" jsonschema:"SQL query for database sources; wins over table_name"`
	DatabaseURL string         `json:"database_url,omitempty" jsonschema:"database URL overriding the configured one"`
	Metadata    map[string]any `json:"metadata,omitempty" jsonschema:"metadata attached to every stored fragment"`
}

// IngestOutput is the output schema for the ingest tool.
type IngestOutput struct {
	Success           bool   `json:"success"`
	DocumentsIngested int    `json:"documents_ingested"`
	Message           string `json:"message"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query",
		Description: "Answer a question from the ingested knowledge base, citing the retrieved fragments",
	}, s.handleQuery)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest",
		Description: "Ingest a CSV, JSON, text or HTML source, or rows from a SQL database, into the knowledge base",
	}, s.handleIngest)
}

// handleQuery handles the query tool invocation.
func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	req := domain.QueryRequest{
		Question: input.Question,
		TopK:     input.TopK,
		Filters:  domain.Filter(input.Filters),
	}
	if err := req.Validate(); err != nil {
		return nil, QueryOutput{}, err
	}

	resp, err := s.ports.Query.Query(ctx, req)
	if err != nil {
		return nil, QueryOutput{}, err
	}

	output := QueryOutput{
		Answer:  resp.Answer,
		Sources: make([]SourceOutput, len(resp.Sources)),
		Count:   len(resp.Sources),
	}
	for i := range resp.Sources {
		output.Sources[i] = SourceOutput{
			ID:       resp.Sources[i].ID,
			Source:   resp.Sources[i].Source,
			Score:    resp.Sources[i].Score,
			Content:  resp.Sources[i].Content,
			Metadata: resp.Sources[i].Metadata,
		}
	}

	return nil, output, nil
}

// handleIngest handles the ingest tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	sourceType, err := domain.ParseSourceType(input.SourceType)
	if err != nil {
		return nil, IngestOutput{}, err
	}

	req := domain.IngestRequest{
		SourceType:  sourceType,
		SourcePath:  input.SourcePath,
		Content:     input.Content,
		DatabaseURL: input.DatabaseURL,
		TableName:   input.TableName,
		Query:       input.Query,
		Metadata:    input.Metadata,
	}
	if err := req.Validate(); err != nil {
		return nil, IngestOutput{}, err
	}

	count, err := s.ports.Ingestion.Ingest(ctx, req)
	if err != nil {
		return nil, IngestOutput{}, fmt.Errorf("ingesting %s source: %w", sourceType, err)
	}

	resp := domain.NewIngestResponse(count)
	return nil, IngestOutput{
		Success:           resp.Success,
		DocumentsIngested: resp.DocumentsIngested,
		Message:           resp.Message,
	}, nil
}
