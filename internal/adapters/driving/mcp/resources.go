package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

const (
	// URIScheme is the custom URI scheme for sercha-rag resources.
	uriScheme = "sercha-rag://"
)

// sourceTypeInfo describes one ingestable source type.
type sourceTypeInfo struct {
	Name       string   `json:"name"`
	FileLike   bool     `json:"file_like"`
	Extensions []string `json:"extensions,omitempty"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "source-types",
		Name:        "source-types",
		Description: "Source types accepted by the ingest tool",
		MIMEType:    "application/json",
	}, s.handleSourceTypesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "source-types/{type}",
		Name:        "source-type",
		Description: "A single source type, resolved from its name or alias",
		MIMEType:    "application/json",
	}, s.handleSourceTypeResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "settings",
		Name:        "settings",
		Description: "Active providers, vector store and retrieval settings (secrets omitted)",
		MIMEType:    "application/json",
	}, s.handleSettingsResource)
}

// handleSourceTypesResource lists every supported source type.
func (s *Server) handleSourceTypesResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	types := domain.AllSourceTypes()
	infos := make([]sourceTypeInfo, len(types))
	for i, t := range types {
		infos[i] = describeSourceType(t)
	}
	return jsonResource(req.Params.URI, infos)
}

// handleSourceTypeResource returns one source type.
func (s *Server) handleSourceTypeResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	name := extractSourceType(req.Params.URI)
	if name == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	t, err := domain.ParseSourceType(name)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	return jsonResource(req.Params.URI, describeSourceType(t))
}

// handleSettingsResource returns the active settings without API keys.
func (s *Server) handleSettingsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Settings == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	settings, err := s.ports.Settings.Get()
	if err != nil {
		return nil, fmt.Errorf("getting settings: %w", err)
	}

	type summary struct {
		LLMProvider       string `json:"llm_provider"`
		LLMModel          string `json:"llm_model"`
		EmbeddingProvider string `json:"embedding_provider"`
		EmbeddingModel    string `json:"embedding_model,omitempty"`
		VectorBackend     string `json:"vector_backend"`
		Collection        string `json:"collection"`
		RetrievalTopK     int    `json:"retrieval_top_k"`
		ChunkSize         int    `json:"chunk_size"`
		ChunkOverlap      int    `json:"chunk_overlap"`
	}

	return jsonResource(req.Params.URI, summary{
		LLMProvider:       settings.LLM.Provider.String(),
		LLMModel:          settings.LLM.Model,
		EmbeddingProvider: settings.Embedding.Provider.String(),
		EmbeddingModel:    settings.Embedding.Model,
		VectorBackend:     settings.VectorStore.Backend.String(),
		Collection:        settings.VectorStore.Collection,
		RetrievalTopK:     settings.RetrievalTopK,
		ChunkSize:         settings.Chunking.Size,
		ChunkOverlap:      settings.Chunking.Overlap,
	})
}

func describeSourceType(t domain.SourceType) sourceTypeInfo {
	return sourceTypeInfo{
		Name:       t.String(),
		FileLike:   t.IsFileLike(),
		Extensions: t.Extensions(),
	}
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractSourceType extracts the type from a URI like sercha-rag://source-types/{type}.
func extractSourceType(uri string) string {
	const prefix = uriScheme + "source-types/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
