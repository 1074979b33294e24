package mcp

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	resp *domain.QueryResponse
	err  error
	last domain.QueryRequest
}

func (m *mockQueryService) Query(_ context.Context, req domain.QueryRequest) (*domain.QueryResponse, error) {
	m.last = req
	if m.err != nil {
		return nil, m.err
	}
	if m.resp == nil {
		return &domain.QueryResponse{Answer: domain.NoContextAnswer, Sources: []domain.SourceChunk{}, Query: req.Question}, nil
	}
	return m.resp, nil
}

// mockIngestionService is a mock implementation of driving.IngestionService.
type mockIngestionService struct {
	count  int
	err    error
	last   domain.IngestRequest
	called bool
}

func (m *mockIngestionService) Ingest(_ context.Context, req domain.IngestRequest) (int, error) {
	m.called = true
	m.last = req
	return m.count, m.err
}

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings *domain.Settings
	err      error
}

func (m *mockSettingsService) Get() (*domain.Settings, error) {
	return m.settings, m.err
}

func (m *mockSettingsService) Save(_ *domain.Settings) error {
	return m.err
}

func (m *mockSettingsService) SetLLMProvider(_ domain.AIProvider, _, _ string) error {
	return m.err
}

func (m *mockSettingsService) SetEmbeddingProvider(_ domain.AIProvider, _, _ string) error {
	return m.err
}

func (m *mockSettingsService) SetVectorBackend(_ domain.VectorBackend, _ string) error {
	return m.err
}

func (m *mockSettingsService) Validate() error {
	return m.err
}

func newPorts() *Ports {
	return &Ports{
		Query:     &mockQueryService{},
		Ingestion: &mockIngestionService{},
	}
}
