package tui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// MockQueryService implements driving.QueryService for testing.
type MockQueryService struct {
	QueryFunc func(ctx context.Context, req domain.QueryRequest) (*domain.QueryResponse, error)
}

func (m *MockQueryService) Query(ctx context.Context, req domain.QueryRequest) (*domain.QueryResponse, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, req)
	}
	return &domain.QueryResponse{Answer: domain.NoContextAnswer, Query: req.Question}, nil
}

// MockIngestionService implements driving.IngestionService for testing.
type MockIngestionService struct {
	IngestFunc func(ctx context.Context, req domain.IngestRequest) (int, error)
}

func (m *MockIngestionService) Ingest(ctx context.Context, req domain.IngestRequest) (int, error) {
	if m.IngestFunc != nil {
		return m.IngestFunc(ctx, req)
	}
	return 1, nil
}

// MockSettingsService implements driving.SettingsService for testing.
type MockSettingsService struct {
	settings *domain.Settings
}

func (m *MockSettingsService) Get() (*domain.Settings, error) {
	if m.settings == nil {
		s := domain.DefaultSettings()
		m.settings = &s
	}
	return m.settings, nil
}

func (m *MockSettingsService) Save(settings *domain.Settings) error {
	m.settings = settings
	return nil
}

func (m *MockSettingsService) SetLLMProvider(domain.AIProvider, string, string) error {
	return nil
}

func (m *MockSettingsService) SetEmbeddingProvider(domain.AIProvider, string, string) error {
	return nil
}

func (m *MockSettingsService) SetVectorBackend(domain.VectorBackend, string) error {
	return nil
}

func (m *MockSettingsService) Validate() error {
	return nil
}

func TestNewPorts(t *testing.T) {
	query := &MockQueryService{}
	ingestion := &MockIngestionService{}
	settings := &MockSettingsService{}

	ports := NewPorts(query, ingestion, settings)

	assert.Equal(t, query, ports.Query)
	assert.Equal(t, ingestion, ports.Ingestion)
	assert.Equal(t, settings, ports.Settings)
}

func TestPorts_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ports   *Ports
		wantErr error
	}{
		{
			name:  "all set",
			ports: NewPorts(&MockQueryService{}, &MockIngestionService{}, &MockSettingsService{}),
		},
		{
			name:  "settings optional",
			ports: NewPorts(&MockQueryService{}, &MockIngestionService{}, nil),
		},
		{
			name:    "missing query",
			ports:   NewPorts(nil, &MockIngestionService{}, nil),
			wantErr: ErrMissingQueryService,
		},
		{
			name:    "missing ingestion",
			ports:   NewPorts(&MockQueryService{}, nil, nil),
			wantErr: ErrMissingIngestionService,
		},
		{
			name:    "nil ports",
			ports:   nil,
			wantErr: ErrInvalidPorts,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ports.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
