package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestServer_handleQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("returns answer and sources", func(t *testing.T) {
		mockQuery := &mockQueryService{
			resp: &domain.QueryResponse{
				Answer: "Ada is 36.",
				Sources: []domain.SourceChunk{
					{
						ID:       "p-1",
						Content:  "name: Ada\nage: 36",
						Score:    0.91,
						Source:   "people.csv",
						Metadata: map[string]any{"row_index": 0},
					},
				},
				Query: "How old is Ada?",
			},
		}

		server, err := NewServer(&Ports{Query: mockQuery, Ingestion: &mockIngestionService{}})
		require.NoError(t, err)

		input := QueryInput{Question: "How old is Ada?", TopK: 3, Filters: map[string]any{"team": "core"}}
		_, output, err := server.handleQuery(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, "Ada is 36.", output.Answer)
		assert.Equal(t, 1, output.Count)
		require.Len(t, output.Sources, 1)
		assert.Equal(t, "people.csv", output.Sources[0].Source)
		assert.Equal(t, 0.91, output.Sources[0].Score)

		assert.Equal(t, 3, mockQuery.last.TopK)
		assert.Equal(t, "core", mockQuery.last.Filters["team"])
	})

	t.Run("no context answer has empty sources", func(t *testing.T) {
		server, err := NewServer(newPorts())
		require.NoError(t, err)

		_, output, err := server.handleQuery(ctx, nil, QueryInput{Question: "anything?"})

		require.NoError(t, err)
		assert.Equal(t, domain.NoContextAnswer, output.Answer)
		assert.NotNil(t, output.Sources)
		assert.Empty(t, output.Sources)
	})

	t.Run("blank question is rejected before the service", func(t *testing.T) {
		mockQuery := &mockQueryService{}
		server, err := NewServer(&Ports{Query: mockQuery, Ingestion: &mockIngestionService{}})
		require.NoError(t, err)

		_, _, err = server.handleQuery(ctx, nil, QueryInput{Question: "  "})

		assert.ErrorIs(t, err, domain.ErrEmptyQuestion)
		assert.Empty(t, mockQuery.last.Question)
	})

	t.Run("returns error on query failure", func(t *testing.T) {
		mockQuery := &mockQueryService{err: errors.New("llm unavailable")}
		server, err := NewServer(&Ports{Query: mockQuery, Ingestion: &mockIngestionService{}})
		require.NoError(t, err)

		_, _, err = server.handleQuery(ctx, nil, QueryInput{Question: "q"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "llm unavailable")
	})
}

func TestServer_handleIngest(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		input      IngestInput
		serviceErr error
		count      int
		wantErr    error
		wantCalled bool
		wantType   domain.SourceType
	}{
		{
			name:       "inline text",
			input:      IngestInput{SourceType: "text", Content: "hello", Metadata: map[string]any{"k": "v"}},
			count:      1,
			wantCalled: true,
			wantType:   domain.SourceTypeText,
		},
		{
			name:       "alias resolves",
			input:      IngestInput{SourceType: "SQL", TableName: "users"},
			count:      4,
			wantCalled: true,
			wantType:   domain.SourceTypeRelational,
		},
		{
			name:    "unknown type",
			input:   IngestInput{SourceType: "pdf", Content: "x"},
			wantErr: domain.ErrUnsupportedSourceType,
		},
		{
			name:    "missing source",
			input:   IngestInput{SourceType: "csv"},
			wantErr: domain.ErrMissingSource,
		},
		{
			name:       "service failure is wrapped",
			input:      IngestInput{SourceType: "text", SourcePath: "/missing.txt"},
			serviceErr: domain.ErrFileNotFound,
			wantErr:    domain.ErrFileNotFound,
			wantCalled: true,
			wantType:   domain.SourceTypeText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockIngest := &mockIngestionService{count: tt.count, err: tt.serviceErr}
			server, err := NewServer(&Ports{Query: &mockQueryService{}, Ingestion: mockIngest})
			require.NoError(t, err)

			_, output, err := server.handleIngest(ctx, nil, tt.input)

			assert.Equal(t, tt.wantCalled, mockIngest.called)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, output.Success)
			assert.Equal(t, tt.count, output.DocumentsIngested)
			assert.Contains(t, output.Message, "Successfully ingested")
			assert.Equal(t, tt.wantType, mockIngest.last.SourceType)
		})
	}
}
