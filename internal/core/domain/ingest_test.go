package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIngestRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     IngestRequest
		wantErr error
	}{
		{
			name: "path only",
			req:  IngestRequest{SourceType: SourceTypeTabular, SourcePath: "data.csv"},
		},
		{
			name: "content only",
			req:  IngestRequest{SourceType: SourceTypeText, Content: "hello"},
		},
		{
			name:    "neither path nor content",
			req:     IngestRequest{SourceType: SourceTypeStructured},
			wantErr: ErrMissingSource,
		},
		{
			name:    "both path and content",
			req:     IngestRequest{SourceType: SourceTypeMarkup, SourcePath: "a.html", Content: "<p>x</p>"},
			wantErr: ErrInvalidRequest,
		},
		{
			name: "relational with table",
			req:  IngestRequest{SourceType: SourceTypeRelational, TableName: "users"},
		},
		{
			name: "relational with query",
			req:  IngestRequest{SourceType: SourceTypeRelational, Query: "SELECT 1"},
		},
		{
			name:    "relational without table or query",
			req:     IngestRequest{SourceType: SourceTypeRelational, SourcePath: "ignored"},
			wantErr: ErrMissingQueryOrTable,
		},
		{
			name:    "unknown type",
			req:     IngestRequest{SourceType: "xml", Content: "<a/>"},
			wantErr: ErrUnsupportedSourceType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}

func TestNewIngestResponse(t *testing.T) {
	resp := NewIngestResponse(7)
	assert.True(t, resp.Success)
	assert.Equal(t, 7, resp.DocumentsIngested)
	assert.Equal(t, "Successfully ingested 7 document chunks", resp.Message)
}

func TestMergeMetadata(t *testing.T) {
	base := map[string]any{"team": "core", "row_index": "stale"}
	merged := MergeMetadata(base, map[string]any{"row_index": 3})

	assert.Equal(t, "core", merged["team"])
	assert.Equal(t, 3, merged["row_index"])
	assert.Equal(t, "stale", base["row_index"], "base must not be mutated")
}

func TestCloneMetadata_Nil(t *testing.T) {
	cloned := CloneMetadata(nil)
	assert.NotNil(t, cloned)
	assert.Empty(t, cloned)
}
