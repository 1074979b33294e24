package input

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

func TestLoad_FromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("\ufeffhello"), 0o600))

	text, origin, err := Load(driven.IngestInput{Path: path}, "inline")

	require.NoError(t, err)
	assert.Equal(t, "hello", text)
	assert.Equal(t, path, origin)
}

func TestLoad_FromContent(t *testing.T) {
	text, origin, err := Load(driven.IngestInput{Content: "inline body"}, "direct_text_input")

	require.NoError(t, err)
	assert.Equal(t, "inline body", text)
	assert.Equal(t, "direct_text_input", origin)
}

func TestLoad_ContentTakesPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("from file"), 0o600))

	text, origin, err := Load(driven.IngestInput{Path: path, Content: "from content"}, "inline")

	require.NoError(t, err)
	assert.Equal(t, "from content", text)
	assert.Equal(t, "inline", origin)

	_, _, err = Load(driven.IngestInput{Path: "/does/not/exist.html", Content: "<p>x</p>"}, "inline")
	assert.NoError(t, err, "path is not read")
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		in      driven.IngestInput
		wantErr error
	}{
		{"missing source", driven.IngestInput{}, domain.ErrMissingSource},
		{"missing file", driven.IngestInput{Path: "/does/not/exist.csv"}, domain.ErrFileNotFound},
		{"invalid utf8", driven.IngestInput{Content: string([]byte{0xff, 0xfe, 0x00})}, domain.ErrEncoding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Load(tt.in, "inline")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFormatRow(t *testing.T) {
	assert.Equal(t, "name: Ada\nage: 36", FormatRow([]string{"name", "age"}, []string{"Ada", "36"}))
	assert.Equal(t, "a: 1\nb: ", FormatRow([]string{"a", "b"}, []string{"1"}))
	assert.Equal(t, "", FormatRow(nil, nil))
}
