package markup

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

const page = `<!DOCTYPE html>
<html>
<head>
  <title>Release Notes</title>
  <style>body { color: red; }</style>
  <script>var tracking = "secret";</script>
</head>
<body>
  <!-- hidden comment -->
  <h1>Version 2.0</h1>

  <p>Faster   <b>ingest</b> pipeline.</p>


  <ul><li>Bug fixes</li><li>New API</li></ul>
  <script type="module">console.log("x")</script>
</body>
</html>`

func TestIngest_StripsScriptsAndStyles(t *testing.T) {
	docs, err := New().Ingest(context.Background(), driven.IngestInput{Content: page})

	require.NoError(t, err)
	require.Len(t, docs, 1)

	content := docs[0].Content
	assert.NotContains(t, content, "tracking")
	assert.NotContains(t, content, "color: red")
	assert.NotContains(t, content, "console.log")
	assert.NotContains(t, content, "hidden comment")
	assert.Equal(t, "Release Notes\nVersion 2.0\nFaster\ningest\npipeline.\nBug fixes\nNew API", content)
}

func TestIngest_NoBlankLines(t *testing.T) {
	docs, err := New().Ingest(context.Background(), driven.IngestInput{Content: page})

	require.NoError(t, err)
	assert.NotContains(t, docs[0].Content, "\n\n")
}

func TestIngest_MetadataAndSource(t *testing.T) {
	docs, err := New().Ingest(context.Background(), driven.IngestInput{
		Content:  "<p>hi</p>",
		Metadata: map[string]any{"site": "docs"},
	})

	require.NoError(t, err)
	assert.Equal(t, "direct_html_input", docs[0].Source)
	assert.Equal(t, "html", docs[0].Metadata[domain.MetaFileType])
	assert.Equal(t, "docs", docs[0].Metadata["site"])
}

func TestIngest_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.htm")
	require.NoError(t, os.WriteFile(path, []byte("<div>from disk</div>"), 0o600))

	docs, err := New().Ingest(context.Background(), driven.IngestInput{Path: path})

	require.NoError(t, err)
	assert.Equal(t, path, docs[0].Source)
	assert.Equal(t, "from disk", docs[0].Content)
}

func TestIngest_Errors(t *testing.T) {
	_, err := New().Ingest(context.Background(), driven.IngestInput{})
	assert.ErrorIs(t, err, domain.ErrMissingSource)

	_, err = New().Ingest(context.Background(), driven.IngestInput{Path: "/nope.html"})
	assert.ErrorIs(t, err, domain.ErrFileNotFound)
}
