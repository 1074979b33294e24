package domain

// Metadata keys written by ingesters and the chunk splitter.
const (
	MetaChunkIndex = "chunk_index"
	MetaChunkStart = "chunk_start"
	MetaChunkEnd   = "chunk_end"
	MetaRowIndex   = "row_index"
	MetaColumns    = "columns"
	MetaJSONPath   = "json_path"
	MetaFileType   = "file_type"
	MetaTableName  = "table_name"
	MetaQuery      = "query"
	MetaQueryIndex = "query_index"
)

// Payload keys reserved by the vector index.
// They are stripped from SourceChunk metadata on retrieval.
const (
	PayloadContent = "content"
	PayloadSource  = "source"
)

// UnknownSource is reported for indexed points without a source field.
const UnknownSource = "unknown"

// Document is a logical unit of text produced by an ingester.
// Documents are transient: they exist only within one ingest call.
type Document struct {
	// Content is the document text.
	Content string `json:"content"`

	// Metadata contains arbitrary key-value pairs.
	// Values are scalars, string slices, or nested maps.
	Metadata map[string]any `json:"metadata"`

	// Source identifies where the document came from (path, row, json path).
	Source string `json:"source"`
}

// Chunk is a bounded fragment of a Document.
// Split chunks carry chunk_index, chunk_start and chunk_end in Metadata;
// a document short enough to fit in one chunk is passed through unchanged.
type Chunk = Document

// CloneMetadata returns a shallow copy of m. A nil map yields an empty map.
func CloneMetadata(m map[string]any) map[string]any {
	dst := make(map[string]any, len(m)+3)
	for k, v := range m {
		dst[k] = v
	}
	return dst
}

// MergeMetadata returns base overlaid with extra.
// Keys in extra take precedence.
func MergeMetadata(base, extra map[string]any) map[string]any {
	dst := CloneMetadata(base)
	for k, v := range extra {
		dst[k] = v
	}
	return dst
}
