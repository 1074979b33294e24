package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SourceType identifies the kind of raw source an ingester understands.
type SourceType string

// Available source types. Values are the wire names accepted by the API.
const (
	// SourceTypeTabular is CSV data with a header row.
	SourceTypeTabular SourceType = "csv"

	// SourceTypeStructured is a JSON document of nested maps and sequences.
	SourceTypeStructured SourceType = "json"

	// SourceTypeText is plain text.
	SourceTypeText SourceType = "text"

	// SourceTypeMarkup is an HTML page.
	SourceTypeMarkup SourceType = "html"

	// SourceTypeRelational is rows read from a SQL database.
	SourceTypeRelational SourceType = "database"
)

// sourceTypeAliases maps accepted spellings onto canonical source types.
var sourceTypeAliases = map[string]SourceType{
	"csv":        SourceTypeTabular,
	"tabular":    SourceTypeTabular,
	"json":       SourceTypeStructured,
	"structured": SourceTypeStructured,
	"text":       SourceTypeText,
	"txt":        SourceTypeText,
	"plaintext":  SourceTypeText,
	"html":       SourceTypeMarkup,
	"markup":     SourceTypeMarkup,
	"database":   SourceTypeRelational,
	"relational": SourceTypeRelational,
	"sql":        SourceTypeRelational,
}

// ParseSourceType resolves a name or alias to a SourceType.
func ParseSourceType(s string) (SourceType, error) {
	t, ok := sourceTypeAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedSourceType, s)
	}
	return t, nil
}

// IsValid returns true if the source type is recognised.
func (t SourceType) IsValid() bool {
	switch t {
	case SourceTypeTabular, SourceTypeStructured, SourceTypeText, SourceTypeMarkup, SourceTypeRelational:
		return true
	default:
		return false
	}
}

// IsFileLike returns true if the source is read from a path or inline content.
func (t SourceType) IsFileLike() bool {
	return t.IsValid() && t != SourceTypeRelational
}

// String returns the string representation.
func (t SourceType) String() string {
	return string(t)
}

// AllSourceTypes returns every supported source type.
func AllSourceTypes() []SourceType {
	return []SourceType{
		SourceTypeTabular,
		SourceTypeStructured,
		SourceTypeText,
		SourceTypeMarkup,
		SourceTypeRelational,
	}
}

// uploadExtensions maps file extensions accepted for upload to source types.
var uploadExtensions = map[string]SourceType{
	"txt":  SourceTypeText,
	"text": SourceTypeText,
	"csv":  SourceTypeTabular,
	"json": SourceTypeStructured,
	"html": SourceTypeMarkup,
	"htm":  SourceTypeMarkup,
}

// SupportedExtensions lists the file extensions SourceTypeFromFilename accepts.
func SupportedExtensions() []string {
	return []string{"txt", "text", "csv", "json", "html", "htm"}
}

// SourceTypeFromFilename infers the source type from a file extension.
func SourceTypeFromFilename(name string) (SourceType, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	t, ok := uploadExtensions[ext]
	if !ok {
		return "", fmt.Errorf("%w: .%s (supported: %s)",
			ErrUnsupportedSourceType, ext, strings.Join(SupportedExtensions(), ", "))
	}
	return t, nil
}

// Extensions returns the file extensions that map to t, in SupportedExtensions order.
func (t SourceType) Extensions() []string {
	var exts []string
	for _, ext := range SupportedExtensions() {
		if uploadExtensions[ext] == t {
			exts = append(exts, ext)
		}
	}
	return exts
}
