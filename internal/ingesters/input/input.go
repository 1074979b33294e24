// Package input loads the raw text behind an ingest request and formats
// row-shaped records. It is shared by the file-like ingesters.
package input

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// utf8BOM is stripped from the start of loaded text.
const utf8BOM = "\ufeff"

// Load returns the text behind in and the origin used to build Document sources.
// The origin is the file path, or inlineOrigin when the content was supplied inline.
// Inline content wins when both are set; the path is then not read.
func Load(in driven.IngestInput, inlineOrigin string) (text, origin string, err error) {
	switch {
	case in.Content != "":
		text, origin = in.Content, inlineOrigin
	case in.Path != "":
		data, err := os.ReadFile(in.Path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", "", fmt.Errorf("%w: %s", domain.ErrFileNotFound, in.Path)
			}
			return "", "", fmt.Errorf("read %s: %w", in.Path, err)
		}
		text, origin = string(data), in.Path
	default:
		return "", "", domain.ErrMissingSource
	}

	if !utf8.ValidString(text) {
		return "", "", fmt.Errorf("%w: %s is not valid UTF-8", domain.ErrEncoding, origin)
	}
	return strings.TrimPrefix(text, utf8BOM), origin, nil
}

// FormatRow renders a record as newline-joined "column: value" lines.
func FormatRow(columns, values []string) string {
	var b strings.Builder
	for i, col := range columns {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(col)
		b.WriteString(": ")
		if i < len(values) {
			b.WriteString(values[i])
		}
	}
	return b.String()
}
