// Package markup ingests HTML pages as a single Document of visible text.
package markup

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/ingesters/input"
)

// Ensure Ingester implements the interface.
var _ driven.Ingester = (*Ingester)(nil)

// InlineOrigin is the source for HTML supplied as content.
const InlineOrigin = "direct_html_input"

// FileType is recorded in metadata under file_type.
const FileType = "html"

// strippedElements are removed with their contents before text extraction.
const strippedElements = "script, style"

// Ingester handles HTML documents.
type Ingester struct{}

// New creates a new HTML ingester.
func New() *Ingester {
	return &Ingester{}
}

// Ingest drops script and style elements, extracts the remaining text
// one node per line, and removes blank lines.
func (i *Ingester) Ingest(_ context.Context, in driven.IngestInput) ([]domain.Document, error) {
	raw, origin, err := input.Load(in, InlineOrigin)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: parse html: %w", domain.ErrEncoding, err)
	}
	doc.Find(strippedElements).Remove()

	meta := domain.CloneMetadata(in.Metadata)
	meta[domain.MetaFileType] = FileType

	return []domain.Document{{
		Content:  visibleText(doc.Selection),
		Metadata: meta,
		Source:   origin,
	}}, nil
}

// visibleText joins every text node under s with newlines, trimming each
// line and dropping empty ones.
func visibleText(s *goquery.Selection) string {
	var parts []string
	collectText(s, &parts)

	lines := make([]string, 0, len(parts))
	for _, part := range parts {
		for _, line := range strings.Split(part, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
	}
	return strings.Join(lines, "\n")
}

func collectText(s *goquery.Selection, out *[]string) {
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		switch goquery.NodeName(c) {
		case "#text":
			if t := strings.TrimSpace(c.Text()); t != "" {
				*out = append(*out, t)
			}
		case "#comment":
		default:
			collectText(c, out)
		}
	})
}
