// Package structured ingests JSON documents, one Document per scalar leaf.
package structured

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/ingesters/input"
)

// Ensure Ingester implements the interface.
var _ driven.Ingester = (*Ingester)(nil)

// InlineOrigin is the source prefix for JSON supplied as content.
const InlineOrigin = "direct_json_input"

// Ingester walks nested maps and sequences in document order.
type Ingester struct{}

// New creates a new structured-document ingester.
func New() *Ingester {
	return &Ingester{}
}

// Ingest emits a Document for every scalar leaf. Map keys extend the path
// with ".key" and sequence items with "[index]". Content is "<key>: <value>"
// under a map and "<path>: <value>" inside a sequence.
func (i *Ingester) Ingest(_ context.Context, in driven.IngestInput) ([]domain.Document, error) {
	text, origin, err := input.Load(in, InlineOrigin)
	if err != nil {
		return nil, err
	}
	if !gjson.Valid(text) {
		return nil, fmt.Errorf("%w: %s is not valid JSON", domain.ErrEncoding, origin)
	}

	w := &walker{origin: origin, base: in.Metadata}
	w.walk(gjson.Parse(text), "")
	return w.docs, nil
}

type walker struct {
	origin string
	base   map[string]any
	docs   []domain.Document
}

func (w *walker) walk(v gjson.Result, prefix string) {
	switch {
	case v.IsObject():
		v.ForEach(func(key, val gjson.Result) bool {
			path := key.String()
			if prefix != "" {
				path = prefix + "." + path
			}
			if isContainer(val) {
				w.walk(val, path)
			} else {
				w.emit(key.String()+": "+scalar(val), path)
			}
			return true
		})
	case v.IsArray():
		idx := 0
		v.ForEach(func(_, item gjson.Result) bool {
			path := fmt.Sprintf("%s[%d]", prefix, idx)
			idx++
			if isContainer(item) {
				w.walk(item, path)
			} else {
				w.emit(path+": "+scalar(item), path)
			}
			return true
		})
	}
	// A scalar at the root has no path and yields nothing.
}

func (w *walker) emit(content, path string) {
	meta := domain.CloneMetadata(w.base)
	meta[domain.MetaJSONPath] = path
	w.docs = append(w.docs, domain.Document{
		Content:  content,
		Metadata: meta,
		Source:   w.origin + ":" + path,
	})
}

func isContainer(v gjson.Result) bool {
	return v.IsObject() || v.IsArray()
}

// scalar renders a leaf: strings unquoted, everything else as written.
func scalar(v gjson.Result) string {
	if v.Type == gjson.String {
		return v.Str
	}
	return v.Raw
}
