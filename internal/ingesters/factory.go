package ingesters

import (
	"fmt"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/ingesters/markup"
	"github.com/custodia-labs/sercha-rag/internal/ingesters/plaintext"
	"github.com/custodia-labs/sercha-rag/internal/ingesters/relational"
	"github.com/custodia-labs/sercha-rag/internal/ingesters/structured"
	"github.com/custodia-labs/sercha-rag/internal/ingesters/tabular"
)

// Ensure Factory implements the interface.
var _ driven.IngesterFactory = (*Factory)(nil)

// Factory maps source types to ingesters.
// File-like ingesters are stateless and shared; a relational ingester is
// built per request because its table, query and URL are fixed at construction.
type Factory struct {
	defaultDatabaseURL string
	fileLike           map[domain.SourceType]driven.Ingester
}

// NewFactory creates a factory. defaultDatabaseURL is used for relational
// requests that do not carry their own URL.
func NewFactory(defaultDatabaseURL string) *Factory {
	return &Factory{
		defaultDatabaseURL: defaultDatabaseURL,
		fileLike: map[domain.SourceType]driven.Ingester{
			domain.SourceTypeTabular:    tabular.New(),
			domain.SourceTypeStructured: structured.New(),
			domain.SourceTypeText:       plaintext.New(),
			domain.SourceTypeMarkup:     markup.New(),
		},
	}
}

// ForRequest returns the ingester for req.SourceType.
func (f *Factory) ForRequest(req domain.IngestRequest) (driven.Ingester, error) {
	if ing, ok := f.fileLike[req.SourceType]; ok {
		return ing, nil
	}

	if req.SourceType != domain.SourceTypeRelational {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedSourceType, req.SourceType)
	}

	url := req.DatabaseURL
	if url == "" {
		url = f.defaultDatabaseURL
	}
	ing, err := relational.New(relational.Config{
		DatabaseURL: url,
		TableName:   req.TableName,
		Query:       req.Query,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	return ing, nil
}
