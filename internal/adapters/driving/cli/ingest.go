package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

var (
	ingestType        string
	ingestPath        string
	ingestContent     string
	ingestTable       string
	ingestQuery       string
	ingestDatabaseURL string
	ingestMeta        []string
	ingestJSON        bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest a source into the knowledge base",
	Long: `Parse a source into documents, split them into chunks, embed the chunks
and store them in the vector store.

Source types: csv, json, text, html, database.
File-like types take --path or --content. The database type takes --table
or --query and reads from --database-url or the configured database.

Examples:
  sercha-rag ingest --path data/people.csv
  sercha-rag ingest --type text --content "Paris is the capital of France."
  sercha-rag ingest --type database --table products --meta origin=shop`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	f := ingestCmd.Flags()
	f.StringVarP(&ingestType, "type", "t", "", "source type (inferred from --path when omitted)")
	f.StringVarP(&ingestPath, "path", "p", "", "file to ingest")
	f.StringVarP(&ingestContent, "content", "c", "", "inline content to ingest")
	f.StringVar(&ingestTable, "table", "", "table to read (database type)")
	f.StringVar(&ingestQuery, "query", "", "SQL query to read (database type, wins over --table)")
	f.StringVar(&ingestDatabaseURL, "database-url", "", "database connection URL (database type)")
	f.StringArrayVarP(&ingestMeta, "meta", "m", nil, "metadata key=value added to every chunk (repeatable)")
	f.BoolVar(&ingestJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(ingestCmd)
}

// buildIngestRequest turns the flags into a validated request.
func buildIngestRequest() (domain.IngestRequest, error) {
	var req domain.IngestRequest

	switch {
	case ingestType != "":
		t, err := domain.ParseSourceType(ingestType)
		if err != nil {
			return req, err
		}
		req.SourceType = t
	case ingestPath != "":
		t, err := domain.SourceTypeFromFilename(ingestPath)
		if err != nil {
			return req, fmt.Errorf("%w; pass --type", err)
		}
		req.SourceType = t
	default:
		return req, fmt.Errorf("%w: --type is required without --path", domain.ErrInvalidRequest)
	}

	meta, err := parseKeyValues(ingestMeta)
	if err != nil {
		return req, fmt.Errorf("--meta: %w", err)
	}

	req.SourcePath = ingestPath
	req.Content = ingestContent
	req.TableName = ingestTable
	req.Query = ingestQuery
	req.DatabaseURL = ingestDatabaseURL
	req.Metadata = meta

	if err := req.Validate(); err != nil {
		return req, err
	}
	return req, nil
}

func runIngest(cmd *cobra.Command, _ []string) error {
	req, err := buildIngestRequest()
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	svc, err := loadServices(ctx)
	if err != nil {
		return err
	}

	count, err := svc.Ingestion.Ingest(ctx, req)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	resp := domain.NewIngestResponse(count)
	if ingestJSON {
		data, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal response: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}
	cmd.Println(resp.Message)
	return nil
}
