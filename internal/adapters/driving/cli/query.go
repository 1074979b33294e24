package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

var (
	queryTopK    int
	queryFilters []string
	queryJSON    bool
)

// previewLen bounds the source excerpt printed under each citation.
const previewLen = 160

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask a question of the knowledge base",
	Long: `Embed the question, retrieve the most similar fragments and synthesize
an answer from them. Without matching fragments the answer says so.

Examples:
  sercha-rag query "What is the capital of France?"
  sercha-rag query --top-k 3 --filter origin=shop "Which products are on sale?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of fragments to retrieve (default from config)")
	queryCmd.Flags().StringArrayVarP(&queryFilters, "filter", "f", nil, "metadata key=value the fragments must match (repeatable)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	filters, err := parseKeyValues(queryFilters)
	if err != nil {
		return fmt.Errorf("--filter: %w", err)
	}

	req := domain.QueryRequest{
		Question: strings.Join(args, " "),
		TopK:     queryTopK,
		Filters:  filters,
	}
	if err := req.Validate(); err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	svc, err := loadServices(ctx)
	if err != nil {
		return err
	}

	resp, err := svc.Query.Query(ctx, req)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		return outputQueryJSON(cmd, resp)
	}
	outputQueryText(cmd, resp)
	return nil
}

func outputQueryJSON(cmd *cobra.Command, resp *domain.QueryResponse) error {
	if resp.Sources == nil {
		resp.Sources = []domain.SourceChunk{}
	}
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputQueryText(cmd *cobra.Command, resp *domain.QueryResponse) {
	cmd.Println(resp.Answer)
	if len(resp.Sources) == 0 {
		return
	}

	cmd.Println()
	cmd.Println("Sources:")
	for i, s := range resp.Sources {
		cmd.Printf("  [%d] %s (%.3f)\n", i+1, s.Source, s.Score)
		if preview := preview(s.Content, previewLen); preview != "" {
			cmd.Printf("      %s\n", preview)
		}
	}
}

// preview collapses whitespace and cuts s to at most n runes.
func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
