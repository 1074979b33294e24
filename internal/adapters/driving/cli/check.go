package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// ErrChecksFailed is returned when at least one backend did not answer.
var ErrChecksFailed = errors.New("one or more services are unreachable")

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the configured backends are reachable",
	Long: `Ping the embedding backend, the LLM and, for server backends, the
vector store. Exits non-zero if any of them fails.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices(cmd.Context())
	if err != nil {
		return err
	}
	if svc.Checks == nil {
		cmd.Println("No checks available.")
		return nil
	}

	failed := 0
	for _, c := range svc.Checks(cmd.Context()) {
		if c.OK() {
			cmd.Printf("  %-13s %-30s OK\n", c.Name, c.Model)
			continue
		}
		failed++
		cmd.Printf("  %-13s %-30s FAILED: %v\n", c.Name, c.Model, c.Err)
	}

	if failed > 0 {
		return fmt.Errorf("%w (%d failed)", ErrChecksFailed, failed)
	}
	cmd.Println("All services reachable.")
	return nil
}
