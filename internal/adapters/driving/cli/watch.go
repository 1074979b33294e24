package cli

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/connectors/filesystem"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

var (
	watchInitial  bool
	watchDebounce time.Duration
	watchMeta     []string
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Ingest files as they appear or change",
	Long: `Watch a directory tree and ingest every created or modified file with a
supported extension (.csv, .json, .txt, .text, .html, .htm).

Hidden files and directories are skipped. Deleting a file does not remove
chunks that were already stored.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchInitial, "initial", false, "ingest existing files before watching")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "wait for writes to settle")
	watchCmd.Flags().StringArrayVarP(&watchMeta, "meta", "m", nil, "metadata key=value added to every chunk (repeatable)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	meta, err := parseKeyValues(watchMeta)
	if err != nil {
		return fmt.Errorf("--meta: %w", err)
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	svc, err := loadServices(ctx)
	if err != nil {
		return err
	}

	w := filesystem.New(args[0])
	defer w.Close()

	ing := &fileIngester{svc: svc.Ingestion, meta: meta, out: cmd}

	if watchInitial {
		existing, err := w.Scan(ctx)
		if err != nil {
			return err
		}
		for _, c := range existing {
			ing.ingest(ctx, c)
		}
	}

	changes, err := w.Watch(ctx)
	if err != nil {
		return err
	}
	cmd.Printf("Watching %s (ctrl+c to stop)\n", w.Root())

	debounceChanges(ctx, changes, watchDebounce, func(c filesystem.Change) {
		ing.ingest(ctx, c)
	})
	return nil
}

// fileIngester ingests one changed file at a time.
type fileIngester struct {
	mu   sync.Mutex
	svc  driving.IngestionService
	meta map[string]any
	out  interface{ Printf(string, ...any) }
}

func (f *fileIngester) ingest(ctx context.Context, c filesystem.Change) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if c.Type == filesystem.ChangeDeleted {
		logger.Debug("%s deleted; stored chunks are kept", c.Path)
		return
	}

	req := domain.IngestRequest{
		SourceType: c.SourceType,
		SourcePath: c.Path,
		Metadata:   domain.MergeMetadata(f.meta, map[string]any{"filename": c.Path}),
	}
	count, err := f.svc.Ingest(ctx, req)
	if err != nil {
		logger.WithFields(logger.Fields{"path": c.Path, "type": c.SourceType}).Errorf("ingest failed: %v", err)
		f.out.Printf("%s: failed: %v\n", c.Path, err)
		return
	}
	f.out.Printf("%s: %d chunks\n", c.Path, count)
}

// debounceChanges calls fn once per path after it has been quiet for wait.
// It returns when changes is closed, after flushing pending paths.
func debounceChanges(ctx context.Context, changes <-chan filesystem.Change, wait time.Duration, fn func(filesystem.Change)) {
	var (
		mu      sync.Mutex
		pending = make(map[string]*time.Timer)
		wg      sync.WaitGroup
	)

	for c := range changes {
		mu.Lock()
		if t, ok := pending[c.Path]; ok && t.Stop() {
			wg.Done()
		}
		wg.Add(1)
		var t *time.Timer
		t = time.AfterFunc(wait, func() {
			defer wg.Done()
			mu.Lock()
			if pending[c.Path] == t {
				delete(pending, c.Path)
			}
			mu.Unlock()
			if ctx.Err() == nil {
				fn(c)
			}
		})
		pending[c.Path] = t
		mu.Unlock()
	}

	wg.Wait()
}
