package file

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore serves answer prompts from <dir>/<name>.txt so users can
// tune how answers are phrased without rebuilding.
//
// Missing files are seeded from the defaults on first Load. A file that
// is empty, unreadable, or whose %s placeholders differ in number from
// the default is ignored in favour of the default, since formatting it
// would misplace the context and question.
type PromptStore struct {
	promptDir string
	defaults  map[string]string

	mu    sync.RWMutex
	cache map[string]string

	initOnce sync.Once
	initErr  error
}

// NewPromptStore creates a store rooted at promptDir, or
// ~/.sercha-rag/prompts when empty. No I/O happens until the first Load.
func NewPromptStore(promptDir string, defaults map[string]string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(dir, "prompts")
	}

	d := maps.Clone(defaults)
	if d == nil {
		d = make(map[string]string)
	}
	return &PromptStore{
		promptDir: promptDir,
		defaults:  d,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the template for name.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.seed)

	s.mu.RLock()
	prompt, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return prompt, nil
	}

	prompt, err := s.resolve(name)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()
	return prompt, nil
}

// resolve picks the file content when usable and the default otherwise.
func (s *PromptStore) resolve(name string) (string, error) {
	def, hasDefault := s.defaults[name]

	if s.initErr != nil {
		if hasDefault {
			return def, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, s.initErr)
	}

	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if hasDefault {
			return def, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	prompt := strings.TrimSpace(string(data))
	if !hasDefault {
		return prompt, nil
	}
	switch {
	case prompt == "":
		logger.Warn("Prompt %s is empty; using the default", s.path(name))
		return def, nil
	case placeholders(prompt) != placeholders(def):
		logger.Warn("Prompt %s has %d %%s placeholders, want %d; using the default",
			s.path(name), placeholders(prompt), placeholders(def))
		return def, nil
	}
	return prompt, nil
}

// placeholders counts %s verbs, skipping escaped %%.
func placeholders(tmpl string) int {
	n := 0
	for i := 0; i < len(tmpl)-1; i++ {
		if tmpl[i] != '%' {
			continue
		}
		if tmpl[i+1] == 's' {
			n++
		}
		i++
	}
	return n
}

// Reload drops cached prompts so the next Load rereads the files.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// Names returns the prompts that have defaults, sorted.
func (s *PromptStore) Names() []string {
	return slices.Sorted(maps.Keys(s.defaults))
}

func (s *PromptStore) path(name string) string {
	return filepath.Join(s.promptDir, name+".txt")
}

// seed creates the directory, any missing default files and a README.
// Existing files are left untouched.
func (s *PromptStore) seed() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		logger.Warn("Prompts fall back to defaults: %v", s.initErr)
		return
	}

	for name, content := range s.defaults {
		if err := writeIfMissing(s.path(name), content+"\n"); err != nil {
			s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
			return
		}
	}

	if err := writeIfMissing(filepath.Join(s.promptDir, "README.md"), s.readme()); err != nil {
		logger.Debug("Skipping prompt README: %v", err)
	}
}

func writeIfMissing(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if os.IsExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (s *PromptStore) readme() string {
	var b strings.Builder
	b.WriteString("# Answer Prompts\n\n")
	b.WriteString("These files control how answers are synthesized from retrieved context.\n\n")
	for _, name := range s.Names() {
		fmt.Fprintf(&b, "- `%s.txt` (%d placeholders)\n", name, placeholders(s.defaults[name]))
	}
	b.WriteString("\nPlaceholders are `%s`: the rendered context first, then the question.\n")
	b.WriteString("A file with the wrong number of placeholders is ignored.\n")
	b.WriteString("Delete a file to restore its default on the next run.\n")
	return b.String()
}
