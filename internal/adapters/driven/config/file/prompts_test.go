package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

func testDefaults() map[string]string {
	return map[string]string{
		driven.PromptAnswerSystem: "Answer only from context.",
		driven.PromptAnswerUser:   "Context:\n%s\n\nQuestion: %s",
	}
}

func TestNewPromptStore_WithCustomDir(t *testing.T) {
	dir := t.TempDir()

	store, err := NewPromptStore(dir, testDefaults())

	require.NoError(t, err)
	assert.Equal(t, dir, store.Dir())
}

func TestNewPromptStore_DefaultDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}

	store, err := NewPromptStore("", nil)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, DefaultDirName, "prompts"), store.Dir())
}

func TestNewPromptStore_CopiesDefaults(t *testing.T) {
	defaults := testDefaults()
	store, err := NewPromptStore(t.TempDir(), defaults)
	require.NoError(t, err)

	defaults[driven.PromptAnswerSystem] = "mutated"

	prompt, err := store.Load(driven.PromptAnswerSystem)
	require.NoError(t, err)
	assert.Equal(t, "Answer only from context.", prompt)
}

func TestPromptStore_Load_CreatesDefaultFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir, testDefaults())
	require.NoError(t, err)

	_, err = store.Load(driven.PromptAnswerSystem)
	require.NoError(t, err)

	for _, f := range []string{"answer_system.txt", "answer_user.txt", "README.md"} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, "expected file %s to exist", f)
	}

	readme, err := os.ReadFile(filepath.Join(dir, "README.md"))
	require.NoError(t, err)
	assert.Contains(t, string(readme), "`answer_user.txt`")
}

func TestPromptStore_Load(t *testing.T) {
	tests := []struct {
		name    string
		onDisk  string
		prompt  string
		want    string
		wantErr bool
	}{
		{name: "default content", prompt: driven.PromptAnswerUser, want: "Context:\n%s\n\nQuestion: %s"},
		{name: "custom content", onDisk: "Ctx %s Q %s", prompt: driven.PromptAnswerUser, want: "Ctx %s Q %s"},
		{name: "trims whitespace", onDisk: "\n\n  %s be brief %s  \n\n", prompt: driven.PromptAnswerUser, want: "%s be brief %s"},
		{name: "escaped percent is not a placeholder", onDisk: "100%% of %s for %s", prompt: driven.PromptAnswerUser, want: "100%% of %s for %s"},
		{name: "missing placeholder", onDisk: "Context: %s", prompt: driven.PromptAnswerUser, want: "Context:\n%s\n\nQuestion: %s"},
		{name: "extra placeholder in system", onDisk: "Be %s", prompt: driven.PromptAnswerSystem, want: "Answer only from context."},
		{name: "blank file", onDisk: "  \n", prompt: driven.PromptAnswerSystem, want: "Answer only from context."},
		{name: "unknown prompt", prompt: "nonexistent_prompt", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.onDisk != "" {
				require.NoError(t, os.WriteFile(filepath.Join(dir, tt.prompt+".txt"), []byte(tt.onDisk), 0600))
			}
			store, err := NewPromptStore(dir, testDefaults())
			require.NoError(t, err)

			got, err := store.Load(tt.prompt)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.prompt)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPromptStore_Load_FallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir, testDefaults())
	require.NoError(t, err)

	_, _ = store.Load(driven.PromptAnswerSystem)
	require.NoError(t, os.Remove(filepath.Join(dir, "answer_system.txt")))
	store.Reload()

	prompt, err := store.Load(driven.PromptAnswerSystem)

	require.NoError(t, err)
	assert.Equal(t, "Answer only from context.", prompt)
}

func TestPromptStore_CacheAndReload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir, testDefaults())
	require.NoError(t, err)

	first, err := store.Load(driven.PromptAnswerSystem)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "answer_system.txt"), []byte("edited"), 0600))

	cached, err := store.Load(driven.PromptAnswerSystem)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	store.Reload()
	fresh, err := store.Load(driven.PromptAnswerSystem)
	require.NoError(t, err)
	assert.Equal(t, "edited", fresh)
}

func TestPromptStore_DoesNotOverwriteExistingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "answer_system.txt")
	require.NoError(t, os.WriteFile(path, []byte("pre-existing"), 0600))

	store, err := NewPromptStore(dir, testDefaults())
	require.NoError(t, err)
	_, _ = store.Load(driven.PromptAnswerUser)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "pre-existing", string(data))
}

func TestPromptStore_Load_ConcurrentAccess(t *testing.T) {
	store, err := NewPromptStore(t.TempDir(), testDefaults())
	require.NoError(t, err)

	const goroutines = 50
	var wg sync.WaitGroup
	results := make(chan string, goroutines)

	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			prompt, err := store.Load(driven.PromptAnswerSystem)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			results <- prompt
		}()
	}
	wg.Wait()
	close(results)

	for prompt := range results {
		assert.Equal(t, "Answer only from context.", prompt)
	}
}

func TestPromptStore_Names(t *testing.T) {
	store, err := NewPromptStore(t.TempDir(), testDefaults())
	require.NoError(t, err)

	assert.Equal(t, []string{driven.PromptAnswerSystem, driven.PromptAnswerUser}, store.Names())
}

func TestPromptStore_UnwritableDirUsesDefaults(t *testing.T) {
	store, err := NewPromptStore("/dev/null/prompts", testDefaults())
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptAnswerUser)
	require.NoError(t, err)
	assert.Equal(t, "Context:\n%s\n\nQuestion: %s", prompt)

	_, err = store.Load("unknown")
	assert.ErrorContains(t, err, "create prompt directory")
}

func TestPlaceholders(t *testing.T) {
	tests := map[string]int{
		"":                  0,
		"%s":                1,
		"%s and %s":         2,
		"100%% sure %s":     1,
		"%%s is literal":    0,
		"trailing %":        0,
		"%d is not counted": 0,
	}
	for tmpl, want := range tests {
		assert.Equal(t, want, placeholders(tmpl), tmpl)
	}
}
