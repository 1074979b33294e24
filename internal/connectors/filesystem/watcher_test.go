package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestChangeType_String(t *testing.T) {
	assert.Equal(t, "created", ChangeCreated.String())
	assert.Equal(t, "updated", ChangeUpdated.String())
	assert.Equal(t, "deleted", ChangeDeleted.String())
	assert.Equal(t, "unknown", ChangeType(42).String())
}

func TestWatcher_Scan(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.csv"), "a,b\n1,2\n")
	writeFile(t, filepath.Join(dir, "a.txt"), "hello")
	writeFile(t, filepath.Join(dir, "sub", "c.json"), "{}")
	writeFile(t, filepath.Join(dir, "skip.pdf"), "%PDF")
	writeFile(t, filepath.Join(dir, ".hidden.txt"), "secret")
	writeFile(t, filepath.Join(dir, ".git", "d.txt"), "ignored")

	changes, err := New(dir).Scan(context.Background())
	require.NoError(t, err)

	require.Len(t, changes, 3)
	assert.Equal(t, filepath.Join(dir, "a.txt"), changes[0].Path)
	assert.Equal(t, domain.SourceTypeText, changes[0].SourceType)
	assert.Equal(t, filepath.Join(dir, "b.csv"), changes[1].Path)
	assert.Equal(t, domain.SourceTypeTabular, changes[1].SourceType)
	assert.Equal(t, filepath.Join(dir, "sub", "c.json"), changes[2].Path)
	for _, c := range changes {
		assert.Equal(t, ChangeCreated, c.Type)
	}
}

func TestWatcher_Scan_MissingRoot(t *testing.T) {
	_, err := New("/non/existent/path").Scan(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "root path error")
}

func TestWatcher_HandleFsEvent(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "notes.txt")
	writeFile(t, file, "content")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "folder.txt"), 0o755))
	writeFile(t, filepath.Join(dir, "image.png"), "png")
	writeFile(t, filepath.Join(dir, ".hidden.txt"), "x")

	tests := []struct {
		name     string
		path     string
		op       fsnotify.Op
		wantType ChangeType
		want     bool
	}{
		{"create", file, fsnotify.Create, ChangeCreated, true},
		{"write", file, fsnotify.Write, ChangeUpdated, true},
		{"write and chmod", file, fsnotify.Write | fsnotify.Chmod, ChangeUpdated, true},
		{"remove", filepath.Join(dir, "gone.txt"), fsnotify.Remove, ChangeDeleted, true},
		{"rename", filepath.Join(dir, "moved.csv"), fsnotify.Rename, ChangeDeleted, true},
		{"chmod only", file, fsnotify.Chmod, 0, false},
		{"directory", filepath.Join(dir, "folder.txt"), fsnotify.Create, 0, false},
		{"unsupported extension", filepath.Join(dir, "image.png"), fsnotify.Create, 0, false},
		{"hidden", filepath.Join(dir, ".hidden.txt"), fsnotify.Write, 0, false},
		{"created then vanished", filepath.Join(dir, "tmp.txt"), fsnotify.Create, 0, false},
	}

	w := New(dir)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			change := w.handleFsEvent(fsnotify.Event{Name: tt.path, Op: tt.op})
			if !tt.want {
				assert.Nil(t, change)
				return
			}
			require.NotNil(t, change)
			assert.Equal(t, tt.wantType, change.Type)
			assert.Equal(t, tt.path, change.Path)
		})
	}
}

func TestWatcher_Watch(t *testing.T) {
	dir := t.TempDir()
	w := New(dir)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := w.Watch(ctx)
	require.NoError(t, err)

	target := filepath.Join(dir, "new-file.txt")
	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = os.WriteFile(target, []byte("content"), 0o644)
	}()

	select {
	case change := <-changes:
		assert.Equal(t, target, change.Path)
		assert.Equal(t, domain.SourceTypeText, change.SourceType)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for file change event")
	}
}

func TestWatcher_Watch_ClosesOnCancel(t *testing.T) {
	w := New(t.TempDir())
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	changes, err := w.Watch(ctx)
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-changes:
		if ok {
			for range changes {
			}
		}
	case <-time.After(time.Second):
		t.Fatal("channel did not close after context cancellation")
	}
}

func TestWatcher_Watch_Errors(t *testing.T) {
	_, err := New("/non/existent/path").Watch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "root path error")

	w := New(t.TempDir())
	require.NoError(t, w.Close())
	_, err = w.Watch(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestWatcher_Close_Idempotent(t *testing.T) {
	w := New(t.TempDir())
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
