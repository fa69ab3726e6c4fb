package ruleset_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kestrelforge/revenant/internal/game/ruleset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReportsTuningFileWrites(t *testing.T) {
	dir := t.TempDir()
	w, err := ruleset.NewWatcher(dir)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	path := filepath.Join(dir, "override.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tuning: {}\n"), 0644))

	select {
	case got := <-w.Events:
		assert.Equal(t, path, got)
	case err := <-w.Errors:
		t.Fatalf("unexpected watcher error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for tuning file event")
	}
}

func TestWatcher_IgnoresNonTuningFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := ruleset.NewWatcher(dir)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("scratch"), 0644))

	select {
	case got := <-w.Events:
		t.Fatalf("unexpected event for non-tuning file: %s", got)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_CloseIsIdempotent(t *testing.T) {
	w, err := ruleset.NewWatcher(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, open := <-w.Events
	assert.False(t, open)
}

func TestNewWatcher_MissingDir(t *testing.T) {
	_, err := ruleset.NewWatcher(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}
