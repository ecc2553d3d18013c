package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iceblockp/mobile-pos-sub001/internal/logger"
	"github.com/Iceblockp/mobile-pos-sub001/internal/snapshot"
)

func newTestWatcher(t *testing.T) (*Watcher, string) {
	t.Helper()
	dir := t.TempDir()
	log := logger.New(logger.Config{Environment: "development", Level: logger.ParseLevel("error")})

	w, err := New(dir, log, Options{SettleDelay: 50 * time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = w.Start(ctx) }()
	t.Cleanup(func() {
		cancel()
		_ = w.Stop()
	})
	return w, dir
}

func waitForEvent(t *testing.T, w *Watcher) Event {
	t.Helper()
	select {
	case ev := <-w.Events():
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watcher event")
		return Event{}
	}
}

func TestWatcher_ReportsSettledArtifact(t *testing.T) {
	w, dir := newTestWatcher(t)

	path := filepath.Join(dir, "pos-products"+snapshot.ArtifactSuffix)
	require.NoError(t, os.WriteFile(path, []byte(`{"metadata":{}}`), 0o644))

	ev := waitForEvent(t, w)
	assert.Equal(t, EventAdded, ev.Type)
	assert.Equal(t, path, ev.Path)
	assert.Positive(t, ev.Size)
}

func TestWatcher_IgnoresOtherSuffixes(t *testing.T) {
	w, dir := newTestWatcher(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "partial"+snapshot.ArtifactSuffix+".tmp"), []byte("x"), 0o644))

	select {
	case ev := <-w.Events():
		t.Fatalf("unexpected event for %s", ev.Path)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_ReportsRemoval(t *testing.T) {
	w, dir := newTestWatcher(t)

	path := filepath.Join(dir, "pos-all"+snapshot.ArtifactSuffix)
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))
	ev := waitForEvent(t, w)
	require.Equal(t, EventAdded, ev.Type)

	require.NoError(t, os.Remove(path))
	ev = waitForEvent(t, w)
	assert.Equal(t, EventRemoved, ev.Type)
	assert.Equal(t, path, ev.Path)
}

func TestEventType_String(t *testing.T) {
	assert.Equal(t, "added", EventAdded.String())
	assert.Equal(t, "removed", EventRemoved.String())
	assert.Equal(t, "unknown", EventType(9).String())
}
