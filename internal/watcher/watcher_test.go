package watcher_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/magicmove/internal/host"
	"github.com/zjrosen/magicmove/internal/source"
	"github.com/zjrosen/magicmove/internal/watcher"
)

func TestWatcher_DebounceMultipleWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main"), 0644))

	w, err := watcher.New(watcher.Config{
		Path:     path,
		Debounce: 50 * time.Millisecond,
	})
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	onChange, err := w.Start()
	require.NoError(t, err)

	// Rapid writes should coalesce into single notification
	for i := 0; i < 10; i++ {
		require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("package main // %d", i)), 0644))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-onChange:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected notification but got timeout")
	}

	select {
	case <-onChange:
		t.Fatal("unexpected second notification")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	otherPath := filepath.Join(dir, "other.go")
	require.NoError(t, os.WriteFile(path, []byte("package main"), 0644))
	require.NoError(t, os.WriteFile(otherPath, []byte("package main"), 0644))

	w, err := watcher.New(watcher.Config{
		Path:     path,
		Debounce: 50 * time.Millisecond,
	})
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	onChange, err := w.Start()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(otherPath, []byte("package other"), 0644))

	select {
	case <-onChange:
		t.Fatal("should not notify for other files")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_RenameOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main"), 0644))

	w, err := watcher.New(watcher.Config{
		Path:     path,
		Debounce: 50 * time.Millisecond,
	})
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	onChange, err := w.Start()
	require.NoError(t, err)

	tmp := filepath.Join(dir, ".main.go.swp")
	require.NoError(t, os.WriteFile(tmp, []byte("package main\n\nfunc main() {}\n"), 0644))
	require.NoError(t, os.Rename(tmp, path))

	select {
	case <-onChange:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected notification for rename over the watched file")
	}
}

func TestWatcher_Stop(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main"), 0644))

	w, err := watcher.New(watcher.Config{
		Path:     path,
		Debounce: 50 * time.Millisecond,
	})
	require.NoError(t, err)

	_, err = w.Start()
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		assert.NoError(t, w.Stop())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Stop() timed out - possible deadlock")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := watcher.DefaultConfig("main.go")

	assert.Equal(t, "main.go", cfg.Path)
	assert.Equal(t, 100*time.Millisecond, cfg.Debounce)
}

type recordingSink struct {
	mu        sync.Mutex
	updates   []host.Payload
	errs      []error
	updateErr error
}

func (s *recordingSink) Update(_ context.Context, p host.Payload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, p)
	return s.updateErr
}

func (s *recordingSink) ReportError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, err)
}

// follow runs Follow over one queued signal.
func follow(t *testing.T, fs afero.Fs, last string, sink watcher.Sink) {
	t.Helper()
	changes := make(chan struct{}, 1)
	changes <- struct{}{}
	close(changes)
	require.NoError(t, watcher.Follow(context.Background(), changes, source.NewLoader(fs), "main.go", last, sink))
}

func TestFollow(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "main.go", []byte("a := 1\n"), 0644))
	sink := &recordingSink{}

	// Unchanged content is skipped.
	follow(t, fs, "a := 1\n", sink)
	require.Empty(t, sink.updates)

	require.NoError(t, afero.WriteFile(fs, "main.go", []byte("a := 2\n"), 0644))
	follow(t, fs, "a := 1\n", sink)
	require.Len(t, sink.updates, 1)
	require.Equal(t, "main.go", sink.updates[0].Path)
	require.Equal(t, "a := 2\n", sink.updates[0].Source)
	require.Equal(t, "Go", sink.updates[0].Language)

	require.NoError(t, fs.Remove("main.go"))
	follow(t, fs, "a := 2\n", sink)
	require.Len(t, sink.updates, 1)
	require.Len(t, sink.errs, 1)
}

func TestFollow_StopsWhenDisposed(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "main.go", []byte("b\n"), 0644))
	sink := &recordingSink{updateErr: host.ErrDisposed}

	changes := make(chan struct{}, 1)
	changes <- struct{}{}

	err := watcher.Follow(context.Background(), changes, source.NewLoader(fs), "main.go", "a\n", sink)
	require.NoError(t, err)
	require.Len(t, sink.updates, 1)
}

func TestFollow_UpdateError(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "main.go", []byte("b\n"), 0644))
	boom := errors.New("boom")
	sink := &recordingSink{updateErr: boom}

	changes := make(chan struct{}, 1)
	changes <- struct{}{}

	err := watcher.Follow(context.Background(), changes, source.NewLoader(fs), "main.go", "a\n", sink)
	require.ErrorIs(t, err, boom)
}

func TestFollow_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := watcher.Follow(ctx, make(chan struct{}), source.NewLoader(afero.NewMemMapFs()), "main.go", "", &recordingSink{})
	require.NoError(t, err)
}
