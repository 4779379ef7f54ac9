package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/hotswap/internal/adapters/fs"
	"go.trai.ch/hotswap/internal/adapters/watcher"
	"go.trai.ch/hotswap/internal/core/ports"
	"go.trai.ch/hotswap/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func startWatcher(t *testing.T, roots ...string) <-chan ports.WatchEvent {
	t.Helper()
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Debug(gomock.Any()).AnyTimes()
	logger.EXPECT().Error(gomock.Any()).AnyTimes()

	w, err := watcher.NewWatcher(fs.NewWalker(), logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx, roots...))
	t.Cleanup(func() {
		cancel()
		_ = w.Stop()
	})

	out := make(chan ports.WatchEvent, 100)
	go func() {
		defer close(out)
		for ev := range w.Events() {
			out <- ev
		}
	}()
	return out
}

func waitFor(t *testing.T, events <-chan ports.WatchEvent, path string) ports.WatchEvent {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			require.True(t, ok, "watcher stopped")
			if ev.Path == path {
				return ev
			}
		case <-timeout:
			require.FailNow(t, "no event for "+path)
			return ports.WatchEvent{}
		}
	}
}

func TestWatcher_ReportsChangesAcrossRoots(t *testing.T) {
	src := t.TempDir()
	assets := t.TempDir()
	events := startWatcher(t, src, assets, filepath.Join(src, "missing"))

	code := filepath.Join(src, "lib.rs")
	require.NoError(t, os.WriteFile(code, []byte("fn main() {}"), 0o600))
	waitFor(t, events, code)

	sprite := filepath.Join(assets, "sprite.png")
	require.NoError(t, os.WriteFile(sprite, []byte{1, 2, 3}, 0o600))
	waitFor(t, events, sprite)
}

func TestWatcher_WatchesNewDirectories(t *testing.T) {
	root := t.TempDir()
	events := startWatcher(t, root)

	dir := filepath.Join(root, "systems")
	require.NoError(t, os.Mkdir(dir, 0o750))
	ev := waitFor(t, events, dir)
	assert.Equal(t, ports.OpCreate, ev.Operation)

	// Give the watcher a moment to register the new directory.
	time.Sleep(100 * time.Millisecond)

	file := filepath.Join(dir, "physics.rs")
	require.NoError(t, os.WriteFile(file, []byte("mod physics;"), 0o600))
	waitFor(t, events, file)
}

func TestWatcher_SkipsTargetDirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "target", "debug"), 0o750))
	events := startWatcher(t, root)

	require.NoError(t, os.WriteFile(filepath.Join(root, "target", "debug", "libgame.so"), []byte("x"), 0o600))
	marker := filepath.Join(root, "marker")
	require.NoError(t, os.WriteFile(marker, []byte("x"), 0o600))

	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev := <-events:
			require.NotContains(t, ev.Path, filepath.Join("target", "debug"))
			if ev.Path == marker {
				return
			}
		case <-timeout:
			require.FailNow(t, "no event for marker")
		}
	}
}

func TestFingerprints_Changed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "level.ron")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o600))

	f := watcher.NewFingerprints()
	assert.True(t, f.Changed(path), "first sighting")
	assert.False(t, f.Changed(path), "same content")

	require.NoError(t, os.WriteFile(path, []byte("b"), 0o600))
	assert.True(t, f.Changed(path), "new content")

	require.NoError(t, os.Remove(path))
	assert.True(t, f.Changed(path), "removed")
}
