package remote_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/hotswap/internal/adapters/bus"
	"go.trai.ch/hotswap/internal/adapters/fs"
	"go.trai.ch/hotswap/internal/adapters/remote"
	"go.trai.ch/hotswap/internal/core/domain"
	"go.trai.ch/hotswap/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

const target domain.Target = "x86_64-unknown-linux-gnu"

func TestURLForTarget(t *testing.T) {
	tests := []struct {
		server string
		want   string
	}{
		{"http://127.0.0.1:4321", "ws://127.0.0.1:4321/target/x86_64-unknown-linux-gnu"},
		{"https://build.example.com/", "wss://build.example.com/target/x86_64-unknown-linux-gnu"},
		{"ws://host:1", "ws://host:1/target/x86_64-unknown-linux-gnu"},
		{"wss://host/base", "wss://host/base/target/x86_64-unknown-linux-gnu"},
	}
	for _, tt := range tests {
		t.Run(tt.server, func(t *testing.T) {
			got, err := remote.URLForTarget(tt.server, target)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestURLForTarget_InvalidScheme(t *testing.T) {
	_, err := remote.URLForTarget("ftp://host", target)
	require.ErrorIs(t, err, domain.ErrInvalidScheme)
}

type fixture struct {
	bus    *bus.Bus
	hasher *fs.Hasher
	src    string
	http   *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Debug(gomock.Any()).AnyTimes()
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	logger.EXPECT().Error(gomock.Any()).AnyTimes()

	b := bus.New(8)
	srv := remote.NewServer(target, b, b, logger, time.Hour)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	t.Cleanup(b.Close)

	return &fixture{bus: b, hasher: fs.NewHasher(), src: t.TempDir(), http: ts}
}

func (f *fixture) library(t *testing.T, name, content string) domain.HashedFileRecord {
	t.Helper()
	path := filepath.Join(f.src, name)
	require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
	return domain.HashedFileRecord{
		Name:         name,
		LocalPath:    path,
		RelativePath: domain.RelativePathFor(name),
		Hash:         f.hasher.HashBytes([]byte(content)),
	}
}

func (f *fixture) client(t *testing.T, dir string) *remote.Client {
	t.Helper()
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Debug(gomock.Any()).AnyTimes()
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	logger.EXPECT().Error(gomock.Any()).AnyTimes()
	return remote.NewClient(f.http.URL, target, dir, f.hasher, logger, time.Hour)
}

func next(t *testing.T, ch <-chan domain.RunnerMessage) domain.RunnerMessage {
	t.Helper()
	select {
	case msg, ok := <-ch:
		require.True(t, ok, "update stream closed")
		return msg
	case <-time.After(5 * time.Second):
		require.FailNow(t, "timed out waiting for runner message")
		return domain.RunnerMessage{}
	}
}

func TestClient_DownloadsLatestBuild(t *testing.T) {
	f := newFixture(t)
	game := f.library(t, "libgame.1.so", "game v1")
	std := f.library(t, "libstd.so", "std")
	f.bus.Publish(domain.BuildEnded(1, game.Name, []domain.HashedFileRecord{game, std}))

	dir := t.TempDir()
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	updates, err := f.client(t, dir).Updates(ctx)
	require.NoError(t, err)

	msg := next(t, updates)
	assert.Equal(t, domain.LoadRootLib(1, filepath.Join(dir, "libgame.1.so")), msg)

	data, err := os.ReadFile(filepath.Join(dir, "libstd.so"))
	require.NoError(t, err)
	assert.Equal(t, "std", string(data))
}

func TestClient_SkipsBuildWithMismatchedDigest(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	updates, err := f.client(t, dir).Updates(ctx)
	require.NoError(t, err)

	bad := f.library(t, "libgame.1.so", "game v1")
	bad.Hash = f.hasher.HashBytes([]byte("something else"))
	f.bus.Publish(domain.BuildEnded(1, bad.Name, []domain.HashedFileRecord{bad}))

	good := f.library(t, "libgame.2.so", "game v2")
	f.bus.Publish(domain.BuildEnded(2, good.Name, []domain.HashedFileRecord{good}))

	msg := next(t, updates)
	assert.Equal(t, domain.BuildID(2), msg.ID)
	assert.NoFileExists(t, filepath.Join(dir, "libgame.1.so"))
}

func TestClient_ForwardsAssets(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	updates, err := f.client(t, t.TempDir()).Updates(ctx)
	require.NoError(t, err)

	f.bus.Publish(domain.BuildStarted(1))
	f.bus.Publish(domain.AssetUpdated("sprite.png", "/assets/sprite.png"))

	assert.Equal(t, domain.AssetChanged("sprite.png", "/assets/sprite.png"), next(t, updates))
}

func TestClient_ConnectionClosed(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	updates, err := f.client(t, t.TempDir()).Updates(ctx)
	require.NoError(t, err)

	f.bus.Close()

	msg := next(t, updates)
	assert.Equal(t, domain.MsgConnectionClosed, msg.Kind)
	_, open := <-updates
	assert.False(t, open)
}

func TestServer_UnknownTarget(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{"/target/aarch64-apple-darwin", "/target/aarch64-apple-darwin/files/libgame.1.so"} {
		resp, err := http.Get(f.http.URL + path)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
}

func TestServer_Files(t *testing.T) {
	f := newFixture(t)
	game := f.library(t, "libgame.1.so", "game v1")
	f.bus.Publish(domain.BuildEnded(1, game.Name, []domain.HashedFileRecord{game}))

	resp, err := http.Get(f.http.URL + "/target/" + target.String() + "/files/libgame.1.so")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, game.Hash.String(), resp.Header.Get(remote.DigestHeader))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "game v1", string(body))

	missing, err := http.Get(f.http.URL + "/target/" + target.String() + "/files/libother.so")
	require.NoError(t, err)
	_ = missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestLocal_TranslatesEvents(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Warn(gomock.Any()).Times(1)

	b := bus.New(8)
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	updates, err := remote.NewLocal(b, logger).Updates(ctx)
	require.NoError(t, err)

	root := domain.HashedFileRecord{Name: "libgame.3.so", LocalPath: "/build/libgame.3.so"}
	b.Publish(domain.BuildStarted(3))
	b.Publish(domain.BuildEnded(3, "libmissing.so", nil))
	b.Publish(domain.BuildEnded(3, root.Name, []domain.HashedFileRecord{root}))
	b.Publish(domain.AssetUpdated("a.png", "/assets/a.png"))
	b.Close()

	assert.Equal(t, domain.LoadRootLib(3, "/build/libgame.3.so"), next(t, updates))
	assert.Equal(t, domain.AssetChanged("a.png", "/assets/a.png"), next(t, updates))
	assert.Equal(t, domain.ConnectionClosed(nil), next(t, updates))
}
