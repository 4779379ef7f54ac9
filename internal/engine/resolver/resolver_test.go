package resolver_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/hotswap/internal/adapters/fs"
	"go.trai.ch/hotswap/internal/core/domain"
	"go.trai.ch/hotswap/internal/core/ports/mocks"
	"go.trai.ch/hotswap/internal/engine/resolver"
	"go.uber.org/mock/gomock"
)

// fixture lays out libraries whose content is their own name, so the mocked reader can
// answer by content.
type fixture struct {
	dir     string
	imports map[string][]string
}

func newFixture(t *testing.T, imports map[string][]string) *fixture {
	t.Helper()
	dir := t.TempDir()
	for name := range imports {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0o600))
	}
	return &fixture{dir: dir, imports: imports}
}

func (f *fixture) reader(ctrl *gomock.Controller) *mocks.MockImportReader {
	r := mocks.NewMockImportReader(ctrl)
	r.EXPECT().ReadImports(gomock.Any()).DoAndReturn(func(data []byte) ([]string, error) {
		return f.imports[string(data)], nil
	}).AnyTimes()
	return r
}

func (f *fixture) lister(ctrl *gomock.Controller) *mocks.MockDirectoryLister {
	l := mocks.NewMockDirectoryLister(ctrl)
	l.EXPECT().ListFiles(gomock.Any(), []string{f.dir}).DoAndReturn(
		func(ctx context.Context, dirs []string) map[string]string {
			return fs.NewLister().ListFiles(ctx, dirs)
		}).AnyTimes()
	return l
}

func quietLogger(ctrl *gomock.Controller) *mocks.MockLogger {
	l := mocks.NewMockLogger(ctrl)
	l.EXPECT().Debug(gomock.Any()).AnyTimes()
	return l
}

func TestResolve_Closure(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newFixture(t, map[string][]string{
		"libgame.1.so": {"libstd.so", "libc.so.6", "libbevy.so"},
		"libbevy.so":   {"libstd.so"},
		"libstd.so":    {"libc.so.6"},
		"libunused.so": nil,
	})

	r, err := resolver.New(f.reader(ctrl), f.lister(ctrl), fs.NewHasher(), quietLogger(ctrl), 16)
	require.NoError(t, err)

	records, err := r.Resolve(context.Background(),
		[]domain.Root{{Name: "libgame.1.so", Path: filepath.Join(f.dir, "libgame.1.so")}},
		[]string{f.dir})
	require.NoError(t, err)

	names := make([]string, 0, len(records))
	for _, rec := range records {
		names = append(names, rec.Name)
	}
	assert.Equal(t, []string{"libbevy.so", "libgame.1.so", "libstd.so"}, names)

	game := records[1]
	assert.Equal(t, "./libgame.1.so", game.RelativePath)
	assert.Equal(t, []string{"libbevy.so", "libstd.so"}, game.Dependencies)

	for _, rec := range records {
		want, err := fs.NewHasher().HashFile(rec.LocalPath)
		require.NoError(t, err)
		assert.Equal(t, want, rec.Hash, rec.Name)
	}
}

func TestResolve_Deterministic(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newFixture(t, map[string][]string{
		"libgame.so": {"liba.so", "libb.so"},
		"liba.so":    {"libb.so"},
		"libb.so":    {"liba.so"},
	})

	r, err := resolver.New(f.reader(ctrl), f.lister(ctrl), fs.NewHasher(), quietLogger(ctrl), 16)
	require.NoError(t, err)

	roots := []domain.Root{{Name: "libgame.so", Path: filepath.Join(f.dir, "libgame.so")}}
	first, err := r.Resolve(context.Background(), roots, []string{f.dir})
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), roots, []string{f.dir})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 3)
}

func TestResolve_RootWithoutDependencies(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newFixture(t, map[string][]string{"libgame.1.so": {"libc.so.6"}})

	r, err := resolver.New(f.reader(ctrl), f.lister(ctrl), fs.NewHasher(), quietLogger(ctrl), 16)
	require.NoError(t, err)

	records, err := r.Resolve(context.Background(),
		[]domain.Root{{Name: "libgame.1.so", Path: filepath.Join(f.dir, "libgame.1.so")}},
		[]string{f.dir})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "libgame.1.so", records[0].Name)
	assert.Empty(t, records[0].Dependencies)
}

func TestResolve_ParseFailureFailsWholeCall(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newFixture(t, map[string][]string{"libgame.so": {"libbad.so"}, "libbad.so": nil})

	reader := mocks.NewMockImportReader(ctrl)
	reader.EXPECT().ReadImports([]byte("libgame.so")).Return([]string{"libbad.so"}, nil)
	reader.EXPECT().ReadImports([]byte("libbad.so")).Return(nil, errors.Join(domain.ErrMalformedBinary, errors.New("truncated")))

	r, err := resolver.New(reader, f.lister(ctrl), fs.NewHasher(), quietLogger(ctrl), 16)
	require.NoError(t, err)

	records, err := r.Resolve(context.Background(),
		[]domain.Root{{Name: "libgame.so", Path: filepath.Join(f.dir, "libgame.so")}},
		[]string{f.dir})
	require.ErrorIs(t, err, domain.ErrDependencyResolution)
	require.ErrorIs(t, err, domain.ErrMalformedBinary)
	assert.Nil(t, records)
}

func TestResolve_CachesImportsByContent(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newFixture(t, map[string][]string{"libgame.so": nil})

	reader := mocks.NewMockImportReader(ctrl)
	reader.EXPECT().ReadImports(gomock.Any()).Return(nil, nil).Times(1)

	r, err := resolver.New(reader, f.lister(ctrl), fs.NewHasher(), quietLogger(ctrl), 16)
	require.NoError(t, err)

	roots := []domain.Root{{Name: "libgame.so", Path: filepath.Join(f.dir, "libgame.so")}}
	for range 3 {
		_, err := r.Resolve(context.Background(), roots, []string{f.dir})
		require.NoError(t, err)
	}
}
