package native_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/hotswap/internal/core/domain"
	"go.trai.ch/hotswap/internal/native"
)

func libc(t *testing.T) string {
	t.Helper()
	if runtime.GOOS != "linux" {
		t.Skip("uses the glibc soname")
	}
	return "libc.so.6"
}

func TestLibrary_CallAndClose(t *testing.T) {
	lib, err := native.Open(libc(t))
	require.NoError(t, err)

	addr, err := lib.Lookup("getpid")
	require.NoError(t, err)
	assert.NotZero(t, addr)

	pid, err := lib.Call("getpid", nil)
	require.NoError(t, err)
	assert.Equal(t, uintptr(os.Getpid()), pid)

	_, err = lib.Lookup("hotswap_no_such_symbol")
	require.ErrorIs(t, err, domain.ErrSymbolNotFound)

	require.NoError(t, lib.Close())
	require.NoError(t, lib.Close())

	_, err = lib.Call("getpid", nil)
	require.ErrorIs(t, err, domain.ErrLibraryUnavailable)
}

func TestOpen_Rejected(t *testing.T) {
	libc(t)
	path := filepath.Join(t.TempDir(), "libbroken.so")
	require.NoError(t, os.WriteFile(path, []byte("not a library"), 0o600))

	_, err := native.Open(path)
	require.ErrorIs(t, err, domain.ErrLibraryRejected)
}

func TestGoString(t *testing.T) {
	buf := []byte("game.so\x00trailing")
	assert.Equal(t, "game.so", native.GoString(unsafe.Pointer(&buf[0])))
	assert.Empty(t, native.GoString(nil))
}

func TestCallback_RoundTrip(t *testing.T) {
	libc(t)
	if runtime.GOARCH != "amd64" && runtime.GOARCH != "arm64" {
		t.Skip("callbacks need amd64 or arm64")
	}
	cb := native.NewCallback(func(v uintptr) uintptr { return v * 2 })
	assert.Equal(t, uintptr(42), native.CallPointer(cb, 21))
}
