// Package native wraps the platform dynamic loader. It is the only package that turns
// addresses inside loaded libraries into calls.
package native

import (
	"errors"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"go.trai.ch/hotswap/internal/core/domain"
	"go.trai.ch/hotswap/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.LibraryLoader = Loader{}

// Loader opens libraries with Open.
type Loader struct{}

// Open implements ports.LibraryLoader.
func (Loader) Open(path string) (ports.NativeLibrary, error) {
	return Open(path)
}

// Library is an open dynamic library. Close waits for calls in progress.
type Library struct {
	mu     sync.RWMutex
	path   string
	handle uintptr
}

// Open loads the library at path with all relocations resolved immediately.
func Open(path string) (*Library, error) {
	handle, err := open(path)
	if err != nil {
		return nil, zerr.With(errors.Join(domain.ErrLibraryRejected, err), "path", path)
	}
	return &Library{path: path, handle: handle}, nil
}

// Path returns the file the library was loaded from.
func (l *Library) Path() string {
	return l.path
}

// Lookup returns the address of an exported symbol.
func (l *Library) Lookup(symbol string) (uintptr, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lookupLocked(symbol)
}

func (l *Library) lookupLocked(symbol string) (uintptr, error) {
	if l.handle == 0 {
		return 0, zerr.With(zerr.Wrap(domain.ErrLibraryUnavailable, "library was closed"), "path", l.path)
	}
	addr, err := lookup(l.handle, symbol)
	if err != nil || addr == 0 {
		cause := zerr.Wrap(domain.ErrSymbolNotFound, "lookup failed")
		if err != nil {
			cause = errors.Join(cause, err)
		}
		return 0, zerr.With(zerr.With(cause, "symbol", symbol), "path", l.path)
	}
	return addr, nil
}

// Call invokes symbol as a C function taking one pointer and returns its result.
func (l *Library) Call(symbol string, arg unsafe.Pointer) (uintptr, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	fn, err := l.lookupLocked(symbol)
	if err != nil {
		return 0, err
	}
	r1, _, _ := purego.SyscallN(fn, uintptr(arg))
	return r1, nil
}

// Close unloads the library. Closing twice is a no-op.
func (l *Library) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.handle == 0 {
		return nil
	}
	handle := l.handle
	l.handle = 0
	if err := closeHandle(handle); err != nil {
		return zerr.With(zerr.Wrap(err, "couldn't unload library"), "path", l.path)
	}
	return nil
}
