package library

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/google/uuid"
	"go.trai.ch/hotswap/internal/core/domain"
	"go.trai.ch/hotswap/internal/core/ports"
	"go.trai.ch/zerr"
)

type entry struct {
	mu     sync.RWMutex
	lib    ports.NativeLibrary
	path   string
	copied bool
	refs   atomic.Int32
}

func (e *entry) call(symbol string, arg unsafe.Pointer) (uintptr, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.lib == nil {
		return 0, zerr.With(zerr.Wrap(domain.ErrLibraryUnavailable, "library was unloaded"), "path", e.path)
	}
	return e.lib.Call(symbol, arg)
}

func (e *entry) close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.lib == nil {
		return nil
	}
	err := e.lib.Close()
	e.lib = nil
	return err
}

// Handle refers to a registered library. Owners share a handle with Retain and give up
// their share with Release; the last Release unloads the library.
type Handle struct {
	id      uuid.UUID
	path    string
	manager *Manager
}

// ID returns the registry key of the library.
func (h *Handle) ID() uuid.UUID {
	return h.id
}

// Path returns the file the library was loaded from.
func (h *Handle) Path() string {
	return h.path
}

// Call invokes an exported function of the library with one pointer argument.
func (h *Handle) Call(symbol string, arg unsafe.Pointer) (uintptr, error) {
	e, ok := h.manager.lookup(h.id)
	if !ok {
		return 0, zerr.With(zerr.Wrap(domain.ErrHandleRemoved, "call failed"), "id", h.id.String())
	}
	return e.call(symbol, arg)
}

// Retain adds a reference and returns h.
func (h *Handle) Retain() *Handle {
	if e, ok := h.manager.lookup(h.id); ok {
		e.refs.Add(1)
	}
	return h
}

// Release drops a reference. Dropping the last one unloads the library.
func (h *Handle) Release() error {
	e, ok := h.manager.lookup(h.id)
	if !ok {
		return nil
	}
	if e.refs.Add(-1) != 0 {
		return nil
	}
	return h.manager.unload(h.id, e)
}
