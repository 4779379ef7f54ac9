// Package hotswap holds the process-wide state a running library uses to switch to newer
// builds of itself, and the runner that feeds it.
package hotswap

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"go.trai.ch/hotswap/internal/adapters/logger"
	"go.trai.ch/hotswap/internal/core/domain"
	"go.trai.ch/hotswap/internal/core/ports"
	"go.trai.ch/hotswap/internal/library"
	"go.trai.ch/zerr"
)

var (
	defaultOnce    sync.Once
	defaultRuntime *Runtime
)

// Default returns the runtime shared by the whole process.
func Default() *Runtime {
	defaultOnce.Do(func() {
		defaultRuntime = New(logger.New())
	})
	return defaultRuntime
}

// Runtime tracks which build is running and which one is waiting to be adopted.
//
// Each occupied slot owns one reference to its handle. The applied version only grows,
// and a version is adopted at most once.
type Runtime struct {
	logger ports.Logger

	// mu orders slot changes. Readers only load the atomics.
	mu      sync.Mutex
	applied atomic.Uint32
	pending atomic.Uint32

	original atomic.Pointer[library.Handle]
	current  atomic.Pointer[library.Handle]
	next     atomic.Pointer[library.Handle]
	previous atomic.Pointer[library.Handle]

	onUpdate atomic.Pointer[func(uint32)]
	onAsset  atomic.Pointer[func(name, path string)]

	entryOnce sync.Once
	entry     *EntryInfo
}

// New creates an empty runtime.
func New(logger ports.Logger) *Runtime {
	return &Runtime{logger: logger}
}

// Install makes h the original and current library at version. It is called once, with
// the first library a runner receives. The runtime takes over the caller's reference. The
// original library stays loaded until Close because the entry function runs from it.
func (r *Runtime) Install(version uint32, h *library.Handle) {
	r.mu.Lock()
	oldOriginal := r.original.Swap(h)
	oldCurrent := r.current.Swap(h.Retain())
	r.applied.Store(version)
	r.pending.Store(version)
	r.mu.Unlock()

	r.release(oldOriginal)
	r.release(oldCurrent)
}

// AppliedVersion returns the build the current library came from.
func (r *Runtime) AppliedVersion() uint32 {
	return r.applied.Load()
}

// PendingVersion returns the newest build offered so far.
func (r *Runtime) PendingVersion() uint32 {
	return r.pending.Load()
}

// IsUpdateReady reports whether a newer library is waiting to be adopted.
func (r *Runtime) IsUpdateReady() bool {
	return r.pending.Load() > r.applied.Load()
}

// Offer stages h as the next library. Versions that are not newer than every version seen
// so far are refused and h is released. The update callback runs after h is staged.
func (r *Runtime) Offer(version uint32, h *library.Handle) bool {
	r.mu.Lock()
	if version <= max(r.pending.Load(), r.applied.Load()) {
		r.mu.Unlock()
		r.release(h)
		return false
	}
	old := r.next.Swap(h)
	r.pending.Store(version)
	r.mu.Unlock()

	r.release(old)
	if cb := r.onUpdate.Load(); cb != nil {
		(*cb)(version)
	}
	return true
}

// Adopt switches to the pending library. It returns false when there is nothing newer than
// the applied version, so calling it again for the same version does nothing.
func (r *Runtime) Adopt() bool {
	r.mu.Lock()
	pending := r.pending.Load()
	if pending <= r.applied.Load() {
		r.mu.Unlock()
		return false
	}
	r.applied.Store(pending)
	var evicted *library.Handle
	if next := r.next.Swap(nil); next != nil {
		evicted = r.previous.Swap(r.current.Swap(next))
	}
	r.mu.Unlock()

	r.release(evicted)
	return true
}

// SetUpdateCallback registers fn to run whenever a new version is staged.
func (r *Runtime) SetUpdateCallback(fn func(version uint32)) {
	r.onUpdate.Store(&fn)
}

// SetAssetCallback registers fn to run whenever an asset changes.
func (r *Runtime) SetAssetCallback(fn func(name, path string)) {
	r.onAsset.Store(&fn)
}

// NotifyAsset passes an asset change to the registered callback.
func (r *Runtime) NotifyAsset(name, path string) {
	if cb := r.onAsset.Load(); cb != nil {
		(*cb)(name, path)
	}
}

// Call invokes an exported function of the current library.
func (r *Runtime) Call(symbol string, arg unsafe.Pointer) (uintptr, error) {
	h := r.current.Load()
	if h == nil {
		return 0, zerr.With(zerr.Wrap(domain.ErrNoCurrentLibrary, "call failed"), "symbol", symbol)
	}
	return h.Call(symbol, arg)
}

// Close empties every slot and releases the libraries they held.
func (r *Runtime) Close() {
	r.mu.Lock()
	held := []*library.Handle{
		r.next.Swap(nil),
		r.previous.Swap(nil),
		r.current.Swap(nil),
		r.original.Swap(nil),
	}
	r.mu.Unlock()

	for _, h := range held {
		r.release(h)
	}
}

func (r *Runtime) release(h *library.Handle) {
	if h == nil {
		return
	}
	if err := h.Release(); err != nil {
		r.logger.Error(zerr.Wrap(err, "couldn't release library"))
	}
}
