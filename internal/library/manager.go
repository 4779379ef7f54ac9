// Package library manages the dynamic libraries a runner loads. Every load goes through a
// private copy of the library file so that a new build can overwrite the original while
// the old version is still running.
package library

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.trai.ch/hotswap/internal/core/domain"
	"go.trai.ch/hotswap/internal/core/ports"
	"go.trai.ch/hotswap/internal/native"
	"go.trai.ch/zerr"
)

// DefaultSettleDelay is how long a library file must exist before it is loaded.
const DefaultSettleDelay = 2 * time.Second

// Options controls a single load.
type Options struct {
	// UseOriginal loads the file in place instead of a private copy.
	UseOriginal bool
}

// Manager owns the registry of loaded libraries.
type Manager struct {
	loader  ports.LibraryLoader
	logger  ports.Logger
	retries int
	delay   time.Duration
	settle  time.Duration
	sleep   func(time.Duration)
	now     func() time.Time

	mu      sync.RWMutex
	entries map[uuid.UUID]*entry
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithAwait sets how often and how far apart a missing library file is polled for.
func WithAwait(retries int, delay time.Duration) ManagerOption {
	return func(m *Manager) {
		m.retries = retries
		m.delay = delay
	}
}

// WithSettleDelay sets the pause between a library file appearing and loading it.
func WithSettleDelay(d time.Duration) ManagerOption {
	return func(m *Manager) {
		m.settle = d
	}
}

// WithSleep replaces time.Sleep while awaiting files.
func WithSleep(sleep func(time.Duration)) ManagerOption {
	return func(m *Manager) {
		m.sleep = sleep
	}
}

// NewManager creates a Manager that opens libraries through loader.
func NewManager(loader ports.LibraryLoader, logger ports.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		loader:  loader,
		logger:  logger,
		retries: domain.DefaultAwaitRetries,
		delay:   domain.DefaultAwaitDelay,
		settle:  DefaultSettleDelay,
		sleep:   time.Sleep,
		now:     time.Now,
		entries: make(map[uuid.UUID]*entry),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

var (
	defaultOnce    sync.Once
	defaultManager *Manager
)

// Default returns the process-wide Manager backed by the platform loader. Code running
// inside reloaded libraries reaches the registry through it.
func Default() *Manager {
	defaultOnce.Do(func() {
		defaultManager = NewManager(native.Loader{}, discard{})
	})
	return defaultManager
}

// Load opens the library at path and registers it. The returned handle holds one
// reference.
func (m *Manager) Load(path string, opts Options) (*Handle, error) {
	if !m.await(path) {
		return nil, zerr.With(zerr.Wrap(domain.ErrLibraryFileMissing, "gave up waiting"), "path", path)
	}

	id := uuid.New()
	loadPath := path
	copied := false
	if !opts.UseOriginal {
		var err error
		if loadPath, err = m.copyForLoad(path, id); err != nil {
			return nil, err
		}
		copied = true
		if !m.await(loadPath) {
			return nil, zerr.With(zerr.Wrap(domain.ErrLibraryFileMissing, "copy never appeared"), "path", loadPath)
		}
	}
	m.sleep(m.settle)

	m.logger.Debug("loading " + loadPath)
	lib, err := m.loader.Open(loadPath)
	if err != nil {
		if copied {
			_ = os.Remove(loadPath)
		}
		if !errors.Is(err, domain.ErrLibraryRejected) {
			err = errors.Join(domain.ErrLibraryRejected, err)
		}
		return nil, zerr.With(err, "path", loadPath)
	}

	e := &entry{lib: lib, path: loadPath, copied: copied}
	e.refs.Store(1)

	m.mu.Lock()
	m.entries[id] = e
	m.mu.Unlock()

	return &Handle{id: id, path: loadPath, manager: m}, nil
}

// Len returns the number of registered libraries.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// await polls for path, then reports whether it exists.
func (m *Manager) await(path string) bool {
	for attempt := 0; ; attempt++ {
		if _, err := os.Stat(path); err == nil {
			return true
		}
		if attempt >= m.retries {
			return false
		}
		m.logger.Debug(path + " doesn't exist yet")
		m.sleep(m.delay)
	}
}

// copyForLoad keeps a timestamped backup of path and returns a fresh copy named by id.
func (m *Manager) copyForLoad(path string, id uuid.UUID) (string, error) {
	backup := path + "." + strconv.FormatInt(m.now().UnixNano(), 10) + ".backup"
	if err := copyFile(path, backup); err != nil {
		return "", err
	}

	dst := filepath.Join(filepath.Dir(path), id.String()+filepath.Ext(path))
	if err := copyFile(path, dst); err != nil {
		return "", err
	}
	return dst, nil
}

func (m *Manager) lookup(id uuid.UUID) (*entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[id]
	return e, ok
}

// unload closes the native library, then deletes its copy, then forgets it.
func (m *Manager) unload(id uuid.UUID, e *entry) error {
	err := e.close()
	if e.copied {
		if rmErr := os.Remove(e.path); rmErr != nil && !os.IsNotExist(rmErr) {
			err = errors.Join(err, zerr.With(zerr.Wrap(rmErr, "couldn't delete library copy"), "path", e.path))
		}
	}

	m.mu.Lock()
	delete(m.entries, id)
	m.mu.Unlock()

	if err == nil {
		m.logger.Debug("unloaded " + e.path)
	}
	return err
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "couldn't open library"), "path", src)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return zerr.With(zerr.Wrap(err, "couldn't stat library"), "path", src)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return zerr.With(zerr.Wrap(err, "couldn't create library copy"), "path", dst)
	}
	_, copyErr := io.Copy(out, in)
	closeErr := out.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(dst)
		return zerr.With(zerr.Wrap(err, "couldn't copy library"), "path", dst)
	}
	return nil
}

type discard struct{}

func (discard) Debug(string) {}
func (discard) Info(string)  {}
func (discard) Warn(string)  {}
func (discard) Error(error)  {}
