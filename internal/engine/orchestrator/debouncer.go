package orchestrator

import (
	"sync"
	"time"
	"unique"
)

// Debouncer coalesces rapid submissions into one batch delivered once the window has
// passed without a new submission. Submissions with the same key replace each other.
type Debouncer[T any] struct {
	mu       sync.Mutex
	pending  map[unique.Handle[string]]T
	order    []unique.Handle[string]
	timer    *time.Timer
	window   time.Duration
	callback func(batch []T)
}

// NewDebouncer creates a debouncer with the given quiet window and callback.
func NewDebouncer[T any](window time.Duration, callback func(batch []T)) *Debouncer[T] {
	return &Debouncer[T]{
		pending:  make(map[unique.Handle[string]]T),
		window:   window,
		callback: callback,
	}
}

// Add records v under key and restarts the window.
func (d *Debouncer[T]) Add(key string, v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	handle := unique.Make(key)
	if _, ok := d.pending[handle]; !ok {
		d.order = append(d.order, handle)
	}
	d.pending[handle] = v

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fire)
}

// take empties the pending set, returning it in first-submission order.
func (d *Debouncer[T]) take() []T {
	batch := make([]T, 0, len(d.order))
	for _, handle := range d.order {
		batch = append(batch, d.pending[handle])
	}
	d.pending = make(map[unique.Handle[string]]T)
	d.order = nil
	return batch
}

func (d *Debouncer[T]) fire() {
	d.mu.Lock()
	if len(d.pending) == 0 {
		d.timer = nil
		d.mu.Unlock()
		return
	}
	batch := d.take()
	d.timer = nil
	d.mu.Unlock()

	if d.callback != nil {
		d.callback(batch)
	}
}

// Flush delivers the pending batch immediately and blocks until the callback returns.
func (d *Debouncer[T]) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		if !d.timer.Stop() {
			// The timer already fired and is delivering the batch.
			d.mu.Unlock()
			return
		}
		d.timer = nil
	}
	batch := d.take()
	d.mu.Unlock()

	if len(batch) > 0 && d.callback != nil {
		d.callback(batch)
	}
}
