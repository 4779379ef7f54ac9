// Package bus broadcasts update protocol events from one producer to many consumers.
package bus

import (
	"sync"

	"go.trai.ch/hotswap/internal/core/domain"
	"go.trai.ch/hotswap/internal/core/ports"
)

// DefaultBuffer is the number of events a subscriber may fall behind before it is dropped.
const DefaultBuffer = 64

var _ ports.EventBus = (*Bus)(nil)

// Bus is an in-process broadcast channel. Publishing never blocks: a subscriber whose
// buffer is full is closed with domain.ErrSubscriberLagged and the others are unaffected.
type Bus struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	last   *domain.Event
	buffer int
	closed bool
}

// New creates a Bus whose subscribers buffer up to buffer events.
func New(buffer int) *Bus {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Bus{
		subs:   make(map[*Subscription]struct{}),
		buffer: buffer,
	}
}

// Publish delivers ev to every current subscriber.
func (b *Bus) Publish(ev domain.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	if ev.Kind == domain.EventBuildEnded {
		latest := ev
		b.last = &latest
	}

	for s := range b.subs {
		select {
		case s.ch <- ev:
		default:
			b.dropLocked(s, domain.ErrSubscriberLagged)
		}
	}
}

// Subscribe attaches a new consumer. If a build already finished, the consumer first
// receives the most recent BuildEnded so that it can load the current library.
func (b *Bus) Subscribe() ports.Subscription {
	s := &Subscription{bus: b, ch: make(chan domain.Event, b.buffer)}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(s.ch)
		return s
	}
	if b.last != nil {
		s.ch <- *b.last
	}
	b.subs[s] = struct{}{}
	return s
}

// Latest returns the most recent BuildEnded event.
func (b *Bus) Latest() (domain.Event, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.last == nil {
		return domain.Event{}, false
	}
	return *b.last, true
}

// Close detaches every subscriber. Later publishes are discarded.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	for s := range b.subs {
		b.dropLocked(s, nil)
	}
}

func (b *Bus) dropLocked(s *Subscription, err error) {
	if _, ok := b.subs[s]; !ok {
		return
	}
	delete(b.subs, s)
	s.err = err
	close(s.ch)
}

// Subscription is one consumer of a Bus.
type Subscription struct {
	bus *Bus
	ch  chan domain.Event
	err error
}

// Events delivers events in publish order until the subscription is closed.
func (s *Subscription) Events() <-chan domain.Event {
	return s.ch
}

// Err reports why the events channel closed. It is nil while open and after Close.
func (s *Subscription) Err() error {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	return s.err
}

// Close detaches the subscription and closes its events channel.
func (s *Subscription) Close() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	s.bus.dropLocked(s, nil)
}
