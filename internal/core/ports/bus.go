package ports

import "go.trai.ch/hotswap/internal/core/domain"

// Subscription is one consumer's view of the update protocol.
type Subscription interface {
	// Events delivers published events in order. It is closed by Close or when the
	// subscriber falls behind.
	Events() <-chan domain.Event
	// Err reports why the events channel closed, nil after Close.
	Err() error
	// Close detaches the subscription.
	Close()
}

// EventBus fans protocol events from one producer out to many consumers.
type EventBus interface {
	Publish(ev domain.Event)
	Subscribe() Subscription
}
