package broadcast

import (
	"context"
	"sync"
)

// Message wraps data of type T for type-safe broadcasting.
type Message[T any] struct {
	Data T
}

// Subscriber receives messages from a Broadcaster.
// Implementations must be safe for concurrent use.
type Subscriber[T any] interface {
	// Receive returns a channel for receiving broadcast messages.
	Receive(ctx context.Context) <-chan Message[T]

	// Close closes the subscriber and releases resources.
	// Close is idempotent and safe to call multiple times.
	Close() error
}

// Broadcaster sends messages to multiple subscribers.
type Broadcaster[T any] interface {
	// Subscribe creates a new subscriber. When the context is cancelled the
	// subscription is cleaned up.
	Subscribe(ctx context.Context) Subscriber[T]

	// Broadcast sends a message to all active subscribers, replacing any
	// message they have not consumed yet.
	Broadcast(ctx context.Context, msg Message[T]) error

	// Close shuts down the broadcaster and closes all subscribers.
	Close() error
}

// subscriber holds a one-slot mailbox. The mutex serialises offer and Close
// so a replaced value is never observed half way.
type subscriber[T any] struct {
	ch     chan Message[T]
	done   chan struct{}
	closed bool
	mu     sync.Mutex
	onDone func()
}

func newSubscriber[T any]() *subscriber[T] {
	return &subscriber[T]{
		ch:   make(chan Message[T], 1),
		done: make(chan struct{}),
	}
}

func (s *subscriber[T]) Receive(ctx context.Context) <-chan Message[T] {
	return s.ch
}

func (s *subscriber[T]) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	close(s.ch)
	close(s.done)
	s.closed = true
	onDone := s.onDone
	s.mu.Unlock()

	if onDone != nil {
		onDone()
	}
	return nil
}

// offer places msg in the mailbox, dropping whatever was pending.
func (s *subscriber[T]) offer(msg Message[T]) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	for {
		select {
		case s.ch <- msg:
			return true
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}
