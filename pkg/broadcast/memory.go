package broadcast

import (
	"context"
	"sync"
)

// MemoryBroadcaster conflates messages per subscriber: a slow consumer
// only ever receives the most recent message. It also remembers the last
// message so new subscribers start from the current state.
// All methods are safe for concurrent use.
type MemoryBroadcaster[T any] struct {
	subscribers map[*subscriber[T]]struct{}
	last        *Message[T]
	closed      bool
	mu          sync.RWMutex
	cleanupWg   sync.WaitGroup
}

// NewMemoryBroadcaster creates a new in-memory broadcaster.
func NewMemoryBroadcaster[T any]() *MemoryBroadcaster[T] {
	return &MemoryBroadcaster[T]{
		subscribers: make(map[*subscriber[T]]struct{}),
	}
}

// Subscribe creates a new subscriber. If a message has already been
// broadcast, it is delivered to the new subscriber immediately.
// If the broadcaster is already closed, returns a closed subscriber.
func (b *MemoryBroadcaster[T]) Subscribe(ctx context.Context) Subscriber[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := newSubscriber[T]()
	if b.closed {
		_ = sub.Close()
		return sub
	}

	b.subscribers[sub] = struct{}{}
	sub.onDone = func() { b.remove(sub) }
	if b.last != nil {
		sub.offer(*b.last)
	}

	if ctx.Done() != nil {
		b.cleanupWg.Add(1)
		go func() {
			defer b.cleanupWg.Done()
			select {
			case <-ctx.Done():
				_ = sub.Close()
			case <-sub.done:
			}
		}()
	}

	return sub
}

// Broadcast records msg as the current state and offers it to every
// subscriber. It never blocks on a subscriber.
func (b *MemoryBroadcaster[T]) Broadcast(ctx context.Context, msg Message[T]) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}

	b.last = &msg
	for sub := range b.subscribers {
		sub.offer(msg)
	}

	return nil
}

// Latest returns the last broadcast message, if any.
func (b *MemoryBroadcaster[T]) Latest() (Message[T], bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.last == nil {
		return Message[T]{}, false
	}
	return *b.last, true
}

// Len returns the number of active subscribers.
func (b *MemoryBroadcaster[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close shuts down the broadcaster and closes all subscribers.
// It is safe to call Close multiple times.
func (b *MemoryBroadcaster[T]) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	subs := make([]*subscriber[T], 0, len(b.subscribers))
	for sub := range b.subscribers {
		subs = append(subs, sub)
	}
	clear(b.subscribers)
	b.mu.Unlock()

	for _, sub := range subs {
		_ = sub.Close()
	}

	b.cleanupWg.Wait()
	return nil
}

func (b *MemoryBroadcaster[T]) remove(sub *subscriber[T]) {
	b.mu.Lock()
	delete(b.subscribers, sub)
	b.mu.Unlock()
}
