package users

import (
	"context"
	"sync"

	"github.com/dmitrymomot/medstock/pkg/broadcast"
	"github.com/dmitrymomot/medstock/pkg/session"
)

// Subscription delivers full user snapshots. A slow reader only ever sees
// the most recent one.
type Subscription struct {
	sub  broadcast.Subscriber[[]User]
	out  chan []User
	once sync.Once
}

// Subscribe starts a subscription. The current snapshot is delivered first,
// loading it from the repository if nothing has been broadcast yet. The
// subscription ends when ctx is done or Unsubscribe is called.
func (s *Service) Subscribe(ctx context.Context) *Subscription {
	if _, ok := s.snapshots.Latest(); !ok {
		s.refresh(ctx)
	}

	sub := &Subscription{
		sub: s.snapshots.Subscribe(ctx),
		out: make(chan []User),
	}
	go sub.forward(ctx)
	return sub
}

// Updates returns the snapshot channel. It is closed after Unsubscribe.
func (s *Subscription) Updates() <-chan []User {
	return s.out
}

// Unsubscribe stops delivery. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() { _ = s.sub.Close() })
}

// forward holds at most one undelivered snapshot and replaces it whenever a
// newer one arrives.
func (s *Subscription) forward(ctx context.Context) {
	defer close(s.out)

	in := s.sub.Receive(ctx)
	var (
		pending []User
		has     bool
	)
	for {
		if !has {
			msg, ok := <-in
			if !ok {
				return
			}
			pending, has = msg.Data, true
			continue
		}
		select {
		case msg, ok := <-in:
			if !ok {
				return
			}
			pending = msg.Data
		case s.out <- pending:
			has = false
		}
	}
}

// Profiles feeds session.Manager.Watch. The channel closes when ctx is done.
func (s *Service) Profiles(ctx context.Context) <-chan []session.Profile {
	sub := s.Subscribe(ctx)
	out := make(chan []session.Profile)
	go func() {
		defer close(out)
		defer sub.Unsubscribe()
		for list := range sub.Updates() {
			select {
			case out <- Profiles(list):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
