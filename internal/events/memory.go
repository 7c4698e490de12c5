package events

import (
	"context"
	"sync"
)

// Memory records published events in order.
type Memory struct {
	mu     sync.Mutex
	events []Event
	err    error
}

// NewMemory returns an empty recorder.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Publish(_ context.Context, ev Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, ev)
	return nil
}

// FailWith makes subsequent Publish calls return err. A nil err restores normal behaviour.
func (m *Memory) FailWith(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

// Events returns a copy of everything published so far.
func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// Types returns the type of each recorded event.
func (m *Memory) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.events))
	for i, ev := range m.events {
		out[i] = ev.Type
	}
	return out
}
