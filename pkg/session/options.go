package session

import (
	"log/slog"
	"time"
)

// Option is a functional option for configuring the Manager.
type Option func(*Manager)

// WithStore sets a custom session store.
func WithStore(store Store) Option {
	return func(m *Manager) {
		m.store = store
	}
}

// WithTransport sets a custom session transport.
func WithTransport(transport Transport) Option {
	return func(m *Manager) {
		m.transport = transport
	}
}

// WithConfig sets custom configuration.
func WithConfig(config Config) Option {
	return func(m *Manager) {
		m.config = config
	}
}

// WithSeeds registers fixed identities consulted after the directory.
func WithSeeds(profiles ...Profile) Option {
	return func(m *Manager) {
		m.seeds = newSeedIndex(profiles)
	}
}

// WithLogger sets the manager logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}
