package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dmitrymomot/medstock/pkg/auth"
	"github.com/dmitrymomot/medstock/pkg/logger"
	"github.com/dmitrymomot/medstock/pkg/rbac"
)

// Manager owns session state: sign-in, restore, sign-out and the observers
// that react to them.
type Manager struct {
	provider  auth.Provider
	directory Directory
	store     Store
	transport Transport
	config    Config
	seeds     seedIndex
	logger    *slog.Logger
	now       func() time.Time

	mu        sync.RWMutex
	observers []*observer
}

// New creates a session manager. A nil directory skips straight to seeds and
// the synthesized fallback.
func New(provider auth.Provider, directory Directory, opts ...Option) *Manager {
	m := &Manager{
		provider:  provider,
		directory: directory,
		config:    DefaultConfig(),
		logger:    logger.Noop(),
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.store == nil {
		m.store = NewMemoryStore(m.config.CleanupInterval)
	}
	if m.transport == nil {
		cookie := NewCookieTransport(m.config.CookieName, m.config.SecureCookies)
		if m.config.HeaderName != "" {
			m.transport = CompositeTransport{cookie, NewHeaderTransport(m.config.HeaderName)}
		} else {
			m.transport = cookie
		}
	}
	m.logger = m.logger.With(logger.Component("session"))

	return m
}

// Close releases the store if it holds background resources.
func (m *Manager) Close() error {
	if c, ok := m.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// SignIn authenticates with the provider and joins the identity with a user
// record. Inactive records are refused with ErrAccountDisabled.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*Session, error) {
	identity, err := m.provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}

	profile, source, err := m.join(ctx, identity)
	if err != nil {
		_ = m.provider.SignOut(ctx, identity.Token)
		return nil, err
	}
	if !profile.Active {
		_ = m.provider.SignOut(ctx, identity.Token)
		m.logger.InfoContext(ctx, "sign-in refused for inactive account", logger.UserID(profile.ID))
		return nil, ErrAccountDisabled
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	now := m.now()
	expiresAt := now.Add(m.config.MaxLifetime)
	if !identity.ExpiresAt.IsZero() && identity.ExpiresAt.Before(expiresAt) {
		expiresAt = identity.ExpiresAt
	}

	session := &Session{
		Token:          token,
		IdentityToken:  identity.Token,
		UID:            identity.UID,
		Email:          identity.Email,
		Profile:        profile,
		Source:         source,
		ExpiresAt:      expiresAt,
		CreatedAt:      now,
		LastActivityAt: now,
	}
	if err := m.store.Create(ctx, session); err != nil {
		_ = m.provider.SignOut(ctx, identity.Token)
		return nil, fmt.Errorf("create session: %w", err)
	}

	m.logger.InfoContext(ctx, "signed in",
		logger.UserID(profile.ID),
		logger.Role(profile.Role),
		slog.String("source", string(source)),
	)
	m.emit(Event{Type: EventSignedIn, Session: session.clone()})

	return session, nil
}

// SignOut ends the session immediately. Unknown tokens are not an error.
func (m *Manager) SignOut(ctx context.Context, token string) error {
	session, err := m.store.Get(ctx, token)
	if err != nil && !errors.Is(err, ErrSessionNotFound) && !errors.Is(err, ErrSessionExpired) {
		return err
	}
	if session == nil {
		return m.store.Delete(ctx, token)
	}
	return m.end(ctx, session)
}

// Restore loads the session for token, verifies its identity and re-joins the
// user record so role reassignments apply on the next request.
func (m *Manager) Restore(ctx context.Context, token string) (*Session, error) {
	session, err := m.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	identity, err := m.provider.Verify(ctx, session.IdentityToken)
	if err != nil {
		_ = m.end(ctx, session)
		return nil, errors.Join(ErrSessionExpired, err)
	}

	profile, source, err := m.join(ctx, identity)
	if err != nil {
		return nil, err
	}
	if !profile.Active {
		_ = m.end(ctx, session)
		return nil, ErrAccountDisabled
	}

	now := m.now()
	previous := session.Profile.Role
	changed := session.Profile != profile || session.Source != source
	if changed || now.Sub(session.LastActivityAt) >= m.config.ActivityUpdateThreshold {
		session.Profile = profile
		session.Source = source
		session.LastActivityAt = now
		if err := m.store.Update(ctx, session); err != nil {
			return nil, fmt.Errorf("update session: %w", err)
		}
	}

	if previous != profile.Role {
		m.logger.InfoContext(ctx, "session role changed",
			logger.UserID(profile.ID),
			slog.String("previous_role", string(previous)),
			logger.Role(profile.Role),
		)
		m.emit(Event{Type: EventRoleChanged, Session: session.clone(), PreviousRole: previous})
	} else {
		m.emit(Event{Type: EventRestored, Session: session.clone()})
	}

	return session, nil
}

// Subscribe registers fn for session events. Observers run synchronously in
// registration order. The returned func removes fn and is safe to call twice.
func (m *Manager) Subscribe(fn func(Event)) func() {
	o := &observer{fn: fn}

	m.mu.Lock()
	m.observers = append(m.observers, o)
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			for i, existing := range m.observers {
				if existing == o {
					m.observers = append(m.observers[:i], m.observers[i+1:]...)
					return
				}
			}
		})
	}
}

// Watch applies user snapshots to live sessions until ctx is done or the
// channel closes. Each snapshot is the complete user list.
func (m *Manager) Watch(ctx context.Context, snapshots <-chan []Profile) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snapshot, ok := <-snapshots:
			if !ok {
				return nil
			}
			if err := m.Apply(ctx, snapshot); err != nil {
				m.logger.ErrorContext(ctx, "failed to apply user snapshot", logger.Error(err))
			}
		}
	}
}

// Count returns the number of live sessions.
func (m *Manager) Count(ctx context.Context) (int, error) {
	sessions, err := m.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list sessions: %w", err)
	}
	return len(sessions), nil
}

// Apply reconciles every live session with one user snapshot. Sessions whose
// record was deleted or deactivated are signed out. Sessions joined from seeds
// or synthesized are re-joined once a matching record appears.
func (m *Manager) Apply(ctx context.Context, snapshot []Profile) error {
	byID := make(map[string]Profile, len(snapshot))
	byEmail := make(map[string]Profile, len(snapshot))
	for _, p := range snapshot {
		byID[p.ID] = p
		if p.Email != "" {
			byEmail[strings.ToLower(p.Email)] = p
		}
	}

	sessions, err := m.store.List(ctx)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	var errs []error
	for _, session := range sessions {
		profile, source, found := m.match(session, byID, byEmail)
		if !found {
			if session.Source == SourceUID || session.Source == SourceEmail {
				errs = append(errs, m.end(ctx, session))
			}
			continue
		}
		if !profile.Active {
			errs = append(errs, m.end(ctx, session))
			continue
		}
		if session.Profile == profile && session.Source == source {
			continue
		}

		previous := session.Profile.Role
		session.Profile = profile
		session.Source = source
		if err := m.store.Update(ctx, session); err != nil {
			if errors.Is(err, ErrSessionNotFound) {
				continue
			}
			errs = append(errs, err)
			continue
		}
		if previous != profile.Role {
			m.emit(Event{Type: EventRoleChanged, Session: session.clone(), PreviousRole: previous})
		}
	}

	return errors.Join(errs...)
}

func (m *Manager) match(session *Session, byID, byEmail map[string]Profile) (Profile, Source, bool) {
	switch session.Source {
	case SourceUID, SourceEmail:
		p, ok := byID[session.Profile.ID]
		return p, session.Source, ok
	}
	if p, ok := byID[session.UID]; ok {
		return p, SourceUID, true
	}
	if p, ok := byEmail[strings.ToLower(session.Email)]; ok && session.Email != "" {
		return p, SourceEmail, true
	}
	return Profile{}, "", false
}

// join resolves the profile for identity: uid, email, seeds, then a
// synthesized least-privileged profile.
func (m *Manager) join(ctx context.Context, identity *auth.Identity) (Profile, Source, error) {
	if m.directory != nil {
		p, err := m.directory.ProfileByID(ctx, identity.UID)
		switch {
		case err == nil:
			return *p, SourceUID, nil
		case !errors.Is(err, ErrProfileNotFound):
			return Profile{}, "", errors.Join(ErrDirectoryUnavailable, err)
		}

		if identity.Email != "" {
			p, err = m.directory.ProfileByEmail(ctx, identity.Email)
			switch {
			case err == nil:
				return *p, SourceEmail, nil
			case !errors.Is(err, ErrProfileNotFound):
				return Profile{}, "", errors.Join(ErrDirectoryUnavailable, err)
			}
		}
	}

	if p, ok := m.seeds.lookup(identity.Email); ok {
		return p, SourceSeed, nil
	}

	name := identity.DisplayName
	if name == "" {
		name = identity.Email
	}
	return Profile{
		ID:     identity.UID,
		Name:   name,
		Email:  identity.Email,
		Role:   rbac.LeastPrivileged,
		Active: true,
	}, SourceSynthesized, nil
}

func (m *Manager) end(ctx context.Context, session *Session) error {
	err := m.store.Delete(ctx, session.Token)
	if session.IdentityToken != "" {
		err = errors.Join(err, m.provider.SignOut(ctx, session.IdentityToken))
	}
	m.logger.InfoContext(ctx, "signed out", logger.UserID(session.Profile.ID))
	m.emit(Event{Type: EventSignedOut, Session: session.clone()})
	return err
}

func (m *Manager) emit(e Event) {
	m.mu.RLock()
	observers := make([]*observer, len(m.observers))
	copy(observers, m.observers)
	m.mu.RUnlock()

	for _, o := range observers {
		o.fn(e)
	}
}

// generateToken creates a cryptographically secure token
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrTokenGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
