package session

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/medstock/pkg/logger"
	"github.com/dmitrymomot/medstock/pkg/rbac"
)

// Login signs in and hands the session token to the transport.
func (m *Manager) Login(w http.ResponseWriter, r *http.Request, email, password string) (*Session, error) {
	session, err := m.SignIn(r.Context(), email, password)
	if err != nil {
		return nil, err
	}
	if err := m.transport.SetToken(w, session.Token, session.ExpiresAt.Sub(m.now())); err != nil {
		_ = m.SignOut(r.Context(), session.Token)
		return nil, err
	}
	return session, nil
}

// Logout ends the request's session, if any, and clears the token.
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) error {
	token, err := m.transport.GetToken(r)
	if err == nil {
		err = m.SignOut(r.Context(), token)
	} else {
		err = nil
	}
	return errors.Join(err, m.transport.ClearToken(w))
}

// Middleware restores the session on every request and stores it, with its
// role, in the request context. Requests without a valid session pass through
// unauthenticated; the guard decides what to do with them.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := m.transport.GetToken(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		session, err := m.Restore(r.Context(), token)
		if err != nil {
			if errors.Is(err, ErrDirectoryUnavailable) {
				m.logger.ErrorContext(r.Context(), "failed to restore session", logger.Error(err))
			} else {
				_ = m.transport.ClearToken(w)
			}
			next.ServeHTTP(w, r)
			return
		}

		ctx := WithSession(r.Context(), session)
		ctx = rbac.WithRole(ctx, session.Role())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
