package session

import "context"

// Store defines the interface for session persistence.
type Store interface {
	// Create stores a new session.
	Create(ctx context.Context, session *Session) error

	// Get retrieves a session by token.
	Get(ctx context.Context, token string) (*Session, error)

	// Update replaces an existing session.
	Update(ctx context.Context, session *Session) error

	// Delete removes a session by token. Missing tokens are not an error.
	Delete(ctx context.Context, token string) error

	// List returns every live session.
	List(ctx context.Context) ([]*Session, error)
}
