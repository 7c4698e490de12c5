package auth

import (
	"context"
	"time"
)

// Identity is what the provider knows about a signed-in account.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
	Token       string
	ExpiresAt   time.Time
}

// Credential is a stored account.
type Credential struct {
	ID           string    `bson:"_id" json:"id"`
	Email        string    `bson:"email" json:"email"`
	DisplayName  string    `bson:"display_name" json:"display_name"`
	PasswordHash []byte    `bson:"password_hash" json:"-"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}

// Provider is the identity provider contract used by the session layer.
type Provider interface {
	// SignIn authenticates by email and password and issues a token.
	SignIn(ctx context.Context, email, password string) (*Identity, error)

	// SignUp creates a new account. The returned identity carries no token.
	SignUp(ctx context.Context, email, password, displayName string) (*Identity, error)

	// SignOut revokes token. Unknown or malformed tokens are ignored.
	SignOut(ctx context.Context, token string) error

	// Verify checks a token and returns the identity it was issued for.
	Verify(ctx context.Context, token string) (*Identity, error)

	// OnChange registers fn to be called with the identity after sign-in and
	// with nil after sign-out. The returned func removes the observer.
	OnChange(fn func(*Identity)) func()
}

// CredentialStorage persists accounts.
type CredentialStorage interface {
	CreateCredential(ctx context.Context, c *Credential) error
	GetCredentialByEmail(ctx context.Context, email string) (*Credential, error)
	GetCredentialByID(ctx context.Context, id string) (*Credential, error)
	DeleteCredential(ctx context.Context, id string) error
}
