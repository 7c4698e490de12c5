package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/dmitrymomot/medstock/pkg/logger"
	"github.com/dmitrymomot/medstock/pkg/sanitizer"
	"github.com/dmitrymomot/medstock/pkg/validator"
)

var _ Provider = (*PasswordProvider)(nil)

// MinPasswordLength is the shortest password SignUp accepts.
const MinPasswordLength = 8

// limiterPruneFloor is the smallest limiter map that triggers pruning.
const limiterPruneFloor = 1024

// PasswordProvider implements Provider with bcrypt-hashed passwords and
// HS256 identity tokens.
type PasswordProvider struct {
	storage    CredentialStorage
	secret     []byte
	bcryptCost int
	tokenTTL   time.Duration
	logger     *slog.Logger
	now        func() time.Time

	attemptRate    rate.Limit
	attemptBurst   int
	limitersMu     sync.Mutex
	limiters       map[string]*rate.Limiter
	limiterPruneAt int

	revokedMu sync.Mutex
	revoked   map[string]time.Time // token id -> expiry

	observersMu sync.RWMutex
	observers   []*observer
}

type observer struct {
	fn func(*Identity)
}

type PasswordOption func(*PasswordProvider)

// WithLogger sets a custom logger for the provider.
func WithLogger(l *slog.Logger) PasswordOption {
	return func(p *PasswordProvider) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithBcryptCost sets the bcrypt cost for password hashing.
func WithBcryptCost(cost int) PasswordOption {
	return func(p *PasswordProvider) {
		p.bcryptCost = cost
	}
}

// WithTokenTTL sets the lifetime of issued identity tokens.
func WithTokenTTL(ttl time.Duration) PasswordOption {
	return func(p *PasswordProvider) {
		if ttl > 0 {
			p.tokenTTL = ttl
		}
	}
}

// WithAttemptLimit allows burst sign-in attempts per email, refilled at r.
func WithAttemptLimit(r rate.Limit, burst int) PasswordOption {
	return func(p *PasswordProvider) {
		p.attemptRate = r
		p.attemptBurst = burst
	}
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) PasswordOption {
	return func(p *PasswordProvider) {
		if now != nil {
			p.now = now
		}
	}
}

// NewPasswordProvider creates a password identity provider.
func NewPasswordProvider(storage CredentialStorage, tokenSecret string, opts ...PasswordOption) *PasswordProvider {
	p := &PasswordProvider{
		storage:      storage,
		secret:       []byte(tokenSecret),
		bcryptCost:   bcrypt.DefaultCost,
		tokenTTL:     8 * time.Hour,
		logger:       logger.Noop(),
		now:          time.Now,
		attemptRate:    rate.Every(time.Minute / 5),
		attemptBurst:   5,
		limiters:       make(map[string]*rate.Limiter),
		limiterPruneAt: limiterPruneFloor,
		revoked:        make(map[string]time.Time),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// SignUp creates a new account.
func (p *PasswordProvider) SignUp(ctx context.Context, email, password, displayName string) (*Identity, error) {
	email = sanitizer.NormalizeEmail(email)
	displayName = sanitizer.NormalizeWhitespace(displayName)

	if err := validator.Apply(
		validator.ValidEmail("email", email),
		validator.MinLen("password", password, MinPasswordLength),
		validator.MaxLen("password", password, 72),
	); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	c := &Credential{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: hash,
		CreatedAt:    p.now().UTC(),
	}
	if err := p.storage.CreateCredential(ctx, c); err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("failed to create credential: %w", err)
	}

	p.logger.InfoContext(ctx, "identity created",
		logger.UserID(c.ID),
		logger.Component("auth"),
	)

	return &Identity{UID: c.ID, Email: c.Email, DisplayName: c.DisplayName}, nil
}

// SignIn verifies email and password and issues a token.
// Every credential failure is reported as ErrInvalidCredentials.
func (p *PasswordProvider) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	email = sanitizer.NormalizeEmail(email)

	if !p.limiter(email).AllowN(p.now(), 1) {
		p.logger.WarnContext(ctx, "sign-in throttled", logger.Component("auth"))
		return nil, ErrTooManyAttempts
	}

	c, err := p.storage.GetCredentialByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, ErrCredentialNotFound) {
			p.logger.ErrorContext(ctx, "credential lookup failed",
				logger.Error(err),
				logger.Component("auth"),
			)
		}
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(c.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, cl, err := p.issueToken(c, p.now())
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	id := &Identity{
		UID:         c.ID,
		Email:       c.Email,
		DisplayName: c.DisplayName,
		Token:       token,
		ExpiresAt:   cl.ExpiresAt.Time,
	}
	p.notify(id)
	return id, nil
}

// SignOut revokes the token until it would have expired anyway.
func (p *PasswordProvider) SignOut(ctx context.Context, token string) error {
	cl, err := p.parseToken(token)
	if err != nil {
		return nil
	}

	p.revokedMu.Lock()
	p.revoked[cl.ID] = cl.ExpiresAt.Time
	p.pruneRevokedLocked()
	p.revokedMu.Unlock()

	p.logger.DebugContext(ctx, "identity signed out",
		logger.UserID(cl.Subject),
		logger.Component("auth"),
	)
	p.notify(nil)
	return nil
}

// Verify checks a token's signature, expiry and revocation state.
func (p *PasswordProvider) Verify(ctx context.Context, token string) (*Identity, error) {
	cl, err := p.parseToken(token)
	if err != nil {
		return nil, err
	}

	p.revokedMu.Lock()
	_, revoked := p.revoked[cl.ID]
	p.revokedMu.Unlock()
	if revoked {
		return nil, ErrTokenRevoked
	}

	return &Identity{
		UID:         cl.Subject,
		Email:       cl.Email,
		DisplayName: cl.Name,
		Token:       token,
		ExpiresAt:   cl.ExpiresAt.Time,
	}, nil
}

// OnChange registers an identity observer. Observers run synchronously in
// registration order.
func (p *PasswordProvider) OnChange(fn func(*Identity)) func() {
	o := &observer{fn: fn}

	p.observersMu.Lock()
	p.observers = append(p.observers, o)
	p.observersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.observersMu.Lock()
			defer p.observersMu.Unlock()
			for i, existing := range p.observers {
				if existing == o {
					p.observers = append(p.observers[:i], p.observers[i+1:]...)
					return
				}
			}
		})
	}
}

// DeleteAccount removes the stored credential.
func (p *PasswordProvider) DeleteAccount(ctx context.Context, uid string) error {
	return p.storage.DeleteCredential(ctx, uid)
}

func (p *PasswordProvider) notify(id *Identity) {
	p.observersMu.RLock()
	observers := make([]*observer, len(p.observers))
	copy(observers, p.observers)
	p.observersMu.RUnlock()

	for _, o := range observers {
		o.fn(id)
	}
}

func (p *PasswordProvider) limiter(email string) *rate.Limiter {
	p.limitersMu.Lock()
	defer p.limitersMu.Unlock()

	l, ok := p.limiters[email]
	if !ok {
		if len(p.limiters) >= p.limiterPruneAt {
			p.pruneLimitersLocked()
		}
		l = rate.NewLimiter(p.attemptRate, p.attemptBurst)
		p.limiters[email] = l
	}
	return l
}

// pruneLimitersLocked drops limiters that have refilled to burst; such a
// limiter behaves exactly like a new one. The next prune waits until the map
// doubles.
func (p *PasswordProvider) pruneLimitersLocked() {
	now := p.now()
	full := float64(p.attemptBurst)
	for email, l := range p.limiters {
		if l.TokensAt(now) >= full {
			delete(p.limiters, email)
		}
	}
	p.limiterPruneAt = max(limiterPruneFloor, 2*len(p.limiters))
}

func (p *PasswordProvider) pruneRevokedLocked() {
	now := p.now()
	for id, exp := range p.revoked {
		if now.After(exp) {
			delete(p.revoked, id)
		}
	}
}
