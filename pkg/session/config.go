package session

import "time"

// Config holds session configuration.
type Config struct {
	// CookieName is the name of the session cookie.
	CookieName string `env:"SESSION_COOKIE_NAME" envDefault:"medstock_sid"`

	// MaxLifetime caps a session even if the identity token lives longer.
	MaxLifetime time.Duration `env:"SESSION_MAX_LIFETIME" envDefault:"12h"`

	// ActivityUpdateThreshold is the minimum time between activity writes.
	ActivityUpdateThreshold time.Duration `env:"SESSION_ACTIVITY_UPDATE_THRESHOLD" envDefault:"5m"`

	// CleanupInterval for expired sessions in the memory store (0 to disable).
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"5m"`

	// SecureCookies enables the Secure flag on session cookies.
	SecureCookies bool `env:"SESSION_SECURE_COOKIES" envDefault:"false"`

	// HeaderName also accepts "Bearer" tokens from this request header, for
	// API clients. Empty disables it.
	HeaderName string `env:"SESSION_HEADER"`

	// Store selects the backend: "memory" or "redis".
	Store string `env:"SESSION_STORE" envDefault:"memory"`
}

// DefaultConfig returns default session configuration.
func DefaultConfig() Config {
	return Config{
		CookieName:              "medstock_sid",
		MaxLifetime:             12 * time.Hour,
		ActivityUpdateThreshold: 5 * time.Minute,
		CleanupInterval:         5 * time.Minute,
		Store:                   "memory",
	}
}
