package session

import "errors"

var (
	// ErrSessionNotFound indicates no session was found for the token.
	ErrSessionNotFound = errors.New("session.not_found")

	// ErrSessionExpired indicates the session or its identity token has expired.
	ErrSessionExpired = errors.New("session.expired")

	// ErrInvalidSession indicates a malformed session value.
	ErrInvalidSession = errors.New("session.invalid")

	// ErrAccountDisabled indicates the joined user record is inactive.
	ErrAccountDisabled = errors.New("session.account_disabled")

	// ErrProfileNotFound is returned by a Directory when no record matches.
	ErrProfileNotFound = errors.New("session.profile_not_found")

	// ErrDirectoryUnavailable wraps Directory failures other than not-found.
	ErrDirectoryUnavailable = errors.New("session.directory_unavailable")

	// ErrTokenGeneration indicates token generation failed.
	ErrTokenGeneration = errors.New("session.token_generation_failed")
)
