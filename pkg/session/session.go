package session

import (
	"time"

	"github.com/dmitrymomot/medstock/pkg/rbac"
)

// Profile is the part of a user record the session needs.
type Profile struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Role         rbac.Role `json:"role"`
	Active       bool      `json:"active"`
	FacilityName string    `json:"facility_name,omitempty"`
	Region       string    `json:"region,omitempty"`
	District     string    `json:"district,omitempty"`
}

// Source records how a session's profile was resolved.
type Source string

const (
	SourceUID         Source = "uid"
	SourceEmail       Source = "email"
	SourceSeed        Source = "seed"
	SourceSynthesized Source = "synthesized"
)

// Session is the live, authenticated representation of the current user.
type Session struct {
	Token          string    `json:"token"`
	IdentityToken  string    `json:"identity_token"`
	UID            string    `json:"uid"`
	Email          string    `json:"email"`
	Profile        Profile   `json:"profile"`
	Source         Source    `json:"source"`
	ExpiresAt      time.Time `json:"expires_at"`
	CreatedAt      time.Time `json:"created_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

// Role returns the role used for access decisions.
func (s *Session) Role() rbac.Role {
	if s == nil {
		return ""
	}
	return s.Profile.Role
}

// IsExpired reports whether the session has expired at now.
func (s *Session) IsExpired(now time.Time) bool {
	return s != nil && now.After(s.ExpiresAt)
}

func (s *Session) clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}
