package session

import "github.com/dmitrymomot/medstock/pkg/rbac"

// EventType identifies a session state change.
type EventType string

const (
	EventSignedIn    EventType = "signed_in"
	EventSignedOut   EventType = "signed_out"
	EventRestored    EventType = "restored"
	EventRoleChanged EventType = "role_changed"
)

// Event is delivered to observers. Session is a copy and is nil only when it
// could not be loaded before sign-out.
type Event struct {
	Type         EventType
	Session      *Session
	PreviousRole rbac.Role
}

type observer struct {
	fn func(Event)
}
