// Package events publishes domain events about user records.
//
// Publishing is fire-and-forget from the caller's point of view: the users
// service logs a failed publish and carries on. Three publishers exist:
// Noop when no broker is configured, Memory for tests, and AMQP for RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Event type names.
const (
	UserCreated       = "user.created"
	UserUpdated       = "user.updated"
	UserRoleAssigned  = "user.role_assigned"
	UserStatusChanged = "user.status_changed"
	UserDeleted       = "user.deleted"
)

var (
	ErrPublish      = errors.New("events.publish_failed")
	ErrClosed       = errors.New("events.publisher_closed")
	ErrEmptyURL     = errors.New("events.empty_broker_url")
	ErrInvalidEvent = errors.New("events.invalid_event")
)

// Event is one domain fact. Payload is marshalled as JSON.
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Subject    string          `json:"subject"`
	ActorID    string          `json:"actor_id,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// New builds an event for subject with a fresh ID.
func New(eventType, subject string, payload any) (Event, error) {
	ev := Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Subject:    subject,
		OccurredAt: time.Now().UTC(),
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return Event{}, errors.Join(ErrInvalidEvent, err)
		}
		ev.Payload = raw
	}
	return ev, nil
}

// Publisher delivers events to interested parties.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Noop discards every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
