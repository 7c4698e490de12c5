package events

import (
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	ev, err := New(UserRoleAssigned, "u-1", map[string]string{"role": "admin"})
	require.NoError(t, err)
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, UserRoleAssigned, ev.Type)
	assert.Equal(t, "u-1", ev.Subject)
	assert.JSONEq(t, `{"role":"admin"}`, string(ev.Payload))
	assert.False(t, ev.OccurredAt.IsZero())

	_, err = New(UserUpdated, "u-1", make(chan int))
	assert.ErrorIs(t, err, ErrInvalidEvent)
}

func TestMemory(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	ctx := t.Context()

	a, _ := New(UserCreated, "u-1", nil)
	b, _ := New(UserDeleted, "u-1", nil)
	require.NoError(t, m.Publish(ctx, a))
	require.NoError(t, m.Publish(ctx, b))
	assert.Equal(t, []string{UserCreated, UserDeleted}, m.Types())

	boom := errors.New("boom")
	m.FailWith(boom)
	assert.ErrorIs(t, m.Publish(ctx, a), boom)
	assert.Len(t, m.Events(), 2)
}

func TestNoop(t *testing.T) {
	t.Parallel()
	var p Publisher = Noop{}
	assert.NoError(t, p.Publish(t.Context(), Event{}))
}

func TestPublishing(t *testing.T) {
	t.Parallel()

	ev, err := New(UserStatusChanged, "u-9", map[string]string{"status": "inactive"})
	require.NoError(t, err)

	msg, err := publishing(ev)
	require.NoError(t, err)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, ev.ID, msg.MessageId)
	assert.Equal(t, UserStatusChanged, msg.Type)

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, ev.Subject, decoded.Subject)

	_, err = publishing(Event{})
	assert.ErrorIs(t, err, ErrInvalidEvent)
}

func TestDialRequiresURL(t *testing.T) {
	t.Parallel()
	_, err := Dial(Config{})
	assert.ErrorIs(t, err, ErrEmptyURL)
}
