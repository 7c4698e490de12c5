package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/dmitrymomot/medstock/pkg/logger"
)

// Config selects the broker. An empty URL means events are dropped.
type Config struct {
	URL      string `env:"AMQP_URL"`
	Exchange string `env:"AMQP_EXCHANGE" envDefault:"medstock.events"`
}

// AMQP publishes events to a durable topic exchange, routed by event type.
// A single channel is shared and guarded by a mutex.
type AMQP struct {
	exchange string
	log      *slog.Logger

	mu     sync.Mutex
	conn   *amqp.Connection
	ch     *amqp.Channel
	closed bool
}

// AMQPOption configures an AMQP publisher.
type AMQPOption func(*AMQP)

// WithLogger sets the publisher logger.
func WithLogger(l *slog.Logger) AMQPOption {
	return func(p *AMQP) {
		if l != nil {
			p.log = l
		}
	}
}

// Dial connects to the broker and declares the exchange.
func Dial(cfg Config, opts ...AMQPOption) (*AMQP, error) {
	if cfg.URL == "" {
		return nil, ErrEmptyURL
	}
	p := &AMQP{exchange: cfg.Exchange, log: logger.Noop()}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.With(logger.Component("events"))

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(p.exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %q: %w", p.exchange, err)
	}
	p.conn, p.ch = conn, ch
	return p, nil
}

// Publish sends ev as a persistent JSON message with routing key ev.Type.
func (p *AMQP) Publish(ctx context.Context, ev Event) error {
	msg, err := publishing(ev)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	if err := p.ch.PublishWithContext(ctx, p.exchange, ev.Type, false, false, msg); err != nil {
		return errors.Join(ErrPublish, err)
	}
	p.log.DebugContext(ctx, "event published", logger.Event(ev.Type))
	return nil
}

// Close closes the channel and the connection. It is idempotent.
func (p *AMQP) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return errors.Join(p.ch.Close(), p.conn.Close())
}

func publishing(ev Event) (amqp.Publishing, error) {
	if ev.Type == "" || ev.ID == "" {
		return amqp.Publishing{}, ErrInvalidEvent
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp.Publishing{}, errors.Join(ErrInvalidEvent, err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ID,
		Type:         ev.Type,
		Timestamp:    ev.OccurredAt,
		Body:         body,
	}, nil
}
