// Package service holds outbound integrations: the RabbitMQ event publisher
// and the hosted chat-model client.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/kodbank/internal/model"
	"github.com/iliyamo/kodbank/internal/queue"
)

// EventPublisher delivers account events.  Failures are reported to the
// caller, which logs them and carries on; an event never changes an HTTP
// response.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.AccountEvent) error
}

// NewAccountEvent stamps a fresh event of typ for a.
func NewAccountEvent(typ string, a model.Account) queue.AccountEvent {
	return queue.AccountEvent{
		ID:         uuid.NewString(),
		Type:       typ,
		Username:   a.Username,
		AccountID:  a.ID,
		Role:       string(a.Role),
		OccurredAt: time.Now().UTC(),
	}
}

// NopPublisher drops every event.  Used when EVENTS_ENABLED is false.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, queue.AccountEvent) error { return nil }

// RabbitPublisher publishes each event on its own short-lived connection to
// the durable account events queue.  Messages are marked as persistent.
type RabbitPublisher struct {
	URL         string
	DialTimeout time.Duration
}

func NewRabbitPublisher(url string) *RabbitPublisher {
	return &RabbitPublisher{URL: url, DialTimeout: 2 * time.Second}
}

func (p *RabbitPublisher) Publish(ctx context.Context, ev queue.AccountEvent) error {
	conn, err := amqp.DialConfig(p.URL, amqp.Config{Dial: amqp.DefaultDial(p.DialTimeout)})
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		queue.AccountEventsQueue, // name
		true,                     // durable
		false,                    // autoDelete
		false,                    // exclusive
		false,                    // noWait
		nil,                      // args
	); err != nil {
		return fmt.Errorf("declare %s: %w", queue.AccountEventsQueue, err)
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode %s: %w", ev.Type, err)
	}

	if err := ch.PublishWithContext(ctx,
		"",                       // default exchange
		queue.AccountEventsQueue, // routing key = queue name
		false,                    // mandatory
		false,                    // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    ev.ID,
			Type:         ev.Type,
			Timestamp:    ev.OccurredAt,
			Body:         body,
		},
	); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}
