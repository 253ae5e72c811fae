// Package queue defines message payloads exchanged over the message broker.
package queue

import "time"

// AccountEventsQueue is the durable queue that carries AccountEvent messages.
const AccountEventsQueue = "kodbank.account.events"

// Event types.
const (
	EventAccountRegistered = "account.registered"
	EventSessionIssued     = "session.issued"
)

// AccountEvent is published after a registration or a successful login.  It
// carries enough for an audit trail without querying the primary database;
// credentials and tokens are never included.
type AccountEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Username   string    `json:"username"`
	AccountID  uint64    `json:"account_id"`
	Role       string    `json:"role"`
	OccurredAt time.Time `json:"occurred_at"`
}
