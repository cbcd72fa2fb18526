package domain

import (
	"encoding/json"
	"time"
)

// Notification is the payload delivered to webhook receivers for domain
// events such as lead intake or new suggestions.
type Notification struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// OutboxEvent is a pending notification row. Rows are written in the same
// transaction as the mutation that produced them and drained by the
// dispatcher.
type OutboxEvent struct {
	ID            int64
	EventID       string
	Topic         string
	PayloadJSON   json.RawMessage
	Status        string
	Attempts      int
	NextAttemptAt time.Time
	LastError     string
	CreatedAt     time.Time
	DispatchedAt  *time.Time
}
