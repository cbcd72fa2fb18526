package sqlite

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/forgeworks/crmapi/internal/core/domain"
)

func TestLeadCreateEnqueuesNotification(t *testing.T) {
	db := newTestDB(t)
	leads := NewLeadRepository(db)
	outbox := NewOutboxRepository(db)

	if _, err := leads.Create(context.Background(), domain.Lead{
		Name:   "Jane",
		Email:  "j@x.com",
		Status: domain.LeadNew,
		Source: "intake",
	}); err != nil {
		t.Fatalf("create lead: %v", err)
	}

	events, err := outbox.FetchPending(context.Background(), 10)
	if err != nil {
		t.Fatalf("fetch pending: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("pending events = %d, want 1", len(events))
	}

	event := events[0]
	if event.Topic != "leads" {
		t.Errorf("topic = %q, want leads", event.Topic)
	}
	var notification domain.Notification
	if err := json.Unmarshal(event.PayloadJSON, &notification); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if notification.EventType != "lead.created" {
		t.Errorf("event type = %q, want lead.created", notification.EventType)
	}
	if notification.EventID == "" {
		t.Error("event id should be set")
	}
}

func TestSuggestionCreateEnqueuesNotification(t *testing.T) {
	db := newTestDB(t)
	suggestions := NewSuggestionRepository(db)
	outbox := NewOutboxRepository(db)

	if _, err := suggestions.Create(context.Background(), domain.Suggestion{
		Title:  "Buy a coffee machine",
		Status: domain.SuggestionOpen,
	}); err != nil {
		t.Fatalf("create suggestion: %v", err)
	}

	events, err := outbox.FetchPending(context.Background(), 10)
	if err != nil {
		t.Fatalf("fetch pending: %v", err)
	}
	if len(events) != 1 || events[0].Topic != "suggestions" {
		t.Fatalf("unexpected pending events: %+v", events)
	}
}

func TestOutboxLifecycle(t *testing.T) {
	db := newTestDB(t)
	leads := NewLeadRepository(db)
	outbox := NewOutboxRepository(db)

	if _, err := leads.Create(context.Background(), domain.Lead{Name: "Jane", Email: "j@x.com", Status: domain.LeadNew}); err != nil {
		t.Fatalf("create lead: %v", err)
	}
	events, err := outbox.FetchPending(context.Background(), 10)
	if err != nil || len(events) != 1 {
		t.Fatalf("fetch pending: %v (%d events)", err, len(events))
	}
	id := events[0].ID

	// A failure pushes the next attempt into the future, hiding the row.
	future := time.Now().UTC().Add(time.Hour).Format(time.RFC3339Nano)
	if err := outbox.MarkFailed(context.Background(), id, 1, future, "receiver down"); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	events, err = outbox.FetchPending(context.Background(), 10)
	if err != nil {
		t.Fatalf("fetch pending: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("backed-off event should not be fetched, got %d", len(events))
	}

	// Once the backoff elapses it reappears with the attempt count.
	past := time.Now().UTC().Add(-time.Second).Format(time.RFC3339Nano)
	if err := outbox.MarkFailed(context.Background(), id, 2, past, "receiver down"); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	events, err = outbox.FetchPending(context.Background(), 10)
	if err != nil || len(events) != 1 {
		t.Fatalf("fetch pending after backoff: %v (%d events)", err, len(events))
	}
	if events[0].Attempts != 2 || events[0].LastError != "receiver down" {
		t.Errorf("attempts=%d lastError=%q", events[0].Attempts, events[0].LastError)
	}

	if err := outbox.MarkDispatched(context.Background(), id); err != nil {
		t.Fatalf("mark dispatched: %v", err)
	}
	events, err = outbox.FetchPending(context.Background(), 10)
	if err != nil || len(events) != 0 {
		t.Fatalf("dispatched event should not be fetched: %v (%d events)", err, len(events))
	}
}

func TestOutboxMarkDead(t *testing.T) {
	db := newTestDB(t)
	leads := NewLeadRepository(db)
	outbox := NewOutboxRepository(db)

	if _, err := leads.Create(context.Background(), domain.Lead{Name: "Jane", Email: "j@x.com", Status: domain.LeadNew}); err != nil {
		t.Fatalf("create lead: %v", err)
	}
	events, _ := outbox.FetchPending(context.Background(), 10)
	if len(events) != 1 {
		t.Fatalf("expected one pending event")
	}

	if err := outbox.MarkDead(context.Background(), events[0].ID, 5, "gave up"); err != nil {
		t.Fatalf("mark dead: %v", err)
	}
	events, err := outbox.FetchPending(context.Background(), 10)
	if err != nil || len(events) != 0 {
		t.Fatalf("dead event should not be fetched: %v (%d events)", err, len(events))
	}
}
