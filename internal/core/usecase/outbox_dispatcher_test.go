package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/forgeworks/crmapi/internal/core/domain"
)

type stubOutboxRepo struct {
	mu         sync.Mutex
	pending    []domain.OutboxEvent
	dispatched []int64
	failed     []int64
	dead       []int64
}

func (r *stubOutboxRepo) FetchPending(_ context.Context, _ int) ([]domain.OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.pending
	r.pending = nil
	return out, nil
}

func (r *stubOutboxRepo) MarkDispatched(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dispatched = append(r.dispatched, id)
	return nil
}

func (r *stubOutboxRepo) MarkFailed(_ context.Context, id int64, _ int, _ string, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, id)
	return nil
}

func (r *stubOutboxRepo) MarkDead(_ context.Context, id int64, _ int, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dead = append(r.dead, id)
	return nil
}

type stubPublisher struct {
	mu        sync.Mutex
	published []domain.Notification
	err       error
}

func (p *stubPublisher) Publish(_ context.Context, _ string, event domain.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, event)
	return nil
}

func pendingEvent(id int64, attempts int) domain.OutboxEvent {
	payload, _ := json.Marshal(domain.Notification{
		EventID:    "evt-1",
		EventType:  "lead.created",
		OccurredAt: time.Now().UTC(),
		Payload:    json.RawMessage(`{"lead_id":"l1"}`),
	})
	return domain.OutboxEvent{ID: id, Topic: "leads", PayloadJSON: payload, Attempts: attempts}
}

func TestDispatchBatchDelivers(t *testing.T) {
	repo := &stubOutboxRepo{pending: []domain.OutboxEvent{pendingEvent(1, 0), pendingEvent(2, 0)}}
	pub := &stubPublisher{}
	d := NewNotifyDispatcher(repo, pub, time.Second, 10)

	if err := d.dispatchBatch(context.Background()); err != nil {
		t.Fatalf("dispatch batch: %v", err)
	}

	if len(pub.published) != 2 {
		t.Errorf("published %d events, want 2", len(pub.published))
	}
	if len(repo.dispatched) != 2 {
		t.Errorf("marked %d dispatched, want 2", len(repo.dispatched))
	}
	if m := d.Metrics(); m.DeliveredTotal != 2 || m.FailedTotal != 0 || m.DeadTotal != 0 {
		t.Errorf("unexpected metrics: %+v", m)
	}
}

func TestDispatchBatchRetriesOnPublishError(t *testing.T) {
	repo := &stubOutboxRepo{pending: []domain.OutboxEvent{pendingEvent(1, 0)}}
	pub := &stubPublisher{err: errors.New("receiver down")}
	d := NewNotifyDispatcher(repo, pub, time.Second, 10)

	if err := d.dispatchBatch(context.Background()); err != nil {
		t.Fatalf("dispatch batch: %v", err)
	}

	if len(repo.failed) != 1 || len(repo.dead) != 0 {
		t.Errorf("failed=%v dead=%v, want one failed", repo.failed, repo.dead)
	}
	if m := d.Metrics(); m.FailedTotal != 1 {
		t.Errorf("unexpected metrics: %+v", m)
	}
}

func TestDispatchBatchDeadLettersAfterMaxRetry(t *testing.T) {
	repo := &stubOutboxRepo{pending: []domain.OutboxEvent{pendingEvent(1, 4)}}
	pub := &stubPublisher{err: errors.New("receiver down")}
	d := NewNotifyDispatcher(repo, pub, time.Second, 10)

	if err := d.dispatchBatch(context.Background()); err != nil {
		t.Fatalf("dispatch batch: %v", err)
	}

	if len(repo.dead) != 1 {
		t.Errorf("dead=%v, want the event dead-lettered", repo.dead)
	}
	if m := d.Metrics(); m.DeadTotal != 1 {
		t.Errorf("unexpected metrics: %+v", m)
	}
}

func TestDispatchBatchDeadLettersBadPayload(t *testing.T) {
	repo := &stubOutboxRepo{pending: []domain.OutboxEvent{{ID: 1, Topic: "leads", PayloadJSON: json.RawMessage("{"), Attempts: 4}}}
	pub := &stubPublisher{}
	d := NewNotifyDispatcher(repo, pub, time.Second, 10)

	if err := d.dispatchBatch(context.Background()); err != nil {
		t.Fatalf("dispatch batch: %v", err)
	}

	if len(pub.published) != 0 {
		t.Error("undecodable payload must not be published")
	}
	if len(repo.dead) != 1 {
		t.Errorf("dead=%v, want the event dead-lettered", repo.dead)
	}
}

func TestBackoffDuration(t *testing.T) {
	if backoffDuration(1) != time.Second {
		t.Errorf("attempt 1 = %v", backoffDuration(1))
	}
	if backoffDuration(3) != 9*time.Second {
		t.Errorf("attempt 3 = %v", backoffDuration(3))
	}
	if backoffDuration(100) != 5*time.Minute {
		t.Errorf("attempt 100 should cap at 5m, got %v", backoffDuration(100))
	}
}

func TestDispatcherStartClose(t *testing.T) {
	repo := &stubOutboxRepo{}
	d := NewNotifyDispatcher(repo, &stubPublisher{}, 10*time.Millisecond, 10)

	d.Start(context.Background())
	d.Start(context.Background()) // second start is a no-op
	time.Sleep(30 * time.Millisecond)

	if err := d.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	// Closing again must not hang or panic.
	if err := d.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
