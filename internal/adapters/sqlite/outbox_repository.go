package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/forgeworks/crmapi/internal/adapters/sqlite/gormsqlite"
	"github.com/forgeworks/crmapi/internal/core/domain"
)

const (
	outboxStatusPending    = "pending"
	outboxStatusDispatched = "dispatched"
	outboxStatusDead       = "dead"
)

type outboxEventModel struct {
	ID            int64      `gorm:"column:id;primaryKey;autoIncrement"`
	EventID       string     `gorm:"column:event_id;not null"`
	Topic         string     `gorm:"column:topic;not null"`
	Payload       string     `gorm:"column:payload;not null"`
	Status        string     `gorm:"column:status;not null"`
	Attempts      int        `gorm:"column:attempts;not null"`
	NextAttemptAt string     `gorm:"column:next_attempt_at;not null"`
	LastError     string     `gorm:"column:last_error;not null"`
	CreatedAt     time.Time  `gorm:"column:created_at;not null"`
	DispatchedAt  *time.Time `gorm:"column:dispatched_at"`
}

func (outboxEventModel) TableName() string {
	return "outbox_events"
}

// enqueueNotification writes an outbox row inside the caller's transaction so
// the event is committed atomically with the mutation that produced it.
func enqueueNotification(tx *gormsqlite.Tx, topic, eventType string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode event payload: %w", err)
	}
	now := time.Now().UTC()
	notification := domain.Notification{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OccurredAt: now,
		Payload:    body,
	}
	encoded, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	row := outboxEventModel{
		EventID:       notification.EventID,
		Topic:         topic,
		Payload:       string(encoded),
		Status:        outboxStatusPending,
		NextAttemptAt: now.Format(time.RFC3339Nano),
		CreatedAt:     now,
	}
	if err := tx.Create(&row).Error; err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}
	return nil
}

type OutboxRepository struct {
	db *gormsqlite.DB
}

func NewOutboxRepository(db *gormsqlite.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

func (r *OutboxRepository) FetchPending(ctx context.Context, limit int) ([]domain.OutboxEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	var models []outboxEventModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Where("status = ? AND next_attempt_at <= ?", outboxStatusPending, now).
			Order("id ASC").
			Limit(limit).
			Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("fetch pending events: %w", err)
	}

	events := make([]domain.OutboxEvent, 0, len(models))
	for _, model := range models {
		events = append(events, outboxEventToDomain(model))
	}
	return events, nil
}

func (r *OutboxRepository) MarkDispatched(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Model(&outboxEventModel{}).Where("id = ?", id).Updates(map[string]any{
			"status":        outboxStatusDispatched,
			"dispatched_at": &now,
		}).Error
	})
	if err != nil {
		return fmt.Errorf("mark dispatched: %w", err)
	}
	return nil
}

func (r *OutboxRepository) MarkFailed(ctx context.Context, id int64, attempts int, nextAttemptAt string, errMsg string) error {
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Model(&outboxEventModel{}).Where("id = ?", id).Updates(map[string]any{
			"attempts":        attempts,
			"next_attempt_at": nextAttemptAt,
			"last_error":      errMsg,
		}).Error
	})
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return nil
}

func (r *OutboxRepository) MarkDead(ctx context.Context, id int64, attempts int, errMsg string) error {
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Model(&outboxEventModel{}).Where("id = ?", id).Updates(map[string]any{
			"status":     outboxStatusDead,
			"attempts":   attempts,
			"last_error": errMsg,
		}).Error
	})
	if err != nil {
		return fmt.Errorf("mark dead: %w", err)
	}
	return nil
}

func outboxEventToDomain(model outboxEventModel) domain.OutboxEvent {
	next, _ := time.Parse(time.RFC3339Nano, model.NextAttemptAt)
	return domain.OutboxEvent{
		ID:            model.ID,
		EventID:       model.EventID,
		Topic:         model.Topic,
		PayloadJSON:   json.RawMessage(model.Payload),
		Status:        model.Status,
		Attempts:      model.Attempts,
		NextAttemptAt: next,
		LastError:     model.LastError,
		CreatedAt:     model.CreatedAt,
		DispatchedAt:  model.DispatchedAt,
	}
}
