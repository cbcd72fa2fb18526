package events

import (
	"context"
	"log"

	"github.com/forgeworks/crmapi/internal/core/domain"
)

type LogPublisher struct{}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

func (p *LogPublisher) Publish(_ context.Context, topic string, event domain.Notification) error {
	log.Printf("notify publish topic=%s event_id=%s event_type=%s", topic, event.EventID, event.EventType)
	return nil
}
