package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"stayhub/internal/domain/shared/events"
)

// Publisher is the broker slice the Kafka notifier publishes through.
// The publisher owns topic selection; the notifier only shapes records.
type Publisher interface {
	Publish(ctx context.Context, key string, payload []byte, headers map[string]string) error
}

// KafkaNotifier publishes a CloudEvents-style record per domain event
// drained from the aggregate. The envelope timestamp is the event's own
// occurrence time, not the publish time. Delivery is best-effort: the
// caller logs failures and never rolls back the transition.
type KafkaNotifier struct {
	Publisher Publisher
	Source    string
}

func (n *KafkaNotifier) Notify(ctx context.Context, event events.DomainEvent) error {
	payload, err := json.Marshal(map[string]any{
		"specversion":     "1.0",
		"id":              uuid.NewString(),
		"type":            event.EventName() + ".v1",
		"source":          n.source(),
		"time":            event.OccurredAt(),
		"datacontenttype": "application/json",
		"data":            event,
	})
	if err != nil {
		return err
	}
	headers := map[string]string{"content-type": "application/cloudevents+json"}
	return n.Publisher.Publish(ctx, event.AggregateID(), payload, headers)
}

func (n *KafkaNotifier) source() string {
	if n.Source != "" {
		return n.Source
	}
	return "app://stayhub"
}

// LogNotifier is the dev fallback when no broker is configured.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(ctx context.Context, event events.DomainEvent) error {
	if n.Logger != nil {
		n.Logger.Info("reservation event", "event", event.EventName(), "reservation_id", event.AggregateID(), "occurred_at", event.OccurredAt())
	}
	return nil
}
