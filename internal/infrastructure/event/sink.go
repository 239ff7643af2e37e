package event

import (
	"context"
	"fmt"

	"github.com/erp/backoffice/internal/domain/shared"
)

// Sink receives outbox entries that are due for delivery. An error leaves the
// entry in the outbox for a later retry.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, entry *shared.OutboxEntry) error
	Close() error
}

// BusSink rebuilds the domain event and dispatches it to in-process handlers
type BusSink struct {
	bus        shared.EventPublisher
	serializer *EventSerializer
}

// NewBusSink creates a sink in front of an in-process publisher
func NewBusSink(bus shared.EventPublisher, serializer *EventSerializer) *BusSink {
	return &BusSink{bus: bus, serializer: serializer}
}

// Name implements Sink
func (s *BusSink) Name() string { return "bus" }

// Deliver implements Sink
func (s *BusSink) Deliver(ctx context.Context, entry *shared.OutboxEntry) error {
	event, err := s.serializer.Deserialize(entry.EventType, entry.Payload)
	if err != nil {
		return fmt.Errorf("decode outbox entry %s: %w", entry.ID, err)
	}
	return s.bus.Publish(ctx, event)
}

// Close implements Sink
func (s *BusSink) Close() error { return nil }

// messageHeaders are attached to every broker message
func messageHeaders(entry *shared.OutboxEntry) map[string]string {
	return map[string]string{
		"event_id":       entry.EventID.String(),
		"event_type":     entry.EventType,
		"aggregate_type": entry.AggregateType,
		"aggregate_id":   entry.AggregateID.String(),
	}
}

var _ Sink = (*BusSink)(nil)
