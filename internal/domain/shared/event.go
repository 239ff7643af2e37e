package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DomainEvent is something that happened to an aggregate and is worth telling
// other parts of the system about (stock moved, an order was placed).
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
}

// BaseDomainEvent is the envelope embedded by every concrete event. The JSON
// names are part of the outbox payload and of what brokers receive.
type BaseDomainEvent struct {
	ID      uuid.UUID `json:"id"`
	Type    string    `json:"type"`
	At      time.Time `json:"timestamp"`
	AggID   uuid.UUID `json:"aggregate_id"`
	AggType string    `json:"aggregate_type"`
}

// NewBaseDomainEvent stamps a new envelope for the aggregate aggID
func NewBaseDomainEvent(eventType, aggType string, aggID uuid.UUID) BaseDomainEvent {
	return BaseDomainEvent{
		ID:      uuid.New(),
		Type:    eventType,
		At:      time.Now(),
		AggID:   aggID,
		AggType: aggType,
	}
}

func (e *BaseDomainEvent) EventID() uuid.UUID     { return e.ID }
func (e *BaseDomainEvent) EventType() string      { return e.Type }
func (e *BaseDomainEvent) OccurredAt() time.Time  { return e.At }
func (e *BaseDomainEvent) AggregateID() uuid.UUID { return e.AggID }
func (e *BaseDomainEvent) AggregateType() string  { return e.AggType }

// EventPublisher hands events to in-process subscribers
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventRecorder stores events inside the running write. They are delivered
// only if that write commits.
type EventRecorder interface {
	Record(ctx context.Context, events ...DomainEvent) error
}

// EventHandler consumes delivered events of the types it lists
type EventHandler interface {
	EventTypes() []string
	Handle(ctx context.Context, event DomainEvent) error
}
