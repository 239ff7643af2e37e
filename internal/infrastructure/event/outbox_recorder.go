package event

import (
	"context"
	"fmt"

	"github.com/erp/backoffice/internal/domain/shared"
)

// OutboxRecorder stores domain events in the outbox. The repository writes
// through the transaction on ctx, so the events commit or roll back together
// with the change that raised them.
type OutboxRecorder struct {
	repo       shared.OutboxRepository
	serializer *EventSerializer
	maxRetries int
}

// NewOutboxRecorder creates a new outbox recorder
func NewOutboxRecorder(repo shared.OutboxRepository, serializer *EventSerializer, maxRetries int) *OutboxRecorder {
	if maxRetries <= 0 {
		maxRetries = shared.DefaultMaxRetries
	}
	return &OutboxRecorder{repo: repo, serializer: serializer, maxRetries: maxRetries}
}

// Record serializes the events and saves them as pending outbox entries
func (r *OutboxRecorder) Record(ctx context.Context, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	entries := make([]*shared.OutboxEntry, 0, len(events))
	for _, event := range events {
		payload, err := r.serializer.Serialize(event)
		if err != nil {
			return fmt.Errorf("serialize %s: %w", event.EventType(), err)
		}
		entry := shared.NewOutboxEntry(event, payload)
		entry.MaxRetries = r.maxRetries
		entries = append(entries, entry)
	}
	return r.repo.Save(ctx, entries...)
}

var _ shared.EventRecorder = (*OutboxRecorder)(nil)
