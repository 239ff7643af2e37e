package event

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultProcessedTTL outlives the backoff of the last outbox retry
const DefaultProcessedTTL = 24 * time.Hour

// ProcessedStore remembers which event ids a consumer has finished
type ProcessedStore interface {
	// MarkProcessed returns false if the id was already marked
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)
	IsProcessed(ctx context.Context, eventID string) (bool, error)
}

// DeliveryCounters counts what an IdempotentHandler did with deliveries.
// Several handlers may share one.
type DeliveryCounters struct {
	handled    atomic.Int64
	duplicates atomic.Int64
	failed     atomic.Int64
}

// DeliveryStats is a point in time copy of DeliveryCounters
type DeliveryStats struct {
	Handled    int64 `json:"handled"`
	Duplicates int64 `json:"duplicates"`
	Failed     int64 `json:"failed"`
}

func (c *DeliveryCounters) Snapshot() DeliveryStats {
	return DeliveryStats{
		Handled:    c.handled.Load(),
		Duplicates: c.duplicates.Load(),
		Failed:     c.failed.Load(),
	}
}

// IdempotentHandler runs the wrapped consumer at most once per event id.
// The outbox redelivers a whole entry when any one sink failed, so a consumer
// that already succeeded sees the event again.
type IdempotentHandler struct {
	inner    shared.EventHandler
	store    ProcessedStore
	ttl      time.Duration
	logger   *zap.Logger
	counters *DeliveryCounters
}

// IdempotentOption customizes an IdempotentHandler
type IdempotentOption func(*IdempotentHandler)

// WithCounters makes the handler count into c
func WithCounters(c *DeliveryCounters) IdempotentOption {
	return func(h *IdempotentHandler) { h.counters = c }
}

// NewIdempotentHandler wraps inner. A ttl of zero uses DefaultProcessedTTL.
func NewIdempotentHandler(inner shared.EventHandler, store ProcessedStore, ttl time.Duration, logger *zap.Logger, opts ...IdempotentOption) *IdempotentHandler {
	if ttl <= 0 {
		ttl = DefaultProcessedTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &IdempotentHandler{
		inner:    inner,
		store:    store,
		ttl:      ttl,
		logger:   logger,
		counters: &DeliveryCounters{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *IdempotentHandler) EventTypes() []string { return h.inner.EventTypes() }

func (h *IdempotentHandler) Counters() *DeliveryCounters { return h.counters }

// Handle skips ids already marked. The id is marked only after inner
// succeeded, so a failed attempt runs again on the next delivery. When the
// store cannot be read the event is handled anyway: a second stock alert is
// better than none.
func (h *IdempotentHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	id := event.EventID().String()
	log := h.logger.With(zap.String("event_id", id), zap.String("event_type", event.EventType()))

	done, err := h.store.IsProcessed(ctx, id)
	switch {
	case err != nil:
		log.Warn("Processed-event lookup failed, handling anyway", zap.Error(err))
	case done:
		h.counters.duplicates.Add(1)
		log.Debug("Skipping redelivered event")
		return nil
	}

	if err := h.inner.Handle(ctx, event); err != nil {
		h.counters.failed.Add(1)
		return err
	}
	h.counters.handled.Add(1)

	if _, err := h.store.MarkProcessed(ctx, id, h.ttl); err != nil {
		log.Warn("Could not mark event as processed", zap.Error(err))
	}
	return nil
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)
