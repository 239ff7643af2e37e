package event

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/backoffice/internal/domain/shared"
	"go.uber.org/zap"
)

var _ shared.EventPublisher = (*InMemoryEventBus)(nil)

// InMemoryEventBus calls in-process handlers synchronously. It sits behind
// the outbox, so a returned error means the entry is retried.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
}

func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventBus{registry: NewHandlerRegistry(), logger: logger}
}

// Subscribe registers handler for eventTypes, or for handler.EventTypes()
// when none are given
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("event handler subscribed", zap.Strings("event_types", eventTypes))
}

func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

// Publish runs every handler of every event, even after a failure, and
// returns the failures joined
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	var failures []error
	for _, ev := range events {
		for _, h := range b.registry.GetHandlers(ev.EventType()) {
			err := safeHandle(ctx, h, ev)
			if err == nil {
				continue
			}
			b.logger.Error("event handler failed",
				zap.String("event_type", ev.EventType()),
				zap.Stringer("event_id", ev.EventID()),
				zap.Error(err),
			)
			failures = append(failures, err)
		}
	}
	return errors.Join(failures...)
}

// safeHandle turns a handler panic into an error
func safeHandle(ctx context.Context, h shared.EventHandler, ev shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("event handler panicked on %s: %v", ev.EventType(), r)
		}
	}()
	return h.Handle(ctx, ev)
}
