package event

import (
	"context"
	"sync"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// testEvent is a minimal registered event carrying one payload field
type testEvent struct {
	shared.BaseDomainEvent
	SKU string `json:"sku"`
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New()),
		SKU:             "ART-00042",
	}
}

// recordingHandler remembers every event it is handed and answers with err
type recordingHandler struct {
	types []string

	mu   sync.Mutex
	got  []shared.DomainEvent
	fail error
}

func newRecordingHandler(types ...string) *recordingHandler {
	return &recordingHandler{types: types}
}

func (h *recordingHandler) EventTypes() []string { return h.types }

func (h *recordingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.got = append(h.got, event)
	return h.fail
}

func (h *recordingHandler) failWith(err error) {
	h.mu.Lock()
	h.fail = err
	h.mu.Unlock()
}

func (h *recordingHandler) seen() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.got...)
}
