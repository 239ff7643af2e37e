package event

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/trade"
)

// EventSerializer turns domain events into outbox payloads and back. Decoding
// needs the concrete type, so every event type is registered up front.
type EventSerializer struct {
	mu    sync.RWMutex
	types map[string]reflect.Type
}

// NewEventSerializer creates a serializer without registrations
func NewEventSerializer() *EventSerializer {
	return &EventSerializer{types: make(map[string]reflect.Type)}
}

// NewDomainSerializer creates a serializer that knows every event the back
// office emits
func NewDomainSerializer() *EventSerializer {
	s := NewEventSerializer()
	s.Register(catalog.EventTypeProductCreated, &catalog.ProductCreatedEvent{})
	s.Register(catalog.EventTypeProductPriceChanged, &catalog.ProductPriceChangedEvent{})
	s.Register(inventory.EventTypeStockAdjusted, &inventory.StockAdjustedEvent{})
	s.Register(trade.EventTypeOrderPlaced, &trade.OrderPlacedEvent{})
	s.Register(trade.EventTypeOrderStatusChanged, &trade.OrderStatusChangedEvent{})
	s.Register(trade.EventTypePurchaseStatusChanged, &trade.PurchaseStatusChangedEvent{})
	return s
}

// Register binds eventType to the concrete type of sample
func (s *EventSerializer) Register(eventType string, sample shared.DomainEvent) {
	t := reflect.TypeOf(sample)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	s.mu.Lock()
	s.types[eventType] = t
	s.mu.Unlock()
}

// Serialize encodes an event as JSON
func (s *EventSerializer) Serialize(event shared.DomainEvent) ([]byte, error) {
	return json.Marshal(event)
}

// Deserialize decodes a payload of a registered event type
func (s *EventSerializer) Deserialize(eventType string, data []byte) (shared.DomainEvent, error) {
	s.mu.RLock()
	t, ok := s.types[eventType]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}

	ptr := reflect.New(t).Interface()
	if err := json.Unmarshal(data, ptr); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", eventType, err)
	}
	event, ok := ptr.(shared.DomainEvent)
	if !ok {
		return nil, fmt.Errorf("registered type for %s is not a domain event", eventType)
	}
	return event, nil
}

// IsRegistered checks if an event type is registered
func (s *EventSerializer) IsRegistered(eventType string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.types[eventType]
	return ok
}

// RegisteredTypes returns the registered event types, sorted
func (s *EventSerializer) RegisteredTypes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.types))
	for t := range s.types {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
