package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry_Register_SpecificTypes(t *testing.T) {
	registry := NewHandlerRegistry()
	handler := newRecordingHandler("OrderPlaced", "OrderStatusChanged")

	registry.Register(handler, "OrderPlaced", "OrderStatusChanged")

	handlers := registry.GetHandlers("OrderPlaced")
	assert.Len(t, handlers, 1)
	assert.Same(t, handler, handlers[0])
	assert.Len(t, registry.GetHandlers("OrderStatusChanged"), 1)
	assert.Empty(t, registry.GetHandlers("StockAdjusted"))
}

func TestHandlerRegistry_Wildcard(t *testing.T) {
	registry := NewHandlerRegistry()
	typed := newRecordingHandler("OrderPlaced")
	wildcard := newRecordingHandler()

	registry.Register(typed, "OrderPlaced")
	registry.Register(wildcard)

	handlers := registry.GetHandlers("OrderPlaced")
	assert.Len(t, handlers, 2)
	assert.Same(t, typed, handlers[0], "typed handlers come first")
	assert.Len(t, registry.GetHandlers("StockAdjusted"), 1)
}

func TestHandlerRegistry_Unregister(t *testing.T) {
	registry := NewHandlerRegistry()
	h1 := newRecordingHandler("OrderPlaced")
	h2 := newRecordingHandler("OrderPlaced")
	wildcard := newRecordingHandler()
	registry.Register(h1, "OrderPlaced")
	registry.Register(h2, "OrderPlaced")
	registry.Register(wildcard)

	registry.Unregister(h1)
	registry.Unregister(wildcard)

	handlers := registry.GetHandlers("OrderPlaced")
	assert.Len(t, handlers, 1)
	assert.Same(t, h2, handlers[0])

	registry.Unregister(h2)
	assert.Empty(t, registry.GetHandlers("OrderPlaced"))
}
