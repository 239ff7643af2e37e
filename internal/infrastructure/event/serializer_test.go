package event

import (
	"testing"

	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventSerializer_Register(t *testing.T) {
	serializer := NewEventSerializer()
	serializer.Register("TestEvent", &testEvent{})

	assert.True(t, serializer.IsRegistered("TestEvent"))
	assert.False(t, serializer.IsRegistered("UnknownEvent"))
}

func TestNewDomainSerializer_RegistersEveryEvent(t *testing.T) {
	serializer := NewDomainSerializer()

	assert.Equal(t, []string{
		"OrderPlaced",
		"OrderStatusChanged",
		"ProductCreated",
		"ProductPriceChanged",
		"PurchaseStatusChanged",
		"StockAdjusted",
	}, serializer.RegisteredTypes())
}

func TestEventSerializer_RoundTrip(t *testing.T) {
	serializer := NewDomainSerializer()
	original := &inventory.StockAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(inventory.EventTypeStockAdjusted, inventory.AggregateTypeLedgerEntry, uuid.New()),
		EntryID:         uuid.New(),
		InventoryID:     "INV-ART-00001-MAIN",
		ProductID:       uuid.New(),
		WarehouseID:     uuid.New(),
		OldQuantity:     50,
		NewQuantity:     40,
	}

	data, err := serializer.Serialize(original)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"inventory_id":"INV-ART-00001-MAIN"`)

	decoded, err := serializer.Deserialize(inventory.EventTypeStockAdjusted, data)
	require.NoError(t, err)

	got, ok := decoded.(*inventory.StockAdjustedEvent)
	require.True(t, ok)
	assert.Equal(t, original.EventID(), got.EventID())
	assert.Equal(t, original.AggregateID(), got.AggregateID())
	assert.Equal(t, 40, got.NewQuantity)
	assert.Equal(t, original.ProductID, got.ProductID)
}

func TestEventSerializer_Deserialize_Errors(t *testing.T) {
	serializer := NewDomainSerializer()

	_, err := serializer.Deserialize("UnknownEvent", []byte(`{}`))
	assert.EqualError(t, err, "unknown event type: UnknownEvent")

	_, err = serializer.Deserialize(trade.EventTypeOrderPlaced, []byte(`{not json`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal OrderPlaced")
}
