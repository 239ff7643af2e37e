package inventory

import (
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// AggregateTypeLedgerEntry is the aggregate type of ledger events
const AggregateTypeLedgerEntry = "StockLedgerEntry"

// EventTypeStockAdjusted is emitted for every quantity change of an entry
const EventTypeStockAdjusted = "StockAdjusted"

// StockAdjustedEvent records one quantity change of a ledger entry
type StockAdjustedEvent struct {
	shared.BaseDomainEvent
	EntryID     uuid.UUID `json:"entry_id"`
	InventoryID string    `json:"inventory_id"`
	ProductID   uuid.UUID `json:"product_id"`
	WarehouseID uuid.UUID `json:"warehouse_id"`
	OldQuantity int       `json:"old_quantity"`
	NewQuantity int       `json:"new_quantity"`
}

// NewStockAdjustedEvent creates a new StockAdjustedEvent
func NewStockAdjustedEvent(e *StockLedgerEntry, oldQuantity int) *StockAdjustedEvent {
	return &StockAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAdjusted, AggregateTypeLedgerEntry, e.ID),
		EntryID:         e.ID,
		InventoryID:     e.InventoryID,
		ProductID:       e.ProductID,
		WarehouseID:     e.WarehouseID,
		OldQuantity:     oldQuantity,
		NewQuantity:     e.Quantity,
	}
}
