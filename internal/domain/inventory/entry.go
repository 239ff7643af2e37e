package inventory

import (
	"fmt"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// EntryStatus is the stock level classification of a ledger entry
type EntryStatus string

const (
	EntryStatusSufficient EntryStatus = "sufficient"
	EntryStatusLow        EntryStatus = "low"
	EntryStatusCritical   EntryStatus = "critical"
	EntryStatusOutOfStock EntryStatus = "outOfStock"
)

// Location describes where inside the warehouse the stock sits
type Location struct {
	Section string `json:"section,omitempty"`
	Shelf   string `json:"shelf,omitempty"`
	Bin     string `json:"bin,omitempty"`
}

// StockLedgerEntry holds the quantity of one product at one warehouse.
// Quantity never drops below zero.
type StockLedgerEntry struct {
	shared.BaseAggregateRoot
	InventoryID     string
	ProductID       uuid.UUID
	WarehouseID     uuid.UUID
	Quantity        int
	MinStockLevel   int
	ReorderPoint    int
	ReorderQuantity int
	Location        Location
	Status          EntryStatus
	Notes           string
}

// InventoryIDFor builds the deterministic id of the entry for sku at a warehouse
func InventoryIDFor(sku, warehouseCode string) string {
	return fmt.Sprintf("INV-%s-%s", sku, warehouseCode)
}

// NewStockLedgerEntry creates an entry for product at warehouse
func NewStockLedgerEntry(productID, warehouseID uuid.UUID, inventoryID string, quantity int) (*StockLedgerEntry, error) {
	if productID == uuid.Nil || warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Ledger entry needs a product and a warehouse")
	}
	e := &StockLedgerEntry{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InventoryID:       inventoryID,
		ProductID:         productID,
		WarehouseID:       warehouseID,
	}
	if err := e.SetQuantity(quantity); err != nil {
		return nil, err
	}
	return e, nil
}

// SetQuantity replaces the quantity. A negative value is rejected.
func (e *StockLedgerEntry) SetQuantity(quantity int) error {
	if quantity < 0 {
		return shared.NewDomainError("NEGATIVE_STOCK",
			fmt.Sprintf("Ledger entry %s cannot hold a negative quantity (%d)", e.InventoryID, quantity))
	}
	e.Quantity = quantity
	e.RefreshStatus()
	return nil
}

// RefreshStatus derives the status from the quantity and the configured levels
func (e *StockLedgerEntry) RefreshStatus() {
	switch {
	case e.Quantity == 0:
		e.Status = EntryStatusOutOfStock
	case e.MinStockLevel > 0 && e.Quantity <= e.MinStockLevel:
		e.Status = EntryStatusCritical
	case e.ReorderPoint > 0 && e.Quantity <= e.ReorderPoint:
		e.Status = EntryStatusLow
	default:
		e.Status = EntryStatusSufficient
	}
}

// Validate checks field level invariants
func (e *StockLedgerEntry) Validate() error {
	if e.InventoryID == "" {
		return shared.NewDomainError("INVALID_INPUT", "Inventory ID cannot be empty")
	}
	if e.Quantity < 0 {
		return shared.NewDomainError("NEGATIVE_STOCK", "Quantity cannot be negative")
	}
	if e.MinStockLevel < 0 || e.ReorderPoint < 0 || e.ReorderQuantity < 0 {
		return shared.NewDomainError("INVALID_INPUT", "Stock levels cannot be negative")
	}
	return nil
}

// Clone returns a copy without pending events
func (e *StockLedgerEntry) Clone() *StockLedgerEntry {
	out := *e
	out.BaseAggregateRoot = e.CloneRoot()
	return &out
}

// Total sums the quantities of entries
func Total(entries []*StockLedgerEntry) int {
	sum := 0
	for _, e := range entries {
		sum += e.Quantity
	}
	return sum
}
