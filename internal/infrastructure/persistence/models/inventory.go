package models

import (
	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/google/uuid"
)

// StockLedgerEntryModel is the persistence model for a stock ledger entry.
// One row per product and warehouse.
type StockLedgerEntryModel struct {
	AggregateModel
	InventoryID     string                `gorm:"type:varchar(80);not null;uniqueIndex"`
	ProductID       uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex:idx_ledger_product_warehouse,priority:1"`
	WarehouseID     uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex:idx_ledger_product_warehouse,priority:2"`
	Quantity        int                   `gorm:"not null;default:0;check:chk_ledger_quantity,quantity >= 0"`
	MinStockLevel   int                   `gorm:"not null;default:0"`
	ReorderPoint    int                   `gorm:"not null;default:0"`
	ReorderQuantity int                   `gorm:"not null;default:0"`
	Section         string                `gorm:"type:varchar(50)"`
	Shelf           string                `gorm:"type:varchar(50)"`
	Bin             string                `gorm:"type:varchar(50)"`
	Status          inventory.EntryStatus `gorm:"type:varchar(20);not null;default:'outOfStock'"`
	Notes           string                `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (StockLedgerEntryModel) TableName() string {
	return "stock_ledger_entries"
}

// ToDomain converts the persistence model to a domain entry
func (m *StockLedgerEntryModel) ToDomain() *inventory.StockLedgerEntry {
	return &inventory.StockLedgerEntry{
		BaseAggregateRoot: m.ToAggregateRoot(),
		InventoryID:       m.InventoryID,
		ProductID:         m.ProductID,
		WarehouseID:       m.WarehouseID,
		Quantity:          m.Quantity,
		MinStockLevel:     m.MinStockLevel,
		ReorderPoint:      m.ReorderPoint,
		ReorderQuantity:   m.ReorderQuantity,
		Location:          inventory.Location{Section: m.Section, Shelf: m.Shelf, Bin: m.Bin},
		Status:            m.Status,
		Notes:             m.Notes,
	}
}

// FromDomain populates the persistence model from a domain entry
func (m *StockLedgerEntryModel) FromDomain(e *inventory.StockLedgerEntry) {
	m.FromDomainAggregateRoot(e.BaseAggregateRoot)
	m.InventoryID = e.InventoryID
	m.ProductID = e.ProductID
	m.WarehouseID = e.WarehouseID
	m.Quantity = e.Quantity
	m.MinStockLevel = e.MinStockLevel
	m.ReorderPoint = e.ReorderPoint
	m.ReorderQuantity = e.ReorderQuantity
	m.Section = e.Location.Section
	m.Shelf = e.Location.Shelf
	m.Bin = e.Location.Bin
	m.Status = e.Status
	m.Notes = e.Notes
}
