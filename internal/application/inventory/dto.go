package inventory

import (
	"time"

	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/google/uuid"
)

// LocationDTO is the position of stock inside a warehouse
type LocationDTO struct {
	Section string `json:"section,omitempty" binding:"max=50"`
	Shelf   string `json:"shelf,omitempty" binding:"max=50"`
	Bin     string `json:"bin,omitempty" binding:"max=50"`
}

// EntryResponse represents a ledger entry in API responses
type EntryResponse struct {
	ID              uuid.UUID   `json:"id"`
	InventoryID     string      `json:"inventory_id"`
	ProductID       uuid.UUID   `json:"product_id"`
	WarehouseID     uuid.UUID   `json:"warehouse_id"`
	Quantity        int         `json:"quantity"`
	MinStockLevel   int         `json:"min_stock_level"`
	ReorderPoint    int         `json:"reorder_point"`
	ReorderQuantity int         `json:"reorder_quantity"`
	Location        LocationDTO `json:"location"`
	Status          string      `json:"status"`
	Notes           string      `json:"notes,omitempty"`
	Version         int         `json:"version"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// ProductStockResponse is the ledger view of one product
type ProductStockResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	Total     int             `json:"total"`
	Entries   []EntryResponse `json:"entries"`
}

// CreateEntryRequest opens a ledger entry for a product at a warehouse
type CreateEntryRequest struct {
	ProductID       uuid.UUID   `json:"product_id" binding:"required"`
	WarehouseID     uuid.UUID   `json:"warehouse_id" binding:"required"`
	Quantity        int         `json:"quantity" binding:"min=0"`
	MinStockLevel   int         `json:"min_stock_level" binding:"min=0"`
	ReorderPoint    int         `json:"reorder_point" binding:"min=0"`
	ReorderQuantity int         `json:"reorder_quantity" binding:"min=0"`
	Location        LocationDTO `json:"location"`
	Notes           string      `json:"notes" binding:"max=2000"`
}

// UpdateEntryRequest changes an entry; nil fields stay as they are
type UpdateEntryRequest struct {
	Quantity        *int         `json:"quantity" binding:"omitempty,min=0"`
	MinStockLevel   *int         `json:"min_stock_level" binding:"omitempty,min=0"`
	ReorderPoint    *int         `json:"reorder_point" binding:"omitempty,min=0"`
	ReorderQuantity *int         `json:"reorder_quantity" binding:"omitempty,min=0"`
	Location        *LocationDTO `json:"location"`
	Notes           *string      `json:"notes" binding:"omitempty,max=2000"`
}

// EntryListFilter represents filter options for the entry list
type EntryListFilter struct {
	ProductID   *uuid.UUID `form:"-"`
	WarehouseID *uuid.UUID `form:"-"`
	Status      string     `form:"status" binding:"omitempty,oneof=sufficient low critical outOfStock"`
	Page        int        `form:"page" binding:"omitempty,min=1"`
	PageSize    int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ToEntryResponse converts a ledger entry
func ToEntryResponse(e *inventory.StockLedgerEntry) EntryResponse {
	return EntryResponse{
		ID:              e.ID,
		InventoryID:     e.InventoryID,
		ProductID:       e.ProductID,
		WarehouseID:     e.WarehouseID,
		Quantity:        e.Quantity,
		MinStockLevel:   e.MinStockLevel,
		ReorderPoint:    e.ReorderPoint,
		ReorderQuantity: e.ReorderQuantity,
		Location:        LocationDTO(e.Location),
		Status:          string(e.Status),
		Notes:           e.Notes,
		Version:         e.Version,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}
