package handler

import (
	"context"

	inventoryapp "github.com/erp/backoffice/internal/application/inventory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EntryService is the ledger surface the inventory endpoints use
type EntryService interface {
	Create(ctx context.Context, req inventoryapp.CreateEntryRequest) (*inventoryapp.EntryResponse, error)
	Update(ctx context.Context, id uuid.UUID, req inventoryapp.UpdateEntryRequest) (*inventoryapp.EntryResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*inventoryapp.EntryResponse, error)
	List(ctx context.Context, filter inventoryapp.EntryListFilter) ([]inventoryapp.EntryResponse, int64, error)
}

// InventoryHandler handles stock ledger entries
type InventoryHandler struct {
	BaseHandler
	entries EntryService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(entries EntryService) *InventoryHandler {
	return &InventoryHandler{entries: entries}
}

// Create godoc
// @Summary      Open a ledger entry for a product at a warehouse
// @Tags         inventory
// @Router       /inventory [post]
func (h *InventoryHandler) Create(c *gin.Context) {
	var req inventoryapp.CreateEntryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	entry, err := h.entries.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// Update godoc
// @Summary      Update a ledger entry
// @Tags         inventory
// @Router       /inventory/{id} [put]
func (h *InventoryHandler) Update(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.UpdateEntryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	entry, err := h.entries.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// GetByID returns a single ledger entry
func (h *InventoryHandler) GetByID(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	entry, err := h.entries.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// List returns ledger entries filtered by product, warehouse or status
func (h *InventoryHandler) List(c *gin.Context) {
	var filter inventoryapp.EntryListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	var ok bool
	if filter.ProductID, ok = h.queryUUID(c, "product_id"); !ok {
		return
	}
	if filter.WarehouseID, ok = h.queryUUID(c, "warehouse_id"); !ok {
		return
	}

	entries, total, err := h.entries.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, entries, total, filter.Page, filter.PageSize)
}
