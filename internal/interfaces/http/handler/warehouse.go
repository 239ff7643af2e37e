package handler

import (
	"context"

	partnerapp "github.com/erp/backoffice/internal/application/partner"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WarehouseService is the warehouse surface used by the handler
type WarehouseService interface {
	Create(ctx context.Context, req partnerapp.CreateWarehouseRequest) (*partnerapp.WarehouseResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*partnerapp.WarehouseResponse, error)
	List(ctx context.Context, filter partnerapp.ListFilter) ([]partnerapp.WarehouseResponse, int64, error)
}

// WarehouseHandler handles warehouse endpoints
type WarehouseHandler struct {
	BaseHandler
	warehouses WarehouseService
}

// NewWarehouseHandler creates a new WarehouseHandler
func NewWarehouseHandler(warehouses WarehouseService) *WarehouseHandler {
	return &WarehouseHandler{warehouses: warehouses}
}

// Create godoc
// @Summary      Create a warehouse
// @Tags         warehouses
// @Router       /warehouses [post]
func (h *WarehouseHandler) Create(c *gin.Context) {
	var req partnerapp.CreateWarehouseRequest
	if !h.bindJSON(c, &req) {
		return
	}
	wh, err := h.warehouses.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, wh)
}

func (h *WarehouseHandler) GetByID(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	wh, err := h.warehouses.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, wh)
}

func (h *WarehouseHandler) List(c *gin.Context) {
	var filter partnerapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	warehouses, total, err := h.warehouses.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, warehouses, total, filter.Page, filter.PageSize)
}
