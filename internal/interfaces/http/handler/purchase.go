package handler

import (
	"context"

	tradeapp "github.com/erp/backoffice/internal/application/trade"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PurchaseService is the purchase order surface used by the handler
type PurchaseService interface {
	Create(ctx context.Context, req tradeapp.CreatePurchaseRequest) (*tradeapp.PurchaseResponse, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, req tradeapp.UpdatePurchaseStatusRequest) (*tradeapp.PurchaseResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*tradeapp.PurchaseResponse, error)
	List(ctx context.Context, filter tradeapp.PurchaseListFilter) ([]tradeapp.PurchaseResponse, int64, error)
}

// PurchaseHandler handles purchase order endpoints
type PurchaseHandler struct {
	BaseHandler
	purchases PurchaseService
}

// NewPurchaseHandler creates a new PurchaseHandler
func NewPurchaseHandler(purchases PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchases: purchases}
}

// Create godoc
// @Summary      Order goods from a supplier
// @Tags         purchases
// @Router       /purchases [post]
func (h *PurchaseHandler) Create(c *gin.Context) {
	var req tradeapp.CreatePurchaseRequest
	if !h.bindJSON(c, &req) {
		return
	}
	purchase, err := h.purchases.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, purchase)
}

// UpdateStatus godoc
// @Summary      Move a purchase to another status
// @Description  Delivered quantities are credited to the ledger
// @Tags         purchases
// @Router       /purchases/{id}/status [put]
func (h *PurchaseHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req tradeapp.UpdatePurchaseStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	purchase, err := h.purchases.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, purchase)
}

func (h *PurchaseHandler) GetByID(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	purchase, err := h.purchases.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, purchase)
}

func (h *PurchaseHandler) List(c *gin.Context) {
	var filter tradeapp.PurchaseListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	supplierID, ok := h.queryUUID(c, "supplier_id")
	if !ok {
		return
	}
	filter.SupplierID = supplierID

	purchases, total, err := h.purchases.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, purchases, total, filter.Page, filter.PageSize)
}
