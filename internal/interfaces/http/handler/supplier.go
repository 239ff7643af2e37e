package handler

import (
	"context"

	partnerapp "github.com/erp/backoffice/internal/application/partner"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SupplierService is the supplier surface used by the handler
type SupplierService interface {
	Create(ctx context.Context, req partnerapp.CreateSupplierRequest) (*partnerapp.SupplierResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*partnerapp.SupplierResponse, error)
	List(ctx context.Context, filter partnerapp.ListFilter) ([]partnerapp.SupplierResponse, int64, error)
}

// SupplierHandler handles supplier endpoints
type SupplierHandler struct {
	BaseHandler
	suppliers SupplierService
}

// NewSupplierHandler creates a new SupplierHandler
func NewSupplierHandler(suppliers SupplierService) *SupplierHandler {
	return &SupplierHandler{suppliers: suppliers}
}

// Create godoc
// @Summary      Create a supplier
// @Tags         suppliers
// @Router       /suppliers [post]
func (h *SupplierHandler) Create(c *gin.Context) {
	var req partnerapp.CreateSupplierRequest
	if !h.bindJSON(c, &req) {
		return
	}
	supplier, err := h.suppliers.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, supplier)
}

func (h *SupplierHandler) GetByID(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	supplier, err := h.suppliers.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}

func (h *SupplierHandler) List(c *gin.Context) {
	var filter partnerapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	suppliers, total, err := h.suppliers.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, suppliers, total, filter.Page, filter.PageSize)
}
