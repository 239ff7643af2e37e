package handler

import (
	"context"

	tradeapp "github.com/erp/backoffice/internal/application/trade"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ShippingMethodService is the shipping method surface used by the handler
type ShippingMethodService interface {
	Create(ctx context.Context, req tradeapp.CreateShippingMethodRequest) (*tradeapp.ShippingMethodResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*tradeapp.ShippingMethodResponse, error)
	List(ctx context.Context, filter tradeapp.ChargeListFilter) ([]tradeapp.ShippingMethodResponse, int64, error)
}

// ShippingMethodHandler handles shipping method endpoints
type ShippingMethodHandler struct {
	BaseHandler
	methods ShippingMethodService
}

// NewShippingMethodHandler creates a new ShippingMethodHandler
func NewShippingMethodHandler(methods ShippingMethodService) *ShippingMethodHandler {
	return &ShippingMethodHandler{methods: methods}
}

// Create godoc
// @Summary      Create a shipping method
// @Tags         shipping-methods
// @Router       /shipping-methods [post]
func (h *ShippingMethodHandler) Create(c *gin.Context) {
	var req tradeapp.CreateShippingMethodRequest
	if !h.bindJSON(c, &req) {
		return
	}
	item, err := h.methods.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

func (h *ShippingMethodHandler) GetByID(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	item, err := h.methods.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

func (h *ShippingMethodHandler) List(c *gin.Context) {
	var filter tradeapp.ChargeListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	methods, total, err := h.methods.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, methods, total, filter.Page, filter.PageSize)
}
