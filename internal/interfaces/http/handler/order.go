package handler

import (
	"context"

	tradeapp "github.com/erp/backoffice/internal/application/trade"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrderService is the sales order surface used by the handler
type OrderService interface {
	Create(ctx context.Context, req tradeapp.CreateOrderRequest) (*tradeapp.OrderResponse, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, req tradeapp.UpdateStatusRequest) (*tradeapp.OrderResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*tradeapp.OrderResponse, error)
	List(ctx context.Context, filter tradeapp.OrderListFilter) ([]tradeapp.OrderResponse, int64, error)
}

// OrderHandler handles sales order endpoints
type OrderHandler struct {
	BaseHandler
	orders OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// Create godoc
// @Summary      Place an order
// @Description  Creates the order and debits the ordered quantities in one transaction
// @Tags         orders
// @Router       /orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	var req tradeapp.CreateOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.orders.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// UpdateStatus godoc
// @Summary      Move an order to another status
// @Description  Cancelling or refunding restores stock; other moves leave stock untouched
// @Tags         orders
// @Router       /orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req tradeapp.UpdateStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.orders.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

func (h *OrderHandler) GetByID(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

func (h *OrderHandler) List(c *gin.Context) {
	var filter tradeapp.OrderListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	customerID, ok := h.queryUUID(c, "customer_id")
	if !ok {
		return
	}
	filter.CustomerID = customerID

	orders, total, err := h.orders.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}
