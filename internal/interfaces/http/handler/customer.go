package handler

import (
	"context"

	partnerapp "github.com/erp/backoffice/internal/application/partner"
	tradeapp "github.com/erp/backoffice/internal/application/trade"
	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CustomerService is the customer surface used by the handler
type CustomerService interface {
	Create(ctx context.Context, req partnerapp.CreateCustomerRequest) (*partnerapp.CustomerResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*partnerapp.CustomerResponse, error)
	List(ctx context.Context, filter partnerapp.ListFilter) ([]partnerapp.CustomerResponse, int64, error)
}

// CustomerOrderReader lists the orders of one customer
type CustomerOrderReader interface {
	ListByCustomer(ctx context.Context, customerID uuid.UUID, page, pageSize int) ([]tradeapp.OrderResponse, int64, error)
}

// CustomerHandler handles customer endpoints
type CustomerHandler struct {
	BaseHandler
	customers CustomerService
	orders    CustomerOrderReader
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customers CustomerService, orders CustomerOrderReader) *CustomerHandler {
	return &CustomerHandler{customers: customers, orders: orders}
}

// Create godoc
// @Summary      Create a customer
// @Tags         customers
// @Router       /customers [post]
func (h *CustomerHandler) Create(c *gin.Context) {
	var req partnerapp.CreateCustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	customer, err := h.customers.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, customer)
}

// GetByID godoc
// @Summary      Get a customer by id
// @Tags         customers
// @Router       /customers/{id} [get]
func (h *CustomerHandler) GetByID(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	customer, err := h.customers.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

func (h *CustomerHandler) List(c *gin.Context) {
	var filter partnerapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	customers, total, err := h.customers.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, customers, total, filter.Page, filter.PageSize)
}

// Orders returns the order history of a customer, newest first
func (h *CustomerHandler) Orders(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var page dto.PageQuery
	if !h.bindQuery(c, &page) {
		return
	}
	page = page.Normalized()

	if _, err := h.customers.GetByID(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	orders, total, err := h.orders.ListByCustomer(c.Request.Context(), id, page.Page, page.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, orders, total, page.Page, page.PageSize)
}
