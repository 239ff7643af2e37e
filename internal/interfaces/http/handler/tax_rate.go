package handler

import (
	"context"

	tradeapp "github.com/erp/backoffice/internal/application/trade"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TaxRateService is the tax rate surface used by the handler
type TaxRateService interface {
	Create(ctx context.Context, req tradeapp.CreateTaxRateRequest) (*tradeapp.TaxRateResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*tradeapp.TaxRateResponse, error)
	List(ctx context.Context, filter tradeapp.ChargeListFilter) ([]tradeapp.TaxRateResponse, int64, error)
}

// TaxRateHandler handles tax rate endpoints
type TaxRateHandler struct {
	BaseHandler
	rates TaxRateService
}

// NewTaxRateHandler creates a new TaxRateHandler
func NewTaxRateHandler(rates TaxRateService) *TaxRateHandler {
	return &TaxRateHandler{rates: rates}
}

// Create godoc
// @Summary      Create a tax rate
// @Tags         tax-rates
// @Router       /tax-rates [post]
func (h *TaxRateHandler) Create(c *gin.Context) {
	var req tradeapp.CreateTaxRateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	item, err := h.rates.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

func (h *TaxRateHandler) GetByID(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	item, err := h.rates.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

func (h *TaxRateHandler) List(c *gin.Context) {
	var filter tradeapp.ChargeListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	rates, total, err := h.rates.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, rates, total, filter.Page, filter.PageSize)
}
