package trade

import (
	"time"

	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateShippingMethodRequest represents a request to create a shipping method
type CreateShippingMethodRequest struct {
	Name              string          `json:"name" binding:"required,min=1,max=100"`
	Carrier           string          `json:"carrier" binding:"max=100"`
	Description       string          `json:"description" binding:"max=500"`
	Price             decimal.Decimal `json:"price" binding:"decimal_gte0"`
	MinDeliveryDays   int             `json:"min_delivery_days" binding:"min=0"`
	MaxDeliveryDays   int             `json:"max_delivery_days" binding:"min=0"`
	IsDefault         bool            `json:"is_default"`
	TrackingAvailable bool            `json:"tracking_available"`
	TrackingURLFormat string          `json:"tracking_url_format" binding:"max=500"`
	MinOrderAmount    decimal.Decimal `json:"min_order_amount" binding:"decimal_gte0"`
	Countries         []string        `json:"countries" binding:"omitempty,dive,min=1,max=100"`
	Notes             string          `json:"notes" binding:"max=2000"`
}

// ShippingMethodResponse represents a shipping method in API responses
type ShippingMethodResponse struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	Carrier           string          `json:"carrier,omitempty"`
	Description       string          `json:"description,omitempty"`
	Price             decimal.Decimal `json:"price"`
	MinDeliveryDays   int             `json:"min_delivery_days"`
	MaxDeliveryDays   int             `json:"max_delivery_days"`
	IsActive          bool            `json:"is_active"`
	IsDefault         bool            `json:"is_default"`
	TrackingAvailable bool            `json:"tracking_available"`
	TrackingURLFormat string          `json:"tracking_url_format,omitempty"`
	MinOrderAmount    decimal.Decimal `json:"min_order_amount"`
	Countries         []string        `json:"countries"`
	Notes             string          `json:"notes,omitempty"`
	Version           int             `json:"version"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ToShippingMethodResponse converts a domain ShippingMethod
func ToShippingMethodResponse(m *trade.ShippingMethod) ShippingMethodResponse {
	countries := m.Restrictions.Countries
	if countries == nil {
		countries = []string{}
	}
	return ShippingMethodResponse{
		ID:                m.ID,
		Name:              m.Name,
		Carrier:           m.Carrier,
		Description:       m.Description,
		Price:             m.Price,
		MinDeliveryDays:   m.EstimatedDays.Min,
		MaxDeliveryDays:   m.EstimatedDays.Max,
		IsActive:          m.IsActive,
		IsDefault:         m.IsDefault,
		TrackingAvailable: m.TrackingAvailable,
		TrackingURLFormat: m.TrackingURLFormat,
		MinOrderAmount:    m.Restrictions.MinOrderAmount,
		Countries:         countries,
		Notes:             m.Notes,
		Version:           m.Version,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// CreateTaxRateRequest represents a request to create a tax rate
type CreateTaxRateRequest struct {
	Name          string          `json:"name" binding:"required,min=1,max=100"`
	Rate          decimal.Decimal `json:"rate" binding:"decimal_gte0"`
	Description   string          `json:"description" binding:"max=500"`
	Region        string          `json:"region" binding:"max=100"`
	Category      string          `json:"category" binding:"omitempty,oneof=standard reduced zero exempt"`
	IsDefault     bool            `json:"is_default"`
	EffectiveFrom *time.Time      `json:"effective_from"`
	EffectiveTo   *time.Time      `json:"effective_to"`
	Notes         string          `json:"notes" binding:"max=2000"`
}

// TaxRateResponse represents a tax rate in API responses
type TaxRateResponse struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Rate          decimal.Decimal `json:"rate"`
	Description   string          `json:"description,omitempty"`
	IsActive      bool            `json:"is_active"`
	Region        string          `json:"region"`
	IsDefault     bool            `json:"is_default"`
	Category      string          `json:"category"`
	EffectiveFrom *time.Time      `json:"effective_from,omitempty"`
	EffectiveTo   *time.Time      `json:"effective_to,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	Version       int             `json:"version"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ToTaxRateResponse converts a domain TaxRate
func ToTaxRateResponse(r *trade.TaxRate) TaxRateResponse {
	return TaxRateResponse{
		ID:            r.ID,
		Name:          r.Name,
		Rate:          r.Rate,
		Description:   r.Description,
		IsActive:      r.IsActive,
		Region:        r.Region,
		IsDefault:     r.IsDefault,
		Category:      string(r.Category),
		EffectiveFrom: r.EffectiveFrom,
		EffectiveTo:   r.EffectiveTo,
		Notes:         r.Notes,
		Version:       r.Version,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// ChargeListFilter represents filter options for shipping method and tax
// rate lists. Category only narrows tax rates.
type ChargeListFilter struct {
	Search   string `form:"search"`
	Active   *bool  `form:"is_active"`
	Category string `form:"category" binding:"omitempty,oneof=standard reduced zero exempt"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}
