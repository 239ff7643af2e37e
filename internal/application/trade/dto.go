package trade

import (
	"time"

	"github.com/erp/backoffice/internal/application/partner"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItemInput is a line of an order request. A zero unit price is taken
// from the product.
type OrderItemInput struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"decimal_gte0"`
	Discount  decimal.Decimal `json:"discount" binding:"decimal_gte0"`
}

// CreateOrderRequest represents a request to place an order
type CreateOrderRequest struct {
	OrderType        string             `json:"order_type" binding:"required,oneof=online instore phone"`
	CustomerID       *uuid.UUID         `json:"customer_id"`
	OrderDate        *time.Time         `json:"order_date"`
	Items            []OrderItemInput   `json:"items" binding:"required,min=1,dive"`
	ShippingAddress  partner.AddressDTO `json:"shipping_address"`
	BillingAddress   partner.AddressDTO `json:"billing_address"`
	ShippingMethodID *uuid.UUID         `json:"shipping_method_id"`
	PaymentMethod    string             `json:"payment_method" binding:"max=50"`
	ShippingCost     decimal.Decimal    `json:"shipping_cost" binding:"decimal_gte0"`
	Discount         decimal.Decimal    `json:"discount" binding:"decimal_gte0"`
	Notes            string             `json:"notes" binding:"max=2000"`
}

// UpdateStatusRequest moves an order or purchase to another status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes" binding:"max=2000"`
}

// OrderItemResponse is a line of an order response
type OrderItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID               uuid.UUID           `json:"id"`
	OrderNumber      string              `json:"order_number"`
	OrderDate        time.Time           `json:"order_date"`
	Status           string              `json:"status"`
	AllowedStatuses  []string            `json:"allowed_statuses"`
	OrderType        string              `json:"order_type"`
	CustomerID       *uuid.UUID          `json:"customer_id,omitempty"`
	Items            []OrderItemResponse `json:"items"`
	ShippingAddress  shared.Address      `json:"shipping_address"`
	BillingAddress   shared.Address      `json:"billing_address"`
	ShippingMethodID *uuid.UUID          `json:"shipping_method_id,omitempty"`
	PaymentMethod    string              `json:"payment_method,omitempty"`
	Subtotal         decimal.Decimal     `json:"subtotal"`
	TaxRate          decimal.Decimal     `json:"tax_rate"`
	TaxAmount        decimal.Decimal     `json:"tax_amount"`
	ShippingCost     decimal.Decimal     `json:"shipping_cost"`
	Discount         decimal.Decimal     `json:"discount"`
	Total            decimal.Decimal     `json:"total"`
	Notes            string              `json:"notes,omitempty"`
	CreatedBy        *uuid.UUID          `json:"created_by,omitempty"`
	Version          int                 `json:"version"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// ToOrderResponse converts a domain Order
func ToOrderResponse(o *trade.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Discount:    it.Discount,
			LineTotal:   it.LineTotal().Round(2),
		}
	}
	allowed := trade.OrderLifecycle().Allowed(o.Status)
	statuses := make([]string, len(allowed))
	for i, s := range allowed {
		statuses[i] = string(s)
	}
	return OrderResponse{
		ID:               o.ID,
		OrderNumber:      o.OrderNumber,
		OrderDate:        o.OrderDate,
		Status:           string(o.Status),
		AllowedStatuses:  statuses,
		OrderType:        string(o.OrderType),
		CustomerID:       o.CustomerID,
		Items:            items,
		ShippingAddress:  o.ShippingAddress,
		BillingAddress:   o.BillingAddress,
		ShippingMethodID: o.ShippingMethodID,
		PaymentMethod:    o.PaymentMethod,
		Subtotal:         o.Subtotal,
		TaxRate:          o.TaxRate,
		TaxAmount:        o.TaxAmount,
		ShippingCost:     o.ShippingCost,
		Discount:         o.Discount,
		Total:            o.Total,
		Notes:            o.Notes,
		CreatedBy:        o.CreatedBy,
		Version:          o.Version,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

// OrderListFilter represents filter options for the order list
type OrderListFilter struct {
	Status     string     `form:"status" binding:"omitempty,oneof=new processing shipped completed cancelled refunded"`
	CustomerID *uuid.UUID `form:"-"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// PurchaseItemInput is a line of a purchase request
type PurchaseItemInput struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"decimal_gte0"`
	Discount  decimal.Decimal `json:"discount" binding:"decimal_gte0"`
}

// CreatePurchaseRequest represents a request to order from a supplier
type CreatePurchaseRequest struct {
	SupplierID           uuid.UUID           `json:"supplier_id" binding:"required"`
	OrderDate            *time.Time          `json:"order_date"`
	ExpectedDeliveryDate *time.Time          `json:"expected_delivery_date"`
	Items                []PurchaseItemInput `json:"items" binding:"required,min=1,dive"`
	ShippingCost         decimal.Decimal     `json:"shipping_cost" binding:"decimal_gte0"`
	Discount             decimal.Decimal     `json:"discount" binding:"decimal_gte0"`
	Notes                string              `json:"notes" binding:"max=2000"`
}

// ReceivedQuantity reports the received amount of one purchase line
type ReceivedQuantity struct {
	ItemID   uuid.UUID `json:"item_id" binding:"required"`
	Quantity int       `json:"quantity" binding:"min=0"`
}

// UpdatePurchaseStatusRequest moves a purchase to another status. Received
// quantities are only read for partial deliveries.
type UpdatePurchaseStatusRequest struct {
	Status   string             `json:"status" binding:"required"`
	Received []ReceivedQuantity `json:"received" binding:"omitempty,dive"`
	Notes    string             `json:"notes" binding:"max=2000"`
}

// PurchaseItemResponse is a line of a purchase response
type PurchaseItemResponse struct {
	ID               uuid.UUID       `json:"id"`
	ProductID        uuid.UUID       `json:"product_id"`
	Quantity         int             `json:"quantity"`
	ReceivedQuantity int             `json:"received_quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	Discount         decimal.Decimal `json:"discount"`
}

// PurchaseResponse represents a purchase in API responses
type PurchaseResponse struct {
	ID                   uuid.UUID              `json:"id"`
	PurchaseNumber       string                 `json:"purchase_number"`
	OrderDate            time.Time              `json:"order_date"`
	ExpectedDeliveryDate *time.Time             `json:"expected_delivery_date,omitempty"`
	ActualDeliveryDate   *time.Time             `json:"actual_delivery_date,omitempty"`
	Status               string                 `json:"status"`
	SupplierID           uuid.UUID              `json:"supplier_id"`
	Items                []PurchaseItemResponse `json:"items"`
	Subtotal             decimal.Decimal        `json:"subtotal"`
	ShippingCost         decimal.Decimal        `json:"shipping_cost"`
	Discount             decimal.Decimal        `json:"discount"`
	Total                decimal.Decimal        `json:"total"`
	Notes                string                 `json:"notes,omitempty"`
	Version              int                    `json:"version"`
	CreatedAt            time.Time              `json:"created_at"`
	UpdatedAt            time.Time              `json:"updated_at"`
}

// ToPurchaseResponse converts a domain Purchase
func ToPurchaseResponse(p *trade.Purchase) PurchaseResponse {
	items := make([]PurchaseItemResponse, len(p.Items))
	for i, it := range p.Items {
		items[i] = PurchaseItemResponse{
			ID:               it.ID,
			ProductID:        it.ProductID,
			Quantity:         it.Quantity,
			ReceivedQuantity: it.ReceivedQuantity,
			UnitPrice:        it.UnitPrice,
			Discount:         it.Discount,
		}
	}
	return PurchaseResponse{
		ID:                   p.ID,
		PurchaseNumber:       p.PurchaseNumber,
		OrderDate:            p.OrderDate,
		ExpectedDeliveryDate: p.ExpectedDeliveryDate,
		ActualDeliveryDate:   p.ActualDeliveryDate,
		Status:               string(p.Status),
		SupplierID:           p.SupplierID,
		Items:                items,
		Subtotal:             p.Subtotal,
		ShippingCost:         p.ShippingCost,
		Discount:             p.Discount,
		Total:                p.Total,
		Notes:                p.Notes,
		Version:              p.Version,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}

// PurchaseListFilter represents filter options for the purchase list
type PurchaseListFilter struct {
	Status     string     `form:"status" binding:"omitempty,oneof=ordered partiallyDelivered delivered completed cancelled"`
	SupplierID *uuid.UUID `form:"-"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

func pageFilter(page, pageSize int) shared.Filter {
	f := shared.DefaultFilter()
	if page > 0 {
		f.Page = page
	}
	if pageSize > 0 {
		f.PageSize = pageSize
	}
	return f
}
