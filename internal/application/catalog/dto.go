package catalog

import (
	"time"

	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to create a new product. The SKU
// is issued by the system.
type CreateProductRequest struct {
	Name          string          `json:"name" binding:"required,min=1,max=200"`
	Description   string          `json:"description" binding:"max=2000"`
	Barcode       string          `json:"barcode" binding:"max=50"`
	Price         decimal.Decimal `json:"price" binding:"decimal_gte0"`
	CostPrice     decimal.Decimal `json:"cost_price" binding:"decimal_gte0"`
	StockQuantity int             `json:"stock_quantity" binding:"min=0"`
	MinStockLevel int             `json:"min_stock_level" binding:"min=0"`
	SupplierID    *uuid.UUID      `json:"supplier_id"`
}

// UpdateProductRequest represents a request to update a product. A changed
// stock quantity is pushed into the stock ledger.
type UpdateProductRequest struct {
	Name          *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description   *string          `json:"description" binding:"omitempty,max=2000"`
	Barcode       *string          `json:"barcode" binding:"omitempty,max=50"`
	Price         *decimal.Decimal `json:"price" binding:"omitempty,decimal_gte0"`
	CostPrice     *decimal.Decimal `json:"cost_price" binding:"omitempty,decimal_gte0"`
	StockQuantity *int             `json:"stock_quantity" binding:"omitempty,min=0"`
	MinStockLevel *int             `json:"min_stock_level" binding:"omitempty,min=0"`
	SupplierID    *uuid.UUID       `json:"supplier_id"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID            uuid.UUID       `json:"id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Barcode       string          `json:"barcode"`
	Price         decimal.Decimal `json:"price"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	StockQuantity int             `json:"stock_quantity"`
	MinStockLevel int             `json:"min_stock_level"`
	LowStock      bool            `json:"low_stock"`
	SupplierID    *uuid.UUID      `json:"supplier_id,omitempty"`
	Version       int             `json:"version"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ProductListFilter represents filter options for product list
type ProductListFilter struct {
	Search     string     `form:"search"`
	SupplierID *uuid.UUID `form:"-"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by" binding:"omitempty,oneof=sku name price stock_quantity created_at"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		SKU:           p.SKU,
		Name:          p.Name,
		Description:   p.Description,
		Barcode:       p.Barcode,
		Price:         p.Price,
		CostPrice:     p.CostPrice,
		StockQuantity: p.StockQuantity,
		MinStockLevel: p.MinStockLevel,
		LowStock:      p.IsLowStock(),
		SupplierID:    p.SupplierID,
		Version:       p.Version,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// ToProductResponses converts a slice of products
func ToProductResponses(products []*catalog.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i, p := range products {
		out[i] = ToProductResponse(p)
	}
	return out
}
