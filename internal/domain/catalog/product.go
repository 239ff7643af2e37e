package catalog

import (
	"strings"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is an article in the catalog. StockQuantity is a projection of the
// stock ledger and is only changed through the aggregate sync.
type Product struct {
	shared.BaseAggregateRoot
	SKU           string
	Name          string
	Description   string
	Barcode       string
	Price         decimal.Decimal
	CostPrice     decimal.Decimal
	StockQuantity int
	MinStockLevel int
	SupplierID    *uuid.UUID
}

// NewProduct creates a product without SKU; the SKU is issued on create
func NewProduct(name string, price decimal.Decimal) (*Product, error) {
	p := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Price:             price,
		CostPrice:         decimal.Zero,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks field level invariants
func (p *Product) Validate() error {
	if p.Name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(p.Name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	if p.Price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if p.CostPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Cost price cannot be negative")
	}
	if p.StockQuantity < 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Stock quantity cannot be negative")
	}
	if p.MinStockLevel < 0 {
		return shared.NewDomainError("INVALID_MIN_STOCK", "Minimum stock level cannot be negative")
	}
	return nil
}

// AssignSKU sets the SKU once. Later calls fail.
func (p *Product) AssignSKU(sku string) error {
	if p.SKU != "" {
		return shared.NewInvalidStateError("product %s already has SKU %s", p.ID, p.SKU)
	}
	p.SKU = sku
	return nil
}

// IsLowStock reports whether the aggregate fell to the minimum level
func (p *Product) IsLowStock() bool {
	return p.StockQuantity <= p.MinStockLevel
}

// DisplayName is used in user facing messages
func (p *Product) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.SKU
}

// Clone returns a deep copy without pending events
func (p *Product) Clone() *Product {
	c := *p
	c.BaseAggregateRoot = p.CloneRoot()
	if p.SupplierID != nil {
		id := *p.SupplierID
		c.SupplierID = &id
	}
	return &c
}
