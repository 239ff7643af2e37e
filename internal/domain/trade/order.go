package trade

import (
	"fmt"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderType is the channel an order came in through
type OrderType string

const (
	OrderTypeOnline  OrderType = "online"
	OrderTypeInstore OrderType = "instore"
	OrderTypePhone   OrderType = "phone"
)

// IsValid reports whether t is a known order type
func (t OrderType) IsValid() bool {
	switch t {
	case OrderTypeOnline, OrderTypeInstore, OrderTypePhone:
		return true
	}
	return false
}

// OrderItem is a line of an order. Discount is a percentage of the line.
type OrderItem struct {
	ID          uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	Discount    decimal.Decimal
}

// LineTotal returns the discounted line amount
func (i OrderItem) LineTotal() decimal.Decimal {
	return LineTotal(i.Quantity, i.UnitPrice, i.Discount)
}

// Order is a customer order
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber     string
	OrderDate       time.Time
	Status          OrderStatus
	OrderType       OrderType
	CustomerID      *uuid.UUID
	Items           []OrderItem
	ShippingAddress shared.Address
	BillingAddress  shared.Address
	PaymentMethod   string
	Subtotal        decimal.Decimal
	ShippingCost    decimal.Decimal
	Discount        decimal.Decimal
	Total           decimal.Decimal
	Notes           string
	CreatedBy       *uuid.UUID

	// ShippingMethodID refers to a ShippingMethod
	ShippingMethodID *uuid.UUID

	// TaxRate is the VAT percentage fixed when the order was placed.
	// TaxAmount is the part of Total it accounts for.
	TaxRate   decimal.Decimal
	TaxAmount decimal.Decimal
}

// NewOrder creates an order in the initial status
func NewOrder(orderType OrderType, items []OrderItem) (*Order, error) {
	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Status:            OrderLifecycle().Initial(),
		OrderType:         orderType,
		Items:             items,
		Subtotal:          decimal.Zero,
		TaxRate:           decimal.Zero,
		TaxAmount:         decimal.Zero,
		ShippingCost:      decimal.Zero,
		Discount:          decimal.Zero,
		Total:             decimal.Zero,
	}
	for i := range o.Items {
		if o.Items[i].ID == uuid.Nil {
			o.Items[i].ID = uuid.New()
		}
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

// Validate checks field level invariants
func (o *Order) Validate() error {
	if !o.OrderType.IsValid() {
		return shared.NewDomainError("INVALID_ORDER_TYPE", fmt.Sprintf("Unknown order type %q", o.OrderType))
	}
	if len(o.Items) == 0 {
		return shared.NewDomainError("INVALID_ITEMS", "Order must contain at least one item")
	}
	for i, item := range o.Items {
		if item.ProductID == uuid.Nil {
			return shared.NewDomainError("INVALID_ITEMS", fmt.Sprintf("Item %d has no product", i+1))
		}
		if item.Quantity < 1 {
			return shared.NewDomainError("INVALID_QUANTITY", fmt.Sprintf("Item %d quantity must be at least 1", i+1))
		}
		if item.UnitPrice.IsNegative() {
			return shared.NewDomainError("INVALID_PRICE", fmt.Sprintf("Item %d unit price cannot be negative", i+1))
		}
		if !validPercent(item.Discount) {
			return shared.NewDomainError("INVALID_DISCOUNT", fmt.Sprintf("Item %d discount must be between 0 and 100", i+1))
		}
	}
	if !validPercent(o.TaxRate) {
		return shared.NewDomainError("INVALID_RATE", "Tax rate must be between 0 and 100")
	}
	if o.ShippingCost.IsNegative() || o.Discount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Shipping cost and discount cannot be negative")
	}
	return nil
}

// Recalculate refreshes subtotal, total and the contained tax from the items
func (o *Order) Recalculate() {
	lines := make([]decimal.Decimal, len(o.Items))
	for i, item := range o.Items {
		lines[i] = item.LineTotal()
	}
	o.Subtotal, o.Total = Totals(lines, o.ShippingCost, o.Discount)
	o.TaxAmount = IncludedTax(o.Total, o.TaxRate)
}

// QuantitiesByProduct sums the ordered quantity per product
func (o *Order) QuantitiesByProduct() map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(o.Items))
	for _, item := range o.Items {
		out[item.ProductID] += item.Quantity
	}
	return out
}

// SameItems reports whether both orders request the same quantities
func (o *Order) SameItems(other *Order) bool {
	a, b := o.QuantitiesByProduct(), other.QuantitiesByProduct()
	if len(a) != len(b) {
		return false
	}
	for id, q := range a {
		if b[id] != q {
			return false
		}
	}
	return true
}

// ContainsProduct reports whether any line refers to productID
func (o *Order) ContainsProduct(productID uuid.UUID) bool {
	for _, item := range o.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy without pending events
func (o *Order) Clone() *Order {
	out := *o
	out.BaseAggregateRoot = o.CloneRoot()
	out.Items = append([]OrderItem(nil), o.Items...)
	if o.CustomerID != nil {
		id := *o.CustomerID
		out.CustomerID = &id
	}
	if o.CreatedBy != nil {
		id := *o.CreatedBy
		out.CreatedBy = &id
	}
	if o.ShippingMethodID != nil {
		id := *o.ShippingMethodID
		out.ShippingMethodID = &id
	}
	return &out
}
