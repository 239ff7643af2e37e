package trade

import (
	"fmt"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseItem is a line of a purchase. ReceivedQuantity is the part that has
// already been credited to the stock ledger.
type PurchaseItem struct {
	ID               uuid.UUID
	ProductID        uuid.UUID
	Quantity         int
	ReceivedQuantity int
	UnitPrice        decimal.Decimal
	Discount         decimal.Decimal
}

// LineTotal returns the discounted line amount
func (i PurchaseItem) LineTotal() decimal.Decimal {
	return LineTotal(i.Quantity, i.UnitPrice, i.Discount)
}

// Purchase is an order placed with a supplier
type Purchase struct {
	shared.BaseAggregateRoot
	PurchaseNumber       string
	OrderDate            time.Time
	ExpectedDeliveryDate *time.Time
	ActualDeliveryDate   *time.Time
	Status               PurchaseStatus
	SupplierID           uuid.UUID
	Items                []PurchaseItem
	Subtotal             decimal.Decimal
	ShippingCost         decimal.Decimal
	Discount             decimal.Decimal
	Total                decimal.Decimal
	Notes                string
}

// NewPurchase creates a purchase in the initial status
func NewPurchase(supplierID uuid.UUID, items []PurchaseItem) (*Purchase, error) {
	p := &Purchase{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderDate:         time.Now(),
		Status:            PurchaseLifecycle().Initial(),
		SupplierID:        supplierID,
		Items:             items,
		Subtotal:          decimal.Zero,
		ShippingCost:      decimal.Zero,
		Discount:          decimal.Zero,
		Total:             decimal.Zero,
	}
	for i := range p.Items {
		if p.Items[i].ID == uuid.Nil {
			p.Items[i].ID = uuid.New()
		}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks field level invariants
func (p *Purchase) Validate() error {
	if p.SupplierID == uuid.Nil {
		return shared.NewDomainError("INVALID_SUPPLIER", "Purchase needs a supplier")
	}
	if len(p.Items) == 0 {
		return shared.NewDomainError("INVALID_ITEMS", "Purchase must contain at least one item")
	}
	for i, item := range p.Items {
		if item.ProductID == uuid.Nil {
			return shared.NewDomainError("INVALID_ITEMS", fmt.Sprintf("Item %d has no product", i+1))
		}
		if item.Quantity < 1 {
			return shared.NewDomainError("INVALID_QUANTITY", fmt.Sprintf("Item %d quantity must be at least 1", i+1))
		}
		if item.ReceivedQuantity < 0 || item.ReceivedQuantity > item.Quantity {
			return shared.NewDomainError("INVALID_QUANTITY", fmt.Sprintf("Item %d received quantity must be between 0 and %d", i+1, item.Quantity))
		}
		if item.UnitPrice.IsNegative() {
			return shared.NewDomainError("INVALID_PRICE", fmt.Sprintf("Item %d unit price cannot be negative", i+1))
		}
		if !validPercent(item.Discount) {
			return shared.NewDomainError("INVALID_DISCOUNT", fmt.Sprintf("Item %d discount must be between 0 and 100", i+1))
		}
	}
	return nil
}

// Recalculate refreshes subtotal and total from the items
func (p *Purchase) Recalculate() {
	lines := make([]decimal.Decimal, len(p.Items))
	for i, item := range p.Items {
		lines[i] = item.LineTotal()
	}
	p.Subtotal, p.Total = Totals(lines, p.ShippingCost, p.Discount)
}

// RecordReceipt settles ReceivedQuantity for a delivery status. Delivered
// receives everything; a partial delivery takes the received quantities the
// caller raised and falls back to the full quantity when none was raised.
func (p *Purchase) RecordReceipt(previous *Purchase) {
	prev := make(map[uuid.UUID]int, len(p.Items))
	if previous != nil {
		for _, item := range previous.Items {
			prev[item.ID] = item.ReceivedQuantity
		}
	}
	for i := range p.Items {
		item := &p.Items[i]
		before := prev[item.ID]
		target := item.Quantity
		if p.Status == PurchaseStatusPartiallyDelivered && item.ReceivedQuantity > before {
			target = item.ReceivedQuantity
		}
		target = max(before, min(target, item.Quantity))
		item.ReceivedQuantity = target
	}
	if p.Status == PurchaseStatusDelivered && p.ActualDeliveryDate == nil {
		now := time.Now()
		p.ActualDeliveryDate = &now
	}
}

// ReceivedSince returns per item how much more has been received than in previous
func (p *Purchase) ReceivedSince(previous *Purchase) []PurchaseItem {
	prev := make(map[uuid.UUID]int)
	if previous != nil {
		for _, item := range previous.Items {
			prev[item.ID] = item.ReceivedQuantity
		}
	}
	var out []PurchaseItem
	for _, item := range p.Items {
		if d := item.ReceivedQuantity - prev[item.ID]; d > 0 {
			delta := item
			delta.Quantity = d
			out = append(out, delta)
		}
	}
	return out
}

// Clone returns a deep copy without pending events
func (p *Purchase) Clone() *Purchase {
	out := *p
	out.BaseAggregateRoot = p.CloneRoot()
	out.Items = append([]PurchaseItem(nil), p.Items...)
	if p.ExpectedDeliveryDate != nil {
		t := *p.ExpectedDeliveryDate
		out.ExpectedDeliveryDate = &t
	}
	if p.ActualDeliveryDate != nil {
		t := *p.ActualDeliveryDate
		out.ActualDeliveryDate = &t
	}
	return &out
}
