package trade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/backoffice/internal/application/collection"
	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/sequence"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PurchaseCollection is the write path of purchases
type PurchaseCollection = collection.Collection[*trade.Purchase]

// PurchaseHookDeps bundles what the purchase hooks need
type PurchaseHookDeps struct {
	Purchases trade.PurchaseRepository
	Products  catalog.ProductRepository
	Suppliers partner.SupplierRepository
	Ledger    StockLedger
}

// PurchaseHooks is the purchase hook chain
type PurchaseHooks struct {
	numbers   *sequence.Generator
	products  catalog.ProductRepository
	suppliers partner.SupplierRepository
	ledger    StockLedger
	lifecycle *shared.Lifecycle[trade.PurchaseStatus]
}

// NewPurchaseHooks creates the purchase hooks
func NewPurchaseHooks(deps PurchaseHookDeps) *PurchaseHooks {
	return &PurchaseHooks{
		numbers:   sequence.NewGenerator(sequence.PrefixPurchase, deps.Purchases),
		products:  deps.Products,
		suppliers: deps.Suppliers,
		ledger:    deps.Ledger,
		lifecycle: trade.PurchaseLifecycle(),
	}
}

// Register installs the chain on the purchase collection
func (h *PurchaseHooks) Register(purchases *PurchaseCollection) {
	purchases.BeforeChange("generatePurchaseNumber", h.GeneratePurchaseNumber)
	purchases.BeforeChange("priceItems", h.PriceItems)
	purchases.BeforeChange("handleStatusChange", h.HandleStatusChange)
	purchases.AfterChange("creditInventory", h.CreditInventory)
}

// GeneratePurchaseNumber issues the purchase number on create
func (h *PurchaseHooks) GeneratePurchaseNumber(ctx context.Context, args collection.BeforeChangeArgs[*trade.Purchase]) (*trade.Purchase, error) {
	p := args.Data
	if args.Operation == collection.OperationUpdate {
		if p.PurchaseNumber != args.Original.PurchaseNumber {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Purchase number cannot be changed")
		}
		return p, nil
	}
	number, err := h.numbers.Next(ctx)
	if err != nil {
		return nil, err
	}
	p.PurchaseNumber = number
	if p.OrderDate.IsZero() {
		p.OrderDate = time.Now()
	}
	return p, nil
}

// PriceItems checks supplier and products and recomputes the totals.
// Items can only be edited while nothing has been received.
func (h *PurchaseHooks) PriceItems(ctx context.Context, args collection.BeforeChangeArgs[*trade.Purchase]) (*trade.Purchase, error) {
	p := args.Data
	switch args.Operation {
	case collection.OperationCreate:
		if p.Status == "" {
			p.Status = h.lifecycle.Initial()
		}
		if p.Status != h.lifecycle.Initial() {
			return nil, shared.NewInvalidStateError("purchases are created in status %q", h.lifecycle.Initial())
		}
		for i := range p.Items {
			p.Items[i].ReceivedQuantity = 0
		}
		if _, err := h.suppliers.FindByID(ctx, p.SupplierID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewNotFoundError("Supplier")
			}
			return nil, err
		}
	case collection.OperationUpdate:
		if args.Original.Status != h.lifecycle.Initial() && !sameOrderedItems(p, args.Original) {
			return nil, shared.NewInvalidStateError("items of purchase %s cannot change after delivery started", p.PurchaseNumber)
		}
	}

	seen := make(map[uuid.UUID]bool, len(p.Items))
	for _, item := range p.Items {
		if seen[item.ProductID] {
			continue
		}
		if _, err := h.products.FindByID(ctx, item.ProductID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewNotFoundError("Product")
			}
			return nil, err
		}
		seen[item.ProductID] = true
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.Recalculate()
	return p, nil
}

// HandleStatusChange checks the transition against the purchase lifecycle.
// Entering a delivery status settles the received quantities that the
// after-change hook credits; cancelling a delivered purchase takes the
// credited quantities back out of the ledger.
func (h *PurchaseHooks) HandleStatusChange(ctx context.Context, args collection.BeforeChangeArgs[*trade.Purchase]) (*trade.Purchase, error) {
	p := args.Data
	if args.Operation != collection.OperationUpdate {
		return p, nil
	}
	prev := args.Original
	effect, err := h.lifecycle.Transition(prev.Status, p.Status)
	if err != nil {
		return nil, err
	}

	switch {
	case effect == shared.EffectCredit:
		p.RecordReceipt(prev)
	case p.Status == prev.Status && p.Status == trade.PurchaseStatusPartiallyDelivered:
		// a further partial delivery raises the received quantities only
		keepReceived(p, prev, true)
	default:
		keepReceived(p, prev, false)
	}

	if effect == shared.EffectReverse {
		ctx = logger.WithContext(ctx, logger.FromContext(ctx).With(
			zap.String("purchase_id", p.ID.String()),
			zap.String("purchase_number", p.PurchaseNumber),
		))
		if err := applyAll(ctx, h.ledger, receivedByProduct(prev), effect); err != nil {
			return nil, fmt.Errorf("failed to update inventory for cancelled purchase %s: %w", p.PurchaseNumber, err)
		}
	}
	if p.Status != prev.Status {
		p.AddDomainEvent(trade.NewPurchaseStatusChangedEvent(p, prev.Status, effect))
	}
	return p, nil
}

// CreditInventory credits what was received with this write
func (h *PurchaseHooks) CreditInventory(ctx context.Context, args collection.AfterChangeArgs[*trade.Purchase]) error {
	if args.Operation != collection.OperationUpdate {
		return nil
	}
	received := make(map[uuid.UUID]int)
	for _, item := range args.Doc.ReceivedSince(args.Previous) {
		received[item.ProductID] += item.Quantity
	}
	if len(received) == 0 {
		return nil
	}
	return applyAll(ctx, h.ledger, received, shared.EffectCredit)
}

// keepReceived pins the received quantities to the stored ones. With allowRaise
// a caller may raise them up to the ordered quantity.
func keepReceived(p, prev *trade.Purchase, allowRaise bool) {
	stored := make(map[uuid.UUID]int, len(prev.Items))
	for _, item := range prev.Items {
		stored[item.ID] = item.ReceivedQuantity
	}
	for i := range p.Items {
		item := &p.Items[i]
		before := stored[item.ID]
		if !allowRaise || item.ReceivedQuantity < before {
			item.ReceivedQuantity = before
		}
		item.ReceivedQuantity = min(item.ReceivedQuantity, item.Quantity)
	}
}

func receivedByProduct(p *trade.Purchase) map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(p.Items))
	for _, item := range p.Items {
		if item.ReceivedQuantity > 0 {
			out[item.ProductID] += item.ReceivedQuantity
		}
	}
	return out
}

func sameOrderedItems(a, b *trade.Purchase) bool {
	if len(a.Items) != len(b.Items) {
		return false
	}
	ordered := make(map[uuid.UUID]trade.PurchaseItem, len(b.Items))
	for _, item := range b.Items {
		ordered[item.ID] = item
	}
	for _, item := range a.Items {
		other, ok := ordered[item.ID]
		if !ok || other.ProductID != item.ProductID || other.Quantity != item.Quantity {
			return false
		}
	}
	return true
}
