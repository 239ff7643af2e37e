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
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderCollection is the write path of orders
type OrderCollection = collection.Collection[*trade.Order]

// CustomerResolver finds or creates the customer behind an e-mail address
type CustomerResolver interface {
	ResolveByEmail(ctx context.Context, email, name string) (*partner.Customer, error)
}

// OrderHookDeps bundles what the order hooks need
type OrderHookDeps struct {
	Orders          trade.OrderRepository
	Products        catalog.ProductRepository
	Customers       partner.CustomerRepository
	Resolver        CustomerResolver
	Ledger          StockLedger
	ShippingMethods trade.ShippingMethodRepository
	TaxRates        trade.TaxRateRepository
}

// OrderHooks is the order hook chain
type OrderHooks struct {
	numbers   *sequence.Generator
	orders    trade.OrderRepository
	products  catalog.ProductRepository
	customers partner.CustomerRepository
	resolver  CustomerResolver
	ledger    StockLedger
	shipping  trade.ShippingMethodRepository
	taxes     trade.TaxRateRepository
	lifecycle *shared.Lifecycle[trade.OrderStatus]
}

// NewOrderHooks creates the order hooks
func NewOrderHooks(deps OrderHookDeps) *OrderHooks {
	return &OrderHooks{
		numbers:   sequence.NewGenerator(sequence.PrefixOrder, deps.Orders),
		orders:    deps.Orders,
		products:  deps.Products,
		customers: deps.Customers,
		resolver:  deps.Resolver,
		ledger:    deps.Ledger,
		shipping:  deps.ShippingMethods,
		taxes:     deps.TaxRates,
		lifecycle: trade.OrderLifecycle(),
	}
}

// Register installs the chain on the order collection. The order of the
// before-change hooks matters: each one sees what the previous returned.
func (h *OrderHooks) Register(orders *OrderCollection) {
	orders.BeforeChange("assignCustomer", h.AssignCustomer)
	orders.BeforeChange("generateOrderNumber", h.GenerateOrderNumber)
	orders.BeforeChange("priceAndValidate", h.PriceAndValidate)
	orders.BeforeChange("handleStatusChange", h.HandleStatusChange)
	orders.AfterChange("debitInventory", h.DebitInventory)
}

// AssignCustomer links online orders to the customer of the acting user,
// creating that customer on first use. An explicit customer must exist.
func (h *OrderHooks) AssignCustomer(ctx context.Context, args collection.BeforeChangeArgs[*trade.Order]) (*trade.Order, error) {
	o := args.Data
	if args.Operation != collection.OperationCreate {
		return o, nil
	}
	if args.User != nil && o.CreatedBy == nil {
		id := args.User.ID
		o.CreatedBy = &id
	}
	if o.CustomerID != nil {
		if _, err := h.customers.FindByID(ctx, *o.CustomerID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewNotFoundError("Customer")
			}
			return nil, err
		}
		return o, nil
	}
	if o.OrderType != trade.OrderTypeOnline || args.User == nil || args.User.Email == "" {
		return o, nil
	}
	customer, err := h.resolver.ResolveByEmail(ctx, args.User.Email, args.User.Name)
	if err != nil {
		return nil, err
	}
	o.CustomerID = &customer.ID
	return o, nil
}

// GenerateOrderNumber issues the order number on create and defaults the
// order date. Both are fixed afterwards.
func (h *OrderHooks) GenerateOrderNumber(ctx context.Context, args collection.BeforeChangeArgs[*trade.Order]) (*trade.Order, error) {
	o := args.Data
	if args.Operation == collection.OperationUpdate {
		if o.OrderNumber != args.Original.OrderNumber {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Order number cannot be changed")
		}
		return o, nil
	}
	number, err := h.numbers.Next(ctx)
	if err != nil {
		return nil, err
	}
	o.OrderNumber = number
	if o.OrderDate.IsZero() {
		o.OrderDate = time.Now()
	}
	return o, nil
}

// PriceAndValidate resolves every product, fills missing unit prices and
// recomputes the totals. On create it also checks the requested quantities
// against the product stock; the debit re-checks under the product lock.
// The shipping method and the tax rate are settled on create as well and
// kept by later updates.
func (h *OrderHooks) PriceAndValidate(ctx context.Context, args collection.BeforeChangeArgs[*trade.Order]) (*trade.Order, error) {
	o := args.Data
	if args.Operation == collection.OperationCreate {
		if o.Status == "" {
			o.Status = h.lifecycle.Initial()
		}
		if o.Status != h.lifecycle.Initial() {
			return nil, shared.NewInvalidStateError("orders are created in status %q", h.lifecycle.Initial())
		}
	} else if !o.SameItems(args.Original) {
		return nil, shared.NewInvalidStateError("items of order %s cannot change after it was placed", o.OrderNumber)
	}

	products := make(map[uuid.UUID]*catalog.Product, len(o.Items))
	for i := range o.Items {
		item := &o.Items[i]
		p, ok := products[item.ProductID]
		if !ok {
			var err error
			p, err = h.products.FindByID(ctx, item.ProductID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return nil, shared.NewNotFoundError("Product")
				}
				return nil, err
			}
			products[item.ProductID] = p
		}
		if item.UnitPrice.IsZero() {
			item.UnitPrice = p.Price
		}
		if item.ProductName == "" {
			item.ProductName = p.Name
		}
	}

	if args.Operation == collection.OperationCreate {
		for productID, requested := range o.QuantitiesByProduct() {
			p := products[productID]
			if p.StockQuantity < requested {
				return nil, shared.NewInsufficientStockError(p.DisplayName(), p.StockQuantity, requested)
			}
		}
	}

	o.ShippingAddress = o.ShippingAddress.Normalized()
	o.BillingAddress = o.BillingAddress.Normalized()

	var method *trade.ShippingMethod
	if args.Operation == collection.OperationCreate {
		var err error
		if method, err = h.shippingMethod(ctx, o); err != nil {
			return nil, err
		}
		if method != nil {
			o.ShippingMethodID = &method.ID
			if o.ShippingCost.IsZero() {
				o.ShippingCost = method.Price
			}
		}
		if o.TaxRate, err = h.taxRate(ctx, o.OrderDate); err != nil {
			return nil, err
		}
	}

	if err := o.Validate(); err != nil {
		return nil, err
	}
	o.Recalculate()
	if method != nil {
		if err := method.CheckOrder(o.Subtotal, o.ShippingAddress.Country); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// shippingMethod loads the chosen method. Online orders without a choice
// get the default method, when there is one.
func (h *OrderHooks) shippingMethod(ctx context.Context, o *trade.Order) (*trade.ShippingMethod, error) {
	if o.ShippingMethodID != nil {
		m, err := h.shipping.FindByID(ctx, *o.ShippingMethodID)
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("Shipping method")
		}
		return m, err
	}
	if o.OrderType != trade.OrderTypeOnline {
		return nil, nil
	}
	m, err := h.shipping.FindDefault(ctx)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	return m, err
}

// taxRate is the default rate in effect on the order date, zero without one
func (h *OrderHooks) taxRate(ctx context.Context, at time.Time) (decimal.Decimal, error) {
	r, err := h.taxes.FindDefault(ctx, at)
	if errors.Is(err, shared.ErrNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("find default tax rate: %w", err)
	}
	return r.Rate, nil
}

// HandleStatusChange checks the transition against the order lifecycle and
// applies its stock effect. Restoring uses the stored items.
func (h *OrderHooks) HandleStatusChange(ctx context.Context, args collection.BeforeChangeArgs[*trade.Order]) (*trade.Order, error) {
	o := args.Data
	if args.Operation != collection.OperationUpdate || o.Status == args.Original.Status {
		return o, nil
	}
	effect, err := h.lifecycle.Transition(args.Original.Status, o.Status)
	if err != nil {
		return nil, err
	}
	telemetry.AddEvent(ctx, "order.status_changed",
		telemetry.AttrOrderID, o.ID.String(),
		telemetry.AttrStatus, string(o.Status),
		telemetry.AttrEffect, effect.String(),
	)
	if effect != shared.EffectNone {
		ctx = withOrderLogger(ctx, args.Original)
		if err := applyAll(ctx, h.ledger, args.Original.QuantitiesByProduct(), effect); err != nil {
			return nil, fmt.Errorf("apply %s for order %s: %w", effect, o.OrderNumber, err)
		}
	}
	o.AddDomainEvent(trade.NewOrderStatusChangedEvent(o, args.Original.Status, effect))
	return o, nil
}

// DebitInventory takes the ordered quantities out of the ledger. It runs in
// the transaction of the insert, so a shortage rolls the order back.
func (h *OrderHooks) DebitInventory(ctx context.Context, args collection.AfterChangeArgs[*trade.Order]) error {
	if args.Operation != collection.OperationCreate {
		return nil
	}
	o := args.Doc
	ctx = withOrderLogger(ctx, o)
	if err := applyAll(ctx, h.ledger, o.QuantitiesByProduct(), h.lifecycle.CreateEffect()); err != nil {
		return err
	}
	o.AddDomainEvent(trade.NewOrderPlacedEvent(o))
	return nil
}

// SyncPrices is a product after-change hook that carries a new price into
// the lines of orders still in status new.
func (h *OrderHooks) SyncPrices(orders *OrderCollection) collection.AfterChangeHook[*catalog.Product] {
	return func(ctx context.Context, args collection.AfterChangeArgs[*catalog.Product]) error {
		p := args.Doc
		if args.Operation != collection.OperationUpdate || p.Price.Equal(args.Previous.Price) {
			return nil
		}
		open, err := h.orders.FindByStatusAndProduct(ctx, trade.OrderStatusNew, p.ID)
		if err != nil {
			return fmt.Errorf("find open orders of product %s: %w", p.ID, err)
		}
		for _, o := range open {
			if _, err := orders.Update(ctx, o.ID, func(o *trade.Order) error {
				for i := range o.Items {
					if o.Items[i].ProductID == p.ID {
						o.Items[i].UnitPrice = p.Price
					}
				}
				return nil
			}); err != nil {
				return fmt.Errorf("reprice order %s: %w", o.OrderNumber, err)
			}
		}
		if len(open) > 0 {
			logger.FromContext(ctx).Info("repriced open orders",
				zap.String("product_id", p.ID.String()),
				zap.Int("orders", len(open)),
			)
		}
		return nil
	}
}

func withOrderLogger(ctx context.Context, o *trade.Order) context.Context {
	return logger.WithContext(ctx, logger.FromContext(ctx).With(
		zap.String("order_id", o.ID.String()),
		zap.String("order_number", o.OrderNumber),
	))
}
