// Package inventory applies stock movements to the per-warehouse ledger and
// keeps product stock quantities in line with it.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/backoffice/internal/application/collection"
	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LedgerConfig tunes the stock ledger
type LedgerConfig struct {
	LockTimeout          time.Duration
	DefaultWarehouseCode string
}

// EntryCollection is the write path of ledger entries
type EntryCollection = collection.Collection[*inventory.StockLedgerEntry]

// LedgerDeps bundles what the ledger needs
type LedgerDeps struct {
	Entries    *EntryCollection
	Repo       inventory.LedgerRepository
	Products   catalog.ProductRepository
	Warehouses partner.WarehouseRepository
	Runner     *collection.Runner
	Locker     collection.Locker
	Metrics    *telemetry.LedgerMetrics
}

// StockLedger is the only writer of stock quantities. Every mutation holds
// the product lock until the surrounding write ends and goes through the
// entry collection, so the aggregate sync sees each change.
type StockLedger struct {
	entries    *EntryCollection
	repo       inventory.LedgerRepository
	products   catalog.ProductRepository
	warehouses partner.WarehouseRepository
	runner     *collection.Runner
	locker     collection.Locker
	metrics    *telemetry.LedgerMetrics
	config     LedgerConfig
}

// NewStockLedger creates a stock ledger
func NewStockLedger(deps LedgerDeps, config LedgerConfig) *StockLedger {
	if config.LockTimeout <= 0 {
		config.LockTimeout = 5 * time.Second
	}
	if config.DefaultWarehouseCode == "" {
		config.DefaultWarehouseCode = "MAIN"
	}
	return &StockLedger{
		entries:    deps.Entries,
		repo:       deps.Repo,
		products:   deps.Products,
		warehouses: deps.Warehouses,
		runner:     deps.Runner,
		locker:     deps.Locker,
		metrics:    deps.Metrics,
		config:     config,
	}
}

// ProductLockKey is the lock key guarding the ledger of one product
func ProductLockKey(productID uuid.UUID) string {
	return "ledger:product:" + productID.String()
}

// LockProduct holds the ledger lock of productID for the rest of the write
func (l *StockLedger) LockProduct(ctx context.Context, productID uuid.UUID) error {
	if err := collection.Hold(ctx, l.locker, ProductLockKey(productID), l.config.LockTimeout); err != nil {
		l.metrics.RecordConflict(ctx)
		if shared.IsRetryable(err) {
			return fmt.Errorf("lock ledger of product %s: %w", productID, err)
		}
		return fmt.Errorf("lock ledger of product %s: %w", productID, errors.Join(shared.ErrConcurrencyConflict, err))
	}
	return nil
}

// QuantityOf sums the ledger of a product, 0 when it has no entries
func (l *StockLedger) QuantityOf(ctx context.Context, productID uuid.UUID) (int, error) {
	return l.repo.SumByProduct(ctx, productID)
}

// Entries returns the ledger entries of a product, fullest first
func (l *StockLedger) Entries(ctx context.Context, productID uuid.UUID) ([]*inventory.StockLedgerEntry, error) {
	return l.repo.FindByProduct(ctx, productID)
}

// ApplyDelta moves quantity units of productID according to effect. quantity
// is a magnitude; the effect decides the direction.
func (l *StockLedger) ApplyDelta(ctx context.Context, productID uuid.UUID, quantity int, effect shared.StockEffect) error {
	if effect == shared.EffectNone || quantity <= 0 {
		return nil
	}
	return l.runner.Run(ctx, "ledger.apply", func(ctx context.Context) error {
		ctx, span := telemetry.StartServiceSpan(ctx, "ledger", effect.String(),
			telemetry.AttrProductID, productID.String(),
			telemetry.AttrQuantity, quantity,
		)
		defer span.End()

		err := l.applyDelta(ctx, productID, quantity, effect)
		telemetry.RecordError(span, err)
		return err
	})
}

func (l *StockLedger) applyDelta(ctx context.Context, productID uuid.UUID, quantity int, effect shared.StockEffect) error {
	if err := l.LockProduct(ctx, productID); err != nil {
		return err
	}
	entries, err := l.repo.FindByProduct(ctx, productID)
	if err != nil {
		return fmt.Errorf("load ledger of product %s: %w", productID, err)
	}
	log := logger.FromContext(ctx).With(
		zap.String("product_id", productID.String()),
		zap.Int("quantity", quantity),
		zap.Stringer("effect", effect),
	)

	switch effect {
	case shared.EffectDebit:
		plan, err := inventory.PlanDebit(entries, quantity)
		if err != nil {
			var shortage *inventory.ShortageError
			if errors.As(err, &shortage) {
				l.metrics.RecordShortage(ctx)
				return shared.NewInsufficientStockError(l.productName(ctx, productID), shortage.Available, shortage.Requested)
			}
			return err
		}
		return l.apply(ctx, effect.String(), plan)

	case shared.EffectCredit:
		plan, createQty := inventory.PlanCredit(entries, quantity)
		if err := l.apply(ctx, effect.String(), plan); err != nil {
			return err
		}
		if createQty > 0 {
			return l.createAtDefault(ctx, productID, createQty)
		}
		return nil

	case shared.EffectRestore:
		adj, ok := inventory.PlanRestore(entries, quantity)
		if !ok {
			l.metrics.RecordRestoreFailure(ctx)
			log.Error("no inventory location to restore stock to")
			return shared.NewDomainError(shared.CodePartialRestorationFailure,
				fmt.Sprintf("No inventory location found for product %s, %d units could not be restored", productID, quantity))
		}
		return l.apply(ctx, effect.String(), []inventory.Adjustment{adj})

	case shared.EffectReverse:
		plan, shortfall := inventory.PlanReverse(entries, quantity)
		if err := l.apply(ctx, effect.String(), plan); err != nil {
			return err
		}
		if shortfall > 0 {
			log.Warn("ledger held less than the quantity to reverse", zap.Int("shortfall", shortfall))
		}
		return nil
	}
	return fmt.Errorf("unsupported stock effect %s", effect)
}

// SetTotal moves the ledger total of productID to target. Existing entries
// keep their relative share; without entries one is opened at the default
// warehouse.
func (l *StockLedger) SetTotal(ctx context.Context, productID uuid.UUID, target int) error {
	return l.runner.Run(ctx, "ledger.set_total", func(ctx context.Context) error {
		if err := l.LockProduct(ctx, productID); err != nil {
			return err
		}
		entries, err := l.repo.FindByProduct(ctx, productID)
		if err != nil {
			return fmt.Errorf("load ledger of product %s: %w", productID, err)
		}
		plan, createQty := inventory.PlanSetTotal(entries, target)
		if err := l.apply(ctx, "set_total", plan); err != nil {
			return err
		}
		if createQty > 0 {
			return l.createAtDefault(ctx, productID, createQty)
		}
		return nil
	})
}

func (l *StockLedger) apply(ctx context.Context, reason string, plan []inventory.Adjustment) error {
	for _, adj := range plan {
		if adj.Delta() == 0 {
			continue
		}
		_, err := l.entries.Update(ctx, adj.EntryID, func(e *inventory.StockLedgerEntry) error {
			if e.Quantity != adj.From {
				return fmt.Errorf("ledger entry %s changed underneath the plan: %w", e.InventoryID, shared.ErrConcurrencyConflict)
			}
			return e.SetQuantity(adj.To)
		})
		if err != nil {
			return err
		}
		l.metrics.RecordAdjustment(ctx, reason, adj.Delta())
	}
	return nil
}

func (l *StockLedger) createAtDefault(ctx context.Context, productID uuid.UUID, quantity int) error {
	product, err := l.products.FindByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("load product %s: %w", productID, err)
	}
	wh, err := l.defaultWarehouse(ctx)
	if err != nil {
		return err
	}
	entry, err := inventory.NewStockLedgerEntry(productID, wh.ID, inventory.InventoryIDFor(product.SKU, wh.Code), quantity)
	if err != nil {
		return err
	}
	entry.MinStockLevel = product.MinStockLevel
	entry.RefreshStatus()
	if _, err := l.entries.Create(ctx, entry); err != nil {
		return err
	}
	l.metrics.RecordAdjustment(ctx, "open_entry", quantity)
	return nil
}

func (l *StockLedger) defaultWarehouse(ctx context.Context) (*partner.Warehouse, error) {
	wh, err := l.warehouses.FindDefault(ctx)
	if err == nil {
		return wh, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	wh, err = l.warehouses.FindByCode(ctx, l.config.DefaultWarehouseCode)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.NewNotFoundError("Default warehouse")
	}
	return wh, err
}

func (l *StockLedger) productName(ctx context.Context, productID uuid.UUID) string {
	p, err := l.products.FindByID(ctx, productID)
	if err != nil {
		return productID.String()
	}
	return p.DisplayName()
}
