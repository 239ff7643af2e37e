package inventory

import (
	"context"
	"fmt"

	"github.com/erp/backoffice/internal/application/collection"
	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ProductCollection is the write path of products
type ProductCollection = collection.Collection[*catalog.Product]

// AggregateSync keeps Product.StockQuantity equal to the sum of the
// product's ledger entries, in both directions. Each side only acts when the
// value it watches changed and differs from the other side, so a change
// travels once around the cycle and stops.
type AggregateSync struct {
	ledger   *StockLedger
	products *ProductCollection
}

// NewAggregateSync creates the sync hooks
func NewAggregateSync(ledger *StockLedger, products *ProductCollection) *AggregateSync {
	return &AggregateSync{ledger: ledger, products: products}
}

// Register installs the sync hooks on both collections
func (s *AggregateSync) Register(entries *EntryCollection) {
	entries.AfterChange("syncProductQuantity", s.SyncProductQuantity)
	s.products.AfterChange("syncInventoryQuantity", s.SyncInventoryQuantity)
}

// SyncProductQuantity pushes a ledger change into the product aggregate
func (s *AggregateSync) SyncProductQuantity(ctx context.Context, args collection.AfterChangeArgs[*inventory.StockLedgerEntry]) error {
	entry := args.Doc
	if args.Operation == collection.OperationUpdate && args.Previous != nil && args.Previous.Quantity == entry.Quantity {
		return nil
	}
	total, err := s.ledger.QuantityOf(ctx, entry.ProductID)
	if err != nil {
		return fmt.Errorf("sum ledger of product %s: %w", entry.ProductID, err)
	}
	product, err := s.products.FindByID(ctx, entry.ProductID)
	if err != nil {
		return fmt.Errorf("load product %s: %w", entry.ProductID, err)
	}
	if product.StockQuantity == total {
		return nil
	}
	logger.FromContext(ctx).Debug("syncing product stock from ledger",
		zap.String("product_id", entry.ProductID.String()),
		zap.Int("from", product.StockQuantity),
		zap.Int("to", total),
	)
	_, err = s.products.Update(ctx, entry.ProductID, func(p *catalog.Product) error {
		p.StockQuantity = total
		return nil
	})
	return err
}

// SyncInventoryQuantity pulls a manual stock change of a product into the ledger
func (s *AggregateSync) SyncInventoryQuantity(ctx context.Context, args collection.AfterChangeArgs[*catalog.Product]) error {
	product := args.Doc
	switch args.Operation {
	case collection.OperationCreate:
		if product.StockQuantity == 0 {
			return nil
		}
	case collection.OperationUpdate:
		if args.Previous != nil && args.Previous.StockQuantity == product.StockQuantity {
			return nil
		}
	}
	total, err := s.ledger.QuantityOf(ctx, product.ID)
	if err != nil {
		return fmt.Errorf("sum ledger of product %s: %w", product.ID, err)
	}
	if total == product.StockQuantity {
		return nil
	}
	logger.FromContext(ctx).Info("rebalancing ledger to product stock",
		zap.String("product_id", product.ID.String()),
		zap.Int("ledger_total", total),
		zap.Int("target", product.StockQuantity),
	)
	return s.ledger.SetTotal(ctx, product.ID, product.StockQuantity)
}
