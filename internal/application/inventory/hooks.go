package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/backoffice/internal/application/collection"
	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/shared"
)

// RegisterEntryHooks installs the ledger's own before-change hook on the
// entry collection. It runs for ledger movements and for direct entry edits.
func (l *StockLedger) RegisterEntryHooks(entries *EntryCollection) {
	entries.BeforeChange("prepareEntry", l.prepareEntry)
}

func (l *StockLedger) prepareEntry(ctx context.Context, args collection.BeforeChangeArgs[*inventory.StockLedgerEntry]) (*inventory.StockLedgerEntry, error) {
	entry := args.Data
	if err := l.LockProduct(ctx, entry.ProductID); err != nil {
		return nil, err
	}

	oldQuantity := 0
	switch args.Operation {
	case collection.OperationCreate:
		if err := l.completeNewEntry(ctx, entry); err != nil {
			return nil, err
		}
	case collection.OperationUpdate:
		orig := args.Original
		if entry.ProductID != orig.ProductID || entry.WarehouseID != orig.WarehouseID || entry.InventoryID != orig.InventoryID {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Product, warehouse and inventory id of a ledger entry cannot change")
		}
		oldQuantity = orig.Quantity
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}
	entry.RefreshStatus()
	if args.Operation == collection.OperationCreate || entry.Quantity != oldQuantity {
		entry.AddDomainEvent(inventory.NewStockAdjustedEvent(entry, oldQuantity))
	}
	return entry, nil
}

// completeNewEntry checks references and uniqueness and fills the inventory id
func (l *StockLedger) completeNewEntry(ctx context.Context, entry *inventory.StockLedgerEntry) error {
	product, err := l.products.FindByID(ctx, entry.ProductID)
	if err != nil {
		return fmt.Errorf("load product %s: %w", entry.ProductID, err)
	}
	wh, err := l.warehouses.FindByID(ctx, entry.WarehouseID)
	if err != nil {
		return fmt.Errorf("load warehouse %s: %w", entry.WarehouseID, err)
	}
	existing, err := l.repo.FindByProductAndWarehouse(ctx, entry.ProductID, entry.WarehouseID)
	switch {
	case err == nil && existing != nil:
		return shared.NewDomainError(shared.CodeAlreadyExists,
			fmt.Sprintf("Product %s already has a ledger entry at warehouse %s", product.DisplayName(), wh.Code))
	case err != nil && !errors.Is(err, shared.ErrNotFound):
		return err
	}
	if entry.InventoryID == "" {
		entry.InventoryID = inventory.InventoryIDFor(product.SKU, wh.Code)
	}
	return nil
}
