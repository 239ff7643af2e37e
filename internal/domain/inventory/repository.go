package inventory

import (
	"context"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// LedgerRepository persists stock ledger entries
type LedgerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*StockLedgerEntry, error)
	// FindByProduct returns the entries of a product ordered by quantity, highest first
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]*StockLedgerEntry, error)
	FindByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID) (*StockLedgerEntry, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]*StockLedgerEntry, int64, error)
	// SumByProduct returns the total quantity held for a product, 0 without entries
	SumByProduct(ctx context.Context, productID uuid.UUID) (int, error)
	Create(ctx context.Context, entry *StockLedgerEntry) error
	SaveWithLock(ctx context.Context, entry *StockLedgerEntry) error
}
