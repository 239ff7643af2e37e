package catalog

import (
	"context"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindBySKU(ctx context.Context, sku string) (*Product, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]*Product, int64, error)
	// FindLowStock returns products whose stock is at or below their minimum level
	FindLowStock(ctx context.Context, limit int) ([]*Product, error)
	// LastNumber returns the highest SKU issued so far
	LastNumber(ctx context.Context) (string, error)
	Create(ctx context.Context, product *Product) error
	// SaveWithLock updates the product if its stored version still matches
	SaveWithLock(ctx context.Context, product *Product) error
}
