package trade

import (
	"context"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]*Order, int64, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]*Order, int64, error)
	// FindByStatusAndProduct returns orders in status with a line for productID
	FindByStatusAndProduct(ctx context.Context, status OrderStatus, productID uuid.UUID) ([]*Order, error)
	LastNumber(ctx context.Context) (string, error)
	Create(ctx context.Context, order *Order) error
	SaveWithLock(ctx context.Context, order *Order) error
}

// PurchaseRepository defines the interface for purchase persistence
type PurchaseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Purchase, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]*Purchase, int64, error)
	LastNumber(ctx context.Context) (string, error)
	Create(ctx context.Context, purchase *Purchase) error
	SaveWithLock(ctx context.Context, purchase *Purchase) error
}
