package partner

import (
	"context"
	"strings"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// Supplier delivers purchases
type Supplier struct {
	shared.BaseAggregateRoot
	Name          string
	ContactPerson string
	Email         string
	Phone         string
}

// NewSupplier creates a supplier
func NewSupplier(name string) (*Supplier, error) {
	s := &Supplier{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
	}
	if s.Name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Supplier name cannot be empty")
	}
	return s, nil
}

// SupplierRepository defines the interface for supplier persistence
type SupplierRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Supplier, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]*Supplier, int64, error)
	Create(ctx context.Context, supplier *Supplier) error
}
