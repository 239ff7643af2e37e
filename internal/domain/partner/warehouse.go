package partner

import (
	"context"
	"regexp"
	"strings"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

var warehouseCodeRegex = regexp.MustCompile(`^[A-Z0-9_-]{1,20}$`)

// Warehouse is a physical storage site holding stock ledger entries
type Warehouse struct {
	shared.BaseAggregateRoot
	Code        string
	Name        string
	Description string
	IsDefault   bool
	IsActive    bool
	Address     shared.Address
}

// NewWarehouse creates an active warehouse
func NewWarehouse(code, name string) (*Warehouse, error) {
	w := &Warehouse{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(strings.TrimSpace(code)),
		Name:              strings.TrimSpace(name),
		IsActive:          true,
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

// Validate checks field level invariants
func (w *Warehouse) Validate() error {
	if !warehouseCodeRegex.MatchString(w.Code) {
		return shared.NewDomainError("INVALID_CODE", "Warehouse code must be 1-20 upper case letters, digits, '_' or '-'")
	}
	if w.Name == "" {
		return shared.NewDomainError("INVALID_NAME", "Warehouse name cannot be empty")
	}
	return nil
}

// WarehouseRepository defines the interface for warehouse persistence
type WarehouseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Warehouse, error)
	FindByCode(ctx context.Context, code string) (*Warehouse, error)
	// FindDefault returns the warehouse flagged as default, falling back to
	// the oldest active one
	FindDefault(ctx context.Context) (*Warehouse, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]*Warehouse, int64, error)
	Create(ctx context.Context, warehouse *Warehouse) error
	// ClearDefault removes the default flag from every warehouse
	ClearDefault(ctx context.Context) error
}
