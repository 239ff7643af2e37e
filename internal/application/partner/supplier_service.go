package partner

import (
	"context"

	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/google/uuid"
)

// SupplierService handles supplier-related business operations
type SupplierService struct {
	repo partner.SupplierRepository
}

// NewSupplierService creates a new SupplierService
func NewSupplierService(repo partner.SupplierRepository) *SupplierService {
	return &SupplierService{repo: repo}
}

// Create creates a new supplier
func (s *SupplierService) Create(ctx context.Context, req CreateSupplierRequest) (*SupplierResponse, error) {
	supplier, err := partner.NewSupplier(req.Name)
	if err != nil {
		return nil, err
	}
	supplier.ContactPerson = req.ContactPerson
	supplier.Email = partner.NormalizeEmail(req.Email)
	supplier.Phone = req.Phone
	if err := s.repo.Create(ctx, supplier); err != nil {
		return nil, err
	}
	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// GetByID retrieves a supplier by ID
func (s *SupplierService) GetByID(ctx context.Context, id uuid.UUID) (*SupplierResponse, error) {
	supplier, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// List retrieves a page of suppliers
func (s *SupplierService) List(ctx context.Context, filter ListFilter) ([]SupplierResponse, int64, error) {
	suppliers, total, err := s.repo.FindAll(ctx, filter.toFilter())
	if err != nil {
		return nil, 0, err
	}
	out := make([]SupplierResponse, len(suppliers))
	for i, sp := range suppliers {
		out[i] = ToSupplierResponse(sp)
	}
	return out, total, nil
}
