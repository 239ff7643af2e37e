package partner

import (
	"context"
	"errors"

	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// WarehouseService handles warehouse-related business operations
type WarehouseService struct {
	repo partner.WarehouseRepository
	tx   shared.TransactionScope
}

// NewWarehouseService creates a new WarehouseService
func NewWarehouseService(repo partner.WarehouseRepository, tx shared.TransactionScope) *WarehouseService {
	return &WarehouseService{repo: repo, tx: tx}
}

// Create creates a new warehouse. Flagging it as default takes the flag
// away from every other warehouse in the same transaction.
func (s *WarehouseService) Create(ctx context.Context, req CreateWarehouseRequest) (*WarehouseResponse, error) {
	w, err := partner.NewWarehouse(req.Code, req.Name)
	if err != nil {
		return nil, err
	}
	w.Description = req.Description
	w.IsDefault = req.IsDefault
	w.Address = req.Address.ToAddress()

	err = s.tx.Execute(ctx, func(ctx context.Context) error {
		if _, err := s.repo.FindByCode(ctx, w.Code); err == nil {
			return shared.NewDomainError(shared.CodeAlreadyExists, "Warehouse with this code already exists")
		} else if !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if w.IsDefault {
			if err := s.repo.ClearDefault(ctx); err != nil {
				return err
			}
		}
		return s.repo.Create(ctx, w)
	})
	if err != nil {
		return nil, err
	}
	resp := ToWarehouseResponse(w)
	return &resp, nil
}

// GetByID retrieves a warehouse by ID
func (s *WarehouseService) GetByID(ctx context.Context, id uuid.UUID) (*WarehouseResponse, error) {
	w, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToWarehouseResponse(w)
	return &resp, nil
}

// List retrieves a page of warehouses
func (s *WarehouseService) List(ctx context.Context, filter ListFilter) ([]WarehouseResponse, int64, error) {
	warehouses, total, err := s.repo.FindAll(ctx, filter.toFilter())
	if err != nil {
		return nil, 0, err
	}
	out := make([]WarehouseResponse, len(warehouses))
	for i, w := range warehouses {
		out[i] = ToWarehouseResponse(w)
	}
	return out, total, nil
}
