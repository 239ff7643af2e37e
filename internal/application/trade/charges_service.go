package trade

import (
	"context"
	"strings"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/google/uuid"
)

// ShippingMethodService handles shipping method operations
type ShippingMethodService struct {
	repo trade.ShippingMethodRepository
	tx   shared.TransactionScope
}

// NewShippingMethodService creates a new ShippingMethodService
func NewShippingMethodService(repo trade.ShippingMethodRepository, tx shared.TransactionScope) *ShippingMethodService {
	return &ShippingMethodService{repo: repo, tx: tx}
}

// Create creates a shipping method. Flagging it as default takes the flag
// away from every other method in the same transaction.
func (s *ShippingMethodService) Create(ctx context.Context, req CreateShippingMethodRequest) (*ShippingMethodResponse, error) {
	m, err := trade.NewShippingMethod(req.Name, req.Price)
	if err != nil {
		return nil, err
	}
	m.Carrier = strings.TrimSpace(req.Carrier)
	m.Description = req.Description
	m.EstimatedDays = trade.DeliveryDays{Min: req.MinDeliveryDays, Max: req.MaxDeliveryDays}
	m.IsDefault = req.IsDefault
	m.TrackingAvailable = req.TrackingAvailable
	m.TrackingURLFormat = strings.TrimSpace(req.TrackingURLFormat)
	m.Restrictions = trade.ShippingRestrictions{MinOrderAmount: req.MinOrderAmount, Countries: req.Countries}
	m.Notes = req.Notes
	if err := m.Validate(); err != nil {
		return nil, err
	}

	err = s.tx.Execute(ctx, func(ctx context.Context) error {
		if m.IsDefault {
			if err := s.repo.ClearDefault(ctx); err != nil {
				return err
			}
		}
		return s.repo.Create(ctx, m)
	})
	if err != nil {
		return nil, err
	}
	resp := ToShippingMethodResponse(m)
	return &resp, nil
}

// GetByID retrieves a shipping method by ID
func (s *ShippingMethodService) GetByID(ctx context.Context, id uuid.UUID) (*ShippingMethodResponse, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToShippingMethodResponse(m)
	return &resp, nil
}

// List retrieves a page of shipping methods
func (s *ShippingMethodService) List(ctx context.Context, filter ChargeListFilter) ([]ShippingMethodResponse, int64, error) {
	methods, total, err := s.repo.FindAll(ctx, filter.toFilter())
	if err != nil {
		return nil, 0, err
	}
	out := make([]ShippingMethodResponse, len(methods))
	for i, m := range methods {
		out[i] = ToShippingMethodResponse(m)
	}
	return out, total, nil
}

// TaxRateService handles tax rate operations
type TaxRateService struct {
	repo trade.TaxRateRepository
	tx   shared.TransactionScope
}

// NewTaxRateService creates a new TaxRateService
func NewTaxRateService(repo trade.TaxRateRepository, tx shared.TransactionScope) *TaxRateService {
	return &TaxRateService{repo: repo, tx: tx}
}

// Create creates a tax rate. A new default replaces the previous one.
func (s *TaxRateService) Create(ctx context.Context, req CreateTaxRateRequest) (*TaxRateResponse, error) {
	r, err := trade.NewTaxRate(req.Name, req.Rate)
	if err != nil {
		return nil, err
	}
	r.Description = req.Description
	if region := strings.TrimSpace(req.Region); region != "" {
		r.Region = region
	}
	if req.Category != "" {
		r.Category = trade.TaxCategory(req.Category)
	}
	r.IsDefault = req.IsDefault
	r.EffectiveFrom = req.EffectiveFrom
	r.EffectiveTo = req.EffectiveTo
	r.Notes = req.Notes
	if err := r.Validate(); err != nil {
		return nil, err
	}

	err = s.tx.Execute(ctx, func(ctx context.Context) error {
		if r.IsDefault {
			if err := s.repo.ClearDefault(ctx); err != nil {
				return err
			}
		}
		return s.repo.Create(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	resp := ToTaxRateResponse(r)
	return &resp, nil
}

// GetByID retrieves a tax rate by ID
func (s *TaxRateService) GetByID(ctx context.Context, id uuid.UUID) (*TaxRateResponse, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToTaxRateResponse(r)
	return &resp, nil
}

// List retrieves a page of tax rates
func (s *TaxRateService) List(ctx context.Context, filter ChargeListFilter) ([]TaxRateResponse, int64, error) {
	rates, total, err := s.repo.FindAll(ctx, filter.toFilter())
	if err != nil {
		return nil, 0, err
	}
	out := make([]TaxRateResponse, len(rates))
	for i, r := range rates {
		out[i] = ToTaxRateResponse(r)
	}
	return out, total, nil
}

func (f ChargeListFilter) toFilter() shared.Filter {
	out := pageFilter(f.Page, f.PageSize)
	out.Search = f.Search
	if f.Active != nil {
		out.Filters["is_active"] = *f.Active
	}
	if f.Category != "" {
		out.Filters["category"] = f.Category
	}
	return out
}
