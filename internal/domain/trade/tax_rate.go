package trade

import (
	"context"
	"strings"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaxCategory classifies a tax rate
type TaxCategory string

const (
	TaxCategoryStandard TaxCategory = "standard"
	TaxCategoryReduced  TaxCategory = "reduced"
	TaxCategoryZero     TaxCategory = "zero"
	TaxCategoryExempt   TaxCategory = "exempt"
)

// IsValid reports whether c is a known category
func (c TaxCategory) IsValid() bool {
	switch c {
	case TaxCategoryStandard, TaxCategoryReduced, TaxCategoryZero, TaxCategoryExempt:
		return true
	}
	return false
}

// TaxRate is a VAT rate in percent. Order prices are gross, so the rate
// determines the tax contained in an order total.
type TaxRate struct {
	shared.BaseAggregateRoot
	Name          string
	Rate          decimal.Decimal
	Description   string
	IsActive      bool
	Region        string
	IsDefault     bool
	Category      TaxCategory
	EffectiveFrom *time.Time
	EffectiveTo   *time.Time
	Notes         string
}

// NewTaxRate creates an active standard rate for the default region
func NewTaxRate(name string, rate decimal.Decimal) (*TaxRate, error) {
	r := &TaxRate{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Rate:              rate,
		IsActive:          true,
		Region:            shared.DefaultCountry,
		Category:          TaxCategoryStandard,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks field level invariants
func (r *TaxRate) Validate() error {
	if r.Name == "" {
		return shared.NewDomainError("INVALID_NAME", "Tax rate name cannot be empty")
	}
	if !validPercent(r.Rate) {
		return shared.NewDomainError("INVALID_RATE", "Tax rate must be between 0 and 100")
	}
	if !r.Category.IsValid() {
		return shared.NewDomainError("INVALID_CATEGORY", "Unknown tax category "+string(r.Category))
	}
	if r.EffectiveFrom != nil && r.EffectiveTo != nil && r.EffectiveTo.Before(*r.EffectiveFrom) {
		return shared.NewDomainError("INVALID_PERIOD", "Tax rate cannot end before it starts")
	}
	return nil
}

// AppliesAt reports whether the rate is active and in effect at t
func (r *TaxRate) AppliesAt(t time.Time) bool {
	if !r.IsActive {
		return false
	}
	if r.EffectiveFrom != nil && t.Before(*r.EffectiveFrom) {
		return false
	}
	if r.EffectiveTo != nil && t.After(*r.EffectiveTo) {
		return false
	}
	return true
}

// TaxRateRepository defines the interface for tax rate persistence
type TaxRateRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*TaxRate, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]*TaxRate, int64, error)
	// FindDefault returns the active default rate in effect at t
	FindDefault(ctx context.Context, at time.Time) (*TaxRate, error)
	Create(ctx context.Context, rate *TaxRate) error
	// ClearDefault removes the default flag from every tax rate
	ClearDefault(ctx context.Context) error
}
