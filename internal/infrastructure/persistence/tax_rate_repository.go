package persistence

import (
	"context"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTaxRateRepository implements TaxRateRepository using GORM
type GormTaxRateRepository struct {
	db *gorm.DB
}

// NewGormTaxRateRepository creates a new GormTaxRateRepository
func NewGormTaxRateRepository(db *gorm.DB) *GormTaxRateRepository {
	return &GormTaxRateRepository{db: db}
}

// FindByID finds a tax rate by ID
func (r *GormTaxRateRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.TaxRate, error) {
	var model models.TaxRateModel
	if err := Conn(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindDefault returns the active default rate whose validity period covers at
func (r *GormTaxRateRepository) FindDefault(ctx context.Context, at time.Time) (*trade.TaxRate, error) {
	var model models.TaxRateModel
	err := Conn(ctx, r.db).
		Where("is_active = ? AND is_default = ?", true, true).
		Where("(effective_from IS NULL OR effective_from <= ?)", at).
		Where("(effective_to IS NULL OR effective_to >= ?)", at).
		Order("created_at DESC").
		First(&model).Error
	if err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds tax rates matching the filter and the total count. Filters
// may narrow by category and is_active.
func (r *GormTaxRateRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*trade.TaxRate, int64, error) {
	query := Conn(ctx, r.db).Model(&models.TaxRateModel{})
	query = search(query, filter.Search, "name", "region")
	query = reusable(equalFilters(query, filter, "category", "is_active"))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.TaxRateModel
	if err := paginate(query, filter, TaxRateSortFields).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*trade.TaxRate, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, total, nil
}

// Create inserts a new tax rate
func (r *GormTaxRateRepository) Create(ctx context.Context, rate *trade.TaxRate) error {
	model := &models.TaxRateModel{}
	model.FromDomain(rate)
	return createError(Conn(ctx, r.db).Create(model).Error, false)
}

// ClearDefault removes the default flag from every tax rate
func (r *GormTaxRateRepository) ClearDefault(ctx context.Context) error {
	return Conn(ctx, r.db).
		Model(&models.TaxRateModel{}).
		Where("is_default = ?", true).
		Update("is_default", false).Error
}

var _ trade.TaxRateRepository = (*GormTaxRateRepository)(nil)
