package persistence

import (
	"context"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormShippingMethodRepository implements ShippingMethodRepository using GORM
type GormShippingMethodRepository struct {
	db *gorm.DB
}

// NewGormShippingMethodRepository creates a new GormShippingMethodRepository
func NewGormShippingMethodRepository(db *gorm.DB) *GormShippingMethodRepository {
	return &GormShippingMethodRepository{db: db}
}

// FindByID finds a shipping method by ID
func (r *GormShippingMethodRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.ShippingMethod, error) {
	var model models.ShippingMethodModel
	if err := Conn(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindDefault returns the active default method
func (r *GormShippingMethodRepository) FindDefault(ctx context.Context) (*trade.ShippingMethod, error) {
	var model models.ShippingMethodModel
	err := Conn(ctx, r.db).
		Where("is_active = ? AND is_default = ?", true, true).
		Order("created_at DESC").
		First(&model).Error
	if err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds shipping methods matching the filter and the total count.
// Filters may narrow by is_active.
func (r *GormShippingMethodRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*trade.ShippingMethod, int64, error) {
	query := Conn(ctx, r.db).Model(&models.ShippingMethodModel{})
	query = search(query, filter.Search, "name", "carrier")
	query = reusable(equalFilters(query, filter, "is_active"))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.ShippingMethodModel
	if err := paginate(query, filter, ShippingMethodSortFields).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*trade.ShippingMethod, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, total, nil
}

// Create inserts a new shipping method
func (r *GormShippingMethodRepository) Create(ctx context.Context, method *trade.ShippingMethod) error {
	model := &models.ShippingMethodModel{}
	model.FromDomain(method)
	return createError(Conn(ctx, r.db).Create(model).Error, false)
}

// ClearDefault removes the default flag from every shipping method
func (r *GormShippingMethodRepository) ClearDefault(ctx context.Context) error {
	return Conn(ctx, r.db).
		Model(&models.ShippingMethodModel{}).
		Where("is_default = ?", true).
		Update("is_default", false).Error
}

var _ trade.ShippingMethodRepository = (*GormShippingMethodRepository)(nil)
