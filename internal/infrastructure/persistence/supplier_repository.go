package persistence

import (
	"context"

	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSupplierRepository implements SupplierRepository using GORM
type GormSupplierRepository struct {
	db *gorm.DB
}

// NewGormSupplierRepository creates a new GormSupplierRepository
func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

// FindByID finds a supplier by ID
func (r *GormSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	var model models.SupplierModel
	if err := Conn(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds suppliers matching the filter and the total count
func (r *GormSupplierRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*partner.Supplier, int64, error) {
	query := reusable(search(Conn(ctx, r.db).Model(&models.SupplierModel{}), filter.Search, "name", "email"))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.SupplierModel
	if err := paginate(query, filter, SupplierSortFields).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*partner.Supplier, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, total, nil
}

// Create inserts a new supplier
func (r *GormSupplierRepository) Create(ctx context.Context, supplier *partner.Supplier) error {
	model := &models.SupplierModel{}
	model.FromDomain(supplier)
	return createError(Conn(ctx, r.db).Create(model).Error, false)
}

var _ partner.SupplierRepository = (*GormSupplierRepository)(nil)
