package persistence

import (
	"context"
	"strings"

	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormWarehouseRepository implements WarehouseRepository using GORM
type GormWarehouseRepository struct {
	db *gorm.DB
}

// NewGormWarehouseRepository creates a new GormWarehouseRepository
func NewGormWarehouseRepository(db *gorm.DB) *GormWarehouseRepository {
	return &GormWarehouseRepository{db: db}
}

// FindByID finds a warehouse by ID
func (r *GormWarehouseRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Warehouse, error) {
	var model models.WarehouseModel
	if err := Conn(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByCode finds a warehouse by its code
func (r *GormWarehouseRepository) FindByCode(ctx context.Context, code string) (*partner.Warehouse, error) {
	var model models.WarehouseModel
	err := Conn(ctx, r.db).Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).First(&model).Error
	if err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindDefault returns the default warehouse, falling back to the oldest active one
func (r *GormWarehouseRepository) FindDefault(ctx context.Context) (*partner.Warehouse, error) {
	var model models.WarehouseModel
	err := Conn(ctx, r.db).
		Where("is_active = ?", true).
		Order("is_default DESC").
		Order("created_at ASC").
		First(&model).Error
	if err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds warehouses matching the filter and the total count
func (r *GormWarehouseRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*partner.Warehouse, int64, error) {
	query := reusable(search(Conn(ctx, r.db).Model(&models.WarehouseModel{}), filter.Search, "code", "name"))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.WarehouseModel
	if err := paginate(query, filter, WarehouseSortFields).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*partner.Warehouse, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, total, nil
}

// Create inserts a new warehouse; a taken code yields ErrAlreadyExists
func (r *GormWarehouseRepository) Create(ctx context.Context, warehouse *partner.Warehouse) error {
	model := &models.WarehouseModel{}
	model.FromDomain(warehouse)
	return createError(Conn(ctx, r.db).Create(model).Error, false)
}

// ClearDefault removes the default flag from every warehouse
func (r *GormWarehouseRepository) ClearDefault(ctx context.Context) error {
	return Conn(ctx, r.db).
		Model(&models.WarehouseModel{}).
		Where("is_default = ?", true).
		Update("is_default", false).Error
}

var _ partner.WarehouseRepository = (*GormWarehouseRepository)(nil)
