package persistence

import (
	"context"
	"strings"

	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := Conn(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindBySKU finds a product by SKU
func (r *GormProductRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	var model models.ProductModel
	err := Conn(ctx, r.db).Where("sku = ?", strings.ToUpper(strings.TrimSpace(sku))).First(&model).Error
	if err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds products matching the filter and the total count
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*catalog.Product, int64, error) {
	query := Conn(ctx, r.db).Model(&models.ProductModel{})
	query = search(query, filter.Search, "name", "sku", "barcode")
	query = equalFilters(query, filter, "supplier_id")
	query = reusable(query)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.ProductModel
	if err := paginate(query, filter, ProductSortFields).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return productsToDomain(rows), total, nil
}

// FindLowStock returns products at or below their minimum stock level
func (r *GormProductRepository) FindLowStock(ctx context.Context, limit int) ([]*catalog.Product, error) {
	var rows []models.ProductModel
	err := Conn(ctx, r.db).
		Where("stock_quantity <= min_stock_level").
		Order("stock_quantity ASC").
		Order("sku ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return productsToDomain(rows), nil
}

// LastNumber returns the highest SKU issued so far
func (r *GormProductRepository) LastNumber(ctx context.Context) (string, error) {
	return lastNumber(Conn(ctx, r.db), &models.ProductModel{}, "sku")
}

// Create inserts a new product
func (r *GormProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	return createError(Conn(ctx, r.db).Create(models.ProductModelFromDomain(product)).Error, true)
}

// SaveWithLock updates the product if its stored version still matches
func (r *GormProductRepository) SaveWithLock(ctx context.Context, product *catalog.Product) error {
	return saveVersioned(Conn(ctx, r.db), &models.ProductModel{}, &product.BaseAggregateRoot, func() map[string]any {
		return map[string]any{
			"sku":             product.SKU,
			"name":            product.Name,
			"description":     product.Description,
			"barcode":         product.Barcode,
			"price":           product.Price,
			"cost_price":      product.CostPrice,
			"stock_quantity":  product.StockQuantity,
			"min_stock_level": product.MinStockLevel,
			"supplier_id":     product.SupplierID,
		}
	})
}

func productsToDomain(rows []models.ProductModel) []*catalog.Product {
	out := make([]*catalog.Product, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)
