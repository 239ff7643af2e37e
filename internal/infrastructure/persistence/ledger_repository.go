package persistence

import (
	"context"

	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLedgerRepository implements LedgerRepository using GORM
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// FindByID finds a ledger entry by ID
func (r *GormLedgerRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockLedgerEntry, error) {
	var model models.StockLedgerEntryModel
	if err := Conn(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByProduct returns the entries of a product, highest quantity first
func (r *GormLedgerRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]*inventory.StockLedgerEntry, error) {
	var rows []models.StockLedgerEntryModel
	err := Conn(ctx, r.db).
		Where("product_id = ?", productID).
		Order("quantity DESC").
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return entriesToDomain(rows), nil
}

// FindByProductAndWarehouse finds the entry of a product at a warehouse
func (r *GormLedgerRepository) FindByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID) (*inventory.StockLedgerEntry, error) {
	var model models.StockLedgerEntryModel
	err := Conn(ctx, r.db).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		First(&model).Error
	if err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds entries matching the filter and the total count
func (r *GormLedgerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*inventory.StockLedgerEntry, int64, error) {
	query := Conn(ctx, r.db).Model(&models.StockLedgerEntryModel{})
	query = search(query, filter.Search, "inventory_id")
	query = reusable(equalFilters(query, filter, "product_id", "warehouse_id", "status"))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.StockLedgerEntryModel
	if err := paginate(query, filter, LedgerSortFields).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return entriesToDomain(rows), total, nil
}

// SumByProduct returns the total quantity held for a product
func (r *GormLedgerRepository) SumByProduct(ctx context.Context, productID uuid.UUID) (int, error) {
	var sum int64
	err := Conn(ctx, r.db).
		Model(&models.StockLedgerEntryModel{}).
		Where("product_id = ?", productID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&sum).Error
	return int(sum), err
}

// Create inserts a new entry. A second entry for the same product and
// warehouse violates the unique index and yields ErrAlreadyExists.
func (r *GormLedgerRepository) Create(ctx context.Context, entry *inventory.StockLedgerEntry) error {
	model := &models.StockLedgerEntryModel{}
	model.FromDomain(entry)
	return createError(Conn(ctx, r.db).Create(model).Error, false)
}

// SaveWithLock updates the entry if its stored version still matches
func (r *GormLedgerRepository) SaveWithLock(ctx context.Context, entry *inventory.StockLedgerEntry) error {
	return saveVersioned(Conn(ctx, r.db), &models.StockLedgerEntryModel{}, &entry.BaseAggregateRoot, func() map[string]any {
		return map[string]any{
			"quantity":         entry.Quantity,
			"min_stock_level":  entry.MinStockLevel,
			"reorder_point":    entry.ReorderPoint,
			"reorder_quantity": entry.ReorderQuantity,
			"section":          entry.Location.Section,
			"shelf":            entry.Location.Shelf,
			"bin":              entry.Location.Bin,
			"status":           entry.Status,
			"notes":            entry.Notes,
		}
	})
}

func entriesToDomain(rows []models.StockLedgerEntryModel) []*inventory.StockLedgerEntry {
	out := make([]*inventory.StockLedgerEntry, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}

var _ inventory.LedgerRepository = (*GormLedgerRepository)(nil)
