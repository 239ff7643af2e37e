package persistence

import (
	"context"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPurchaseRepository implements PurchaseRepository using GORM
type GormPurchaseRepository struct {
	db *gorm.DB
}

// NewGormPurchaseRepository creates a new GormPurchaseRepository
func NewGormPurchaseRepository(db *gorm.DB) *GormPurchaseRepository {
	return &GormPurchaseRepository{db: db}
}

func withPurchaseItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

// FindByID finds a purchase with its lines
func (r *GormPurchaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Purchase, error) {
	var model models.PurchaseModel
	if err := withPurchaseItems(Conn(ctx, r.db)).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds purchases matching the filter and the total count
func (r *GormPurchaseRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*trade.Purchase, int64, error) {
	query := Conn(ctx, r.db).Model(&models.PurchaseModel{})
	query = search(query, filter.Search, "purchase_number", "notes")
	query = reusable(equalFilters(query, filter, "status", "supplier_id"))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.PurchaseModel
	if err := withPurchaseItems(paginate(query, filter, PurchaseSortFields)).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*trade.Purchase, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, total, nil
}

// LastNumber returns the highest purchase number issued so far
func (r *GormPurchaseRepository) LastNumber(ctx context.Context) (string, error) {
	return lastNumber(Conn(ctx, r.db), &models.PurchaseModel{}, "purchase_number")
}

// Create inserts the purchase with its lines
func (r *GormPurchaseRepository) Create(ctx context.Context, purchase *trade.Purchase) error {
	model := &models.PurchaseModel{}
	model.FromDomain(purchase)
	return createError(Conn(ctx, r.db).Create(model).Error, true)
}

// SaveWithLock updates the purchase if its stored version still matches and
// replaces its lines
func (r *GormPurchaseRepository) SaveWithLock(ctx context.Context, purchase *trade.Purchase) error {
	return Conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		err := saveVersioned(tx, &models.PurchaseModel{}, &purchase.BaseAggregateRoot, func() map[string]any {
			return map[string]any{
				"order_date":             purchase.OrderDate,
				"expected_delivery_date": purchase.ExpectedDeliveryDate,
				"actual_delivery_date":   purchase.ActualDeliveryDate,
				"status":                 purchase.Status,
				"supplier_id":            purchase.SupplierID,
				"subtotal":               purchase.Subtotal,
				"shipping_cost":          purchase.ShippingCost,
				"discount":               purchase.Discount,
				"total":                  purchase.Total,
				"notes":                  purchase.Notes,
			}
		})
		if err != nil {
			return err
		}
		model := &models.PurchaseModel{}
		model.FromDomain(purchase)
		if err := tx.Where("purchase_id = ?", purchase.ID).Delete(&models.PurchaseItemModel{}).Error; err != nil {
			return err
		}
		if len(model.Items) == 0 {
			return nil
		}
		return tx.Create(&model.Items).Error
	})
}

var _ trade.PurchaseRepository = (*GormPurchaseRepository)(nil)
