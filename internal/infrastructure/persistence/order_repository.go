package persistence

import (
	"context"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func withOrderItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

// FindByID finds an order with its lines
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	var model models.OrderModel
	if err := withOrderItems(Conn(ctx, r.db)).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds orders matching the filter and the total count
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*trade.Order, int64, error) {
	return r.find(Conn(ctx, r.db), filter)
}

// FindByCustomer finds the orders of a customer
func (r *GormOrderRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]*trade.Order, int64, error) {
	return r.find(Conn(ctx, r.db).Where("customer_id = ?", customerID), filter)
}

func (r *GormOrderRepository) find(db *gorm.DB, filter shared.Filter) ([]*trade.Order, int64, error) {
	query := db.Model(&models.OrderModel{})
	query = search(query, filter.Search, "order_number", "notes")
	query = reusable(equalFilters(query, filter, "status", "customer_id", "order_type"))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.OrderModel
	if err := withOrderItems(paginate(query, filter, OrderSortFields)).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return ordersToDomain(rows), total, nil
}

// FindByStatusAndProduct returns orders in status with a line for productID
func (r *GormOrderRepository) FindByStatusAndProduct(ctx context.Context, status trade.OrderStatus, productID uuid.UUID) ([]*trade.Order, error) {
	db := Conn(ctx, r.db)
	lines := db.Session(&gorm.Session{NewDB: true}).
		Model(&models.OrderItemModel{}).
		Select("order_id").
		Where("product_id = ?", productID)

	var rows []models.OrderModel
	err := withOrderItems(db).
		Where("status = ? AND id IN (?)", status, lines).
		Order("order_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return ordersToDomain(rows), nil
}

// LastNumber returns the highest order number issued so far
func (r *GormOrderRepository) LastNumber(ctx context.Context) (string, error) {
	return lastNumber(Conn(ctx, r.db), &models.OrderModel{}, "order_number")
}

// Create inserts the order with its lines
func (r *GormOrderRepository) Create(ctx context.Context, order *trade.Order) error {
	model := &models.OrderModel{}
	model.FromDomain(order)
	return createError(Conn(ctx, r.db).Create(model).Error, true)
}

// SaveWithLock updates the order if its stored version still matches and
// replaces its lines
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, order *trade.Order) error {
	return Conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		err := saveVersioned(tx, &models.OrderModel{}, &order.BaseAggregateRoot, func() map[string]any {
			shipping := models.AddressFromDomain(order.ShippingAddress)
			billing := models.AddressFromDomain(order.BillingAddress)
			return map[string]any{
				"order_date":         order.OrderDate,
				"status":             order.Status,
				"order_type":         order.OrderType,
				"customer_id":        order.CustomerID,
				"shipping_street":    shipping.Street,
				"shipping_zip_code":  shipping.ZipCode,
				"shipping_city":      shipping.City,
				"shipping_country":   shipping.Country,
				"billing_street":     billing.Street,
				"billing_zip_code":   billing.ZipCode,
				"billing_city":       billing.City,
				"billing_country":    billing.Country,
				"shipping_method_id": order.ShippingMethodID,
				"payment_method":     order.PaymentMethod,
				"subtotal":           order.Subtotal,
				"tax_rate":           order.TaxRate,
				"tax_amount":         order.TaxAmount,
				"shipping_cost":      order.ShippingCost,
				"discount":           order.Discount,
				"total":              order.Total,
				"notes":              order.Notes,
			}
		})
		if err != nil {
			return err
		}
		model := &models.OrderModel{}
		model.FromDomain(order)
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItemModel{}).Error; err != nil {
			return err
		}
		if len(model.Items) == 0 {
			return nil
		}
		return tx.Create(&model.Items).Error
	})
}

func ordersToDomain(rows []models.OrderModel) []*trade.Order {
	out := make([]*trade.Order, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}

var _ trade.OrderRepository = (*GormOrderRepository)(nil)
