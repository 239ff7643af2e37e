package persistence

import (
	"context"

	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCustomerRepository implements CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID finds a customer by ID
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	var model models.CustomerModel
	if err := Conn(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByEmail returns the oldest customer with the address
func (r *GormCustomerRepository) FindByEmail(ctx context.Context, email string) (*partner.Customer, error) {
	var model models.CustomerModel
	err := Conn(ctx, r.db).
		Where("email = ?", partner.NormalizeEmail(email)).
		Order("created_at ASC").
		First(&model).Error
	if err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds customers matching the filter and the total count
func (r *GormCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*partner.Customer, int64, error) {
	query := Conn(ctx, r.db).Model(&models.CustomerModel{})
	query = search(query, filter.Search, "name", "customer_number", "email")
	query = reusable(equalFilters(query, filter, "customer_type"))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.CustomerModel
	if err := paginate(query, filter, CustomerSortFields).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*partner.Customer, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, total, nil
}

// LastNumber returns the highest customer number issued so far
func (r *GormCustomerRepository) LastNumber(ctx context.Context) (string, error) {
	return lastNumber(Conn(ctx, r.db), &models.CustomerModel{}, "customer_number")
}

// Create inserts a new customer
func (r *GormCustomerRepository) Create(ctx context.Context, customer *partner.Customer) error {
	model := &models.CustomerModel{}
	model.FromDomain(customer)
	return createError(Conn(ctx, r.db).Create(model).Error, true)
}

// SaveWithLock updates the customer if its stored version still matches
func (r *GormCustomerRepository) SaveWithLock(ctx context.Context, customer *partner.Customer) error {
	return saveVersioned(Conn(ctx, r.db), &models.CustomerModel{}, &customer.BaseAggregateRoot, func() map[string]any {
		billing := models.AddressFromDomain(customer.BillingAddress)
		shipping := models.AddressFromDomain(customer.ShippingAddress)
		return map[string]any{
			"customer_number":   customer.CustomerNumber,
			"name":              customer.Name,
			"contact_person":    customer.ContactPerson,
			"email":             customer.Email,
			"phone":             customer.Phone,
			"customer_type":     customer.CustomerType,
			"tax_id":            customer.TaxID,
			"vat_id":            customer.VatID,
			"payment_terms":     customer.PaymentTerms,
			"notes":             customer.Notes,
			"billing_street":    billing.Street,
			"billing_zip_code":  billing.ZipCode,
			"billing_city":      billing.City,
			"billing_country":   billing.Country,
			"shipping_street":   shipping.Street,
			"shipping_zip_code": shipping.ZipCode,
			"shipping_city":     shipping.City,
			"shipping_country":  shipping.Country,
		}
	})
}

var _ partner.CustomerRepository = (*GormCustomerRepository)(nil)
