package models

import (
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// AggregateModel extends BaseModel with the version column used for
// optimistic locking.
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// FromDomainAggregateRoot populates AggregateModel from domain BaseAggregateRoot
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Version = a.Version
}

// ToAggregateRoot rebuilds the domain root without pending events
func (m *AggregateModel) ToAggregateRoot() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{
		BaseEntity: m.BaseModel.ToDomain(),
		Version:    m.Version,
	}
}

// AddressColumns stores a shared.Address inline, prefixed by the embedding field
type AddressColumns struct {
	Street  string `gorm:"type:varchar(200)"`
	ZipCode string `gorm:"type:varchar(20)"`
	City    string `gorm:"type:varchar(100)"`
	Country string `gorm:"type:varchar(100)"`
}

// ToDomain converts the columns to a domain address
func (a AddressColumns) ToDomain() shared.Address {
	return shared.Address{Street: a.Street, ZipCode: a.ZipCode, City: a.City, Country: a.Country}
}

// AddressFromDomain converts a domain address to columns
func AddressFromDomain(a shared.Address) AddressColumns {
	return AddressColumns{Street: a.Street, ZipCode: a.ZipCode, City: a.City, Country: a.Country}
}

// All returns every model in dependency order, for AutoMigrate in tests and
// development setups
func All() []any {
	return []any{
		&UserModel{},
		&SupplierModel{},
		&ProductModel{},
		&CustomerModel{},
		&WarehouseModel{},
		&ShippingMethodModel{},
		&TaxRateModel{},
		&StockLedgerEntryModel{},
		&OrderModel{},
		&OrderItemModel{},
		&PurchaseModel{},
		&PurchaseItemModel{},
		&OutboxEntryModel{},
	}
}
