package models

import (
	"github.com/erp/backoffice/internal/domain/partner"
)

// CustomerModel is the persistence model for the Customer aggregate
type CustomerModel struct {
	AggregateModel
	CustomerNumber  string               `gorm:"type:varchar(20);not null;uniqueIndex"`
	Name            string               `gorm:"type:varchar(200);not null;index"`
	ContactPerson   string               `gorm:"type:varchar(100)"`
	Email           string               `gorm:"type:varchar(200);index"`
	Phone           string               `gorm:"type:varchar(50)"`
	CustomerType    partner.CustomerType `gorm:"type:varchar(20);not null;default:'retail'"`
	TaxID           string               `gorm:"type:varchar(50)"`
	VatID           string               `gorm:"type:varchar(50)"`
	PaymentTerms    string               `gorm:"type:varchar(100)"`
	Notes           string               `gorm:"type:text"`
	BillingAddress  AddressColumns       `gorm:"embedded;embeddedPrefix:billing_"`
	ShippingAddress AddressColumns       `gorm:"embedded;embeddedPrefix:shipping_"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		BaseAggregateRoot: m.ToAggregateRoot(),
		CustomerNumber:    m.CustomerNumber,
		Name:              m.Name,
		ContactPerson:     m.ContactPerson,
		Email:             m.Email,
		Phone:             m.Phone,
		CustomerType:      m.CustomerType,
		TaxID:             m.TaxID,
		VatID:             m.VatID,
		PaymentTerms:      m.PaymentTerms,
		Notes:             m.Notes,
		BillingAddress:    m.BillingAddress.ToDomain(),
		ShippingAddress:   m.ShippingAddress.ToDomain(),
	}
}

// FromDomain populates the persistence model from a domain Customer
func (m *CustomerModel) FromDomain(c *partner.Customer) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.CustomerNumber = c.CustomerNumber
	m.Name = c.Name
	m.ContactPerson = c.ContactPerson
	m.Email = c.Email
	m.Phone = c.Phone
	m.CustomerType = c.CustomerType
	m.TaxID = c.TaxID
	m.VatID = c.VatID
	m.PaymentTerms = c.PaymentTerms
	m.Notes = c.Notes
	m.BillingAddress = AddressFromDomain(c.BillingAddress)
	m.ShippingAddress = AddressFromDomain(c.ShippingAddress)
}

// SupplierModel is the persistence model for the Supplier aggregate
type SupplierModel struct {
	AggregateModel
	Name          string `gorm:"type:varchar(200);not null;index"`
	ContactPerson string `gorm:"type:varchar(100)"`
	Email         string `gorm:"type:varchar(200)"`
	Phone         string `gorm:"type:varchar(50)"`
}

// TableName returns the table name for GORM
func (SupplierModel) TableName() string {
	return "suppliers"
}

// ToDomain converts the persistence model to a domain Supplier
func (m *SupplierModel) ToDomain() *partner.Supplier {
	return &partner.Supplier{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		ContactPerson:     m.ContactPerson,
		Email:             m.Email,
		Phone:             m.Phone,
	}
}

// FromDomain populates the persistence model from a domain Supplier
func (m *SupplierModel) FromDomain(s *partner.Supplier) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.Name = s.Name
	m.ContactPerson = s.ContactPerson
	m.Email = s.Email
	m.Phone = s.Phone
}

// WarehouseModel is the persistence model for the Warehouse aggregate
type WarehouseModel struct {
	AggregateModel
	Code        string         `gorm:"type:varchar(20);not null;uniqueIndex"`
	Name        string         `gorm:"type:varchar(100);not null"`
	Description string         `gorm:"type:text"`
	IsDefault   bool           `gorm:"not null;default:false;index"`
	IsActive    bool           `gorm:"not null;default:true"`
	Address     AddressColumns `gorm:"embedded;embeddedPrefix:address_"`
}

// TableName returns the table name for GORM
func (WarehouseModel) TableName() string {
	return "warehouses"
}

// ToDomain converts the persistence model to a domain Warehouse
func (m *WarehouseModel) ToDomain() *partner.Warehouse {
	return &partner.Warehouse{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Code:              m.Code,
		Name:              m.Name,
		Description:       m.Description,
		IsDefault:         m.IsDefault,
		IsActive:          m.IsActive,
		Address:           m.Address.ToDomain(),
	}
}

// FromDomain populates the persistence model from a domain Warehouse
func (m *WarehouseModel) FromDomain(w *partner.Warehouse) {
	m.FromDomainAggregateRoot(w.BaseAggregateRoot)
	m.Code = w.Code
	m.Name = w.Name
	m.Description = w.Description
	m.IsDefault = w.IsDefault
	m.IsActive = w.IsActive
	m.Address = AddressFromDomain(w.Address)
}
