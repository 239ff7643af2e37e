package models

import (
	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product aggregate
type ProductModel struct {
	AggregateModel
	SKU           string          `gorm:"column:sku;type:varchar(20);not null;uniqueIndex"`
	Name          string          `gorm:"type:varchar(200);not null;index"`
	Description   string          `gorm:"type:text"`
	Barcode       string          `gorm:"type:varchar(64);index"`
	Price         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CostPrice     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	StockQuantity int             `gorm:"not null;default:0"`
	MinStockLevel int             `gorm:"not null;default:0"`
	SupplierID    *uuid.UUID      `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot: m.ToAggregateRoot(),
		SKU:               m.SKU,
		Name:              m.Name,
		Description:       m.Description,
		Barcode:           m.Barcode,
		Price:             m.Price,
		CostPrice:         m.CostPrice,
		StockQuantity:     m.StockQuantity,
		MinStockLevel:     m.MinStockLevel,
		SupplierID:        m.SupplierID,
	}
}

// FromDomain populates the persistence model from a domain Product
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.SKU = p.SKU
	m.Name = p.Name
	m.Description = p.Description
	m.Barcode = p.Barcode
	m.Price = p.Price
	m.CostPrice = p.CostPrice
	m.StockQuantity = p.StockQuantity
	m.MinStockLevel = p.MinStockLevel
	m.SupplierID = p.SupplierID
}

// ProductModelFromDomain creates a new persistence model from a domain Product
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}
