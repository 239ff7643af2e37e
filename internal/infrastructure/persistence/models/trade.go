package models

import (
	"time"

	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order aggregate
type OrderModel struct {
	AggregateModel
	OrderNumber     string            `gorm:"type:varchar(20);not null;uniqueIndex"`
	OrderDate       time.Time         `gorm:"not null;index"`
	Status          trade.OrderStatus `gorm:"type:varchar(20);not null;index"`
	OrderType       trade.OrderType   `gorm:"type:varchar(20);not null"`
	CustomerID      *uuid.UUID        `gorm:"type:uuid;index"`
	Items           []OrderItemModel  `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE"`
	ShippingAddress AddressColumns    `gorm:"embedded;embeddedPrefix:shipping_"`
	BillingAddress  AddressColumns    `gorm:"embedded;embeddedPrefix:billing_"`
	PaymentMethod   string            `gorm:"type:varchar(50)"`
	Subtotal        decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	ShippingCost    decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	Discount        decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	Total           decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	Notes           string            `gorm:"type:text"`
	CreatedBy       *uuid.UUID        `gorm:"type:uuid"`

	ShippingMethodID *uuid.UUID      `gorm:"type:uuid;index"`
	TaxRate          decimal.Decimal `gorm:"type:decimal(9,4);not null;default:0"`
	TaxAmount        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel is the persistence model for an order line
type OrderItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position    int             `gorm:"not null;default:0"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"type:varchar(200)"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Discount    decimal.Decimal `gorm:"type:decimal(9,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() *trade.Order {
	o := &trade.Order{
		BaseAggregateRoot: m.ToAggregateRoot(),
		OrderNumber:       m.OrderNumber,
		OrderDate:         m.OrderDate,
		Status:            m.Status,
		OrderType:         m.OrderType,
		CustomerID:        m.CustomerID,
		Items:             make([]trade.OrderItem, len(m.Items)),
		ShippingAddress:   m.ShippingAddress.ToDomain(),
		BillingAddress:    m.BillingAddress.ToDomain(),
		ShippingMethodID:  m.ShippingMethodID,
		PaymentMethod:     m.PaymentMethod,
		Subtotal:          m.Subtotal,
		TaxRate:           m.TaxRate,
		TaxAmount:         m.TaxAmount,
		ShippingCost:      m.ShippingCost,
		Discount:          m.Discount,
		Total:             m.Total,
		Notes:             m.Notes,
		CreatedBy:         m.CreatedBy,
	}
	for i, item := range m.Items {
		o.Items[i] = trade.OrderItem{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Discount:    item.Discount,
		}
	}
	return o
}

// FromDomain populates the persistence model from a domain Order
func (m *OrderModel) FromDomain(o *trade.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.OrderDate = o.OrderDate
	m.Status = o.Status
	m.OrderType = o.OrderType
	m.CustomerID = o.CustomerID
	m.ShippingAddress = AddressFromDomain(o.ShippingAddress)
	m.BillingAddress = AddressFromDomain(o.BillingAddress)
	m.ShippingMethodID = o.ShippingMethodID
	m.PaymentMethod = o.PaymentMethod
	m.Subtotal = o.Subtotal
	m.TaxRate = o.TaxRate
	m.TaxAmount = o.TaxAmount
	m.ShippingCost = o.ShippingCost
	m.Discount = o.Discount
	m.Total = o.Total
	m.Notes = o.Notes
	m.CreatedBy = o.CreatedBy
	m.Items = make([]OrderItemModel, len(o.Items))
	for i, item := range o.Items {
		m.Items[i] = OrderItemModel{
			ID:          item.ID,
			OrderID:     o.ID,
			Position:    i,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Discount:    item.Discount,
		}
	}
}

// PurchaseModel is the persistence model for the Purchase aggregate
type PurchaseModel struct {
	AggregateModel
	PurchaseNumber       string               `gorm:"type:varchar(20);not null;uniqueIndex"`
	OrderDate            time.Time            `gorm:"not null;index"`
	ExpectedDeliveryDate *time.Time           `gorm:"index"`
	ActualDeliveryDate   *time.Time           `gorm:"index"`
	Status               trade.PurchaseStatus `gorm:"type:varchar(30);not null;index"`
	SupplierID           uuid.UUID            `gorm:"type:uuid;not null;index"`
	Items                []PurchaseItemModel  `gorm:"foreignKey:PurchaseID;references:ID;constraint:OnDelete:CASCADE"`
	Subtotal             decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	ShippingCost         decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	Discount             decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	Total                decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	Notes                string               `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PurchaseModel) TableName() string {
	return "purchases"
}

// PurchaseItemModel is the persistence model for a purchase line
type PurchaseItemModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	PurchaseID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position         int             `gorm:"not null;default:0"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity         int             `gorm:"not null"`
	ReceivedQuantity int             `gorm:"not null;default:0"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Discount         decimal.Decimal `gorm:"type:decimal(9,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (PurchaseItemModel) TableName() string {
	return "purchase_items"
}

// ToDomain converts the persistence model to a domain Purchase
func (m *PurchaseModel) ToDomain() *trade.Purchase {
	p := &trade.Purchase{
		BaseAggregateRoot:    m.ToAggregateRoot(),
		PurchaseNumber:       m.PurchaseNumber,
		OrderDate:            m.OrderDate,
		ExpectedDeliveryDate: m.ExpectedDeliveryDate,
		ActualDeliveryDate:   m.ActualDeliveryDate,
		Status:               m.Status,
		SupplierID:           m.SupplierID,
		Items:                make([]trade.PurchaseItem, len(m.Items)),
		Subtotal:             m.Subtotal,
		ShippingCost:         m.ShippingCost,
		Discount:             m.Discount,
		Total:                m.Total,
		Notes:                m.Notes,
	}
	for i, item := range m.Items {
		p.Items[i] = trade.PurchaseItem{
			ID:               item.ID,
			ProductID:        item.ProductID,
			Quantity:         item.Quantity,
			ReceivedQuantity: item.ReceivedQuantity,
			UnitPrice:        item.UnitPrice,
			Discount:         item.Discount,
		}
	}
	return p
}

// FromDomain populates the persistence model from a domain Purchase
func (m *PurchaseModel) FromDomain(p *trade.Purchase) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.PurchaseNumber = p.PurchaseNumber
	m.OrderDate = p.OrderDate
	m.ExpectedDeliveryDate = p.ExpectedDeliveryDate
	m.ActualDeliveryDate = p.ActualDeliveryDate
	m.Status = p.Status
	m.SupplierID = p.SupplierID
	m.Subtotal = p.Subtotal
	m.ShippingCost = p.ShippingCost
	m.Discount = p.Discount
	m.Total = p.Total
	m.Notes = p.Notes
	m.Items = make([]PurchaseItemModel, len(p.Items))
	for i, item := range p.Items {
		m.Items[i] = PurchaseItemModel{
			ID:               item.ID,
			PurchaseID:       p.ID,
			Position:         i,
			ProductID:        item.ProductID,
			Quantity:         item.Quantity,
			ReceivedQuantity: item.ReceivedQuantity,
			UnitPrice:        item.UnitPrice,
			Discount:         item.Discount,
		}
	}
}
