package models

import (
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// ShippingMethodModel is the persistence model for the ShippingMethod aggregate
type ShippingMethodModel struct {
	AggregateModel
	Name              string          `gorm:"type:varchar(100);not null;index"`
	Carrier           string          `gorm:"type:varchar(100)"`
	Description       string          `gorm:"type:text"`
	Price             decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MinDeliveryDays   int             `gorm:"not null;default:0"`
	MaxDeliveryDays   int             `gorm:"not null;default:0"`
	IsActive          bool            `gorm:"not null;default:true"`
	IsDefault         bool            `gorm:"not null;default:false;index"`
	TrackingAvailable bool            `gorm:"not null;default:false"`
	TrackingURLFormat string          `gorm:"type:varchar(500)"`
	MinOrderAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Countries         []string        `gorm:"type:text;serializer:json"`
	Notes             string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ShippingMethodModel) TableName() string {
	return "shipping_methods"
}

// ToDomain converts the persistence model to a domain ShippingMethod
func (m *ShippingMethodModel) ToDomain() *trade.ShippingMethod {
	return &trade.ShippingMethod{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		Carrier:           m.Carrier,
		Description:       m.Description,
		Price:             m.Price,
		EstimatedDays:     trade.DeliveryDays{Min: m.MinDeliveryDays, Max: m.MaxDeliveryDays},
		IsActive:          m.IsActive,
		IsDefault:         m.IsDefault,
		TrackingAvailable: m.TrackingAvailable,
		TrackingURLFormat: m.TrackingURLFormat,
		Restrictions: trade.ShippingRestrictions{
			MinOrderAmount: m.MinOrderAmount,
			Countries:      append([]string(nil), m.Countries...),
		},
		Notes: m.Notes,
	}
}

// FromDomain populates the persistence model from a domain ShippingMethod
func (m *ShippingMethodModel) FromDomain(s *trade.ShippingMethod) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.Name = s.Name
	m.Carrier = s.Carrier
	m.Description = s.Description
	m.Price = s.Price
	m.MinDeliveryDays = s.EstimatedDays.Min
	m.MaxDeliveryDays = s.EstimatedDays.Max
	m.IsActive = s.IsActive
	m.IsDefault = s.IsDefault
	m.TrackingAvailable = s.TrackingAvailable
	m.TrackingURLFormat = s.TrackingURLFormat
	m.MinOrderAmount = s.Restrictions.MinOrderAmount
	m.Countries = s.Restrictions.Countries
	m.Notes = s.Notes
}
