package models

import (
	"time"

	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// TaxRateModel is the persistence model for the TaxRate aggregate
type TaxRateModel struct {
	AggregateModel
	Name          string            `gorm:"type:varchar(100);not null"`
	Rate          decimal.Decimal   `gorm:"type:decimal(9,4);not null"`
	Description   string            `gorm:"type:text"`
	IsActive      bool              `gorm:"not null;default:true"`
	Region        string            `gorm:"type:varchar(100)"`
	IsDefault     bool              `gorm:"not null;default:false;index"`
	Category      trade.TaxCategory `gorm:"type:varchar(20);not null;default:'standard'"`
	EffectiveFrom *time.Time
	EffectiveTo   *time.Time
	Notes         string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (TaxRateModel) TableName() string {
	return "tax_rates"
}

// ToDomain converts the persistence model to a domain TaxRate
func (m *TaxRateModel) ToDomain() *trade.TaxRate {
	return &trade.TaxRate{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		Rate:              m.Rate,
		Description:       m.Description,
		IsActive:          m.IsActive,
		Region:            m.Region,
		IsDefault:         m.IsDefault,
		Category:          m.Category,
		EffectiveFrom:     m.EffectiveFrom,
		EffectiveTo:       m.EffectiveTo,
		Notes:             m.Notes,
	}
}

// FromDomain populates the persistence model from a domain TaxRate
func (m *TaxRateModel) FromDomain(r *trade.TaxRate) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.Name = r.Name
	m.Rate = r.Rate
	m.Description = r.Description
	m.IsActive = r.IsActive
	m.Region = r.Region
	m.IsDefault = r.IsDefault
	m.Category = r.Category
	m.EffectiveFrom = r.EffectiveFrom
	m.EffectiveTo = r.EffectiveTo
	m.Notes = r.Notes
}
