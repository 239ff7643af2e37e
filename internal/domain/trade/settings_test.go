package trade

import (
	"errors"
	"testing"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncludedTax(t *testing.T) {
	tests := []struct {
		gross, rate, want string
	}{
		{"119.00", "19", "19.00"},
		{"107.00", "7", "7.00"},
		{"34.87", "19", "5.57"},
		{"50.00", "0", "0"},
		{"0", "19", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.gross+"@"+tt.rate, func(t *testing.T) {
			got := IncludedTax(dec(tt.gross), dec(tt.rate))
			assert.True(t, dec(tt.want).Equal(got), got.String())
		})
	}
}

func TestOrder_RecalculateWithTaxRate(t *testing.T) {
	o, err := NewOrder(OrderTypeInstore, []OrderItem{
		{ProductID: uuid.New(), Quantity: 2, UnitPrice: dec("50.00")},
	})
	require.NoError(t, err)
	o.ShippingCost = dec("19.00")
	o.TaxRate = dec("19")

	o.Recalculate()

	assert.True(t, dec("119.00").Equal(o.Total), o.Total.String())
	assert.True(t, dec("19.00").Equal(o.TaxAmount), o.TaxAmount.String())

	o.TaxRate = dec("120")
	assert.Error(t, o.Validate())
}

func TestShippingMethod_Validate(t *testing.T) {
	_, err := NewShippingMethod("  ", dec("4.90"))
	assert.Error(t, err)

	_, err = NewShippingMethod("DHL Paket", dec("-1"))
	assert.Error(t, err)

	m, err := NewShippingMethod(" DHL Paket ", dec("4.90"))
	require.NoError(t, err)
	assert.Equal(t, "DHL Paket", m.Name)
	assert.True(t, m.IsActive)

	m.EstimatedDays = DeliveryDays{Min: 3, Max: 1}
	assert.Error(t, m.Validate())
	m.EstimatedDays = DeliveryDays{Min: 1, Max: 3}
	m.TrackingURLFormat = "https://track.example/"
	assert.Error(t, m.Validate())
}

func TestShippingMethod_TrackingURL(t *testing.T) {
	m, err := NewShippingMethod("DHL Paket", dec("4.90"))
	require.NoError(t, err)
	m.TrackingURLFormat = "https://track.example/?id=" + TrackingPlaceholder

	assert.Empty(t, m.TrackingURL("00340434"), "tracking is off")
	m.TrackingAvailable = true
	assert.Equal(t, "https://track.example/?id=00340434", m.TrackingURL("00340434"))
	assert.Empty(t, m.TrackingURL(""))
}

func TestShippingMethod_CheckOrder(t *testing.T) {
	m, err := NewShippingMethod("Spedition", dec("49"))
	require.NoError(t, err)
	m.Restrictions = ShippingRestrictions{MinOrderAmount: dec("250"), Countries: []string{"Deutschland", "Österreich"}}

	assert.NoError(t, m.CheckOrder(dec("300"), "deutschland"))
	assert.NoError(t, m.CheckOrder(dec("250"), "Österreich"))

	err = m.CheckOrder(dec("249.99"), "Deutschland")
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "SHIPPING_NOT_AVAILABLE", domainErr.Code)
	assert.Contains(t, err.Error(), "250.00")

	assert.Error(t, m.CheckOrder(dec("300"), "Schweiz"))

	m.IsActive = false
	assert.True(t, errors.Is(m.CheckOrder(dec("300"), "Deutschland"), shared.ErrInvalidState))
}

func TestTaxRate(t *testing.T) {
	_, err := NewTaxRate("MwSt", dec("101"))
	assert.Error(t, err)

	r, err := NewTaxRate("MwSt 19%", dec("19"))
	require.NoError(t, err)
	assert.Equal(t, shared.DefaultCountry, r.Region)
	assert.Equal(t, TaxCategoryStandard, r.Category)

	r.Category = "luxury"
	assert.Error(t, r.Validate())
	r.Category = TaxCategoryReduced

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 6, 0)
	r.EffectiveFrom, r.EffectiveTo = &to, &from
	assert.Error(t, r.Validate())

	r.EffectiveFrom, r.EffectiveTo = &from, &to
	require.NoError(t, r.Validate())
	assert.False(t, r.AppliesAt(from.AddDate(0, 0, -1)))
	assert.True(t, r.AppliesAt(from.AddDate(0, 1, 0)))
	assert.False(t, r.AppliesAt(to.AddDate(0, 0, 1)))

	r.IsActive = false
	assert.False(t, r.AppliesAt(from.AddDate(0, 1, 0)))
}
