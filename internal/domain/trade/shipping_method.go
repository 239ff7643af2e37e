package trade

import (
	"context"
	"fmt"
	"strings"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TrackingPlaceholder is replaced by the tracking number in a tracking URL format
const TrackingPlaceholder = "{tracking_number}"

// DeliveryDays is the estimated delivery window in days
type DeliveryDays struct {
	Min int
	Max int
}

// ShippingRestrictions limit where and for which orders a method applies.
// Empty countries mean every country.
type ShippingRestrictions struct {
	MinOrderAmount decimal.Decimal
	Countries      []string
}

// ShippingMethod is a delivery option orders can choose from
type ShippingMethod struct {
	shared.BaseAggregateRoot
	Name              string
	Carrier           string
	Description       string
	Price             decimal.Decimal
	EstimatedDays     DeliveryDays
	IsActive          bool
	IsDefault         bool
	TrackingAvailable bool
	TrackingURLFormat string
	Restrictions      ShippingRestrictions
	Notes             string
}

// NewShippingMethod creates an active shipping method
func NewShippingMethod(name string, price decimal.Decimal) (*ShippingMethod, error) {
	m := &ShippingMethod{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Price:             price,
		IsActive:          true,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks field level invariants
func (m *ShippingMethod) Validate() error {
	if m.Name == "" {
		return shared.NewDomainError("INVALID_NAME", "Shipping method name cannot be empty")
	}
	if m.Price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Shipping price cannot be negative")
	}
	if m.EstimatedDays.Min < 0 || (m.EstimatedDays.Max > 0 && m.EstimatedDays.Max < m.EstimatedDays.Min) {
		return shared.NewDomainError("INVALID_DELIVERY_DAYS", "Delivery days must satisfy 0 <= min <= max")
	}
	if m.Restrictions.MinOrderAmount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Minimum order amount cannot be negative")
	}
	if m.TrackingURLFormat != "" && !strings.Contains(m.TrackingURLFormat, TrackingPlaceholder) {
		return shared.NewDomainError("INVALID_TRACKING_URL", fmt.Sprintf("Tracking URL format must contain %s", TrackingPlaceholder))
	}
	return nil
}

// TrackingURL renders the tracking link for a shipment, "" when the method
// has no tracking
func (m *ShippingMethod) TrackingURL(trackingNumber string) string {
	if !m.TrackingAvailable || m.TrackingURLFormat == "" || trackingNumber == "" {
		return ""
	}
	return strings.ReplaceAll(m.TrackingURLFormat, TrackingPlaceholder, trackingNumber)
}

// CheckOrder reports why the method cannot ship an order with this subtotal
// to country, nil when it can
func (m *ShippingMethod) CheckOrder(subtotal decimal.Decimal, country string) error {
	if !m.IsActive {
		return shared.NewInvalidStateError("shipping method %s is not active", m.Name)
	}
	if floor := m.Restrictions.MinOrderAmount; floor.IsPositive() && subtotal.LessThan(floor) {
		return shared.NewDomainError("SHIPPING_NOT_AVAILABLE",
			fmt.Sprintf("%s requires an order amount of at least %s", m.Name, floor.StringFixed(2)))
	}
	if len(m.Restrictions.Countries) == 0 {
		return nil
	}
	for _, c := range m.Restrictions.Countries {
		if strings.EqualFold(strings.TrimSpace(c), strings.TrimSpace(country)) {
			return nil
		}
	}
	return shared.NewDomainError("SHIPPING_NOT_AVAILABLE", fmt.Sprintf("%s does not ship to %s", m.Name, country))
}

// ShippingMethodRepository defines the interface for shipping method persistence
type ShippingMethodRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ShippingMethod, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]*ShippingMethod, int64, error)
	// FindDefault returns the active method flagged as default
	FindDefault(ctx context.Context) (*ShippingMethod, error)
	Create(ctx context.Context, method *ShippingMethod) error
	// ClearDefault removes the default flag from every shipping method
	ClearDefault(ctx context.Context) error
}
