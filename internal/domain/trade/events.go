package trade

import (
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeOrder    = "Order"
	AggregateTypePurchase = "Purchase"
)

// Event type constants
const (
	EventTypeOrderPlaced           = "OrderPlaced"
	EventTypeOrderStatusChanged    = "OrderStatusChanged"
	EventTypePurchaseStatusChanged = "PurchaseStatusChanged"
)

// EventItem is the line payload carried by trade events
type EventItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// OrderPlacedEvent is published once an order and its stock debit committed
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	CustomerID  *uuid.UUID      `json:"customer_id,omitempty"`
	Items       []EventItem     `json:"items"`
	Total       decimal.Decimal `json:"total"`
}

// NewOrderPlacedEvent creates a new OrderPlacedEvent
func NewOrderPlacedEvent(o *Order) *OrderPlacedEvent {
	items := make([]EventItem, len(o.Items))
	for i, it := range o.Items {
		items[i] = EventItem{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	return &OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPlaced, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		Items:           items,
		Total:           o.Total,
	}
}

// OrderStatusChangedEvent is published on every order status transition
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID   `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	OldStatus   OrderStatus `json:"old_status"`
	NewStatus   OrderStatus `json:"new_status"`
	StockEffect string      `json:"stock_effect"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent
func NewOrderStatusChangedEvent(o *Order, old OrderStatus, effect shared.StockEffect) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		OldStatus:       old,
		NewStatus:       o.Status,
		StockEffect:     effect.String(),
	}
}

// PurchaseStatusChangedEvent is published on every purchase status transition
type PurchaseStatusChangedEvent struct {
	shared.BaseDomainEvent
	PurchaseID     uuid.UUID      `json:"purchase_id"`
	PurchaseNumber string         `json:"purchase_number"`
	OldStatus      PurchaseStatus `json:"old_status"`
	NewStatus      PurchaseStatus `json:"new_status"`
	StockEffect    string         `json:"stock_effect"`
}

// NewPurchaseStatusChangedEvent creates a new PurchaseStatusChangedEvent
func NewPurchaseStatusChangedEvent(p *Purchase, old PurchaseStatus, effect shared.StockEffect) *PurchaseStatusChangedEvent {
	return &PurchaseStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseStatusChanged, AggregateTypePurchase, p.ID),
		PurchaseID:      p.ID,
		PurchaseNumber:  p.PurchaseNumber,
		OldStatus:       old,
		NewStatus:       p.Status,
		StockEffect:     effect.String(),
	}
}
