package trade

import "github.com/erp/backoffice/internal/domain/shared"

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderStatusNew        OrderStatus = "new"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

var orderLifecycle = shared.NewLifecycle[OrderStatus]("order", OrderStatusNew, shared.EffectDebit).
	Allow(OrderStatusNew, OrderStatusProcessing, shared.EffectNone).
	Allow(OrderStatusProcessing, OrderStatusShipped, shared.EffectNone).
	Allow(OrderStatusShipped, OrderStatusCompleted, shared.EffectNone).
	Allow(OrderStatusNew, OrderStatusCancelled, shared.EffectRestore).
	Allow(OrderStatusNew, OrderStatusRefunded, shared.EffectRestore).
	Allow(OrderStatusProcessing, OrderStatusCancelled, shared.EffectRestore).
	Allow(OrderStatusProcessing, OrderStatusRefunded, shared.EffectRestore).
	Terminal(OrderStatusCompleted, OrderStatusCancelled, OrderStatusRefunded)

// OrderLifecycle returns the order status transition table
func OrderLifecycle() *shared.Lifecycle[OrderStatus] {
	return orderLifecycle
}
