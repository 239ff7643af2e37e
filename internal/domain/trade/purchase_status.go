package trade

import "github.com/erp/backoffice/internal/domain/shared"

// PurchaseStatus represents the status of a purchase
type PurchaseStatus string

const (
	PurchaseStatusOrdered            PurchaseStatus = "ordered"
	PurchaseStatusPartiallyDelivered PurchaseStatus = "partiallyDelivered"
	PurchaseStatusDelivered          PurchaseStatus = "delivered"
	PurchaseStatusCompleted          PurchaseStatus = "completed"
	PurchaseStatusCancelled          PurchaseStatus = "cancelled"
)

// String returns the string representation of PurchaseStatus
func (s PurchaseStatus) String() string {
	return string(s)
}

// IsReceived reports whether stock has been credited in this status
func (s PurchaseStatus) IsReceived() bool {
	return s == PurchaseStatusPartiallyDelivered || s == PurchaseStatusDelivered
}

var purchaseLifecycle = shared.NewLifecycle[PurchaseStatus]("purchase", PurchaseStatusOrdered, shared.EffectNone).
	Allow(PurchaseStatusOrdered, PurchaseStatusPartiallyDelivered, shared.EffectCredit).
	Allow(PurchaseStatusOrdered, PurchaseStatusDelivered, shared.EffectCredit).
	Allow(PurchaseStatusPartiallyDelivered, PurchaseStatusDelivered, shared.EffectCredit).
	Allow(PurchaseStatusPartiallyDelivered, PurchaseStatusCompleted, shared.EffectNone).
	Allow(PurchaseStatusDelivered, PurchaseStatusCompleted, shared.EffectNone).
	Allow(PurchaseStatusOrdered, PurchaseStatusCancelled, shared.EffectNone).
	Allow(PurchaseStatusPartiallyDelivered, PurchaseStatusCancelled, shared.EffectReverse).
	Allow(PurchaseStatusDelivered, PurchaseStatusCancelled, shared.EffectReverse).
	Terminal(PurchaseStatusCompleted, PurchaseStatusCancelled)

// PurchaseLifecycle returns the purchase status transition table
func PurchaseLifecycle() *shared.Lifecycle[PurchaseStatus] {
	return purchaseLifecycle
}
