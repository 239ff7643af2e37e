package inventory

import (
	"context"
	"fmt"

	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/shared"
	"go.uber.org/zap"
)

// StockAlert describes an entry that ran low
type StockAlert struct {
	EntryID     string `json:"entry_id"`
	InventoryID string `json:"inventory_id"`
	ProductID   string `json:"product_id"`
	WarehouseID string `json:"warehouse_id"`
	Quantity    int    `json:"quantity"`
	AlertType   string `json:"alert_type"` // low_stock, out_of_stock
}

// StockAlertNotifier delivers stock alerts
type StockAlertNotifier interface {
	SendAlert(ctx context.Context, alert StockAlert) error
}

// LowStockThreshold decides when a delivered adjustment raises an alert. It
// gets the quantity before and after the change.
type LowStockThreshold func(oldQuantity, newQuantity int) (alertType string, raise bool)

// DefaultLowStockThreshold alerts when an entry becomes empty or drops by at
// least half in one step
func DefaultLowStockThreshold(oldQuantity, newQuantity int) (string, bool) {
	switch {
	case newQuantity == 0 && oldQuantity > 0:
		return "out_of_stock", true
	case newQuantity < oldQuantity && newQuantity*2 <= oldQuantity:
		return "low_stock", true
	}
	return "", false
}

// StockAlertHandler turns delivered StockAdjusted events into stock alerts
type StockAlertHandler struct {
	logger    *zap.Logger
	notifier  StockAlertNotifier
	threshold LowStockThreshold
}

// NewStockAlertHandler creates the handler. A nil notifier logs the alerts.
func NewStockAlertHandler(logger *zap.Logger, notifier StockAlertNotifier) *StockAlertHandler {
	if notifier == nil {
		notifier = NewLoggingStockAlertNotifier(logger)
	}
	return &StockAlertHandler{logger: logger, notifier: notifier, threshold: DefaultLowStockThreshold}
}

// EventTypes returns the handled event types
func (h *StockAlertHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockAdjusted}
}

// Handle processes a StockAdjustedEvent
func (h *StockAlertHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	adjusted, ok := event.(*inventory.StockAdjustedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s", inventory.EventTypeStockAdjusted, event.EventType())
	}
	alertType, raise := h.threshold(adjusted.OldQuantity, adjusted.NewQuantity)
	if !raise {
		return nil
	}
	alert := StockAlert{
		EntryID:     adjusted.EntryID.String(),
		InventoryID: adjusted.InventoryID,
		ProductID:   adjusted.ProductID.String(),
		WarehouseID: adjusted.WarehouseID.String(),
		Quantity:    adjusted.NewQuantity,
		AlertType:   alertType,
	}
	if err := h.notifier.SendAlert(ctx, alert); err != nil {
		// a lost alert must not send the event back into the retry queue
		h.logger.Error("failed to send stock alert",
			zap.String("inventory_id", alert.InventoryID),
			zap.Error(err),
		)
	}
	return nil
}

var _ shared.EventHandler = (*StockAlertHandler)(nil)

// LoggingStockAlertNotifier writes alerts to the log
type LoggingStockAlertNotifier struct {
	logger *zap.Logger
}

// NewLoggingStockAlertNotifier creates a logging notifier
func NewLoggingStockAlertNotifier(logger *zap.Logger) *LoggingStockAlertNotifier {
	return &LoggingStockAlertNotifier{logger: logger}
}

// SendAlert logs the alert
func (n *LoggingStockAlertNotifier) SendAlert(_ context.Context, alert StockAlert) error {
	n.logger.Warn("STOCK ALERT",
		zap.String("type", alert.AlertType),
		zap.String("inventory_id", alert.InventoryID),
		zap.String("product_id", alert.ProductID),
		zap.Int("quantity", alert.Quantity),
	)
	return nil
}
