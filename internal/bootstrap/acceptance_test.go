package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cucumber/godog"
	catalogapp "github.com/erp/backoffice/internal/application/catalog"
	inventoryapp "github.com/erp/backoffice/internal/application/inventory"
	partnerapp "github.com/erp/backoffice/internal/application/partner"
	tradeapp "github.com/erp/backoffice/internal/application/trade"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// stockWorld is the state of one scenario
type stockWorld struct {
	ctx     context.Context
	c       *Container
	cleanup func()
	alerts  *alertRecorder

	warehouses map[string]uuid.UUID
	products   map[string]uuid.UUID
	suppliers  map[string]uuid.UUID
	order      *tradeapp.OrderResponse
	purchase   *tradeapp.PurchaseResponse
	err        error
}

func (w *stockWorld) reset() error {
	if w.cleanup != nil {
		w.cleanup()
	}
	w.alerts = &alertRecorder{}
	c, cleanup, err := newTestContainer(w.alerts)
	if err != nil {
		return err
	}
	*w = stockWorld{
		ctx:        context.Background(),
		c:          c,
		cleanup:    cleanup,
		alerts:     w.alerts,
		warehouses: map[string]uuid.UUID{},
		products:   map[string]uuid.UUID{},
		suppliers:  map[string]uuid.UUID{},
	}
	return nil
}

func (w *stockWorld) createWarehouse(code string, isDefault bool) error {
	wh, err := w.c.Warehouses.Create(w.ctx, partnerapp.CreateWarehouseRequest{Code: code, Name: "Lager " + code, IsDefault: isDefault})
	if err != nil {
		return err
	}
	w.warehouses[code] = wh.ID
	return nil
}

func (w *stockWorld) aDefaultWarehouse(code string) error {
	return w.createWarehouse(code, true)
}

func (w *stockWorld) aWarehouse(code string) error {
	return w.createWarehouse(code, false)
}

func (w *stockWorld) aSupplier(name string) error {
	s, err := w.c.Suppliers.Create(w.ctx, partnerapp.CreateSupplierRequest{Name: name})
	if err != nil {
		return err
	}
	w.suppliers[name] = s.ID
	return nil
}

func (w *stockWorld) createProduct(name string, stock int) error {
	p, err := w.c.Products.Create(w.ctx, catalogapp.CreateProductRequest{
		Name:          name,
		Price:         decimal.RequireFromString("2.40"),
		CostPrice:     decimal.RequireFromString("1.10"),
		StockQuantity: stock,
	})
	if err != nil {
		return err
	}
	w.products[name] = p.ID
	return nil
}

func (w *stockWorld) aProductWithUnitsInStock(name string, stock int) error {
	return w.createProduct(name, stock)
}

func (w *stockWorld) aProductSplitAcrossWarehouses(name string, first int, firstCode string, second int, secondCode string) error {
	if err := w.createProduct(name, 0); err != nil {
		return err
	}
	for code, qty := range map[string]int{firstCode: first, secondCode: second} {
		if _, err := w.c.Entries.Create(w.ctx, inventoryapp.CreateEntryRequest{
			ProductID:   w.products[name],
			WarehouseID: w.warehouses[code],
			Quantity:    qty,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (w *stockWorld) iPlaceAnOrder(quantity int, name string) error {
	w.order, w.err = w.c.Orders.Create(w.ctx, tradeapp.CreateOrderRequest{
		OrderType: "instore",
		Items:     []tradeapp.OrderItemInput{{ProductID: w.products[name], Quantity: quantity}},
	})
	return nil
}

func (w *stockWorld) iChangeTheOrderStatus(status string) error {
	if w.order == nil {
		return errors.New("no order placed")
	}
	updated, err := w.c.Orders.UpdateStatus(w.ctx, w.order.ID, tradeapp.UpdateStatusRequest{Status: status})
	w.err = err
	if err == nil {
		w.order = updated
	}
	return nil
}

func (w *stockWorld) iOrderFromSupplier(quantity int, name, supplier string) error {
	w.purchase, w.err = w.c.Purchases.Create(w.ctx, tradeapp.CreatePurchaseRequest{
		SupplierID: w.suppliers[supplier],
		Items:      []tradeapp.PurchaseItemInput{{ProductID: w.products[name], Quantity: quantity}},
	})
	return w.err
}

func (w *stockWorld) iChangeThePurchaseStatus(status string) error {
	if w.purchase == nil {
		return errors.New("no purchase created")
	}
	updated, err := w.c.Purchases.UpdateStatus(w.ctx, w.purchase.ID, tradeapp.UpdatePurchaseStatusRequest{Status: status})
	w.err = err
	if err == nil {
		w.purchase = updated
	}
	return nil
}

func (w *stockWorld) iSetTheStockOf(name string, quantity int) error {
	_, w.err = w.c.Products.Update(w.ctx, w.products[name], catalogapp.UpdateProductRequest{StockQuantity: &quantity})
	return w.err
}

func (w *stockWorld) iSetTheEntryAt(name, code string, quantity int) error {
	entry, err := w.entryAt(name, code)
	if err != nil {
		return err
	}
	_, w.err = w.c.Entries.Update(w.ctx, entry.ID, inventoryapp.UpdateEntryRequest{Quantity: &quantity})
	return w.err
}

func (w *stockWorld) theOutboxIsProcessed() error {
	w.c.Processor.ProcessBatch(w.ctx)
	return nil
}

func (w *stockWorld) theOrderIsStoredWithStatus(status string) error {
	if w.err != nil {
		return fmt.Errorf("last request failed: %w", w.err)
	}
	stored, err := w.c.Orders.GetByID(w.ctx, w.order.ID)
	if err != nil {
		return err
	}
	if stored.Status != status {
		return fmt.Errorf("order status is %q, want %q", stored.Status, status)
	}
	return nil
}

func (w *stockWorld) thePurchaseIsStoredWithStatus(status string) error {
	if w.err != nil {
		return fmt.Errorf("last request failed: %w", w.err)
	}
	stored, err := w.c.Purchases.GetByID(w.ctx, w.purchase.ID)
	if err != nil {
		return err
	}
	if stored.Status != status {
		return fmt.Errorf("purchase status is %q, want %q", stored.Status, status)
	}
	return nil
}

// theStockIs checks the product aggregate and the ledger sum together
func (w *stockWorld) theStockIs(name string, want int) error {
	p, err := w.c.Products.GetByID(w.ctx, w.products[name])
	if err != nil {
		return err
	}
	stock, err := w.c.Entries.ProductStock(w.ctx, w.products[name])
	if err != nil {
		return err
	}
	if p.StockQuantity != want || stock.Total != want {
		return fmt.Errorf("stock of %s: product says %d, ledger says %d, want %d", name, p.StockQuantity, stock.Total, want)
	}
	return nil
}

func (w *stockWorld) entryAt(name, code string) (*inventoryapp.EntryResponse, error) {
	stock, err := w.c.Entries.ProductStock(w.ctx, w.products[name])
	if err != nil {
		return nil, err
	}
	for i := range stock.Entries {
		if stock.Entries[i].WarehouseID == w.warehouses[code] {
			return &stock.Entries[i], nil
		}
	}
	return nil, fmt.Errorf("%s has no entry at %s", name, code)
}

func (w *stockWorld) holdsUnitsAt(name string, want int, code string) error {
	entry, err := w.entryAt(name, code)
	if err != nil {
		return err
	}
	if entry.Quantity != want {
		return fmt.Errorf("%s holds %d at %s, want %d", name, entry.Quantity, code, want)
	}
	return nil
}

func (w *stockWorld) theRequestFailsWith(code string) error {
	var domainErr *shared.DomainError
	if !errors.As(w.err, &domainErr) {
		return fmt.Errorf("expected a %s error, got %v", code, w.err)
	}
	if domainErr.Code != code {
		return fmt.Errorf("error code is %s, want %s", domainErr.Code, code)
	}
	return nil
}

func (w *stockWorld) noOrderIsStored() error {
	_, total, err := w.c.Orders.List(w.ctx, tradeapp.OrderListFilter{})
	if err != nil {
		return err
	}
	if total != 0 {
		return fmt.Errorf("%d orders stored, want none", total)
	}
	return nil
}

func (w *stockWorld) anAlertIsRaisedFor(alertType, name string) error {
	for _, a := range w.alerts.Alerts() {
		if a.AlertType == alertType && a.ProductID == w.products[name].String() {
			return nil
		}
	}
	return fmt.Errorf("no %s alert for %s among %v", alertType, name, w.alerts.Alerts())
}

func (w *stockWorld) theOutboxHoldsNoPendingEntries() error {
	pending, err := w.c.Repos.Outbox.FindPending(w.ctx, 100)
	if err != nil {
		return err
	}
	if len(pending) != 0 {
		return fmt.Errorf("%d entries still pending", len(pending))
	}
	return nil
}

func initializeStockScenario(sc *godog.ScenarioContext) {
	w := &stockWorld{}

	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, w.reset()
	})
	sc.After(func(ctx context.Context, _ *godog.Scenario, err error) (context.Context, error) {
		if w.cleanup != nil {
			w.cleanup()
			w.cleanup = nil
		}
		return ctx, nil
	})

	// Given
	sc.Step(`^a default warehouse "([^"]*)"$`, w.aDefaultWarehouse)
	sc.Step(`^a warehouse "([^"]*)"$`, w.aWarehouse)
	sc.Step(`^a supplier "([^"]*)"$`, w.aSupplier)
	sc.Step(`^a product "([^"]*)" with (\d+) units in stock$`, w.aProductWithUnitsInStock)
	sc.Step(`^a product "([^"]*)" with (\d+) units at "([^"]*)" and (\d+) units at "([^"]*)"$`, w.aProductSplitAcrossWarehouses)

	// When
	sc.Step(`^I place an order for (\d+) units of "([^"]*)"$`, w.iPlaceAnOrder)
	sc.Step(`^I change the order status to "([^"]*)"$`, w.iChangeTheOrderStatus)
	sc.Step(`^I order (\d+) units of "([^"]*)" from "([^"]*)"$`, w.iOrderFromSupplier)
	sc.Step(`^I change the purchase status to "([^"]*)"$`, w.iChangeThePurchaseStatus)
	sc.Step(`^I set the stock of "([^"]*)" to (\d+)$`, w.iSetTheStockOf)
	sc.Step(`^I set the entry of "([^"]*)" at "([^"]*)" to (\d+)$`, w.iSetTheEntryAt)
	sc.Step(`^the outbox is processed$`, w.theOutboxIsProcessed)

	// Then
	sc.Step(`^the order is stored with status "([^"]*)"$`, w.theOrderIsStoredWithStatus)
	sc.Step(`^the purchase is stored with status "([^"]*)"$`, w.thePurchaseIsStoredWithStatus)
	sc.Step(`^the stock of "([^"]*)" is (\d+)$`, w.theStockIs)
	sc.Step(`^"([^"]*)" holds (\d+) units at "([^"]*)"$`, w.holdsUnitsAt)
	sc.Step(`^the request fails with "([^"]*)"$`, w.theRequestFailsWith)
	sc.Step(`^no order is stored$`, w.noOrderIsStored)
	sc.Step(`^an? "([^"]*)" alert is raised for "([^"]*)"$`, w.anAlertIsRaisedFor)
	sc.Step(`^the outbox holds no pending entries$`, w.theOutboxHoldsNoPendingEntries)
}

func TestStockFeatures(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "stock",
		ScenarioInitializer: initializeStockScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
			Strict:   true,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
