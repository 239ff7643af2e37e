package bootstrap

import (
	"context"
	"errors"
	"sync"
	"testing"

	catalogapp "github.com/erp/backoffice/internal/application/catalog"
	inventoryapp "github.com/erp/backoffice/internal/application/inventory"
	partnerapp "github.com/erp/backoffice/internal/application/partner"
	tradeapp "github.com/erp/backoffice/internal/application/trade"
	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/erp/backoffice/internal/infrastructure/cache"
	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/erp/backoffice/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func testConfig() (*config.Config, error) {
	v := viper.New()
	v.Set("database.driver", "sqlite")
	v.Set("database.path", ":memory:")
	v.Set("jwt.secret", "test-secret-that-is-long-enough-for-hs256")
	v.Set("jwt.refresh_secret", "test-refresh-secret-long-enough-for-hs256")
	v.Set("ledger.retry_backoff", "1ms")
	return config.FromViper(v)
}

// openTestDB returns a migrated in-memory database on a single connection
func openTestDB() (*gorm.DB, func(), error) {
	db, err := persistence.Open(sqlite.Open(":memory:"), nil)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	if err := persistence.AutoMigrate(db); err != nil {
		_ = sqlDB.Close()
		return nil, nil, err
	}
	return db, func() { _ = sqlDB.Close() }, nil
}

// alertRecorder collects the stock alerts raised by delivered events
type alertRecorder struct {
	mu     sync.Mutex
	alerts []inventoryapp.StockAlert
}

func (r *alertRecorder) SendAlert(_ context.Context, alert inventoryapp.StockAlert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, alert)
	return nil
}

func (r *alertRecorder) Alerts() []inventoryapp.StockAlert {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]inventoryapp.StockAlert(nil), r.alerts...)
}

func newTestContainer(notifier inventoryapp.StockAlertNotifier) (*Container, func(), error) {
	cfg, err := testConfig()
	if err != nil {
		return nil, nil, err
	}
	db, closeDB, err := openTestDB()
	if err != nil {
		return nil, nil, err
	}
	store := cache.NewInMemoryIdempotencyStore()
	c, err := NewContainer(db, cfg, Infra{Processed: store, Notifier: notifier}, nil)
	if err != nil {
		closeDB()
		_ = store.Close()
		return nil, nil, err
	}
	return c, func() {
		_ = store.Close()
		closeDB()
	}, nil
}

func setupContainer(t *testing.T) *Container {
	t.Helper()
	c, cleanup, err := newTestContainer(nil)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	_, err = c.Warehouses.Create(context.Background(), partnerapp.CreateWarehouseRequest{Code: "MAIN", Name: "Hauptlager", IsDefault: true})
	require.NoError(t, err)
	return c
}

func createProduct(t *testing.T, c *Container, name string, stock int) *catalogapp.ProductResponse {
	t.Helper()
	p, err := c.Products.Create(context.Background(), catalogapp.CreateProductRequest{
		Name:          name,
		Price:         decimal.RequireFromString("4.50"),
		StockQuantity: stock,
	})
	require.NoError(t, err)
	return p
}

func orderFor(productID uuid.UUID, quantity int) tradeapp.CreateOrderRequest {
	return tradeapp.CreateOrderRequest{
		OrderType: "instore",
		Items:     []tradeapp.OrderItemInput{{ProductID: productID, Quantity: quantity}},
	}
}

func TestNewContainer_RequiresDatabaseAndConfig(t *testing.T) {
	cfg, err := testConfig()
	require.NoError(t, err)

	_, err = NewContainer(nil, cfg, Infra{}, nil)
	assert.Error(t, err)

	db, closeDB, err := openTestDB()
	require.NoError(t, err)
	defer closeDB()
	_, err = NewContainer(db, nil, Infra{}, nil)
	assert.Error(t, err)
}

func TestContainer_OrderDebitsLedgerAndRecordsEvents(t *testing.T) {
	ctx := context.Background()
	c := setupContainer(t)
	p := createProduct(t, c, "Schraube M8", 50)
	assert.Equal(t, "ART-00001", p.SKU)

	order, err := c.Orders.Create(ctx, orderFor(p.ID, 10))
	require.NoError(t, err)
	assert.Equal(t, "ORD-00001", order.OrderNumber)
	assert.True(t, order.Total.IsPositive())

	stock, err := c.Entries.ProductStock(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, stock.Total)

	loaded, err := c.Products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, loaded.StockQuantity)

	pending, err := c.Repos.Outbox.FindPending(ctx, 100)
	require.NoError(t, err)
	types := map[string]int{}
	for _, e := range pending {
		types[e.EventType]++
	}
	assert.Equal(t, 1, types[trade.EventTypeOrderPlaced])
	assert.Equal(t, 2, types[inventory.EventTypeStockAdjusted], "one for the opening entry, one for the debit")
}

func TestContainer_FailedOrderLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	c := setupContainer(t)
	p := createProduct(t, c, "Schraube M8", 5)

	before, err := c.Repos.Outbox.FindPending(ctx, 100)
	require.NoError(t, err)

	_, err = c.Orders.Create(ctx, orderFor(p.ID, 6))
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, shared.CodeInsufficientStock, domainErr.Code)

	_, total, err := c.Orders.List(ctx, tradeapp.OrderListFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)

	after, err := c.Repos.Outbox.FindPending(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, after, len(before))

	// the order number was not consumed
	order, err := c.Orders.Create(ctx, orderFor(p.ID, 5))
	require.NoError(t, err)
	assert.Equal(t, "ORD-00001", order.OrderNumber)
}

func TestContainer_ConcurrentOrdersNeverOversell(t *testing.T) {
	ctx := context.Background()
	c := setupContainer(t)
	p := createProduct(t, c, "Letzte Schraube", 5)

	const buyers = 12
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		shortages int
		others    []error
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Orders.Create(ctx, orderFor(p.ID, 1))
			mu.Lock()
			defer mu.Unlock()
			var domainErr *shared.DomainError
			switch {
			case err == nil:
				succeeded++
			case errors.As(err, &domainErr) && domainErr.Code == shared.CodeInsufficientStock:
				shortages++
			default:
				others = append(others, err)
			}
		}()
	}
	wg.Wait()

	require.Empty(t, others)
	assert.Equal(t, 5, succeeded)
	assert.Equal(t, buyers-5, shortages)

	stock, err := c.Entries.ProductStock(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stock.Total)
	loaded, err := c.Products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.StockQuantity)
}

func TestContainer_ProcessorDeliversToAlertHandler(t *testing.T) {
	ctx := context.Background()
	alerts := &alertRecorder{}
	c, cleanup, err := newTestContainer(alerts)
	require.NoError(t, err)
	t.Cleanup(cleanup)
	_, err = c.Warehouses.Create(ctx, partnerapp.CreateWarehouseRequest{Code: "MAIN", Name: "Hauptlager", IsDefault: true})
	require.NoError(t, err)

	p := createProduct(t, c, "Mutter M8", 8)
	_, err = c.Orders.Create(ctx, orderFor(p.ID, 8))
	require.NoError(t, err)

	sent := c.Processor.ProcessBatch(ctx)
	assert.Positive(t, sent)

	got := alerts.Alerts()
	require.Len(t, got, 1)
	assert.Equal(t, "out_of_stock", got[0].AlertType)
	assert.Equal(t, p.ID.String(), got[0].ProductID)

	require.NotNil(t, c.Alerts)
	assert.Positive(t, c.Alerts.Counters().Snapshot().Handled)
	assert.Zero(t, c.Processor.ProcessBatch(ctx), "everything was sent in the first batch")
}

func TestContainer_Handlers(t *testing.T) {
	c := setupContainer(t)
	h := c.Handlers("erp-backoffice", "test")

	assert.NotNil(t, h.Auth)
	assert.NotNil(t, h.Products)
	assert.NotNil(t, h.Inventory)
	assert.NotNil(t, h.Warehouse)
	assert.NotNil(t, h.Customers)
	assert.NotNil(t, h.Suppliers)
	assert.NotNil(t, h.Orders)
	assert.NotNil(t, h.Purchases)
	assert.NotNil(t, h.Outbox)
	assert.NotNil(t, h.System)
	assert.NotNil(t, h.ShippingMethods)
	assert.NotNil(t, h.TaxRates)
}

func TestContainer_OrderTakesShippingAndTax(t *testing.T) {
	ctx := context.Background()
	c := setupContainer(t)
	p := createProduct(t, c, "Schraube M8", 50)

	_, err := c.TaxRates.Create(ctx, tradeapp.CreateTaxRateRequest{Name: "MwSt 19%", Rate: decimal.NewFromInt(19), IsDefault: true})
	require.NoError(t, err)
	dhl, err := c.ShippingMethods.Create(ctx, tradeapp.CreateShippingMethodRequest{
		Name:      "DHL Paket",
		Price:     decimal.RequireFromString("4.90"),
		IsDefault: true,
	})
	require.NoError(t, err)

	req := orderFor(p.ID, 10)
	req.OrderType = "online"
	order, err := c.Orders.Create(ctx, req)
	require.NoError(t, err)

	require.NotNil(t, order.ShippingMethodID)
	assert.Equal(t, dhl.ID, *order.ShippingMethodID)
	assert.True(t, decimal.RequireFromString("49.90").Equal(order.Total), order.Total.String())
	assert.True(t, decimal.RequireFromString("7.97").Equal(order.TaxAmount), order.TaxAmount.String())

	loaded, err := c.Orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(19).Equal(loaded.TaxRate))
	assert.True(t, order.TaxAmount.Equal(loaded.TaxAmount))
}
