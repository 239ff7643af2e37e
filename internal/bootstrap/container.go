// Package bootstrap assembles repositories, collections, hook chains and
// services into one object graph. The server binary, the migrate seed and
// the acceptance tests all build the service through it.
package bootstrap

import (
	"errors"
	"fmt"

	catalogapp "github.com/erp/backoffice/internal/application/catalog"
	"github.com/erp/backoffice/internal/application/collection"
	eventapp "github.com/erp/backoffice/internal/application/event"
	identityapp "github.com/erp/backoffice/internal/application/identity"
	inventoryapp "github.com/erp/backoffice/internal/application/inventory"
	partnerapp "github.com/erp/backoffice/internal/application/partner"
	tradeapp "github.com/erp/backoffice/internal/application/trade"
	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/erp/backoffice/internal/infrastructure/auth"
	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/erp/backoffice/internal/infrastructure/event"
	"github.com/erp/backoffice/internal/infrastructure/lock"
	"github.com/erp/backoffice/internal/infrastructure/persistence"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Infra are the backing services picked by configuration. Zero values fall
// back to in-process implementations.
type Infra struct {
	Locker    collection.Locker
	Processed event.ProcessedStore
	Blacklist auth.TokenBlacklist
	Meter     metric.Meter // nil disables ledger metrics
	Sinks     []event.Sink // broker sinks next to the in-process bus
	Notifier  inventoryapp.StockAlertNotifier
}

// Repositories are the gorm repositories of every aggregate
type Repositories struct {
	Products   *persistence.GormProductRepository
	Ledger     *persistence.GormLedgerRepository
	Warehouses *persistence.GormWarehouseRepository
	Customers  *persistence.GormCustomerRepository
	Suppliers  *persistence.GormSupplierRepository
	Orders     *persistence.GormOrderRepository
	Purchases  *persistence.GormPurchaseRepository
	Users      *persistence.GormUserRepository
	Outbox     *persistence.GormOutboxRepository

	ShippingMethods *persistence.GormShippingMethodRepository
	TaxRates        *persistence.GormTaxRateRepository
}

// Collections are the hooked write paths
type Collections struct {
	Products  *catalogapp.ProductCollection
	Entries   *inventoryapp.EntryCollection
	Customers *partnerapp.CustomerCollection
	Orders    *tradeapp.OrderCollection
	Purchases *tradeapp.PurchaseCollection
}

// Container is the assembled service
type Container struct {
	Repos       Repositories
	Collections Collections
	Tx          *persistence.GormTransactionScope
	Runner      *collection.Runner
	Ledger      *inventoryapp.StockLedger
	Bus         *event.InMemoryEventBus
	Serializer  *event.EventSerializer
	Processor   *event.OutboxProcessor
	Alerts      *event.IdempotentHandler

	Products   *catalogapp.ProductService
	Entries    *inventoryapp.EntryService
	Warehouses *partnerapp.WarehouseService
	Customers  *partnerapp.CustomerService
	Suppliers  *partnerapp.SupplierService
	Orders     *tradeapp.OrderService
	Purchases  *tradeapp.PurchaseService
	Auth       *identityapp.AuthService
	Users      *identityapp.UserService
	Outbox     *eventapp.OutboxService

	ShippingMethods *tradeapp.ShippingMethodService
	TaxRates        *tradeapp.TaxRateService
}

// NewContainer wires the service on db. Everything written through the
// collections shares one transaction per top-level write, and the events
// raised on the way land in the outbox inside that transaction.
func NewContainer(db *gorm.DB, cfg *config.Config, infra Infra, log *zap.Logger) (*Container, error) {
	if db == nil {
		return nil, errors.New("bootstrap: database is required")
	}
	if cfg == nil {
		return nil, errors.New("bootstrap: configuration is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	if infra.Locker == nil {
		infra.Locker = lock.NewMemoryLocker()
	}
	if infra.Blacklist == nil {
		infra.Blacklist = auth.NewInMemoryTokenBlacklist()
	}

	c := &Container{
		Repos: Repositories{
			Products:   persistence.NewGormProductRepository(db),
			Ledger:     persistence.NewGormLedgerRepository(db),
			Warehouses: persistence.NewGormWarehouseRepository(db),
			Customers:  persistence.NewGormCustomerRepository(db),
			Suppliers:  persistence.NewGormSupplierRepository(db),
			Orders:     persistence.NewGormOrderRepository(db),
			Purchases:  persistence.NewGormPurchaseRepository(db),
			Users:      persistence.NewGormUserRepository(db),
			Outbox:     persistence.NewGormOutboxRepository(db),

			ShippingMethods: persistence.NewGormShippingMethodRepository(db),
			TaxRates:        persistence.NewGormTaxRateRepository(db),
		},
		Tx:         persistence.NewGormTransactionScope(db),
		Bus:        event.NewInMemoryEventBus(log),
		Serializer: event.NewDomainSerializer(),
	}

	var ledgerMetrics *telemetry.LedgerMetrics
	if infra.Meter != nil {
		m, err := telemetry.NewLedgerMetrics(infra.Meter)
		if err != nil {
			return nil, fmt.Errorf("ledger metrics: %w", err)
		}
		ledgerMetrics = m
	}

	c.Runner = collection.NewRunner(c.Tx, collection.RunnerConfig{
		MaxRetries:   cfg.Ledger.MaxRetries,
		RetryBackoff: cfg.Ledger.RetryBackoff,
	})
	recorder := event.NewOutboxRecorder(c.Repos.Outbox, c.Serializer, cfg.Event.MaxRetries)
	c.wireCollections(recorder)

	c.Ledger = inventoryapp.NewStockLedger(inventoryapp.LedgerDeps{
		Entries:    c.Collections.Entries,
		Repo:       c.Repos.Ledger,
		Products:   c.Repos.Products,
		Warehouses: c.Repos.Warehouses,
		Runner:     c.Runner,
		Locker:     infra.Locker,
		Metrics:    ledgerMetrics,
	}, inventoryapp.LedgerConfig{
		LockTimeout:          cfg.Ledger.LockTimeout,
		DefaultWarehouseCode: cfg.Ledger.DefaultWarehouseCode,
	})

	c.Customers = partnerapp.NewCustomerService(c.Collections.Customers, c.Repos.Customers)
	c.wireHooks()

	c.Products = catalogapp.NewProductService(c.Collections.Products, c.Repos.Products)
	c.Entries = inventoryapp.NewEntryService(c.Collections.Entries, c.Repos.Ledger, c.Ledger)
	c.Warehouses = partnerapp.NewWarehouseService(c.Repos.Warehouses, c.Tx)
	c.Suppliers = partnerapp.NewSupplierService(c.Repos.Suppliers)
	c.Orders = tradeapp.NewOrderService(c.Collections.Orders, c.Repos.Orders)
	c.Purchases = tradeapp.NewPurchaseService(c.Collections.Purchases, c.Repos.Purchases)
	c.ShippingMethods = tradeapp.NewShippingMethodService(c.Repos.ShippingMethods, c.Tx)
	c.TaxRates = tradeapp.NewTaxRateService(c.Repos.TaxRates, c.Tx)
	c.Auth = identityapp.NewAuthService(c.Repos.Users, auth.NewJWTService(cfg.JWT), infra.Blacklist, log)
	c.Users = identityapp.NewUserService(c.Repos.Users, log)
	c.Outbox = eventapp.NewOutboxService(c.Repos.Outbox, log)

	c.wireEvents(cfg, infra, log)
	return c, nil
}

func (c *Container) wireCollections(recorder *event.OutboxRecorder) {
	c.Collections = Collections{
		Products:  collection.New[*catalog.Product](identity.CollectionProducts, c.Repos.Products, c.Runner, recorder),
		Entries:   collection.New[*inventory.StockLedgerEntry](identity.CollectionInventory, c.Repos.Ledger, c.Runner, recorder),
		Customers: collection.New[*partner.Customer](identity.CollectionCustomers, c.Repos.Customers, c.Runner, recorder),
		Orders:    collection.New[*trade.Order](identity.CollectionOrders, c.Repos.Orders, c.Runner, recorder),
		Purchases: collection.New[*trade.Purchase](identity.CollectionPurchases, c.Repos.Purchases, c.Runner, recorder),
	}
}

// wireHooks installs the hook chains. Registration order is execution order.
func (c *Container) wireHooks() {
	catalogapp.NewProductHooks(c.Repos.Products).Register(c.Collections.Products)
	partnerapp.NewCustomerHooks(c.Repos.Customers).Register(c.Collections.Customers)

	c.Ledger.RegisterEntryHooks(c.Collections.Entries)
	inventoryapp.NewAggregateSync(c.Ledger, c.Collections.Products).Register(c.Collections.Entries)

	orderHooks := tradeapp.NewOrderHooks(tradeapp.OrderHookDeps{
		Orders:          c.Repos.Orders,
		Products:        c.Repos.Products,
		Customers:       c.Repos.Customers,
		Resolver:        c.Customers,
		Ledger:          c.Ledger,
		ShippingMethods: c.Repos.ShippingMethods,
		TaxRates:        c.Repos.TaxRates,
	})
	orderHooks.Register(c.Collections.Orders)
	c.Collections.Products.AfterChange("syncOrderPrices", orderHooks.SyncPrices(c.Collections.Orders))

	tradeapp.NewPurchaseHooks(tradeapp.PurchaseHookDeps{
		Purchases: c.Repos.Purchases,
		Products:  c.Repos.Products,
		Suppliers: c.Repos.Suppliers,
		Ledger:    c.Ledger,
	}).Register(c.Collections.Purchases)
}

// wireEvents subscribes the in-process consumers and builds the outbox
// processor that feeds them and the broker sinks.
func (c *Container) wireEvents(cfg *config.Config, infra Infra, log *zap.Logger) {
	alerts := inventoryapp.NewStockAlertHandler(log, infra.Notifier)
	if infra.Processed != nil {
		c.Alerts = event.NewIdempotentHandler(alerts, infra.Processed, cfg.Event.IdempotencyTTL, log)
		c.Bus.Subscribe(c.Alerts, c.Alerts.EventTypes()...)
	} else {
		c.Bus.Subscribe(alerts, alerts.EventTypes()...)
	}

	sinks := append([]event.Sink{event.NewBusSink(c.Bus, c.Serializer)}, infra.Sinks...)
	c.Processor = event.NewOutboxProcessor(c.Repos.Outbox, sinks, event.OutboxProcessorConfig{
		BatchSize:        cfg.Event.BatchSize,
		PollInterval:     cfg.Event.PollInterval,
		CleanupEnabled:   cfg.Event.CleanupRetention > 0,
		CleanupRetention: cfg.Event.CleanupRetention,
	}, log)
}
