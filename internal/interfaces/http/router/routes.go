package router

import (
	"fmt"

	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/erp/backoffice/internal/interfaces/http/handler"
	"github.com/erp/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Handlers are the HTTP handlers served under the API prefix
type Handlers struct {
	Auth      *handler.AuthHandler
	Products  *handler.ProductHandler
	Inventory *handler.InventoryHandler
	Warehouse *handler.WarehouseHandler
	Customers *handler.CustomerHandler
	Suppliers *handler.SupplierHandler
	Orders    *handler.OrderHandler
	Purchases *handler.PurchaseHandler
	Outbox    *handler.OutboxHandler
	System    *handler.SystemHandler

	ShippingMethods *handler.ShippingMethodHandler
	TaxRates        *handler.TaxRateHandler
}

// EngineConfig assembles the gin engine
type EngineConfig struct {
	Logger           *zap.Logger
	Authenticator    middleware.Authenticator
	Handlers         Handlers
	ServiceName      string
	TracingEnabled   bool
	Meter            metric.Meter // nil disables request metrics
	CORSAllowOrigins []string
	TrustedProxies   []string
	MaxBodySize      int64
}

// NewEngine builds the engine with the global middleware chain and every
// route. Order matters: the request logger runs before tracing so spans can
// pick up the request id, and auth runs only below the API prefix.
func NewEngine(cfg EngineConfig) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
			return nil, fmt.Errorf("set trusted proxies: %w", err)
		}
	}

	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.ServiceName,
		Enabled:     cfg.TracingEnabled,
	}))
	engine.Use(middleware.SpanErrorMarker())
	if cfg.Meter != nil {
		metrics, err := middleware.HTTPMetrics(cfg.Meter)
		if err != nil {
			return nil, fmt.Errorf("http metrics: %w", err)
		}
		engine.Use(metrics)
	}
	engine.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSAllowOrigins)))
	engine.Use(middleware.Secure(middleware.DefaultSecurityConfig()))
	engine.Use(middleware.BodyLimit(cfg.MaxBodySize))

	h := cfg.Handlers
	if h.System != nil {
		engine.GET("/health", h.System.Health)
	}
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(dto.GetHTTPStatus(dto.ErrCodeRouteNotFound), dto.NewErrorResponseWithRequestID(
			dto.ErrCodeRouteNotFound, "Route not found", c.GetString(middleware.RequestIDKey)))
	})

	api := API{Version: "v1", Middleware: []gin.HandlerFunc{
		middleware.Auth(middleware.DefaultAuthConfig(cfg.Authenticator, log)),
		middleware.TracingAttributeInjector(),
	}}
	api.Mount(engine, Resources(h)...)

	return engine, nil
}

// Resources lays out the versioned API. Nil handlers are skipped.
func Resources(h Handlers) []Resource {
	var out []Resource

	if h.System != nil {
		out = append(out, Resource{Name: "system", Routes: []Route{get("/health", h.System.Health)}})
	}

	if h.Auth != nil {
		out = append(out, Resource{Name: "auth", Prefix: "/auth", Routes: []Route{
			post("/login", h.Auth.Login),
			post("/refresh", h.Auth.Refresh),
			post("/logout", h.Auth.Logout),
			get("/me", h.Auth.Me),
		}})
	}

	if h.Products != nil {
		out = append(out, Resource{Name: "products", Prefix: "/products", Collection: identity.CollectionProducts, Routes: []Route{
			post("", h.Products.Create),
			get("", h.Products.List),
			get("/low-stock", h.Products.LowStock),
			get("/:id", h.Products.GetByID),
			put("/:id", h.Products.Update),
			get("/:id/stock", h.Products.Stock),
		}})
	}

	if h.Inventory != nil {
		out = append(out, Resource{Name: "inventory", Prefix: "/inventory", Collection: identity.CollectionInventory, Routes: []Route{
			post("", h.Inventory.Create),
			get("", h.Inventory.List),
			get("/:id", h.Inventory.GetByID),
			put("/:id", h.Inventory.Update),
		}})
	}

	if h.Warehouse != nil {
		out = append(out, Resource{Name: "warehouses", Prefix: "/warehouses", Collection: identity.CollectionWarehouses, Routes: []Route{
			post("", h.Warehouse.Create),
			get("", h.Warehouse.List),
			get("/:id", h.Warehouse.GetByID),
		}})
	}

	if h.ShippingMethods != nil {
		out = append(out, Resource{Name: "shipping-methods", Prefix: "/shipping-methods", Collection: identity.CollectionShippingMethods, Routes: []Route{
			post("", h.ShippingMethods.Create),
			get("", h.ShippingMethods.List),
			get("/:id", h.ShippingMethods.GetByID),
		}})
	}

	if h.TaxRates != nil {
		out = append(out, Resource{Name: "tax-rates", Prefix: "/tax-rates", Collection: identity.CollectionTaxRates, Routes: []Route{
			post("", h.TaxRates.Create),
			get("", h.TaxRates.List),
			get("/:id", h.TaxRates.GetByID),
		}})
	}

	if h.Customers != nil {
		out = append(out, Resource{Name: "customers", Prefix: "/customers", Collection: identity.CollectionCustomers, Routes: []Route{
			post("", h.Customers.Create),
			get("", h.Customers.List),
			get("/:id", h.Customers.GetByID),
			get("/:id/orders", h.Customers.Orders),
		}})
	}

	if h.Suppliers != nil {
		out = append(out, Resource{Name: "suppliers", Prefix: "/suppliers", Collection: identity.CollectionSuppliers, Routes: []Route{
			post("", h.Suppliers.Create),
			get("", h.Suppliers.List),
			get("/:id", h.Suppliers.GetByID),
		}})
	}

	if h.Orders != nil {
		out = append(out, Resource{Name: "orders", Prefix: "/orders", Collection: identity.CollectionOrders, Routes: []Route{
			post("", h.Orders.Create),
			get("", h.Orders.List),
			get("/:id", h.Orders.GetByID),
			put("/:id/status", h.Orders.UpdateStatus),
		}})
	}

	if h.Purchases != nil {
		out = append(out, Resource{Name: "purchases", Prefix: "/purchases", Collection: identity.CollectionPurchases, Routes: []Route{
			post("", h.Purchases.Create),
			get("", h.Purchases.List),
			get("/:id", h.Purchases.GetByID),
			put("/:id/status", h.Purchases.UpdateStatus),
		}})
	}

	if h.Outbox != nil {
		out = append(out, Resource{Name: "admin", Prefix: "/admin", Children: []Resource{{
			Name:       "outbox",
			Prefix:     "/outbox",
			Collection: identity.CollectionOutbox,
			Routes: []Route{
				get("/stats", h.Outbox.Stats),
				get("/dead", h.Outbox.DeadLetters),
				post("/retry-all", h.Outbox.RetryAll),
				get("/:id", h.Outbox.GetEntry),
				post("/:id/retry", h.Outbox.Retry),
			},
		}}})
	}

	return out
}
