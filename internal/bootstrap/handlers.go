package bootstrap

import (
	"github.com/erp/backoffice/internal/interfaces/http/handler"
	"github.com/erp/backoffice/internal/interfaces/http/router"
)

// Handlers builds the HTTP handlers on top of the container's services
func (c *Container) Handlers(name, version string, checks ...handler.HealthCheck) router.Handlers {
	return router.Handlers{
		Auth:      handler.NewAuthHandler(c.Auth),
		Products:  handler.NewProductHandler(c.Products, c.Entries),
		Inventory: handler.NewInventoryHandler(c.Entries),
		Warehouse: handler.NewWarehouseHandler(c.Warehouses),
		Customers: handler.NewCustomerHandler(c.Customers, c.Orders),
		Suppliers: handler.NewSupplierHandler(c.Suppliers),
		Orders:    handler.NewOrderHandler(c.Orders),
		Purchases: handler.NewPurchaseHandler(c.Purchases),
		Outbox:    handler.NewOutboxHandler(c.Outbox),
		System:    handler.NewSystemHandler(name, version, checks...),

		ShippingMethods: handler.NewShippingMethodHandler(c.ShippingMethods),
		TaxRates:        handler.NewTaxRateHandler(c.TaxRates),
	}
}
