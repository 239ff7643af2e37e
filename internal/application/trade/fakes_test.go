package trade

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/erp/backoffice/internal/application/collection"
	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type memOrders struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*trade.Order
}

func newMemOrders() *memOrders {
	return &memOrders{orders: map[uuid.UUID]*trade.Order{}}
}

func (m *memOrders) FindByID(_ context.Context, id uuid.UUID) (*trade.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, shared.NewNotFoundError("Order")
	}
	return o.Clone(), nil
}

func (m *memOrders) FindAll(context.Context, shared.Filter) ([]*trade.Order, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*trade.Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, o.Clone())
	}
	return out, int64(len(out)), nil
}

func (m *memOrders) FindByCustomer(_ context.Context, customerID uuid.UUID, _ shared.Filter) ([]*trade.Order, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*trade.Order
	for _, o := range m.orders {
		if o.CustomerID != nil && *o.CustomerID == customerID {
			out = append(out, o.Clone())
		}
	}
	return out, int64(len(out)), nil
}

func (m *memOrders) FindByStatusAndProduct(_ context.Context, status trade.OrderStatus, productID uuid.UUID) ([]*trade.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*trade.Order
	for _, o := range m.orders {
		if o.Status == status && o.ContainsProduct(productID) {
			out = append(out, o.Clone())
		}
	}
	return out, nil
}

func (m *memOrders) LastNumber(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var numbers []string
	for _, o := range m.orders {
		numbers = append(numbers, o.OrderNumber)
	}
	return highest(numbers), nil
}

func (m *memOrders) Create(_ context.Context, o *trade.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = o.Clone()
	return nil
}

func (m *memOrders) SaveWithLock(_ context.Context, o *trade.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.orders[o.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != o.Version {
		return shared.ErrOptimisticLock
	}
	o.IncrementVersion()
	m.orders[o.ID] = o.Clone()
	return nil
}

func (m *memOrders) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

type memPurchases struct {
	mu        sync.Mutex
	purchases map[uuid.UUID]*trade.Purchase
}

func newMemPurchases() *memPurchases {
	return &memPurchases{purchases: map[uuid.UUID]*trade.Purchase{}}
}

func (m *memPurchases) FindByID(_ context.Context, id uuid.UUID) (*trade.Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.purchases[id]
	if !ok {
		return nil, shared.NewNotFoundError("Purchase")
	}
	return p.Clone(), nil
}

func (m *memPurchases) FindAll(context.Context, shared.Filter) ([]*trade.Purchase, int64, error) {
	return nil, 0, nil
}

func (m *memPurchases) LastNumber(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var numbers []string
	for _, p := range m.purchases {
		numbers = append(numbers, p.PurchaseNumber)
	}
	return highest(numbers), nil
}

func (m *memPurchases) Create(_ context.Context, p *trade.Purchase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purchases[p.ID] = p.Clone()
	return nil
}

func (m *memPurchases) SaveWithLock(_ context.Context, p *trade.Purchase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.purchases[p.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != p.Version {
		return shared.ErrOptimisticLock
	}
	p.IncrementVersion()
	m.purchases[p.ID] = p.Clone()
	return nil
}

// highest orders numbers the way the repositories do: longer first, then
// lexically, which matches numeric order for zero padded suffixes
func highest(numbers []string) string {
	sort.Slice(numbers, func(i, j int) bool {
		if len(numbers[i]) != len(numbers[j]) {
			return len(numbers[i]) > len(numbers[j])
		}
		return numbers[i] > numbers[j]
	})
	if len(numbers) == 0 {
		return ""
	}
	return numbers[0]
}

type memProducts struct {
	mu       sync.Mutex
	products map[uuid.UUID]*catalog.Product
}

func (m *memProducts) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, shared.NewNotFoundError("Product")
	}
	return p.Clone(), nil
}

func (m *memProducts) FindBySKU(context.Context, string) (*catalog.Product, error) {
	return nil, shared.ErrNotFound
}

func (m *memProducts) FindAll(context.Context, shared.Filter) ([]*catalog.Product, int64, error) {
	return nil, 0, nil
}

func (m *memProducts) FindLowStock(context.Context, int) ([]*catalog.Product, error) {
	return nil, nil
}

func (m *memProducts) LastNumber(context.Context) (string, error) {
	return "", nil
}

func (m *memProducts) Create(_ context.Context, p *catalog.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = p.Clone()
	return nil
}

func (m *memProducts) SaveWithLock(_ context.Context, p *catalog.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.IncrementVersion()
	m.products[p.ID] = p.Clone()
	return nil
}

type memCustomers struct {
	customers map[uuid.UUID]*partner.Customer
}

func (m *memCustomers) FindByID(_ context.Context, id uuid.UUID) (*partner.Customer, error) {
	c, ok := m.customers[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return c, nil
}

func (m *memCustomers) FindByEmail(context.Context, string) (*partner.Customer, error) {
	return nil, shared.ErrNotFound
}

func (m *memCustomers) FindAll(context.Context, shared.Filter) ([]*partner.Customer, int64, error) {
	return nil, 0, nil
}

func (m *memCustomers) LastNumber(context.Context) (string, error) { return "", nil }

func (m *memCustomers) Create(context.Context, *partner.Customer) error { return nil }

func (m *memCustomers) SaveWithLock(context.Context, *partner.Customer) error { return nil }

type memSuppliers struct {
	suppliers map[uuid.UUID]*partner.Supplier
}

func (m *memSuppliers) FindByID(_ context.Context, id uuid.UUID) (*partner.Supplier, error) {
	s, ok := m.suppliers[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return s, nil
}

func (m *memSuppliers) FindAll(context.Context, shared.Filter) ([]*partner.Supplier, int64, error) {
	return nil, 0, nil
}

func (m *memSuppliers) Create(context.Context, *partner.Supplier) error { return nil }

type memShippingMethods struct {
	methods map[uuid.UUID]*trade.ShippingMethod
}

func (m *memShippingMethods) FindByID(_ context.Context, id uuid.UUID) (*trade.ShippingMethod, error) {
	sm, ok := m.methods[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return sm, nil
}

func (m *memShippingMethods) FindAll(context.Context, shared.Filter) ([]*trade.ShippingMethod, int64, error) {
	out := make([]*trade.ShippingMethod, 0, len(m.methods))
	for _, sm := range m.methods {
		out = append(out, sm)
	}
	return out, int64(len(out)), nil
}

func (m *memShippingMethods) FindDefault(context.Context) (*trade.ShippingMethod, error) {
	for _, sm := range m.methods {
		if sm.IsActive && sm.IsDefault {
			return sm, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memShippingMethods) Create(_ context.Context, sm *trade.ShippingMethod) error {
	m.methods[sm.ID] = sm
	return nil
}

func (m *memShippingMethods) ClearDefault(context.Context) error {
	for _, sm := range m.methods {
		sm.IsDefault = false
	}
	return nil
}

type memTaxRates struct {
	rates map[uuid.UUID]*trade.TaxRate
}

func (m *memTaxRates) FindByID(_ context.Context, id uuid.UUID) (*trade.TaxRate, error) {
	r, ok := m.rates[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return r, nil
}

func (m *memTaxRates) FindAll(context.Context, shared.Filter) ([]*trade.TaxRate, int64, error) {
	out := make([]*trade.TaxRate, 0, len(m.rates))
	for _, r := range m.rates {
		out = append(out, r)
	}
	return out, int64(len(out)), nil
}

func (m *memTaxRates) FindDefault(_ context.Context, at time.Time) (*trade.TaxRate, error) {
	for _, r := range m.rates {
		if r.IsDefault && r.AppliesAt(at) {
			return r, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memTaxRates) Create(_ context.Context, r *trade.TaxRate) error {
	m.rates[r.ID] = r
	return nil
}

func (m *memTaxRates) ClearDefault(context.Context) error {
	for _, r := range m.rates {
		r.IsDefault = false
	}
	return nil
}

// stubResolver hands out one customer per e-mail
type stubResolver struct {
	calls    []string
	customer *partner.Customer
}

func (r *stubResolver) ResolveByEmail(_ context.Context, email, _ string) (*partner.Customer, error) {
	r.calls = append(r.calls, email)
	return r.customer, nil
}

type ledgerCall struct {
	productID uuid.UUID
	quantity  int
	effect    shared.StockEffect
}

// recordingLedger records movements and fails debits beyond its stock
type recordingLedger struct {
	mu    sync.Mutex
	calls []ledgerCall
	stock map[uuid.UUID]int
}

func (l *recordingLedger) ApplyDelta(_ context.Context, productID uuid.UUID, quantity int, effect shared.StockEffect) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if effect == shared.EffectDebit && l.stock != nil && l.stock[productID] < quantity {
		return shared.NewInsufficientStockError(productID.String(), l.stock[productID], quantity)
	}
	l.calls = append(l.calls, ledgerCall{productID: productID, quantity: quantity, effect: effect})
	return nil
}

func (l *recordingLedger) effects() []shared.StockEffect {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]shared.StockEffect, len(l.calls))
	for i, c := range l.calls {
		out[i] = c.effect
	}
	return out
}

// capturingRecorder keeps every recorded event
type capturingRecorder struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (r *capturingRecorder) Record(_ context.Context, events ...shared.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return nil
}

func (r *capturingRecorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.EventType()
	}
	return out
}

type passthroughTx struct{}

type txKey struct{}

func (passthroughTx) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	return fn(context.WithValue(ctx, txKey{}, true))
}

func (passthroughTx) InTransaction(ctx context.Context) bool {
	return ctx.Value(txKey{}) != nil
}

type fixture struct {
	orderRepo     *memOrders
	purchaseRepo  *memPurchases
	productRepo   *memProducts
	customers     *memCustomers
	suppliers     *memSuppliers
	shipping      *memShippingMethods
	taxRates      *memTaxRates
	resolver      *stubResolver
	ledger        *recordingLedger
	recorder      *capturingRecorder
	orders        *OrderCollection
	purchases     *PurchaseCollection
	products      *collection.Collection[*catalog.Product]
	orderHooks    *OrderHooks
	orderService  *OrderService
	purchaseSvc   *PurchaseService
	widget        *catalog.Product
	supplier      *partner.Supplier
	knownCustomer *partner.Customer
}

func newFixture() *fixture {
	f := &fixture{
		orderRepo:    newMemOrders(),
		purchaseRepo: newMemPurchases(),
		productRepo:  &memProducts{products: map[uuid.UUID]*catalog.Product{}},
		customers:    &memCustomers{customers: map[uuid.UUID]*partner.Customer{}},
		suppliers:    &memSuppliers{suppliers: map[uuid.UUID]*partner.Supplier{}},
		shipping:     &memShippingMethods{methods: map[uuid.UUID]*trade.ShippingMethod{}},
		taxRates:     &memTaxRates{rates: map[uuid.UUID]*trade.TaxRate{}},
		ledger:       &recordingLedger{},
		recorder:     &capturingRecorder{},
	}
	f.widget, _ = catalog.NewProduct("Widget", decimal.RequireFromString("9.99"))
	f.widget.SKU = "ART-00001"
	f.widget.StockQuantity = 50
	_ = f.productRepo.Create(context.Background(), f.widget)

	f.supplier, _ = partner.NewSupplier("Acme GmbH")
	f.suppliers.suppliers[f.supplier.ID] = f.supplier

	f.knownCustomer, _ = partner.NewCustomer("Erika", "erika@example.de", partner.CustomerTypeRetail)
	f.knownCustomer.CustomerNumber = "CUST-00001"
	f.customers.customers[f.knownCustomer.ID] = f.knownCustomer
	f.resolver = &stubResolver{customer: f.knownCustomer}

	runner := collection.NewRunner(passthroughTx{}, collection.RunnerConfig{MaxRetries: 2, RetryBackoff: time.Millisecond})
	f.orders = collection.New[*trade.Order]("orders", f.orderRepo, runner, f.recorder)
	f.purchases = collection.New[*trade.Purchase]("purchases", f.purchaseRepo, runner, f.recorder)
	f.products = collection.New[*catalog.Product]("products", f.productRepo, runner, nil)

	f.orderHooks = NewOrderHooks(OrderHookDeps{
		Orders:          f.orderRepo,
		Products:        f.productRepo,
		Customers:       f.customers,
		Resolver:        f.resolver,
		Ledger:          f.ledger,
		ShippingMethods: f.shipping,
		TaxRates:        f.taxRates,
	})
	f.orderHooks.Register(f.orders)
	f.products.AfterChange("syncOrderPrices", f.orderHooks.SyncPrices(f.orders))

	NewPurchaseHooks(PurchaseHookDeps{
		Purchases: f.purchaseRepo,
		Products:  f.productRepo,
		Suppliers: f.suppliers,
		Ledger:    f.ledger,
	}).Register(f.purchases)

	f.orderService = NewOrderService(f.orders, f.orderRepo)
	f.purchaseSvc = NewPurchaseService(f.purchases, f.purchaseRepo)
	return f
}
