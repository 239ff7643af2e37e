package inventory

import (
	"context"
	"sort"
	"sync"

	"github.com/erp/backoffice/internal/application/collection"
	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/lock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memLedger is an in-memory LedgerRepository with version checks
type memLedger struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*inventory.StockLedgerEntry
}

func newMemLedger() *memLedger {
	return &memLedger{entries: map[uuid.UUID]*inventory.StockLedgerEntry{}}
}

func (m *memLedger) FindByID(_ context.Context, id uuid.UUID) (*inventory.StockLedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return e.Clone(), nil
}

func (m *memLedger) FindByProduct(_ context.Context, productID uuid.UUID) ([]*inventory.StockLedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*inventory.StockLedgerEntry
	for _, e := range m.entries {
		if e.ProductID == productID {
			out = append(out, e.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Quantity > out[j].Quantity })
	return out, nil
}

func (m *memLedger) FindByProductAndWarehouse(_ context.Context, productID, warehouseID uuid.UUID) (*inventory.StockLedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.ProductID == productID && e.WarehouseID == warehouseID {
			return e.Clone(), nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memLedger) FindAll(ctx context.Context, _ shared.Filter) ([]*inventory.StockLedgerEntry, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*inventory.StockLedgerEntry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.Clone())
	}
	return out, int64(len(out)), nil
}

func (m *memLedger) SumByProduct(ctx context.Context, productID uuid.UUID) (int, error) {
	entries, _ := m.FindByProduct(ctx, productID)
	return inventory.Total(entries), nil
}

func (m *memLedger) Create(_ context.Context, e *inventory.StockLedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[e.ID] = e.Clone()
	return nil
}

func (m *memLedger) SaveWithLock(_ context.Context, e *inventory.StockLedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.entries[e.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != e.Version {
		return shared.ErrOptimisticLock
	}
	e.IncrementVersion()
	m.entries[e.ID] = e.Clone()
	return nil
}

// memProducts is an in-memory ProductRepository
type memProducts struct {
	mu       sync.Mutex
	products map[uuid.UUID]*catalog.Product
	saves    int
}

func newMemProducts() *memProducts {
	return &memProducts{products: map[uuid.UUID]*catalog.Product{}}
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

func (m *memProducts) FindBySKU(_ context.Context, sku string) (*catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.SKU == sku {
			return p.Clone(), nil
		}
	}
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
	stored, ok := m.products[p.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != p.Version {
		return shared.ErrOptimisticLock
	}
	p.IncrementVersion()
	m.products[p.ID] = p.Clone()
	m.saves++
	return nil
}

func (m *memProducts) stock(id uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id].StockQuantity
}

// memWarehouses is an in-memory WarehouseRepository
type memWarehouses struct {
	list []*partner.Warehouse
}

func (m *memWarehouses) FindByID(_ context.Context, id uuid.UUID) (*partner.Warehouse, error) {
	for _, w := range m.list {
		if w.ID == id {
			return w, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memWarehouses) FindByCode(_ context.Context, code string) (*partner.Warehouse, error) {
	for _, w := range m.list {
		if w.Code == code {
			return w, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memWarehouses) FindDefault(context.Context) (*partner.Warehouse, error) {
	for _, w := range m.list {
		if w.IsDefault {
			return w, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memWarehouses) FindAll(context.Context, shared.Filter) ([]*partner.Warehouse, int64, error) {
	return m.list, int64(len(m.list)), nil
}

func (m *memWarehouses) Create(_ context.Context, w *partner.Warehouse) error {
	m.list = append(m.list, w)
	return nil
}

func (m *memWarehouses) ClearDefault(context.Context) error {
	for _, w := range m.list {
		w.IsDefault = false
	}
	return nil
}

// passthroughTx marks the context as transactional without a database
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

// fixture wires a ledger with its sync hooks on in-memory stores
type fixture struct {
	ledgerRepo *memLedger
	products   *memProducts
	warehouses *memWarehouses
	main       *partner.Warehouse
	second     *partner.Warehouse
	productCol *ProductCollection
	entries    *EntryCollection
	ledger     *StockLedger
}

func newFixture() *fixture {
	f := &fixture{
		ledgerRepo: newMemLedger(),
		products:   newMemProducts(),
		warehouses: &memWarehouses{},
	}
	f.main, _ = partner.NewWarehouse("MAIN", "Main warehouse")
	f.main.IsDefault = true
	f.second, _ = partner.NewWarehouse("WEST", "West")
	f.warehouses.list = []*partner.Warehouse{f.main, f.second}

	runner := collection.NewRunner(passthroughTx{}, collection.DefaultRunnerConfig())
	f.productCol = collection.New[*catalog.Product]("products", f.products, runner, nil)
	f.entries = collection.New[*inventory.StockLedgerEntry]("inventory", f.ledgerRepo, runner, nil)
	f.ledger = NewStockLedger(LedgerDeps{
		Entries:    f.entries,
		Repo:       f.ledgerRepo,
		Products:   f.products,
		Warehouses: f.warehouses,
		Runner:     runner,
		Locker:     lock.NewMemoryLocker(),
	}, LedgerConfig{})
	f.ledger.RegisterEntryHooks(f.entries)
	NewAggregateSync(f.ledger, f.productCol).Register(f.entries)
	return f
}

// seedProduct stores a product and its entries directly, bypassing the hooks
func (f *fixture) seedProduct(sku string, quantities map[*partner.Warehouse]int) *catalog.Product {
	p, _ := catalog.NewProduct("Widget "+sku, decimal.RequireFromString("10"))
	p.SKU = sku
	for wh, q := range quantities {
		e, _ := inventory.NewStockLedgerEntry(p.ID, wh.ID, inventory.InventoryIDFor(sku, wh.Code), q)
		_ = f.ledgerRepo.Create(context.Background(), e)
		p.StockQuantity += q
	}
	_ = f.products.Create(context.Background(), p)
	return p
}

func (f *fixture) quantityAt(productID uuid.UUID, wh *partner.Warehouse) int {
	e, err := f.ledgerRepo.FindByProductAndWarehouse(context.Background(), productID, wh.ID)
	if err != nil {
		return -1
	}
	return e.Quantity
}
