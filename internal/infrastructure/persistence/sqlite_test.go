package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open(sqlite.Open(":memory:"), nil)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, AutoMigrate(db))
	return db
}

func newTestOrder(t *testing.T, number string, productIDs ...uuid.UUID) *trade.Order {
	t.Helper()
	items := make([]trade.OrderItem, len(productIDs))
	for i, id := range productIDs {
		items[i] = trade.OrderItem{
			ProductID:   id,
			ProductName: "Artikel",
			Quantity:    i + 1,
			UnitPrice:   decimal.RequireFromString("9.90"),
			Discount:    decimal.Zero,
		}
	}
	o, err := trade.NewOrder(trade.OrderTypeOnline, items)
	require.NoError(t, err)
	o.OrderNumber = number
	o.OrderDate = time.Now()
	return o
}

func TestGormOrderRepository_SQLite(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	repo := NewGormOrderRepository(db)

	screw, nut := uuid.New(), uuid.New()
	order := newTestOrder(t, "ORD-00001", screw, nut)
	require.NoError(t, repo.Create(ctx, order))

	t.Run("round trip keeps line order", func(t *testing.T) {
		loaded, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)
		require.Len(t, loaded.Items, 2)
		assert.Equal(t, screw, loaded.Items[0].ProductID)
		assert.Equal(t, nut, loaded.Items[1].ProductID)
		assert.Equal(t, 1, loaded.Version)
	})

	t.Run("duplicate number is a sequence conflict", func(t *testing.T) {
		err := repo.Create(ctx, newTestOrder(t, "ORD-00001", screw))
		assert.ErrorIs(t, err, shared.ErrSequenceConflict)
	})

	t.Run("save replaces lines and bumps the version", func(t *testing.T) {
		loaded, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)
		loaded.Items = loaded.Items[:1]
		loaded.Items[0].Quantity = 7
		require.NoError(t, repo.SaveWithLock(ctx, loaded))
		assert.Equal(t, 2, loaded.Version)

		again, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)
		require.Len(t, again.Items, 1)
		assert.Equal(t, 7, again.Items[0].Quantity)
		assert.Equal(t, 2, again.Version)
	})

	t.Run("stale copy is rejected", func(t *testing.T) {
		stale, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)
		fresh, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)

		require.NoError(t, repo.SaveWithLock(ctx, fresh))
		stale.Notes = "late"
		assert.ErrorIs(t, repo.SaveWithLock(ctx, stale), shared.ErrOptimisticLock)
	})

	t.Run("find by status and product", func(t *testing.T) {
		other := newTestOrder(t, "ORD-00002", nut)
		require.NoError(t, repo.Create(ctx, other))

		withScrew, err := repo.FindByStatusAndProduct(ctx, trade.OrderStatusNew, screw)
		require.NoError(t, err)
		require.Len(t, withScrew, 1)
		assert.Equal(t, order.ID, withScrew[0].ID)

		none, err := repo.FindByStatusAndProduct(ctx, trade.OrderStatusShipped, nut)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("last number sorts by length", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, newTestOrder(t, "ORD-100000", screw)))
		require.NoError(t, repo.Create(ctx, newTestOrder(t, "ORD-99999", screw)))
		last, err := repo.LastNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, "ORD-100000", last)
	})

	t.Run("list filters by status", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters["status"] = string(trade.OrderStatusNew)
		filter.PageSize = 2
		orders, total, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
		assert.Len(t, orders, 2)
	})
}

func TestGormLedgerRepository_SQLite(t *testing.T) {
	ctx := context.Background()
	repo := NewGormLedgerRepository(newSQLiteDB(t))
	product := uuid.New()

	main, err := inventory.NewStockLedgerEntry(product, uuid.New(), "INV-SKU-00001-MAIN", 5)
	require.NoError(t, err)
	side, err := inventory.NewStockLedgerEntry(product, uuid.New(), "INV-SKU-00001-SIDE", 12)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, main))
	require.NoError(t, repo.Create(ctx, side))

	sum, err := repo.SumByProduct(ctx, product)
	require.NoError(t, err)
	assert.Equal(t, 17, sum)

	sum, err = repo.SumByProduct(ctx, uuid.New())
	require.NoError(t, err)
	assert.Zero(t, sum)

	entries, err := repo.FindByProduct(ctx, product)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 12, entries[0].Quantity, "highest quantity first")

	dup, err := inventory.NewStockLedgerEntry(product, main.WarehouseID, "INV-SKU-00001-MAIN-2", 1)
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Create(ctx, dup), shared.ErrAlreadyExists)

	require.NoError(t, main.SetQuantity(0))
	require.NoError(t, repo.SaveWithLock(ctx, main))
	loaded, err := repo.FindByProductAndWarehouse(ctx, product, main.WarehouseID)
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Quantity)
	assert.Equal(t, 2, loaded.Version)
}

func TestGormWarehouseRepository_FindDefault_SQLite(t *testing.T) {
	ctx := context.Background()
	repo := NewGormWarehouseRepository(newSQLiteDB(t))

	_, err := repo.FindDefault(ctx)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	first, err := partner.NewWarehouse("MAIN", "Hauptlager")
	require.NoError(t, err)
	first.CreatedAt = time.Now().Add(-time.Hour)
	second, err := partner.NewWarehouse("SIDE", "Außenlager")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	found, err := repo.FindDefault(ctx)
	require.NoError(t, err)
	assert.Equal(t, "MAIN", found.Code, "oldest active warehouse without a default flag")

	third, err := partner.NewWarehouse("EAST", "Ostlager")
	require.NoError(t, err)
	third.IsDefault = true
	require.NoError(t, repo.Create(ctx, third))
	found, err = repo.FindDefault(ctx)
	require.NoError(t, err)
	assert.Equal(t, "EAST", found.Code)

	require.NoError(t, repo.ClearDefault(ctx))
	found, err = repo.FindDefault(ctx)
	require.NoError(t, err)
	assert.Equal(t, "MAIN", found.Code)

	assert.ErrorIs(t, repo.Create(ctx, first), shared.ErrAlreadyExists)
}

func TestGormTransactionScope_SQLite(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	scope := NewGormTransactionScope(db)
	repo := NewGormSupplierRepository(db)
	boom := errors.New("boom")

	t.Run("rollback discards every write of the scope", func(t *testing.T) {
		err := scope.Execute(ctx, func(ctx context.Context) error {
			assert.True(t, scope.InTransaction(ctx))
			s, err := partner.NewSupplier("Rollback GmbH")
			require.NoError(t, err)
			require.NoError(t, repo.Create(ctx, s))
			return scope.Execute(ctx, func(ctx context.Context) error {
				s2, err := partner.NewSupplier("Nested GmbH")
				require.NoError(t, err)
				require.NoError(t, repo.Create(ctx, s2))
				return boom
			})
		})
		assert.ErrorIs(t, err, boom)

		_, total, err := repo.FindAll(ctx, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("commit", func(t *testing.T) {
		assert.False(t, scope.InTransaction(ctx))
		err := scope.Execute(ctx, func(ctx context.Context) error {
			s, err := partner.NewSupplier("Commit AG")
			require.NoError(t, err)
			return repo.Create(ctx, s)
		})
		require.NoError(t, err)

		suppliers, total, err := repo.FindAll(ctx, shared.Filter{Page: 1, PageSize: 10, Search: "commit"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, "Commit AG", suppliers[0].Name)
	})
}

func TestGormOutboxRepository_SQLite(t *testing.T) {
	ctx := context.Background()
	repo := NewGormOutboxRepository(newSQLiteDB(t))

	event := shared.NewBaseDomainEvent("StockAdjusted", "StockLedgerEntry", uuid.New())
	entry := shared.NewOutboxEntry(&event, []byte(`{"delta":-1}`))
	require.NoError(t, repo.Save(ctx, entry))

	pending, err := repo.FindPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "StockAdjusted", pending[0].EventType)

	claimed, err := repo.MarkProcessing(ctx, []uuid.UUID{entry.ID})
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, shared.OutboxStatusProcessing, claimed[0].Status)

	again, err := repo.MarkProcessing(ctx, []uuid.UUID{entry.ID})
	require.NoError(t, err)
	assert.Empty(t, again, "an entry is claimed once")

	claimed[0].MarkSent()
	require.NoError(t, repo.Update(ctx, claimed[0]))

	deleted, err := repo.DeleteOlderThan(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestGormOutboxRepository_DeadLetters_SQLite(t *testing.T) {
	ctx := context.Background()
	repo := NewGormOutboxRepository(newSQLiteDB(t))

	var dead []*shared.OutboxEntry
	for i := 0; i < 3; i++ {
		event := shared.NewBaseDomainEvent("OrderPlaced", "Order", uuid.New())
		entry := shared.NewOutboxEntry(&event, []byte(`{}`))
		entry.MaxRetries = 1
		require.NoError(t, repo.Save(ctx, entry))
		if i < 2 {
			entry.MarkFailed("broker down")
			require.NoError(t, repo.Update(ctx, entry))
			dead = append(dead, entry)
		}
	}

	entries, total, err := repo.FindDead(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, entries, 1)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[shared.OutboxStatusDead])
	assert.Equal(t, int64(1), counts[shared.OutboxStatusPending])

	loaded, err := repo.FindByID(ctx, dead[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "broker down", loaded.LastError)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
