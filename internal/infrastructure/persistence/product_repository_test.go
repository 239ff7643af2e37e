package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
)

// newMockProductRepository creates a GormProductRepository with a mocked SQL connection
func newMockProductRepository(t *testing.T) (*GormProductRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), nil)
	require.NoError(t, err)

	return NewGormProductRepository(gormDB), mock, mockDB
}

func storedProduct(version int) *catalog.Product {
	p := &catalog.Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SKU:               "SKU-00042",
		Name:              "Schraube M4",
		Price:             decimal.RequireFromString("0.25"),
		CostPrice:         decimal.Zero,
		StockQuantity:     10,
	}
	p.Version = version
	return p
}

func TestGormProductRepository_FindByID(t *testing.T) {
	t.Run("finds existing product", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		id := uuid.New()
		rows := sqlmock.NewRows([]string{"id", "version", "sku", "name", "price", "stock_quantity"}).
			AddRow(id.String(), 3, "SKU-00042", "Schraube M4", "0.25", 10)
		mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(id, 1).
			WillReturnRows(rows)

		product, err := repo.FindByID(context.Background(), id)

		require.NoError(t, err)
		assert.Equal(t, id, product.ID)
		assert.Equal(t, 3, product.Version)
		assert.Equal(t, "SKU-00042", product.SKU)
		assert.True(t, product.Price.Equal(decimal.RequireFromString("0.25")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps a missing row to ErrNotFound", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		id := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(id, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		product, err := repo.FindByID(context.Background(), id)

		assert.Nil(t, product)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormProductRepository_SaveWithLock(t *testing.T) {
	t.Run("bumps the version when the stored one matches", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		p := storedProduct(4)
		mock.ExpectExec(`UPDATE "products" SET .*"version"=.* WHERE id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.SaveWithLock(context.Background(), p))
		assert.Equal(t, 5, p.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale version is an optimistic lock failure", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		p := storedProduct(4)
		updatedAt := p.UpdatedAt
		mock.ExpectExec(`UPDATE "products" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "products" WHERE id = \$1`).
			WithArgs(p.ID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		err := repo.SaveWithLock(context.Background(), p)

		assert.ErrorIs(t, err, shared.ErrOptimisticLock)
		assert.Equal(t, 4, p.Version, "a failed save leaves the version alone")
		assert.Equal(t, updatedAt, p.UpdatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		p := storedProduct(1)
		mock.ExpectExec(`UPDATE "products" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "products"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		assert.ErrorIs(t, repo.SaveWithLock(context.Background(), p), shared.ErrNotFound)
	})

	t.Run("database error is passed through", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		p := storedProduct(2)
		mock.ExpectExec(`UPDATE "products" SET`).
			WillReturnError(sql.ErrConnDone)

		assert.ErrorIs(t, repo.SaveWithLock(context.Background(), p), sql.ErrConnDone)
		assert.Equal(t, 2, p.Version)
	})
}

func TestGormProductRepository_LastNumber(t *testing.T) {
	repo, mock, mockDB := newMockProductRepository(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT .*sku.* FROM "products" ORDER BY LENGTH\(sku\) DESC,sku DESC LIMIT`).
		WillReturnRows(sqlmock.NewRows([]string{"sku"}).AddRow("SKU-100000"))

	last, err := repo.LastNumber(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "SKU-100000", last)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormProductRepository_LastNumber_Empty(t *testing.T) {
	repo, mock, mockDB := newMockProductRepository(t)
	defer mockDB.Close()

	mock.ExpectQuery(`FROM "products"`).
		WillReturnRows(sqlmock.NewRows([]string{"sku"}))

	last, err := repo.LastNumber(context.Background())

	require.NoError(t, err)
	assert.Empty(t, last)
}
