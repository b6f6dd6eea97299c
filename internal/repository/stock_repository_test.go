package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStockMock(t *testing.T) (StockRepository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return NewStockRepository(sqlx.NewDb(mockDB, "pgx")), mock
}

func TestStockCreate(t *testing.T) {
	repo, mock := newStockMock(t)

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO stock_items`).
		WithArgs("Match ball T2", "equipment", 24, decimal.NewFromFloat(34.90)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "updated_at"}).AddRow("item-1", now))

	item := &StockItem{
		Name:      "Match ball T2",
		Category:  "equipment",
		Quantity:  24,
		UnitPrice: decimal.NewFromFloat(34.90),
	}
	require.NoError(t, repo.Create(context.Background(), item))
	assert.Equal(t, "item-1", item.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockFindByID_NotFoundIsNilNil(t *testing.T) {
	repo, mock := newStockMock(t)

	mock.ExpectQuery(`SELECT id, name, category, quantity, unit_price, updated_at`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	item, err := repo.FindByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, item)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockFindAll(t *testing.T) {
	repo, mock := newStockMock(t)

	rows := sqlmock.NewRows([]string{"id", "name", "category", "quantity", "unit_price", "updated_at"}).
		AddRow("item-1", "Match ball T2", "equipment", 24, "34.90", time.Now()).
		AddRow("item-2", "Home jersey", "merchandising", 60, "42.00", time.Now())
	mock.ExpectQuery(`SELECT id, name, category, quantity, unit_price, updated_at`).
		WillReturnRows(rows)

	items, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Match ball T2", items[0].Name)
	assert.True(t, items[0].UnitPrice.Equal(decimal.NewFromFloat(34.90)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockAdjustQuantity(t *testing.T) {
	repo, mock := newStockMock(t)

	mock.ExpectExec(`UPDATE stock_items`).
		WithArgs("item-1", -3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.AdjustQuantity(context.Background(), "item-1", -3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockAdjustQuantity_GuardedAgainstNegativeStock(t *testing.T) {
	repo, mock := newStockMock(t)

	// The WHERE clause refuses deltas that would take quantity below zero,
	// so no row matches and the repo reports ErrNoRows.
	mock.ExpectExec(`UPDATE stock_items`).
		WithArgs("item-1", -100).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.AdjustQuantity(context.Background(), "item-1", -100)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockDelete(t *testing.T) {
	repo, mock := newStockMock(t)

	mock.ExpectExec(`DELETE FROM stock_items`).
		WithArgs("item-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "item-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
