package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// StockItem is a piece of club equipment or shop merchandise
type StockItem struct {
	ID        string          `db:"id"`
	Name      string          `db:"name"`
	Category  string          `db:"category"`
	Quantity  int             `db:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price"`
	UpdatedAt time.Time       `db:"updated_at"`
}

// StockRepository defines stock data operations
type StockRepository interface {
	Create(ctx context.Context, item *StockItem) error
	FindByID(ctx context.Context, id string) (*StockItem, error)
	FindAll(ctx context.Context) ([]*StockItem, error)
	Update(ctx context.Context, item *StockItem) error
	AdjustQuantity(ctx context.Context, id string, delta int) error
	Delete(ctx context.Context, id string) error
}

type sqlStockRepository struct {
	db *sqlx.DB
}

// NewStockRepository creates a new sqlx-backed stock repository
func NewStockRepository(db *sqlx.DB) StockRepository {
	return &sqlStockRepository{db: db}
}

func (r *sqlStockRepository) Create(ctx context.Context, item *StockItem) error {
	query := `
		INSERT INTO stock_items (name, category, quantity, unit_price)
		VALUES ($1, $2, $3, $4)
		RETURNING id, updated_at
	`
	return r.db.QueryRowContext(ctx, query,
		item.Name, item.Category, item.Quantity, item.UnitPrice,
	).Scan(&item.ID, &item.UpdatedAt)
}

func (r *sqlStockRepository) FindByID(ctx context.Context, id string) (*StockItem, error) {
	query := `
		SELECT id, name, category, quantity, unit_price, updated_at
		FROM stock_items WHERE id = $1
	`
	item := &StockItem{}
	err := r.db.GetContext(ctx, item, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *sqlStockRepository) FindAll(ctx context.Context) ([]*StockItem, error) {
	query := `
		SELECT id, name, category, quantity, unit_price, updated_at
		FROM stock_items
		ORDER BY category, name
	`
	var items []*StockItem
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *sqlStockRepository) Update(ctx context.Context, item *StockItem) error {
	query := `
		UPDATE stock_items
		SET name = $2, category = $3, quantity = $4, unit_price = $5, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query,
		item.ID, item.Name, item.Category, item.Quantity, item.UnitPrice,
	)
	return err
}

func (r *sqlStockRepository) AdjustQuantity(ctx context.Context, id string, delta int) error {
	query := `
		UPDATE stock_items
		SET quantity = quantity + $2, updated_at = NOW()
		WHERE id = $1 AND quantity + $2 >= 0
	`
	result, err := r.db.ExecContext(ctx, query, id, delta)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *sqlStockRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM stock_items WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
