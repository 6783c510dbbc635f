package repository

import (
	"context"
	"database/sql"
	"fmt"

	"bodega/internal/domain"
)

type MySQLPurchaseLineRepository struct {
	db *sql.DB
}

func NewMySQLPurchaseLineRepository(db *sql.DB) *MySQLPurchaseLineRepository {
	return &MySQLPurchaseLineRepository{db: db}
}

// Insert appends a line item inside the checkout transaction. Unit
// price and subtotal are the in-scope snapshots, not current catalog
// values.
func (r *MySQLPurchaseLineRepository) Insert(ctx context.Context, tx *sql.Tx, line domain.PurchaseLine) (int, error) {
	query := `
		INSERT INTO purchase_lines (purchase_id, product_id, quantity, unit_price, subtotal)
		VALUES (?, ?, ?, ?, ?)`

	result, err := tx.ExecContext(ctx, query,
		line.PurchaseID, line.ProductID, line.Quantity, line.UnitPrice, line.Subtotal,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting purchase line: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return int(lastInsertID), nil
}
