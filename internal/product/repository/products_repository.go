package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"bodega/internal/domain"
	apperrors "bodega/internal/errors"
)

const (
	mysqlErrDuplicateEntry  = 1062
	mysqlErrRowIsReferenced = 1451
)

type MySQLRepository struct {
	db *sql.DB
}

func NewMySQLRepository(db *sql.DB) *MySQLRepository {
	return &MySQLRepository{db: db}
}

func (r *MySQLRepository) FindAll(ctx context.Context) ([]domain.Product, error) {
	query := `
		SELECT id, lot_number, name, unit_price, available_quantity, entry_date,
		       created_at, updated_at
		FROM products
		ORDER BY entry_date DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		err := rows.Scan(
			&p.ID, &p.LotNumber, &p.Name, &p.UnitPrice, &p.AvailableQuantity,
			&p.EntryDate, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning product row: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating product rows: %w", err)
	}

	return products, nil
}

func (r *MySQLRepository) FindByID(ctx context.Context, id int) (*domain.Product, error) {
	query := `
		SELECT id, lot_number, name, unit_price, available_quantity, entry_date,
		       created_at, updated_at
		FROM products
		WHERE id = ?`

	var p domain.Product
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.LotNumber, &p.Name, &p.UnitPrice, &p.AvailableQuantity,
		&p.EntryDate, &p.CreatedAt, &p.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("product with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying product by id: %w", err)
	}

	return &p, nil
}

func (r *MySQLRepository) Insert(ctx context.Context, p domain.Product) (int, error) {
	query := `
		INSERT INTO products (lot_number, name, unit_price, available_quantity, entry_date)
		VALUES (?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		p.LotNumber, p.Name, p.UnitPrice, p.AvailableQuantity, p.EntryDate,
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return 0, apperrors.NewConflictError(fmt.Sprintf("lot number %s already exists", p.LotNumber))
		}
		return 0, fmt.Errorf("inserting product: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return int(lastInsertID), nil
}

func (r *MySQLRepository) Update(ctx context.Context, p domain.Product) error {
	query := `
		UPDATE products
		SET lot_number = ?, name = ?, unit_price = ?, available_quantity = ?, entry_date = ?
		WHERE id = ?`

	_, err := r.db.ExecContext(ctx, query,
		p.LotNumber, p.Name, p.UnitPrice, p.AvailableQuantity, p.EntryDate, p.ID,
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return apperrors.NewConflictError(fmt.Sprintf("lot number %s already exists", p.LotNumber))
		}
		return fmt.Errorf("updating product: %w", err)
	}

	return nil
}

func (r *MySQLRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		// Purchase lines reference products; a purchased product cannot
		// be deleted without breaking its invoices.
		if isRowReferenced(err) {
			return apperrors.NewConflictError(fmt.Sprintf("product with id %d is referenced by existing purchases", id))
		}
		return fmt.Errorf("deleting product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("product with id %d not found", id))
	}

	return nil
}

// FindByIDForUpdate reads a product under a row lock. It must be called
// inside the checkout transaction.
func (r *MySQLRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int) (*domain.Product, error) {
	query := `
		SELECT id, lot_number, name, unit_price, available_quantity, entry_date,
		       created_at, updated_at
		FROM products
		WHERE id = ?
		FOR UPDATE`

	var p domain.Product
	err := tx.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.LotNumber, &p.Name, &p.UnitPrice, &p.AvailableQuantity,
		&p.EntryDate, &p.CreatedAt, &p.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("product with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying product for update: %w", err)
	}

	return &p, nil
}

// DecrementStock debits available quantity inside the transaction. The
// quantity guard re-checks stock at decrement time, so a concurrent
// purchase that drained the row between validation and mutation fails
// here instead of driving the quantity negative.
func (r *MySQLRepository) DecrementStock(ctx context.Context, tx *sql.Tx, id int, quantity int) error {
	query := `
		UPDATE products
		SET available_quantity = available_quantity - ?
		WHERE id = ? AND available_quantity >= ?`

	result, err := tx.ExecContext(ctx, query, quantity, id, quantity)
	if err != nil {
		return fmt.Errorf("decrementing stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		var available int
		err := tx.QueryRowContext(ctx, `SELECT available_quantity FROM products WHERE id = ?`, id).Scan(&available)
		if err == sql.ErrNoRows {
			return apperrors.NewNotFoundError(fmt.Sprintf("product with id %d not found", id))
		}
		if err != nil {
			return fmt.Errorf("re-reading stock: %w", err)
		}
		return apperrors.NewInsufficientStockError(id, available, quantity)
	}

	return nil
}

func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrDuplicateEntry
}

func isRowReferenced(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrRowIsReferenced
}
