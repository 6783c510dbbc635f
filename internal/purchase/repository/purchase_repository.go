package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"bodega/internal/domain"
	apperrors "bodega/internal/errors"
)

type MySQLPurchaseRepository struct {
	db *sql.DB
}

func NewMySQLPurchaseRepository(db *sql.DB) *MySQLPurchaseRepository {
	return &MySQLPurchaseRepository{db: db}
}

// Insert appends a purchase header inside the checkout transaction.
func (r *MySQLPurchaseRepository) Insert(ctx context.Context, tx *sql.Tx, userID int, total decimal.Decimal, purchasedAt time.Time) (int, error) {
	query := `INSERT INTO purchases (user_id, purchased_at, total) VALUES (?, ?, ?)`

	result, err := tx.ExecContext(ctx, query, userID, purchasedAt, total)
	if err != nil {
		return 0, fmt.Errorf("inserting purchase: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return int(lastInsertID), nil
}

func (r *MySQLPurchaseRepository) FindByID(ctx context.Context, id int) (*domain.Purchase, error) {
	query := `
		SELECT id, user_id, purchased_at, total, created_at, updated_at
		FROM purchases
		WHERE id = ?`

	var p domain.Purchase
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.UserID, &p.PurchasedAt, &p.Total, &p.CreatedAt, &p.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("purchase with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying purchase by id: %w", err)
	}

	if err := r.loadLines(ctx, []*domain.Purchase{&p}); err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *MySQLPurchaseRepository) FindByIDWithCustomer(ctx context.Context, id int) (*domain.PurchaseWithCustomer, error) {
	query := `
		SELECT p.id, p.user_id, p.purchased_at, p.total, p.created_at, p.updated_at,
		       u.id, u.name, u.email
		FROM purchases p
		JOIN users u ON u.id = p.user_id
		WHERE p.id = ?`

	var pwc domain.PurchaseWithCustomer
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&pwc.ID, &pwc.UserID, &pwc.PurchasedAt, &pwc.Total, &pwc.CreatedAt, &pwc.UpdatedAt,
		&pwc.Customer.ID, &pwc.Customer.Name, &pwc.Customer.Email,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("purchase with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying purchase by id: %w", err)
	}

	if err := r.loadLines(ctx, []*domain.Purchase{&pwc.Purchase}); err != nil {
		return nil, err
	}

	return &pwc, nil
}

func (r *MySQLPurchaseRepository) FindByUser(ctx context.Context, userID int) ([]domain.Purchase, error) {
	query := `
		SELECT id, user_id, purchased_at, total, created_at, updated_at
		FROM purchases
		WHERE user_id = ?
		ORDER BY purchased_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying purchases by user: %w", err)
	}
	defer rows.Close()

	var purchases []domain.Purchase
	for rows.Next() {
		var p domain.Purchase
		err := rows.Scan(&p.ID, &p.UserID, &p.PurchasedAt, &p.Total, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning purchase row: %w", err)
		}
		purchases = append(purchases, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating purchase rows: %w", err)
	}

	refs := make([]*domain.Purchase, len(purchases))
	for i := range purchases {
		refs[i] = &purchases[i]
	}
	if err := r.loadLines(ctx, refs); err != nil {
		return nil, err
	}

	return purchases, nil
}

func (r *MySQLPurchaseRepository) FindAllWithCustomer(ctx context.Context) ([]domain.PurchaseWithCustomer, error) {
	query := `
		SELECT p.id, p.user_id, p.purchased_at, p.total, p.created_at, p.updated_at,
		       u.id, u.name, u.email
		FROM purchases p
		JOIN users u ON u.id = p.user_id
		ORDER BY p.purchased_at DESC, p.id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying all purchases: %w", err)
	}
	defer rows.Close()

	var purchases []domain.PurchaseWithCustomer
	for rows.Next() {
		var pwc domain.PurchaseWithCustomer
		err := rows.Scan(
			&pwc.ID, &pwc.UserID, &pwc.PurchasedAt, &pwc.Total, &pwc.CreatedAt, &pwc.UpdatedAt,
			&pwc.Customer.ID, &pwc.Customer.Name, &pwc.Customer.Email,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning purchase row: %w", err)
		}
		purchases = append(purchases, pwc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating purchase rows: %w", err)
	}

	refs := make([]*domain.Purchase, len(purchases))
	for i := range purchases {
		refs[i] = &purchases[i].Purchase
	}
	if err := r.loadLines(ctx, refs); err != nil {
		return nil, err
	}

	return purchases, nil
}

// loadLines attaches line items (with product snapshots) to the given
// purchases in one query.
func (r *MySQLPurchaseRepository) loadLines(ctx context.Context, purchases []*domain.Purchase) error {
	if len(purchases) == 0 {
		return nil
	}

	placeholders := make([]string, len(purchases))
	args := make([]interface{}, 0, len(purchases))
	byID := make(map[int]*domain.Purchase, len(purchases))
	for i, p := range purchases {
		placeholders[i] = "?"
		args = append(args, p.ID)
		byID[p.ID] = p
	}

	query := fmt.Sprintf(`
		SELECT pl.id, pl.purchase_id, pl.product_id, pr.name, pr.lot_number,
		       pl.quantity, pl.unit_price, pl.subtotal
		FROM purchase_lines pl
		JOIN products pr ON pr.id = pl.product_id
		WHERE pl.purchase_id IN (%s)
		ORDER BY pl.id`,
		strings.Join(placeholders, ", "),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("querying purchase lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.PurchaseLine
		err := rows.Scan(
			&line.ID, &line.PurchaseID, &line.ProductID, &line.ProductName, &line.LotNumber,
			&line.Quantity, &line.UnitPrice, &line.Subtotal,
		)
		if err != nil {
			return fmt.Errorf("scanning purchase line row: %w", err)
		}
		if p, ok := byID[line.PurchaseID]; ok {
			p.Lines = append(p.Lines, line)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating purchase line rows: %w", err)
	}

	return nil
}
