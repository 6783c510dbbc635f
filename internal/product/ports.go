package product

import (
	"context"
	"database/sql"

	"bodega/internal/domain"
)

type Service interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id int) (*domain.Product, error)
	Create(ctx context.Context, input CreateProductInput) (*domain.Product, error)
	Update(ctx context.Context, id int, input UpdateProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id int) error
}

type Repository interface {
	FindAll(ctx context.Context) ([]domain.Product, error)
	FindByID(ctx context.Context, id int) (*domain.Product, error)
	Insert(ctx context.Context, p domain.Product) (int, error)
	Update(ctx context.Context, p domain.Product) error
	Delete(ctx context.Context, id int) error
}

// StockAccessor is the catalog contract consumed by the purchase
// transaction core. Both calls run inside the caller's transaction so
// the quantity observed is the authoritative one at decrement time.
type StockAccessor interface {
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int) (*domain.Product, error)
	DecrementStock(ctx context.Context, tx *sql.Tx, id int, quantity int) error
}
