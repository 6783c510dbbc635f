package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bodega/internal/domain"
	"bodega/internal/dto"
	apperrors "bodega/internal/errors"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type StockRepository interface {
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int) (*domain.Product, error)
	DecrementStock(ctx context.Context, tx *sql.Tx, id int, quantity int) error
}

type PurchaseRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, userID int, total decimal.Decimal, purchasedAt time.Time) (int, error)
}

type LineRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, line domain.PurchaseLine) (int, error)
}

// CheckoutService runs the purchase transaction: it validates the
// basket against the catalog, computes line subtotals and the total,
// debits stock and appends the ledger rows, all inside one transaction.
// Any failure rolls the whole scope back; no partial purchase survives.
type CheckoutService struct {
	db           TransactionManager
	stockRepo    StockRepository
	purchaseRepo PurchaseRepository
	lineRepo     LineRepository
	logger       *zap.Logger
	txTimeout    time.Duration
}

func NewCheckoutService(
	db TransactionManager,
	stockRepo StockRepository,
	purchaseRepo PurchaseRepository,
	lineRepo LineRepository,
	logger *zap.Logger,
	txTimeout time.Duration,
) *CheckoutService {
	return &CheckoutService{
		db:           db,
		stockRepo:    stockRepo,
		purchaseRepo: purchaseRepo,
		lineRepo:     lineRepo,
		logger:       logger,
		txTimeout:    txTimeout,
	}
}

// Checkout processes basket items in the order the client supplied
// them and short-circuits on the first failing item. Stock is read
// under a row lock inside the transaction, and the decrement re-checks
// the quantity again, so two concurrent purchases of the same low-stock
// product cannot both commit.
func (s *CheckoutService) Checkout(ctx context.Context, userID int, basket []dto.BasketItem) (*domain.Purchase, error) {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}
	// Rollback is a no-op after a successful commit.
	defer tx.Rollback()

	total := decimal.Zero
	lines := make([]domain.PurchaseLine, 0, len(basket))

	for _, item := range basket {
		product, err := s.stockRepo.FindByIDForUpdate(txCtx, tx, item.ProductID)
		if err != nil {
			s.logger.Warn("checkout aborted", zap.Int("userId", userID), zap.Int("productId", item.ProductID), zap.Error(err))
			return nil, err
		}

		if !product.HasStockFor(item.Quantity) {
			s.logger.Warn("checkout aborted: insufficient stock",
				zap.Int("userId", userID),
				zap.Int("productId", product.ID),
				zap.Int("available", product.AvailableQuantity),
				zap.Int("requested", item.Quantity))
			return nil, apperrors.NewInsufficientStockError(product.ID, product.AvailableQuantity, item.Quantity)
		}

		subtotal := product.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(subtotal)

		lines = append(lines, domain.PurchaseLine{
			ProductID:   product.ID,
			ProductName: product.Name,
			LotNumber:   product.LotNumber,
			Quantity:    item.Quantity,
			UnitPrice:   product.UnitPrice,
			Subtotal:    subtotal,
		})
	}

	purchasedAt := time.Now().UTC()

	purchaseID, err := s.purchaseRepo.Insert(txCtx, tx, userID, total, purchasedAt)
	if err != nil {
		s.logger.Error("failed to insert purchase", zap.Int("userId", userID), zap.Error(err))
		return nil, err
	}

	for i := range lines {
		lines[i].PurchaseID = purchaseID

		lineID, err := s.lineRepo.Insert(txCtx, tx, lines[i])
		if err != nil {
			s.logger.Error("failed to insert purchase line",
				zap.Int("purchaseId", purchaseID), zap.Int("productId", lines[i].ProductID), zap.Error(err))
			return nil, err
		}
		lines[i].ID = lineID

		if err := s.stockRepo.DecrementStock(txCtx, tx, lines[i].ProductID, lines[i].Quantity); err != nil {
			s.logger.Error("failed to decrement stock",
				zap.Int("purchaseId", purchaseID), zap.Int("productId", lines[i].ProductID), zap.Error(err))
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit transaction", zap.Int("purchaseId", purchaseID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("purchase committed",
		zap.Int("purchaseId", purchaseID),
		zap.Int("userId", userID),
		zap.Int("lineCount", len(lines)),
		zap.String("total", total.StringFixed(2)))

	return &domain.Purchase{
		ID:          purchaseID,
		UserID:      userID,
		PurchasedAt: purchasedAt,
		Total:       total,
		Lines:       lines,
	}, nil
}
