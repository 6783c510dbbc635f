package usecase

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"bodega/internal/domain"
	"bodega/internal/dto"
	apperrors "bodega/internal/errors"
)

type CheckoutService interface {
	Checkout(ctx context.Context, userID int, basket []dto.BasketItem) (*domain.Purchase, error)
}

type CheckoutUseCase struct {
	checkoutSvc      CheckoutService
	logger           *zap.Logger
	maxRetryAttempts int
}

func NewCheckoutUseCase(checkoutSvc CheckoutService, logger *zap.Logger, maxRetryAttempts int) *CheckoutUseCase {
	return &CheckoutUseCase{
		checkoutSvc:      checkoutSvc,
		logger:           logger,
		maxRetryAttempts: maxRetryAttempts,
	}
}

// CreatePurchase runs the checkout, retrying on MySQL deadlocks. Basket
// items keep the client-supplied order, so two baskets listing the same
// products in opposite order can deadlock; the bounded retry absorbs
// that instead of reordering the basket.
func (uc *CheckoutUseCase) CreatePurchase(ctx context.Context, userID int, basket []dto.BasketItem) (*domain.Purchase, error) {
	uc.logger.Info("checkout started", zap.Int("userId", userID), zap.Int("itemCount", len(basket)))

	maxAttempts := uc.maxRetryAttempts
	backoffs := []time.Duration{0, 100 * time.Millisecond, 200 * time.Millisecond}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		purchase, err := uc.checkoutSvc.Checkout(ctx, userID, basket)
		if err == nil {
			return purchase, nil
		}

		if isDeadlockError(err) {
			if attempt < maxAttempts {
				backoff := backoffs[(attempt-1)%len(backoffs)]
				jitter := time.Duration(float64(backoff) * (0.8 + rand.Float64()*0.4))
				time.Sleep(jitter)
				uc.logger.Warn("deadlock detected, retrying",
					zap.Int("attempt", attempt), zap.Int("maxAttempts", maxAttempts), zap.Int("userId", userID))
				continue
			}
			break
		}

		return nil, err
	}

	return nil, apperrors.NewDeadlockError("max retries exceeded")
}

func isDeadlockError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1213 || mysqlErr.Number == 1205
	}
	return false
}
