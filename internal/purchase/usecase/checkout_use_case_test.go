package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bodega/internal/domain"
	"bodega/internal/dto"
	apperrors "bodega/internal/errors"
)

type mockCheckoutService struct {
	checkoutFunc func(ctx context.Context, userID int, basket []dto.BasketItem) (*domain.Purchase, error)
}

func (m *mockCheckoutService) Checkout(ctx context.Context, userID int, basket []dto.BasketItem) (*domain.Purchase, error) {
	return m.checkoutFunc(ctx, userID, basket)
}

func createDeadlockError() error {
	return &mysql.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"}
}

func TestCreatePurchase_Success(t *testing.T) {
	expected := &domain.Purchase{ID: 1, UserID: 5, Total: decimal.RequireFromString("199.98")}
	svc := &mockCheckoutService{
		checkoutFunc: func(ctx context.Context, userID int, basket []dto.BasketItem) (*domain.Purchase, error) {
			return expected, nil
		},
	}
	uc := NewCheckoutUseCase(svc, zap.NewNop(), 3)

	purchase, err := uc.CreatePurchase(context.Background(), 5, []dto.BasketItem{{ProductID: 2, Quantity: 2}})

	require.NoError(t, err)
	assert.Equal(t, expected, purchase)
}

func TestCreatePurchase_RetriesOnDeadlock(t *testing.T) {
	attempts := 0
	expected := &domain.Purchase{ID: 1, UserID: 5}
	svc := &mockCheckoutService{
		checkoutFunc: func(ctx context.Context, userID int, basket []dto.BasketItem) (*domain.Purchase, error) {
			attempts++
			if attempts < 3 {
				return nil, createDeadlockError()
			}
			return expected, nil
		},
	}
	uc := NewCheckoutUseCase(svc, zap.NewNop(), 3)

	purchase, err := uc.CreatePurchase(context.Background(), 5, []dto.BasketItem{{ProductID: 2, Quantity: 1}})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, expected, purchase)
}

func TestCreatePurchase_ExhaustsRetries(t *testing.T) {
	attempts := 0
	svc := &mockCheckoutService{
		checkoutFunc: func(ctx context.Context, userID int, basket []dto.BasketItem) (*domain.Purchase, error) {
			attempts++
			return nil, createDeadlockError()
		},
	}
	uc := NewCheckoutUseCase(svc, zap.NewNop(), 3)

	_, err := uc.CreatePurchase(context.Background(), 5, []dto.BasketItem{{ProductID: 2, Quantity: 1}})

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	_, ok := apperrors.IsDeadlockError(err)
	assert.True(t, ok, "expected deadlock error after exhausting retries, got %v", err)
}

func TestCreatePurchase_LockWaitTimeoutIsRetried(t *testing.T) {
	attempts := 0
	svc := &mockCheckoutService{
		checkoutFunc: func(ctx context.Context, userID int, basket []dto.BasketItem) (*domain.Purchase, error) {
			attempts++
			if attempts == 1 {
				return nil, &mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"}
			}
			return &domain.Purchase{ID: 1}, nil
		},
	}
	uc := NewCheckoutUseCase(svc, zap.NewNop(), 3)

	_, err := uc.CreatePurchase(context.Background(), 5, []dto.BasketItem{{ProductID: 2, Quantity: 1}})

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestCreatePurchase_BusinessErrorsAreNotRetried(t *testing.T) {
	attempts := 0
	svc := &mockCheckoutService{
		checkoutFunc: func(ctx context.Context, userID int, basket []dto.BasketItem) (*domain.Purchase, error) {
			attempts++
			return nil, apperrors.NewInsufficientStockError(2, 1, 4)
		},
	}
	uc := NewCheckoutUseCase(svc, zap.NewNop(), 3)

	_, err := uc.CreatePurchase(context.Background(), 5, []dto.BasketItem{{ProductID: 2, Quantity: 4}})

	require.Error(t, err)
	assert.Equal(t, 1, attempts, "insufficient stock must not be retried")
	ise, ok := apperrors.IsInsufficientStockError(err)
	require.True(t, ok)
	assert.Equal(t, 1, ise.Available)
	assert.Equal(t, 4, ise.Requested)
}

func TestCreatePurchase_UnknownErrorPassesThrough(t *testing.T) {
	cause := errors.New("connection refused")
	svc := &mockCheckoutService{
		checkoutFunc: func(ctx context.Context, userID int, basket []dto.BasketItem) (*domain.Purchase, error) {
			return nil, cause
		},
	}
	uc := NewCheckoutUseCase(svc, zap.NewNop(), 3)

	_, err := uc.CreatePurchase(context.Background(), 5, []dto.BasketItem{{ProductID: 2, Quantity: 1}})

	assert.Equal(t, cause, err)
}
