package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bodega/internal/auth"
	"bodega/internal/domain"
	"bodega/internal/dto"
	apperrors "bodega/internal/errors"
)

type mockCheckoutUseCase struct {
	createPurchaseFunc func(ctx context.Context, userID int, basket []dto.BasketItem) (*domain.Purchase, error)
}

func (m *mockCheckoutUseCase) CreatePurchase(ctx context.Context, userID int, basket []dto.BasketItem) (*domain.Purchase, error) {
	return m.createPurchaseFunc(ctx, userID, basket)
}

type mockProjectorUseCase struct {
	projectHistoryFunc    func(ctx context.Context, userID int) ([]dto.PurchaseDTO, error)
	projectAllHistoryFunc func(ctx context.Context) ([]dto.PurchaseWithCustomerDTO, error)
	projectInvoiceFunc    func(ctx context.Context, purchaseID, requesterID int, requesterRole string) (*dto.InvoiceDTO, error)
}

func (m *mockProjectorUseCase) ProjectHistory(ctx context.Context, userID int) ([]dto.PurchaseDTO, error) {
	return m.projectHistoryFunc(ctx, userID)
}

func (m *mockProjectorUseCase) ProjectAllHistory(ctx context.Context) ([]dto.PurchaseWithCustomerDTO, error) {
	return m.projectAllHistoryFunc(ctx)
}

func (m *mockProjectorUseCase) ProjectInvoice(ctx context.Context, purchaseID, requesterID int, requesterRole string) (*dto.InvoiceDTO, error) {
	return m.projectInvoiceFunc(ctx, purchaseID, requesterID, requesterRole)
}

func authenticatedRequest(method, target string, body []byte, identity auth.Identity) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	return req.WithContext(auth.ContextWithIdentity(req.Context(), identity))
}

func clienteIdentity() auth.Identity {
	return auth.Identity{ID: 3, Name: "Maria Garcia", Email: "maria@cliente.com", Role: domain.RoleCliente}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandleCreate_Success(t *testing.T) {
	var gotUserID int
	var gotBasket []dto.BasketItem
	checkout := &mockCheckoutUseCase{
		createPurchaseFunc: func(ctx context.Context, userID int, basket []dto.BasketItem) (*domain.Purchase, error) {
			gotUserID = userID
			gotBasket = basket
			return &domain.Purchase{
				ID:          10,
				UserID:      userID,
				PurchasedAt: time.Date(2025, 11, 20, 10, 0, 0, 0, time.UTC),
				Total:       decimal.RequireFromString("199.98"),
				Lines: []domain.PurchaseLine{
					{ProductID: 2, ProductName: "Mouse", LotNumber: "LOT-2025-002", Quantity: 2,
						UnitPrice: decimal.RequireFromString("99.99"), Subtotal: decimal.RequireFromString("199.98")},
				},
			}, nil
		},
	}
	ctrl := NewController(checkout, &mockProjectorUseCase{}, zap.NewNop())

	body := []byte(`{"basket":[{"productId":2,"quantity":2}]}`)
	req := authenticatedRequest(http.MethodPost, "/api/purchases", body, clienteIdentity())
	rec := httptest.NewRecorder()

	ctrl.HandleCreate(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 3, gotUserID)
	assert.Equal(t, []dto.BasketItem{{ProductID: 2, Quantity: 2}}, gotBasket)

	resp := decodeBody(t, rec)
	assert.Equal(t, true, resp["success"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(10), data["id"])
	assert.Equal(t, "199.98", data["total"])
}

func TestHandleCreate_MissingIdentity(t *testing.T) {
	ctrl := NewController(&mockCheckoutUseCase{}, &mockProjectorUseCase{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/purchases", bytes.NewReader([]byte(`{"basket":[]}`)))
	rec := httptest.NewRecorder()

	ctrl.HandleCreate(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleCreate_InvalidJSON(t *testing.T) {
	called := false
	checkout := &mockCheckoutUseCase{
		createPurchaseFunc: func(ctx context.Context, userID int, basket []dto.BasketItem) (*domain.Purchase, error) {
			called = true
			return nil, nil
		},
	}
	ctrl := NewController(checkout, &mockProjectorUseCase{}, zap.NewNop())

	req := authenticatedRequest(http.MethodPost, "/api/purchases", []byte(`{not json`), clienteIdentity())
	rec := httptest.NewRecorder()

	ctrl.HandleCreate(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, called)
}

func TestHandleCreate_EmptyBasket(t *testing.T) {
	called := false
	checkout := &mockCheckoutUseCase{
		createPurchaseFunc: func(ctx context.Context, userID int, basket []dto.BasketItem) (*domain.Purchase, error) {
			called = true
			return nil, nil
		},
	}
	ctrl := NewController(checkout, &mockProjectorUseCase{}, zap.NewNop())

	req := authenticatedRequest(http.MethodPost, "/api/purchases", []byte(`{"basket":[]}`), clienteIdentity())
	rec := httptest.NewRecorder()

	ctrl.HandleCreate(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, called, "usecase must not run for an invalid basket")

	resp := decodeBody(t, rec)
	assert.Equal(t, false, resp["success"])
	assert.NotEmpty(t, resp["errors"])
}

func TestHandleCreate_NonPositiveQuantity(t *testing.T) {
	called := false
	checkout := &mockCheckoutUseCase{
		createPurchaseFunc: func(ctx context.Context, userID int, basket []dto.BasketItem) (*domain.Purchase, error) {
			called = true
			return nil, nil
		},
	}
	ctrl := NewController(checkout, &mockProjectorUseCase{}, zap.NewNop())

	body := []byte(`{"basket":[{"productId":2,"quantity":0}]}`)
	req := authenticatedRequest(http.MethodPost, "/api/purchases", body, clienteIdentity())
	rec := httptest.NewRecorder()

	ctrl.HandleCreate(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, called)
}

func TestHandleCreate_UnknownProduct(t *testing.T) {
	checkout := &mockCheckoutUseCase{
		createPurchaseFunc: func(ctx context.Context, userID int, basket []dto.BasketItem) (*domain.Purchase, error) {
			return nil, apperrors.NewNotFoundError("product 999 not found")
		},
	}
	ctrl := NewController(checkout, &mockProjectorUseCase{}, zap.NewNop())

	body := []byte(`{"basket":[{"productId":999,"quantity":1}]}`)
	req := authenticatedRequest(http.MethodPost, "/api/purchases", body, clienteIdentity())
	rec := httptest.NewRecorder()

	ctrl.HandleCreate(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleCreate_InsufficientStock(t *testing.T) {
	checkout := &mockCheckoutUseCase{
		createPurchaseFunc: func(ctx context.Context, userID int, basket []dto.BasketItem) (*domain.Purchase, error) {
			return nil, apperrors.NewInsufficientStockError(2, 1, 4)
		},
	}
	ctrl := NewController(checkout, &mockProjectorUseCase{}, zap.NewNop())

	body := []byte(`{"basket":[{"productId":2,"quantity":4}]}`)
	req := authenticatedRequest(http.MethodPost, "/api/purchases", body, clienteIdentity())
	rec := httptest.NewRecorder()

	ctrl.HandleCreate(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeBody(t, rec)
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, float64(2), resp["productId"])
	assert.Equal(t, float64(1), resp["available"])
	assert.Equal(t, float64(4), resp["requested"])
}

func TestHandleCreate_DeadlockExhausted(t *testing.T) {
	checkout := &mockCheckoutUseCase{
		createPurchaseFunc: func(ctx context.Context, userID int, basket []dto.BasketItem) (*domain.Purchase, error) {
			return nil, apperrors.NewDeadlockError("max retries exceeded")
		},
	}
	ctrl := NewController(checkout, &mockProjectorUseCase{}, zap.NewNop())

	body := []byte(`{"basket":[{"productId":2,"quantity":1}]}`)
	req := authenticatedRequest(http.MethodPost, "/api/purchases", body, clienteIdentity())
	rec := httptest.NewRecorder()

	ctrl.HandleCreate(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleMyPurchases_ReturnsCount(t *testing.T) {
	projector := &mockProjectorUseCase{
		projectHistoryFunc: func(ctx context.Context, userID int) ([]dto.PurchaseDTO, error) {
			return []dto.PurchaseDTO{{ID: 11}, {ID: 10}}, nil
		},
	}
	ctrl := NewController(&mockCheckoutUseCase{}, projector, zap.NewNop())

	req := authenticatedRequest(http.MethodGet, "/api/purchases/my-purchases", nil, clienteIdentity())
	rec := httptest.NewRecorder()

	ctrl.HandleMyPurchases(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, float64(2), resp["count"])
}

func invoiceRequest(purchaseID string, identity auth.Identity) *http.Request {
	req := authenticatedRequest(http.MethodGet, "/api/purchases/invoice/"+purchaseID, nil, identity)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", purchaseID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestHandleInvoice_Success(t *testing.T) {
	projector := &mockProjectorUseCase{
		projectInvoiceFunc: func(ctx context.Context, purchaseID, requesterID int, requesterRole string) (*dto.InvoiceDTO, error) {
			assert.Equal(t, 10, purchaseID)
			assert.Equal(t, 3, requesterID)
			assert.Equal(t, domain.RoleCliente, requesterRole)
			return &dto.InvoiceDTO{ID: purchaseID, Total: decimal.RequireFromString("199.98")}, nil
		},
	}
	ctrl := NewController(&mockCheckoutUseCase{}, projector, zap.NewNop())

	rec := httptest.NewRecorder()
	ctrl.HandleInvoice(rec, invoiceRequest("10", clienteIdentity()))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleInvoice_NotFound(t *testing.T) {
	projector := &mockProjectorUseCase{
		projectInvoiceFunc: func(ctx context.Context, purchaseID, requesterID int, requesterRole string) (*dto.InvoiceDTO, error) {
			return nil, apperrors.NewNotFoundError("purchase not found")
		},
	}
	ctrl := NewController(&mockCheckoutUseCase{}, projector, zap.NewNop())

	rec := httptest.NewRecorder()
	ctrl.HandleInvoice(rec, invoiceRequest("999", clienteIdentity()))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleInvoice_Forbidden(t *testing.T) {
	projector := &mockProjectorUseCase{
		projectInvoiceFunc: func(ctx context.Context, purchaseID, requesterID int, requesterRole string) (*dto.InvoiceDTO, error) {
			return nil, apperrors.NewForbiddenError("you are not allowed to view this invoice")
		},
	}
	ctrl := NewController(&mockCheckoutUseCase{}, projector, zap.NewNop())

	rec := httptest.NewRecorder()
	ctrl.HandleInvoice(rec, invoiceRequest("10", clienteIdentity()))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandleInvoice_InvalidID(t *testing.T) {
	ctrl := NewController(&mockCheckoutUseCase{}, &mockProjectorUseCase{}, zap.NewNop())

	rec := httptest.NewRecorder()
	ctrl.HandleInvoice(rec, invoiceRequest("abc", clienteIdentity()))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAll_ReturnsEveryPurchase(t *testing.T) {
	projector := &mockProjectorUseCase{
		projectAllHistoryFunc: func(ctx context.Context) ([]dto.PurchaseWithCustomerDTO, error) {
			return []dto.PurchaseWithCustomerDTO{
				{ID: 12, Customer: dto.CustomerDTO{ID: 3, Name: "Maria Garcia", Email: "maria@cliente.com"}},
			}, nil
		},
	}
	ctrl := NewController(&mockCheckoutUseCase{}, projector, zap.NewNop())

	admin := auth.Identity{ID: 1, Name: "Admin", Email: "admin@inventario.com", Role: domain.RoleAdmin}
	req := authenticatedRequest(http.MethodGet, "/api/purchases/all", nil, admin)
	rec := httptest.NewRecorder()

	ctrl.HandleAll(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, float64(1), resp["count"])
}
