package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"bodega/internal/auth"
	"bodega/internal/domain"
	"bodega/internal/dto"
	apperrors "bodega/internal/errors"
)

const maxBasketItems = 100

type CheckoutUseCase interface {
	CreatePurchase(ctx context.Context, userID int, basket []dto.BasketItem) (*domain.Purchase, error)
}

type ProjectorUseCase interface {
	ProjectHistory(ctx context.Context, userID int) ([]dto.PurchaseDTO, error)
	ProjectAllHistory(ctx context.Context) ([]dto.PurchaseWithCustomerDTO, error)
	ProjectInvoice(ctx context.Context, purchaseID int, requesterID int, requesterRole string) (*dto.InvoiceDTO, error)
}

type Controller struct {
	checkout  CheckoutUseCase
	projector ProjectorUseCase
	logger    *zap.Logger
}

func NewController(checkout CheckoutUseCase, projector ProjectorUseCase, logger *zap.Logger) *Controller {
	return &Controller{
		checkout:  checkout,
		projector: projector,
		logger:    logger,
	}
}

func (c *Controller) HandleCreate(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		c.writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var req dto.CreatePurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	// Malformed baskets are rejected here, before the transaction core
	// is ever invoked.
	if err := validateCreatePurchaseRequest(req); err != nil {
		ve, _ := apperrors.IsValidationError(err)
		c.writeValidationError(w, ve.Message, ve.Details...)
		return
	}

	purchase, err := c.checkout.CreatePurchase(r.Context(), identity.ID, req.Basket)
	if err != nil {
		c.handleCheckoutError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "purchase completed successfully",
		"data":    toPurchaseDTO(*purchase),
	})
}

func (c *Controller) HandleMyPurchases(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		c.writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	purchases, err := c.projector.ProjectHistory(r.Context(), identity.ID)
	if err != nil {
		c.logger.Error("fetching purchase history failed", zap.Int("userId", identity.ID), zap.Error(err))
		c.writeError(w, http.StatusInternalServerError, "an unexpected error occurred")
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    purchases,
		"count":   len(purchases),
	})
}

func (c *Controller) HandleInvoice(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		c.writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	idStr := chi.URLParam(r, "id")
	purchaseID, err := strconv.Atoi(idStr)
	if err != nil || purchaseID <= 0 {
		c.writeValidationError(w, "invalid purchase id", apperrors.ValidationDetail{
			Field:   "id",
			Message: "id must be a positive integer",
		})
		return
	}

	invoice, err := c.projector.ProjectInvoice(r.Context(), purchaseID, identity.ID, identity.Role)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			c.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		if _, ok := apperrors.IsForbiddenError(err); ok {
			c.writeError(w, http.StatusForbidden, err.Error())
			return
		}
		c.logger.Error("fetching invoice failed", zap.Int("purchaseId", purchaseID), zap.Error(err))
		c.writeError(w, http.StatusInternalServerError, "an unexpected error occurred")
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    invoice,
	})
}

func (c *Controller) HandleAll(w http.ResponseWriter, r *http.Request) {
	purchases, err := c.projector.ProjectAllHistory(r.Context())
	if err != nil {
		c.logger.Error("fetching all purchases failed", zap.Error(err))
		c.writeError(w, http.StatusInternalServerError, "an unexpected error occurred")
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    purchases,
		"count":   len(purchases),
	})
}

func validateCreatePurchaseRequest(req dto.CreatePurchaseRequest) error {
	var details []apperrors.ValidationDetail

	if len(req.Basket) == 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "basket",
			Message: "basket must contain at least one item",
		})
	}

	if len(req.Basket) > maxBasketItems {
		details = append(details, apperrors.ValidationDetail{
			Field:   "basket",
			Message: "basket exceeds maximum of 100 items",
		})
	}

	for idx, item := range req.Basket {
		if item.ProductID <= 0 {
			details = append(details, apperrors.ValidationDetail{
				Field:   "basket[" + strconv.Itoa(idx) + "].productId",
				Message: "productId must be a positive integer",
			})
		}

		if item.Quantity < 1 {
			details = append(details, apperrors.ValidationDetail{
				Field:   "basket[" + strconv.Itoa(idx) + "].quantity",
				Message: "quantity must be a positive integer",
			})
		}
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

func (c *Controller) handleCheckoutError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	if ise, ok := apperrors.IsInsufficientStockError(err); ok {
		c.writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success":   false,
			"message":   ise.Error(),
			"productId": ise.ProductID,
			"available": ise.Available,
			"requested": ise.Requested,
		})
		return
	}

	if _, ok := apperrors.IsDeadlockError(err); ok {
		c.writeError(w, http.StatusConflict, err.Error())
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	c.writeError(w, http.StatusInternalServerError, "an unexpected error occurred")
}

func toPurchaseDTO(p domain.Purchase) dto.PurchaseDTO {
	lines := make([]dto.PurchaseLineDTO, 0, len(p.Lines))
	for _, line := range p.Lines {
		lines = append(lines, dto.PurchaseLineDTO{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			LotNumber:   line.LotNumber,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Subtotal:    line.Subtotal,
		})
	}
	return dto.PurchaseDTO{
		ID:          p.ID,
		UserID:      p.UserID,
		PurchasedAt: p.PurchasedAt,
		Total:       p.Total,
		Lines:       lines,
	}
}

func (c *Controller) writeValidationError(w http.ResponseWriter, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, map[string]interface{}{
		"success": false,
		"message": message,
		"errors":  details,
	})
}

func (c *Controller) writeError(w http.ResponseWriter, status int, message string) {
	c.writeJSON(w, status, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

func (c *Controller) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
