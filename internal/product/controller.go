package product

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "bodega/internal/errors"
)

type Controller struct {
	service Service
	logger  *zap.Logger
}

func NewController(service Service, logger *zap.Logger) *Controller {
	return &Controller{
		service: service,
		logger:  logger,
	}
}

func (c *Controller) HandleList(w http.ResponseWriter, r *http.Request) {
	products, err := c.service.List(r.Context())
	if err != nil {
		c.handleServiceError(w, err, c.logger)
		return
	}

	dtos := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		dtos = append(dtos, toProductDTO(p))
	}

	c.writeJSON(w, http.StatusOK, ProductListResponse{
		Success: true,
		Data:    dtos,
		Count:   len(dtos),
	})
}

func (c *Controller) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := c.parseID(w, r)
	if !ok {
		return
	}

	p, err := c.service.Get(r.Context(), id)
	if err != nil {
		c.handleServiceError(w, err, c.logger)
		return
	}

	c.writeJSON(w, http.StatusOK, ProductResponse{
		Success: true,
		Data:    toProductDTO(*p),
	})
}

func (c *Controller) HandleCreate(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	input, err := validateCreateRequest(req)
	if err != nil {
		ve, _ := apperrors.IsValidationError(err)
		c.writeValidationError(w, ve.Message, ve.Details...)
		return
	}

	p, err := c.service.Create(r.Context(), *input)
	if err != nil {
		c.handleServiceError(w, err, logger)
		return
	}

	logger.Info("product created", zap.Int("productId", p.ID), zap.String("lotNumber", p.LotNumber))

	c.writeJSON(w, http.StatusCreated, ProductResponse{
		Success: true,
		Message: "product created successfully",
		Data:    toProductDTO(*p),
	})
}

func (c *Controller) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	id, ok := c.parseID(w, r)
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	input, err := validateUpdateRequest(req)
	if err != nil {
		ve, _ := apperrors.IsValidationError(err)
		c.writeValidationError(w, ve.Message, ve.Details...)
		return
	}

	p, err := c.service.Update(r.Context(), id, *input)
	if err != nil {
		c.handleServiceError(w, err, logger)
		return
	}

	logger.Info("product updated", zap.Int("productId", p.ID))

	c.writeJSON(w, http.StatusOK, ProductResponse{
		Success: true,
		Message: "product updated successfully",
		Data:    toProductDTO(*p),
	})
}

func (c *Controller) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := c.parseID(w, r)
	if !ok {
		return
	}

	if err := c.service.Delete(r.Context(), id); err != nil {
		c.handleServiceError(w, err, c.logger)
		return
	}

	c.logger.Info("product deleted", zap.Int("productId", id))

	c.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "product deleted successfully",
	})
}

func validateCreateRequest(req CreateProductRequest) (*CreateProductInput, error) {
	var details []apperrors.ValidationDetail

	if req.LotNumber == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "lotNumber",
			Message: "lotNumber is required",
		})
	}

	if len(req.Name) < 2 || len(req.Name) > 150 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "name",
			Message: "name must be between 2 and 150 characters",
		})
	}

	if req.UnitPrice == nil || req.UnitPrice.LessThanOrEqual(decimal.Zero) {
		details = append(details, apperrors.ValidationDetail{
			Field:   "unitPrice",
			Message: "unitPrice must be greater than 0",
		})
	}

	if req.AvailableQuantity == nil || *req.AvailableQuantity < 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "availableQuantity",
			Message: "availableQuantity must be a non-negative integer",
		})
	}

	var entryDate time.Time
	if req.EntryDate == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "entryDate",
			Message: "entryDate is required",
		})
	} else {
		var err error
		entryDate, err = time.Parse(entryDateLayout, req.EntryDate)
		if err != nil {
			details = append(details, apperrors.ValidationDetail{
				Field:   "entryDate",
				Message: "entryDate must be a valid date (YYYY-MM-DD)",
			})
		}
	}

	if len(details) > 0 {
		return nil, apperrors.NewValidationError("validation failed", details...)
	}

	return &CreateProductInput{
		LotNumber:         req.LotNumber,
		Name:              req.Name,
		UnitPrice:         *req.UnitPrice,
		AvailableQuantity: *req.AvailableQuantity,
		EntryDate:         entryDate,
	}, nil
}

func validateUpdateRequest(req UpdateProductRequest) (*UpdateProductInput, error) {
	var details []apperrors.ValidationDetail

	if req.LotNumber != nil && *req.LotNumber == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "lotNumber",
			Message: "lotNumber must not be empty",
		})
	}

	if req.Name != nil && (len(*req.Name) < 2 || len(*req.Name) > 150) {
		details = append(details, apperrors.ValidationDetail{
			Field:   "name",
			Message: "name must be between 2 and 150 characters",
		})
	}

	if req.UnitPrice != nil && req.UnitPrice.LessThanOrEqual(decimal.Zero) {
		details = append(details, apperrors.ValidationDetail{
			Field:   "unitPrice",
			Message: "unitPrice must be greater than 0",
		})
	}

	if req.AvailableQuantity != nil && *req.AvailableQuantity < 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "availableQuantity",
			Message: "availableQuantity must be a non-negative integer",
		})
	}

	var entryDate *time.Time
	if req.EntryDate != nil {
		parsed, err := time.Parse(entryDateLayout, *req.EntryDate)
		if err != nil {
			details = append(details, apperrors.ValidationDetail{
				Field:   "entryDate",
				Message: "entryDate must be a valid date (YYYY-MM-DD)",
			})
		} else {
			entryDate = &parsed
		}
	}

	if len(details) > 0 {
		return nil, apperrors.NewValidationError("validation failed", details...)
	}

	return &UpdateProductInput{
		LotNumber:         req.LotNumber,
		Name:              req.Name,
		UnitPrice:         req.UnitPrice,
		AvailableQuantity: req.AvailableQuantity,
		EntryDate:         entryDate,
	}, nil
}

func (c *Controller) parseID(w http.ResponseWriter, r *http.Request) (int, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		c.writeValidationError(w, "invalid product id", apperrors.ValidationDetail{
			Field:   "id",
			Message: "id must be a positive integer",
		})
		return 0, false
	}
	return id, true
}

func (c *Controller) handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	if _, ok := apperrors.IsConflictError(err); ok {
		c.writeError(w, http.StatusConflict, err.Error())
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	c.writeError(w, http.StatusInternalServerError, "an unexpected error occurred")
}

type validationErrorResponse struct {
	Success bool                         `json:"success"`
	Message string                       `json:"message"`
	Errors  []apperrors.ValidationDetail `json:"errors"`
}

func (c *Controller) writeValidationError(w http.ResponseWriter, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		Success: false,
		Message: message,
		Errors:  details,
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
