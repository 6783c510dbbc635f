package auth

import (
	"encoding/json"
	"net/http"
	"net/mail"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bodega/internal/domain"
	apperrors "bodega/internal/errors"
)

type Controller struct {
	service *Service
	logger  *zap.Logger
}

func NewController(service *Service, logger *zap.Logger) *Controller {
	return &Controller{
		service: service,
		logger:  logger,
	}
}

func (c *Controller) Register(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if err := validateRegisterRequest(req); err != nil {
		ve, _ := apperrors.IsValidationError(err)
		c.writeValidationError(w, ve.Message, ve.Details...)
		return
	}

	user, token, err := c.service.Register(r.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		c.handleServiceError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusCreated, AuthResponse{
		Success: true,
		Message: "user registered successfully",
		Data:    toUserDTO(*user),
		Token:   token,
	})
}

func (c *Controller) Login(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if err := validateLoginRequest(req); err != nil {
		ve, _ := apperrors.IsValidationError(err)
		c.writeValidationError(w, ve.Message, ve.Details...)
		return
	}

	user, token, err := c.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		c.handleServiceError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, AuthResponse{
		Success: true,
		Message: "login successful",
		Data:    toUserDTO(*user),
		Token:   token,
	})
}

func (c *Controller) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		c.writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"success": false,
			"message": "missing bearer token",
		})
		return
	}

	c.writeJSON(w, http.StatusOK, MeResponse{
		Success: true,
		Data: UserDTO{
			ID:    identity.ID,
			Name:  identity.Name,
			Email: identity.Email,
			Role:  identity.Role,
		},
	})
}

func validateRegisterRequest(req RegisterRequest) error {
	var details []apperrors.ValidationDetail

	if len(req.Name) < 2 || len(req.Name) > 100 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "name",
			Message: "name must be between 2 and 100 characters",
		})
	}

	if _, err := mail.ParseAddress(req.Email); err != nil {
		details = append(details, apperrors.ValidationDetail{
			Field:   "email",
			Message: "a valid email is required",
		})
	}

	if len(req.Password) < 6 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "password",
			Message: "password must be at least 6 characters",
		})
	}

	if req.Role != "" && req.Role != domain.RoleAdmin && req.Role != domain.RoleCliente {
		details = append(details, apperrors.ValidationDetail{
			Field:   "role",
			Message: "role must be admin or cliente",
		})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

func validateLoginRequest(req LoginRequest) error {
	var details []apperrors.ValidationDetail

	if _, err := mail.ParseAddress(req.Email); err != nil {
		details = append(details, apperrors.ValidationDetail{
			Field:   "email",
			Message: "a valid email is required",
		})
	}

	if req.Password == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "password",
			Message: "password is required",
		})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

func toUserDTO(user domain.User) UserDTO {
	return UserDTO{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}
}

func (c *Controller) handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if _, ok := apperrors.IsConflictError(err); ok {
		c.writeError(w, http.StatusConflict, err.Error())
		return
	}

	if _, ok := apperrors.IsUnauthorizedError(err); ok {
		c.writeError(w, http.StatusUnauthorized, err.Error())
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
