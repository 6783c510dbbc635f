package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	apperrors "bodega/internal/errors"
)

// Identity is what the rest of the system knows about the caller once
// the bearer token has been resolved.
type Identity struct {
	ID    int
	Name  string
	Email string
	Role  string
}

func (i Identity) IsAdmin() bool {
	return i.Role == "admin"
}

type contextKey struct{}

var identityKey contextKey

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}

// ContextWithIdentity is exposed for handler tests.
func ContextWithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

type Middleware struct {
	service *Service
	logger  *zap.Logger
}

func NewMiddleware(service *Service, logger *zap.Logger) *Middleware {
	return &Middleware{
		service: service,
		logger:  logger,
	}
}

// Authenticate resolves the Authorization header to an Identity and
// injects it into the request context. The user row is re-read so a
// deleted account cannot keep using an old token.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			m.writeUnauthorized(w, "missing bearer token")
			return
		}

		claims, err := m.service.ParseToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			m.writeUnauthorized(w, err.Error())
			return
		}

		user, err := m.service.GetByID(r.Context(), claims.UserID)
		if err != nil {
			if _, ok := apperrors.IsNotFoundError(err); ok {
				m.writeUnauthorized(w, "invalid or expired token")
				return
			}
			m.logger.Error("loading authenticated user failed", zap.Int("userId", claims.UserID), zap.Error(err))
			m.writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"success": false,
				"message": "an unexpected error occurred",
			})
			return
		}

		identity := Identity{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
			Role:  user.Role,
		}

		next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), identity)))
	})
}

// RequireAdmin rejects callers without the privileged role. It must run
// after Authenticate.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok {
			m.writeUnauthorized(w, "missing bearer token")
			return
		}

		if !identity.IsAdmin() {
			m.logger.Warn("admin route denied", zap.Int("userId", identity.ID), zap.String("role", identity.Role))
			m.writeJSON(w, http.StatusForbidden, map[string]interface{}{
				"success": false,
				"message": "admin role required",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) writeUnauthorized(w http.ResponseWriter, message string) {
	m.writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

func (m *Middleware) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		m.logger.Error("failed to encode response", zap.Error(err))
	}
}
