package auth

import (
	"database/sql"

	"go.uber.org/zap"

	"bodega/internal/auth/repository"
	"bodega/internal/config"
)

func NewModule(db *sql.DB, cfg *config.Config, logger *zap.Logger) (*Controller, *Middleware) {
	userRepo := repository.NewMySQLUserRepository(db)

	svc := NewService(
		userRepo,
		cfg.Auth.JWTSecret,
		cfg.Auth.TokenTTL,
		cfg.Auth.BcryptCost,
		logger,
	)

	return NewController(svc, logger), NewMiddleware(svc, logger)
}
