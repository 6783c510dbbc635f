package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"bodega/internal/domain"
	apperrors "bodega/internal/errors"
)

type UserRepository interface {
	Insert(ctx context.Context, user domain.User) (int, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int) (*domain.User, error)
}

type Claims struct {
	UserID int    `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// HashPassword is an explicit step in the registration write path, not
// an entity lifecycle hook.
func HashPassword(plain string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext against a stored bcrypt hash.
func CheckPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

type Service struct {
	userRepo   UserRepository
	jwtSecret  []byte
	tokenTTL   time.Duration
	bcryptCost int
	logger     *zap.Logger
}

func NewService(userRepo UserRepository, jwtSecret string, tokenTTL time.Duration, bcryptCost int, logger *zap.Logger) *Service {
	return &Service{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   tokenTTL,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) Register(ctx context.Context, name, email, password, role string) (*domain.User, string, error) {
	if role == "" {
		role = domain.RoleCliente
	}

	hash, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", err
	}

	user := domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}

	id, err := s.userRepo.Insert(ctx, user)
	if err != nil {
		return nil, "", err
	}
	user.ID = id

	token, err := s.signToken(user)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("user registered", zap.Int("userId", user.ID), zap.String("email", user.Email), zap.String("role", user.Role))
	return &user, token, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			s.logger.Warn("login failed: unknown email", zap.String("email", email))
			return nil, "", apperrors.NewUnauthorizedError("invalid email or password")
		}
		return nil, "", err
	}

	if !CheckPassword(password, user.PasswordHash) {
		s.logger.Warn("login failed: wrong password", zap.String("email", email))
		return nil, "", apperrors.NewUnauthorizedError("invalid email or password")
	}

	token, err := s.signToken(*user)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("login succeeded", zap.Int("userId", user.ID), zap.String("email", user.Email))
	return user, token, nil
}

func (s *Service) GetByID(ctx context.Context, id int) (*domain.User, error) {
	return s.userRepo.FindByID(ctx, id)
}

func (s *Service) signToken(user domain.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies the signature and expiry of a bearer token and
// returns its claims.
func (s *Service) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, apperrors.NewUnauthorizedError("invalid or expired token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperrors.NewUnauthorizedError("invalid or expired token")
	}

	return claims, nil
}
