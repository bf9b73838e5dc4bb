package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/config"
	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/repository"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

// AuthService coordinates registration, login and token verification.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:      users,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost: cfg.BcryptCost,
		logger:     logger,
	}
}

// Register creates a new account. A duplicate username or email is rejected,
// whether caught by the pre-check or by the storage-layer unique constraint.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	existing, err := s.users.FindByUsernameOrEmail(ctx, username, email)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	if existing != nil {
		return nil, apperrors.NewConflict("username or email already exists")
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user, err := s.users.Create(ctx, username, email, hash)
	if err != nil {
		// The pre-check and insert are not atomic; the unique constraint
		// closes the race and its violation is still a conflict.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("username or email already exists")
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}

	s.logger.Info("user registered", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// Login authenticates a user and issues a bearer token. An unknown username
// and a wrong password both fail with the same error.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NewInvalidCredentials()
		}
		return "", apperrors.NewStoreUnavailable(err)
	}

	ok, err := auth.ComparePassword(user.PasswordHash, password)
	if err != nil {
		s.logger.Warn("stored password hash unreadable", zap.Int64("user_id", user.ID), zap.Error(err))
		return "", apperrors.NewInvalidCredentials()
	}
	if !ok {
		return "", apperrors.NewInvalidCredentials()
	}

	token, _, err := s.tokenMgr.Issue(user.ID, user.Username)
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}

	s.logger.Info("login succeeded", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return token, nil
}

// Authenticate verifies a bearer token and yields the caller identity.
// Pure function of token, current time and signing key.
func (s *AuthService) Authenticate(token string) (*domain.Identity, error) {
	claims, err := s.tokenMgr.Verify(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, apperrors.NewUnauthorized("token expired")
		}
		return nil, apperrors.NewUnauthorized("invalid token")
	}
	return &domain.Identity{UserID: claims.UserID, Username: claims.Username}, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
