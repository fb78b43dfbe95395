package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// AuthService coordinates login, logout and password changes.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	denylist   auth.Denylist
	bcryptCost int
	logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, users repository.UserRepository, denylist auth.Denylist, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      users,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL(), cfg.App.Name),
		denylist:   denylist,
		bcryptCost: cfg.Auth.BcryptCost,
		logger:     logger,
	}
}

// LoginResult is returned after a successful login.
type LoginResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// Login authenticates by username and password. Unknown users, wrong
// passwords and disabled accounts share one message.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperrors.NewValidationError("username and password are required", nil)
	}
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("invalid username or password")
		}
		return nil, apperrors.MapError(err)
	}
	if !auth.ComparePassword(user.PasswordHash, password) || !user.IsActive {
		return nil, apperrors.NewUnauthorized("invalid username or password")
	}
	issued, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("sign token: %w", err))
	}
	s.logger.Info("user logged in", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))
	return &LoginResult{User: user, Token: issued.Token, ExpiresAt: issued.ExpiresAt}, nil
}

// Logout revokes the caller's token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if s.denylist == nil || claims == nil {
		return nil
	}
	until := time.Now()
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	if err := s.denylist.Revoke(ctx, claims.ID, until); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// ChangePassword verifies the current password before storing the new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	if len(newPassword) < auth.MinPasswordLength {
		return apperrors.NewValidationError(
			fmt.Sprintf("new password must be at least %d characters", auth.MinPasswordLength),
			map[string]any{"field": "new_password"})
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("user", map[string]any{"id": userID})
		}
		return apperrors.MapError(err)
	}
	if !auth.ComparePassword(user.PasswordHash, currentPassword) {
		return apperrors.NewUnauthorized("current password is incorrect")
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return apperrors.MapError(s.users.UpdatePassword(ctx, userID, hash))
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
