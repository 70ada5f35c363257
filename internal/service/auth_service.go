package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/helpdesk-br/chamados-service/internal/auth"
	"github.com/helpdesk-br/chamados-service/internal/config"
	"github.com/helpdesk-br/chamados-service/internal/domain"
	"github.com/helpdesk-br/chamados-service/internal/repository"
	apperrors "github.com/helpdesk-br/chamados-service/pkg/util"
)

// AuthService coordinates login and password rotation.
type AuthService struct {
	users       repository.UserRepository
	credentials repository.CredentialRepository
	tokenMgr    *auth.TokenManager
	bcryptCost  int
	minPassword int
}

// AuthDependencies bundles repositories for the auth service.
type AuthDependencies struct {
	UserRepo       repository.UserRepository
	CredentialRepo repository.CredentialRepository
}

// LoginResult is returned on a successful sign-in.
type LoginResult struct {
	User               *domain.User
	Token              string
	ExpiresAt          time.Time
	MustChangePassword bool
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:       deps.UserRepo,
		credentials: deps.CredentialRepo,
		tokenMgr:    auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost:  cfg.Auth.BcryptCost,
		minPassword: cfg.Auth.MinPasswordLength,
	}
}

// TokenManager exposes the manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Login authenticates by username and password.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = NormalizeUsername(username)
	if username == "" || password == "" {
		return nil, apperrors.NewValidationError("username and password required", nil)
	}

	cred, err := s.credentials.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.VerifyPassword(cred.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	user, err := s.users.GetByCredentialID(ctx, cred.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if !user.Active {
		return nil, apperrors.NewUnauthorized("user inactive")
	}
	if !user.Role.Valid() {
		return nil, apperrors.NewUnauthorized("unrecognized role")
	}

	token, expiresAt, err := s.tokenMgr.GenerateToken(user.ID, user.Role, cred.MustChangePassword)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &LoginResult{
		User:               user,
		Token:              token,
		ExpiresAt:          expiresAt,
		MustChangePassword: cred.MustChangePassword,
	}, nil
}

// ChangePassword rotates the caller's own credential and clears the
// must-change flag. A fresh token is returned so clients drop the flag.
func (s *AuthService) ChangePassword(ctx context.Context, user *domain.User, currentPassword, newPassword string) (*LoginResult, error) {
	if user.CredentialID == nil {
		return nil, apperrors.NewConflict("account has no credential", nil)
	}
	if len(newPassword) < s.minPassword {
		return nil, apperrors.NewValidationError("password too short", map[string]any{"min_length": s.minPassword})
	}

	cred, err := s.credentials.GetByID(ctx, *user.CredentialID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := auth.VerifyPassword(cred.PasswordHash, currentPassword); err != nil {
		return nil, apperrors.NewUnauthorized("current password incorrect")
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.credentials.UpdatePassword(ctx, cred.ID, hash, false); err != nil {
		return nil, apperrors.MapError(err)
	}

	token, expiresAt, err := s.tokenMgr.GenerateToken(user.ID, user.Role, false)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &LoginResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// NormalizeUsername lowercases and trims a human-chosen username.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
