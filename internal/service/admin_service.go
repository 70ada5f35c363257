package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/helpdesk-br/chamados-service/internal/auth"
	"github.com/helpdesk-br/chamados-service/internal/config"
	"github.com/helpdesk-br/chamados-service/internal/domain"
	"github.com/helpdesk-br/chamados-service/internal/repository"
	apperrors "github.com/helpdesk-br/chamados-service/pkg/util"
)

// AdminService executes the privileged user-management operations. Routes
// reaching it are already gated to admins; multi-step flows run as sagas.
type AdminService struct {
	users       repository.UserRepository
	credentials repository.CredentialRepository
	departments repository.DepartmentRepository
	branches    repository.BranchRepository
	logger      *zap.Logger
	bcryptCost  int
	minPassword int
}

// AdminDependencies bundles repositories for the admin service.
type AdminDependencies struct {
	UserRepo       repository.UserRepository
	CredentialRepo repository.CredentialRepository
	DepartmentRepo repository.DepartmentRepository
	BranchRepo     repository.BranchRepository
	Logger         *zap.Logger
}

// CreateUserInput describes the create-user payload.
type CreateUserInput struct {
	Name         string
	Username     string
	Email        *string
	Password     string
	Role         domain.Role
	DepartmentID int64
	BranchID     int64
}

// UpdateUserInput describes the admin edit payload.
type UpdateUserInput struct {
	Name         string
	Email        *string
	Role         domain.Role
	DepartmentID int64
	BranchID     int64
	Active       bool
}

// DeleteUserResult reports the outcome of a user deletion, including a
// warning when credential cleanup failed and left an orphan behind.
type DeleteUserResult struct {
	Warning string
}

// NewAdminService builds the service.
func NewAdminService(cfg config.Config, deps AdminDependencies) *AdminService {
	return &AdminService{
		users:       deps.UserRepo,
		credentials: deps.CredentialRepo,
		departments: deps.DepartmentRepo,
		branches:    deps.BranchRepo,
		logger:      deps.Logger,
		bcryptCost:  cfg.Auth.BcryptCost,
		minPassword: cfg.Auth.MinPasswordLength,
	}
}

// CreateUser provisions a credential and the user row as a saga: a failure
// in a later step deletes whatever was already created, in reverse order.
func (s *AdminService) CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	if err := s.validateCreate(ctx, &input); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	cred := &domain.Credential{
		Username:           input.Username,
		PasswordHash:       hash,
		MustChangePassword: true,
	}
	user := &domain.User{
		Name:         input.Name,
		Username:     input.Username,
		Email:        input.Email,
		Role:         input.Role,
		DepartmentID: input.DepartmentID,
		BranchID:     input.BranchID,
		Active:       true,
	}

	steps := []SagaStep{
		{
			Name: "create_credential",
			Run: func(ctx context.Context) error {
				return s.credentials.Create(ctx, cred)
			},
			Compensate: func(ctx context.Context) error {
				return s.credentials.Delete(ctx, cred.ID)
			},
		},
		{
			Name: "create_user_row",
			Run: func(ctx context.Context) error {
				return s.users.Create(ctx, user)
			},
			Compensate: func(ctx context.Context) error {
				return s.users.Delete(ctx, user.ID)
			},
		},
		{
			Name: "link_credential",
			Run: func(ctx context.Context) error {
				user.CredentialID = &cred.ID
				return s.users.Update(ctx, user)
			},
		},
	}
	if err := RunSaga(ctx, s.logger, steps); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("user created",
		zap.Int64("user_id", user.ID), zap.String("username", user.Username), zap.String("role", string(user.Role)))
	return user, nil
}

// UpdateUser applies an admin edit to the user row.
func (s *AdminService) UpdateUser(ctx context.Context, userID int64, input UpdateUserInput) (*domain.User, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !input.Role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": input.Role})
	}
	if err := s.checkReferences(ctx, input.DepartmentID, input.BranchID); err != nil {
		return nil, err
	}

	user.Name = input.Name
	user.Email = input.Email
	user.Role = input.Role
	user.DepartmentID = input.DepartmentID
	user.BranchID = input.BranchID
	user.Active = input.Active
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// ListUsers pages through all users.
func (s *AdminService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// DeleteUser removes the user row (tickets cascade per schema) and then the
// credential. A credential-cleanup failure does not roll back the deletion;
// it is logged and surfaced as a warning.
func (s *AdminService) DeleteUser(ctx context.Context, userID int64) (*DeleteUserResult, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.users.Delete(ctx, user.ID); err != nil {
		return nil, apperrors.MapError(err)
	}

	result := &DeleteUserResult{}
	if user.CredentialID != nil {
		if err := s.credentials.Delete(ctx, *user.CredentialID); err != nil && !errors.Is(err, pgx.ErrNoRows) {
			s.logger.Error("credential cleanup failed after user deletion",
				zap.Int64("user_id", user.ID),
				zap.Int64("credential_id", *user.CredentialID),
				zap.Error(err))
			result.Warning = "user removed but credential cleanup failed"
		}
	}
	s.logger.Info("user deleted", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return result, nil
}

// ResetPassword sets a new credential for the target without their current
// password and forces a change on next login.
func (s *AdminService) ResetPassword(ctx context.Context, userID int64, newPassword string) error {
	if len(newPassword) < s.minPassword {
		return apperrors.NewValidationError("password too short", map[string]any{"min_length": s.minPassword})
	}
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.CredentialID == nil {
		return apperrors.NewConflict("user has no credential", nil)
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := s.credentials.UpdatePassword(ctx, *user.CredentialID, hash, true); err != nil {
		return apperrors.MapError(err)
	}
	s.logger.Info("password reset", zap.Int64("user_id", user.ID))
	return nil
}

// NormalizeUsername lowercases/trims the target's username and updates the
// credential and the user row in sync, reverting the credential change when
// the user-row update fails.
func (s *AdminService) NormalizeUsername(ctx context.Context, userID int64, newUsername string) (*domain.User, error) {
	normalized := NormalizeUsername(newUsername)
	if normalized == "" {
		return nil, apperrors.NewValidationError("username required", nil)
	}
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.CredentialID == nil {
		return nil, apperrors.NewConflict("user has no credential", nil)
	}
	if user.Username == normalized {
		return user, nil
	}
	if existing, err := s.credentials.GetByUsername(ctx, normalized); err == nil && existing.ID != *user.CredentialID {
		return nil, apperrors.NewConflict("username already taken", map[string]any{"username": normalized})
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	oldUsername := user.Username
	if err := s.credentials.UpdateUsername(ctx, *user.CredentialID, normalized); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.users.UpdateUsername(ctx, user.ID, normalized); err != nil {
		if revertErr := s.credentials.UpdateUsername(ctx, *user.CredentialID, oldUsername); revertErr != nil {
			s.logger.Error("username revert failed; credential and user row out of sync",
				zap.Int64("user_id", user.ID), zap.Error(revertErr))
		}
		return nil, apperrors.MapError(err)
	}

	user.Username = normalized
	s.logger.Info("username normalized",
		zap.Int64("user_id", user.ID),
		zap.String("old", oldUsername),
		zap.String("new", normalized))
	return user, nil
}

func (s *AdminService) validateCreate(ctx context.Context, input *CreateUserInput) error {
	input.Username = NormalizeUsername(input.Username)
	if input.Name == "" || input.Username == "" {
		return apperrors.NewValidationError("name and username required", nil)
	}
	if len(input.Password) < s.minPassword {
		return apperrors.NewValidationError("password too short", map[string]any{"min_length": s.minPassword})
	}
	if !input.Role.Valid() {
		return apperrors.NewValidationError("invalid role", map[string]any{"role": input.Role})
	}
	if err := s.checkReferences(ctx, input.DepartmentID, input.BranchID); err != nil {
		return err
	}
	if _, err := s.credentials.GetByUsername(ctx, input.Username); err == nil {
		return apperrors.NewConflict("username already taken", map[string]any{"username": input.Username})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *AdminService) checkReferences(ctx context.Context, departmentID, branchID int64) error {
	if _, err := s.departments.GetByID(ctx, departmentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("department", map[string]any{"department_id": departmentID})
		}
		return apperrors.MapError(err)
	}
	if _, err := s.branches.GetByID(ctx, branchID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("branch", map[string]any{"branch_id": branchID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

func (s *AdminService) getUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}
