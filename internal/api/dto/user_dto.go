package dto

import (
	"time"

	"github.com/helpdesk-br/chamados-service/internal/domain"
	"github.com/helpdesk-br/chamados-service/internal/service"
)

// LoginRequest payload for sign-in.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token              string       `json:"token"`
	ExpiresAt          time.Time    `json:"expires_at"`
	MustChangePassword bool         `json:"must_change_password"`
	User               UserResponse `json:"user"`
}

// UserResponse public user representation.
type UserResponse struct {
	ID           int64       `json:"id"`
	Name         string      `json:"name"`
	Username     string      `json:"username"`
	Email        *string     `json:"email"`
	Role         domain.Role `json:"role"`
	DepartmentID int64       `json:"department_id"`
	BranchID     int64       `json:"branch_id"`
	Active       bool        `json:"active"`
	CreatedAt    time.Time   `json:"created_at"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Name:         u.Name,
		Username:     u.Username,
		Email:        u.Email,
		Role:         u.Role,
		DepartmentID: u.DepartmentID,
		BranchID:     u.BranchID,
		Active:       u.Active,
		CreatedAt:    u.CreatedAt,
	}
}

// NewAuthResponse maps a login result.
func NewAuthResponse(result *service.LoginResult) AuthResponse {
	return AuthResponse{
		Token:              result.Token,
		ExpiresAt:          result.ExpiresAt,
		MustChangePassword: result.MustChangePassword,
		User:               NewUserResponse(result.User),
	}
}
