package dto

import "github.com/helpdesk-br/chamados-service/internal/domain"

// CreateUserRequest payload for admin user provisioning.
type CreateUserRequest struct {
	Name         string      `json:"name"`
	Username     string      `json:"username"`
	Email        *string     `json:"email"`
	Password     string      `json:"password"`
	Role         domain.Role `json:"role"`
	DepartmentID int64       `json:"department_id"`
	BranchID     int64       `json:"branch_id"`
}

// UpdateUserRequest payload for admin edits.
type UpdateUserRequest struct {
	Name         string      `json:"name"`
	Email        *string     `json:"email"`
	Role         domain.Role `json:"role"`
	DepartmentID int64       `json:"department_id"`
	BranchID     int64       `json:"branch_id"`
	Active       bool        `json:"active"`
}

// ResetPasswordRequest payload.
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password"`
}

// NormalizeUsernameRequest payload.
type NormalizeUsernameRequest struct {
	Username string `json:"username"`
}

// OperationResponse is the envelope for admin mutations.
type OperationResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Warning string `json:"warning,omitempty"`
}
