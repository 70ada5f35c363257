package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-br/chamados-service/internal/api/dto"
	"github.com/helpdesk-br/chamados-service/internal/service"
	apperrors "github.com/helpdesk-br/chamados-service/pkg/util"
)

// AdminUsersHandler serves privileged user management. Role gating happens
// in the route registration.
type AdminUsersHandler struct {
	service *service.AdminService
}

// NewAdminUsersHandler constructs handler.
func NewAdminUsersHandler(adminService *service.AdminService) *AdminUsersHandler {
	return &AdminUsersHandler{service: adminService}
}

// CreateUser POST /admin/users.
func (h *AdminUsersHandler) CreateUser(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.service.CreateUser(c.UserContext(), service.CreateUserInput{
		Name:         req.Name,
		Username:     req.Username,
		Email:        req.Email,
		Password:     req.Password,
		Role:         req.Role,
		DepartmentID: req.DepartmentID,
		BranchID:     req.BranchID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// ListUsers GET /admin/users.
func (h *AdminUsersHandler) ListUsers(c *fiber.Ctx) error {
	page := parseIntQuery(c, "page", 1)
	pageSize := parseIntQuery(c, "page_size", 50)
	if pageSize > 200 {
		pageSize = 200
	}
	users, err := h.service.ListUsers(c.UserContext(), pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, dto.NewUserResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// UpdateUser PUT /admin/users/:id.
func (h *AdminUsersHandler) UpdateUser(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.service.UpdateUser(c.UserContext(), userID, service.UpdateUserInput{
		Name:         req.Name,
		Email:        req.Email,
		Role:         req.Role,
		DepartmentID: req.DepartmentID,
		BranchID:     req.BranchID,
		Active:       req.Active,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// DeleteUser DELETE /admin/users/:id.
func (h *AdminUsersHandler) DeleteUser(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	result, err := h.service.DeleteUser(c.UserContext(), userID)
	if err != nil {
		return err
	}
	resp := dto.OperationResponse{Success: true, Message: "user removed"}
	resp.Warning = result.Warning
	return c.JSON(resp)
}

// ResetPassword POST /admin/users/:id/password/reset.
func (h *AdminUsersHandler) ResetPassword(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.service.ResetPassword(c.UserContext(), userID, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(dto.OperationResponse{Success: true, Message: "password reset; change required on next login"})
}

// NormalizeUsername POST /admin/users/:id/username.
func (h *AdminUsersHandler) NormalizeUsername(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.NormalizeUsernameRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.service.NormalizeUsername(c.UserContext(), userID, req.Username)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}
