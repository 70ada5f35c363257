package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-br/chamados-service/internal/api/dto"
	"github.com/helpdesk-br/chamados-service/internal/auth"
	"github.com/helpdesk-br/chamados-service/internal/service"
	apperrors "github.com/helpdesk-br/chamados-service/pkg/util"
)

// AuthHandler serves sign-in and password change.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{service: authService}
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required", nil)
	}
	result, err := h.service.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAuthResponse(result)})
}

// ChangePassword POST /auth/password/change.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result, err := h.service.ChangePassword(c.UserContext(), principal.User, req.CurrentPassword, req.NewPassword)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAuthResponse(result)})
}

// Me GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(principal.User)})
}
