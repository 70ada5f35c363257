package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-br/chamados-service/internal/domain"
	apperrors "github.com/helpdesk-br/chamados-service/pkg/util"
)

// RequireRole ensures the principal has one of the allowed roles.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.User.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireAttendant ensures the principal may work tickets (agent or admin).
func RequireAttendant() fiber.Handler {
	return RequireRole(domain.RoleAgent, domain.RoleAdmin)
}

// RequirePasswordCurrent blocks callers flagged for a mandatory password
// change from reaching anything but the password-change endpoint.
func RequirePasswordCurrent() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if principal.MustChangePassword {
			return apperrors.NewPasswordChangeRequired()
		}
		return c.Next()
	}
}
