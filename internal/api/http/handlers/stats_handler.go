package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-br/chamados-service/internal/api/dto"
	"github.com/helpdesk-br/chamados-service/internal/auth"
	"github.com/helpdesk-br/chamados-service/internal/service"
	apperrors "github.com/helpdesk-br/chamados-service/pkg/util"
)

// StatsHandler serves the aggregate overview.
type StatsHandler struct {
	service *service.StatsService
}

// NewStatsHandler constructs handler.
func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{service: statsService}
}

// Overview GET /stats/overview.
func (h *StatsHandler) Overview(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	snapshot, err := h.service.Overview(c.UserContext(), principal.User)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewStatsOverview(snapshot)})
}
