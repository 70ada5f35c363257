package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-br/chamados-service/internal/api/dto"
	"github.com/helpdesk-br/chamados-service/internal/repository"
	apperrors "github.com/helpdesk-br/chamados-service/pkg/util"
)

// ReferenceHandler serves the department and branch lookup lists.
type ReferenceHandler struct {
	departments repository.DepartmentRepository
	branches    repository.BranchRepository
}

// NewReferenceHandler constructs handler.
func NewReferenceHandler(departments repository.DepartmentRepository, branches repository.BranchRepository) *ReferenceHandler {
	return &ReferenceHandler{departments: departments, branches: branches}
}

// ListDepartments GET /departments.
func (h *ReferenceHandler) ListDepartments(c *fiber.Ctx) error {
	departments, err := h.departments.List(c.UserContext())
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewDepartmentResponses(departments)})
}

// ListBranches GET /branches.
func (h *ReferenceHandler) ListBranches(c *fiber.Ctx) error {
	branches, err := h.branches.List(c.UserContext())
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewBranchResponses(branches)})
}
