package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-br/chamados-service/internal/api/dto"
	"github.com/helpdesk-br/chamados-service/internal/auth"
	"github.com/helpdesk-br/chamados-service/internal/domain"
	"github.com/helpdesk-br/chamados-service/internal/service"
	apperrors "github.com/helpdesk-br/chamados-service/pkg/util"
)

// TicketsHandler manages the ticket lifecycle endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	input := service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DestDeptID:  req.DestDepartmentID,
	}
	ticket, err := h.service.Create(c.UserContext(), principal.User, input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketSummary(ticket)})
}

// ListMine GET /tickets/mine.
func (h *TicketsHandler) ListMine(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	tickets, err := h.service.ListMine(c.UserContext(), principal.User, parseTicketFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummaries(tickets)})
}

// ListAssigned GET /tickets/assigned.
func (h *TicketsHandler) ListAssigned(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	tickets, err := h.service.ListAssigned(c.UserContext(), principal.User, parseTicketFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummaries(tickets)})
}

// ListQueue GET /tickets/queue.
func (h *TicketsHandler) ListQueue(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var deptID *int64
	if raw := c.Query("department_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return apperrors.NewValidationError("invalid department_id", nil)
		}
		deptID = &parsed
	}
	unassigned := parseBoolQuery(c, "unassigned", false)
	tickets, err := h.service.ListQueue(c.UserContext(), principal.User, deptID, unassigned, parseTicketFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummaries(tickets)})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	ticketID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	detail, err := h.service.Get(c.UserContext(), principal.User, ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketDetail(detail)})
}

// ClaimTicket POST /tickets/:id/claim.
func (h *TicketsHandler) ClaimTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	ticketID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	ticket, err := h.service.Claim(c.UserContext(), principal.User, ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummary(ticket)})
}

// ChangeStatus PATCH /tickets/:id/status.
func (h *TicketsHandler) ChangeStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	ticketID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.ChangeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.ChangeStatus(c.UserContext(), principal.User, ticketID, req.Status, req.Justification)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummary(ticket)})
}

// AddComment POST /tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	ticketID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	interaction, err := h.service.Comment(c.UserContext(), principal.User, ticketID, req.Content, req.IdempotencyKey)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewInteractionResponse(interaction)})
}

// DeleteTicket DELETE /tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	ticketID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), principal.User, ticketID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

// UploadAttachment POST /tickets/:id/attachments (multipart).
func (h *TicketsHandler) UploadAttachment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	ticketID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("multipart field 'file' required", nil)
	}
	file, err := fileHeader.Open()
	if err != nil {
		return apperrors.NewValidationError("unreadable upload", nil)
	}
	defer file.Close()

	mimeType := fileHeader.Header.Get("Content-Type")
	attachment, err := h.service.AddAttachment(c.UserContext(), principal.User, ticketID, fileHeader.Filename, mimeType, fileHeader.Size, file)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewAttachmentResponse(attachment)})
}

// DownloadAttachment GET /tickets/attachments/:id.
func (h *TicketsHandler) DownloadAttachment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	attachmentID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	attachment, reader, err := h.service.OpenAttachment(c.UserContext(), principal.User, attachmentID)
	if err != nil {
		return err
	}
	// fasthttp reads the body stream after this handler returns and closes
	// the reader itself; closing it here would break every download.

	c.Set(fiber.HeaderContentType, attachment.MimeType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+attachment.FileName+`"`)
	return c.SendStream(reader, int(attachment.SizeBytes))
}

func parseIDParam(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid "+name, nil)
	}
	return id, nil
}

func parseTicketFilter(c *fiber.Ctx) service.TicketListFilter {
	filter := service.TicketListFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			filter.Priorities = append(filter.Priorities, domain.TicketPriority(strings.TrimSpace(part)))
		}
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		filter.SearchTerm = &search
	}
	page := parseIntQuery(c, "page", 1)
	pageSize := parseIntQuery(c, "page_size", 20)
	if pageSize > 100 {
		pageSize = 100
	}
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseIntQuery(c *fiber.Ctx, key string, defaultVal int) int {
	if val := c.Query(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultVal
}

func parseBoolQuery(c *fiber.Ctx, key string, defaultVal bool) bool {
	if val := c.Query(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}
