package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/helpdesk-br/chamados-service/internal/domain"
	"github.com/helpdesk-br/chamados-service/internal/events"
	"github.com/helpdesk-br/chamados-service/internal/realtime"
	"github.com/helpdesk-br/chamados-service/internal/repository"
	"github.com/helpdesk-br/chamados-service/internal/storage"
	apperrors "github.com/helpdesk-br/chamados-service/pkg/util"
)

// TicketService coordinates the ticket lifecycle.
type TicketService struct {
	tickets      repository.TicketRepository
	interactions repository.InteractionRepository
	attachments  repository.AttachmentRepository
	departments  repository.DepartmentRepository
	blobs        storage.BlobStore
	idempotency  realtime.IdempotencyGuard
	dispatcher   events.Dispatcher
	logger       *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo      repository.TicketRepository
	InteractionRepo repository.InteractionRepository
	AttachmentRepo  repository.AttachmentRepository
	DepartmentRepo  repository.DepartmentRepository
	Blobs           storage.BlobStore
	Idempotency     realtime.IdempotencyGuard
	Dispatcher      events.Dispatcher
	Logger          *zap.Logger
}

// TicketCreateInput describes the ticket creation payload. Origin department
// and branch come from the requester's own record.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	DestDeptID  int64
}

// TicketListFilter narrows list queries.
type TicketListFilter struct {
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	SearchTerm *string
	Limit      int
	Offset     int
}

// TicketDetail is a ticket with its thread and attachments.
type TicketDetail struct {
	Ticket       *domain.Ticket
	Interactions []domain.Interaction
	Attachments  []domain.Attachment
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:      deps.TicketRepo,
		interactions: deps.InteractionRepo,
		attachments:  deps.AttachmentRepo,
		departments:  deps.DepartmentRepo,
		blobs:        deps.Blobs,
		idempotency:  deps.Idempotency,
		dispatcher:   deps.Dispatcher,
		logger:       deps.Logger,
	}
}

// Create opens a ticket for the requester.
func (s *TicketService) Create(ctx context.Context, requester *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	if input.Title == "" || input.Description == "" {
		return nil, apperrors.NewValidationError("title and description required", nil)
	}
	if input.DestDeptID == 0 {
		return nil, apperrors.NewValidationError("destination department required", nil)
	}
	if input.Priority == "" {
		input.Priority = domain.PriorityMedium
	}
	if !input.Priority.Valid() {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": input.Priority})
	}
	if _, err := s.departments.GetByID(ctx, input.DestDeptID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("department", map[string]any{"department_id": input.DestDeptID})
		}
		return nil, apperrors.MapError(err)
	}

	ticket := &domain.Ticket{
		Title:        input.Title,
		Description:  input.Description,
		Status:       domain.StatusOpen,
		Priority:     input.Priority,
		RequesterID:  requester.ID,
		OriginDeptID: requester.DepartmentID,
		DestDeptID:   input.DestDeptID,
		BranchID:     requester.BranchID,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	ticket.RequesterName = requester.Name

	s.publish(ctx, ticket, events.EventTicketCreated, requester.ID, events.TicketCreatedPayload{
		Title:         ticket.Title,
		Description:   ticket.Description,
		Priority:      ticket.Priority,
		DestDeptID:    ticket.DestDeptID,
		RequesterName: requester.Name,
	})
	return ticket, nil
}

// ListMine returns tickets the caller opened.
func (s *TicketService) ListMine(ctx context.Context, caller *domain.User, filter TicketListFilter) ([]domain.Ticket, error) {
	repoFilter := s.repoFilter(filter)
	repoFilter.RequesterID = &caller.ID
	return s.list(ctx, repoFilter)
}

// ListAssigned returns tickets claimed by the calling attendant.
func (s *TicketService) ListAssigned(ctx context.Context, caller *domain.User, filter TicketListFilter) ([]domain.Ticket, error) {
	if !caller.Role.CanAttend() {
		return nil, apperrors.NewForbidden("attendant role required")
	}
	repoFilter := s.repoFilter(filter)
	repoFilter.AssigneeID = &caller.ID
	return s.list(ctx, repoFilter)
}

// ListQueue returns the destination-department queue. Attendants see their
// own department; admins and directors may inspect any department.
func (s *TicketService) ListQueue(ctx context.Context, caller *domain.User, deptID *int64, unassignedOnly bool, filter TicketListFilter) ([]domain.Ticket, error) {
	switch caller.Role {
	case domain.RoleAgent:
		deptID = &caller.DepartmentID
	case domain.RoleAdmin, domain.RoleDirector:
		// any department, or all when unset
	case domain.RoleRequester:
		return nil, apperrors.NewForbidden("attendant role required")
	default:
		return nil, apperrors.NewForbidden("unrecognized role")
	}

	repoFilter := s.repoFilter(filter)
	repoFilter.DestDeptID = deptID
	repoFilter.Unassigned = unassignedOnly
	return s.list(ctx, repoFilter)
}

// Get returns the ticket detail after an access check.
func (s *TicketService) Get(ctx context.Context, caller *domain.User, ticketID int64) (*TicketDetail, error) {
	ticket, err := s.getVisible(ctx, caller, ticketID)
	if err != nil {
		return nil, err
	}

	interactions, err := s.interactions.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	attachments, err := s.attachments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &TicketDetail{Ticket: ticket, Interactions: interactions, Attachments: attachments}, nil
}

// Claim assigns an unassigned open ticket to the calling attendant. The
// update is conditional so a concurrent double-claim loses cleanly.
func (s *TicketService) Claim(ctx context.Context, caller *domain.User, ticketID int64) (*domain.Ticket, error) {
	if !caller.Role.CanAttend() {
		return nil, apperrors.NewForbidden("attendant role required")
	}
	ticket, err := s.getVisible(ctx, caller, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status != domain.StatusOpen || ticket.AssigneeID != nil {
		return nil, apperrors.NewConflict("ticket is not an unassigned open ticket", map[string]any{"status": ticket.Status})
	}

	claimedAt := time.Now()
	won, err := s.tickets.Claim(ctx, ticket.ID, caller.ID, claimedAt)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !won {
		return nil, apperrors.NewConflict("ticket already claimed", map[string]any{"ticket_id": ticket.ID})
	}

	if err := s.appendSystemNote(ctx, ticket.ID, caller.ID, domain.InteractionAssignment,
		fmt.Sprintf("Chamado assumido por %s", caller.Name)); err != nil {
		return nil, err
	}

	ticket, err = s.tickets.GetByID(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, ticket, events.EventTicketClaimed, caller.ID, events.TicketClaimedPayload{
		AgentID:   caller.ID,
		AgentName: caller.Name,
	})
	return ticket, nil
}

// ChangeStatus moves the ticket through the lifecycle. Entering aguardando or
// concluido requires a justification, recorded in the same operation; the
// check runs before any write.
func (s *TicketService) ChangeStatus(ctx context.Context, caller *domain.User, ticketID int64, next domain.TicketStatus, justification string) (*domain.Ticket, error) {
	if !caller.Role.CanAttend() {
		return nil, apperrors.NewForbidden("attendant role required")
	}
	justification = strings.TrimSpace(justification)
	if domain.RequiresJustification(next) && justification == "" {
		return nil, apperrors.NewValidationError("justification required for this status", map[string]any{"status": next})
	}

	ticket, err := s.getVisible(ctx, caller, ticketID)
	if err != nil {
		return nil, err
	}
	if caller.Role != domain.RoleAdmin && (ticket.AssigneeID == nil || *ticket.AssigneeID != caller.ID) {
		return nil, apperrors.NewForbidden("only the assigned attendant may change status")
	}
	if !domain.CanTransition(ticket.Status, next) {
		return nil, apperrors.NewConflict("invalid status transition", map[string]any{
			"from": ticket.Status,
			"to":   next,
		})
	}

	closedAt := ticket.ClosedAt
	if next == domain.StatusDone && closedAt == nil {
		now := time.Now()
		closedAt = &now
	}

	oldStatus := ticket.Status
	if err := s.tickets.UpdateStatus(ctx, ticket.ID, next, closedAt); err != nil {
		return nil, apperrors.MapError(err)
	}

	note := fmt.Sprintf("Status alterado de %s para %s", oldStatus, next)
	if justification != "" {
		note = note + ": " + justification
	}
	if err := s.appendSystemNote(ctx, ticket.ID, caller.ID, domain.InteractionStatusChange, note); err != nil {
		return nil, err
	}

	ticket, err = s.tickets.GetByID(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, ticket, events.EventTicketStatusChanged, caller.ID, events.TicketStatusChangedPayload{
		OldStatus:     oldStatus,
		NewStatus:     next,
		Justification: justification,
	})
	return ticket, nil
}

// Comment appends a free-text interaction. An optional idempotency key makes
// a quick resubmission a no-op instead of a duplicate row.
func (s *TicketService) Comment(ctx context.Context, caller *domain.User, ticketID int64, content, idempotencyKey string) (*domain.Interaction, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("content required", nil)
	}
	ticket, err := s.getVisible(ctx, caller, ticketID)
	if err != nil {
		return nil, err
	}

	claimed := false
	idemKey := fmt.Sprintf("comment:%d:%d:%s", ticket.ID, caller.ID, idempotencyKey)
	if idempotencyKey != "" && s.idempotency != nil {
		first, stored, err := s.idempotency.Claim(ctx, idemKey)
		switch {
		case err != nil:
			s.logger.Warn("idempotency claim failed; proceeding", zap.Error(err))
		case first:
			claimed = true
		default:
			// Replay: hand back the interaction the first submission
			// created. An empty stored value means that submission is
			// still in flight.
			if id, convErr := strconv.ParseInt(stored, 10, 64); convErr == nil && id > 0 {
				if existing, getErr := s.interactions.GetByID(ctx, id); getErr == nil {
					return existing, nil
				}
			}
			return nil, apperrors.NewConflict("duplicate submission", map[string]any{"idempotency_key": idempotencyKey})
		}
	}

	interaction := &domain.Interaction{
		TicketID: ticket.ID,
		AuthorID: caller.ID,
		Kind:     domain.InteractionComment,
		Content:  content,
	}
	if err := s.interactions.Create(ctx, interaction); err != nil {
		return nil, apperrors.MapError(err)
	}
	interaction.AuthorName = caller.Name
	if claimed {
		if err := s.idempotency.Store(ctx, idemKey, strconv.FormatInt(interaction.ID, 10)); err != nil {
			s.logger.Warn("idempotency store failed", zap.Error(err))
		}
	}
	if err := s.tickets.Touch(ctx, ticket.ID); err != nil {
		s.logger.Warn("touch ticket after comment", zap.Int64("ticket_id", ticket.ID), zap.Error(err))
	}

	s.publish(ctx, ticket, events.EventTicketCommented, caller.ID, events.TicketCommentedPayload{
		InteractionID: interaction.ID,
		AuthorName:    caller.Name,
		Preview:       preview(content, 120),
	})
	return interaction, nil
}

// Delete removes a ticket permanently. Admins may delete at any time; the
// requester only while the ticket is still open.
func (s *TicketService) Delete(ctx context.Context, caller *domain.User, ticketID int64) error {
	ticket, err := s.getVisible(ctx, caller, ticketID)
	if err != nil {
		return err
	}
	if !CanDeleteTicket(caller, ticket) {
		return apperrors.NewForbidden("not allowed to delete this ticket")
	}

	attachments, err := s.attachments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := s.tickets.Delete(ctx, ticket.ID); err != nil {
		return apperrors.MapError(err)
	}
	for _, attachment := range attachments {
		if err := s.blobs.Delete(attachment.StorageKey); err != nil {
			s.logger.Warn("delete attachment blob",
				zap.String("storage_key", attachment.StorageKey), zap.Error(err))
		}
	}

	s.publish(ctx, ticket, events.EventTicketDeleted, caller.ID, events.TicketDeletedPayload{Title: ticket.Title})
	return nil
}

// CanDeleteTicket is the role-by-state deletion rule.
func CanDeleteTicket(caller *domain.User, ticket *domain.Ticket) bool {
	switch caller.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleRequester, domain.RoleAgent, domain.RoleDirector:
		return ticket.RequesterID == caller.ID && ticket.Status == domain.StatusOpen
	}
	return false
}

// AddAttachment stores the binary and records its metadata. Size is capped
// at 5 MB before anything is written.
func (s *TicketService) AddAttachment(ctx context.Context, caller *domain.User, ticketID int64, fileName, mimeType string, size int64, r io.Reader) (*domain.Attachment, error) {
	if size <= 0 {
		return nil, apperrors.NewValidationError("empty file", nil)
	}
	if size > domain.MaxAttachmentSizeBytes {
		return nil, apperrors.NewValidationError("file exceeds 5 MB limit", map[string]any{"size_bytes": size})
	}
	ticket, err := s.getVisible(ctx, caller, ticketID)
	if err != nil {
		return nil, err
	}

	key := storage.NewKey(ticket.ID, fileName)
	written, err := s.blobs.Save(key, r)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	attachment := &domain.Attachment{
		TicketID:   ticket.ID,
		FileName:   fileName,
		MimeType:   mimeType,
		StorageKey: key,
		SizeBytes:  written,
	}
	if err := s.attachments.Create(ctx, attachment); err != nil {
		if cleanupErr := s.blobs.Delete(key); cleanupErr != nil {
			s.logger.Warn("cleanup orphaned blob", zap.String("storage_key", key), zap.Error(cleanupErr))
		}
		return nil, apperrors.MapError(err)
	}
	return attachment, nil
}

// OpenAttachment returns metadata plus a reader over the stored blob.
func (s *TicketService) OpenAttachment(ctx context.Context, caller *domain.User, attachmentID int64) (*domain.Attachment, io.ReadCloser, error) {
	attachment, err := s.attachments.GetByID(ctx, attachmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("attachment", map[string]any{"attachment_id": attachmentID})
		}
		return nil, nil, apperrors.MapError(err)
	}
	if _, err := s.getVisible(ctx, caller, attachment.TicketID); err != nil {
		return nil, nil, err
	}
	reader, err := s.blobs.Open(attachment.StorageKey)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return attachment, reader, nil
}

func (s *TicketService) getVisible(ctx context.Context, caller *domain.User, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	if !canViewTicket(caller, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return ticket, nil
}

func canViewTicket(caller *domain.User, ticket *domain.Ticket) bool {
	switch caller.Role {
	case domain.RoleAdmin, domain.RoleDirector:
		return true
	case domain.RoleAgent:
		if ticket.DestDeptID == caller.DepartmentID {
			return true
		}
		if ticket.AssigneeID != nil && *ticket.AssigneeID == caller.ID {
			return true
		}
		return ticket.RequesterID == caller.ID
	case domain.RoleRequester:
		return ticket.RequesterID == caller.ID
	}
	return false
}

func (s *TicketService) appendSystemNote(ctx context.Context, ticketID, authorID int64, kind domain.InteractionKind, content string) error {
	interaction := &domain.Interaction{
		TicketID: ticketID,
		AuthorID: authorID,
		Kind:     kind,
		Content:  content,
	}
	if err := s.interactions.Create(ctx, interaction); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *TicketService) repoFilter(filter TicketListFilter) repository.TicketFilter {
	return repository.TicketFilter{
		Statuses:   filter.Statuses,
		Priorities: filter.Priorities,
		SearchTerm: filter.SearchTerm,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
}

func (s *TicketService) list(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

func (s *TicketService) publish(ctx context.Context, ticket *domain.Ticket, eventType events.EventType, actorID int64, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		TicketID:    ticket.ID,
		ActorID:     actorID,
		Timestamp:   time.Now(),
		Payload:     payload,
		RequesterID: ticket.RequesterID,
		AssigneeID:  ticket.AssigneeID,
		DestDeptID:  ticket.DestDeptID,
	})
}

// preview truncates on rune boundaries so accented comment text never
// yields broken UTF-8 in the event payload.
func preview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
