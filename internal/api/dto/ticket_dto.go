package dto

import (
	"time"

	"github.com/helpdesk-br/chamados-service/internal/domain"
	"github.com/helpdesk-br/chamados-service/internal/service"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title            string                `json:"title"`
	Description      string                `json:"description"`
	Priority         domain.TicketPriority `json:"priority"`
	DestDepartmentID int64                 `json:"dest_department_id"`
}

// ChangeStatusRequest payload.
type ChangeStatusRequest struct {
	Status        domain.TicketStatus `json:"status"`
	Justification string              `json:"justification"`
}

// CreateCommentRequest payload. The idempotency key is echoed by clients on
// retries so a resubmitted comment is stored once.
type CreateCommentRequest struct {
	Content        string `json:"content"`
	IdempotencyKey string `json:"idempotency_key"`
}

// TicketSummary response.
type TicketSummary struct {
	ID            int64                 `json:"id"`
	Title         string                `json:"title"`
	Status        domain.TicketStatus   `json:"status"`
	Priority      domain.TicketPriority `json:"priority"`
	RequesterName string                `json:"requester_name"`
	AssigneeName  *string               `json:"assignee_name"`
	OriginDept    string                `json:"origin_department"`
	DestDept      string                `json:"dest_department"`
	OpenedAt      time.Time             `json:"opened_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides the ticket with its thread and attachments.
type TicketDetailResponse struct {
	ID            int64                 `json:"id"`
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	Status        domain.TicketStatus   `json:"status"`
	Priority      domain.TicketPriority `json:"priority"`
	RequesterID   int64                 `json:"requester_id"`
	RequesterName string                `json:"requester_name"`
	AssigneeID    *int64                `json:"assignee_id"`
	AssigneeName  *string               `json:"assignee_name"`
	OriginDept    string                `json:"origin_department"`
	DestDept      string                `json:"dest_department"`
	OpenedAt      time.Time             `json:"opened_at"`
	ClaimedAt     *time.Time            `json:"claimed_at"`
	ClosedAt      *time.Time            `json:"closed_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
	Interactions  []InteractionResponse `json:"interactions"`
	Attachments   []AttachmentResponse  `json:"attachments"`
}

// InteractionResponse represents one thread entry.
type InteractionResponse struct {
	ID         int64                  `json:"id"`
	Kind       domain.InteractionKind `json:"kind"`
	AuthorID   int64                  `json:"author_id"`
	AuthorName string                 `json:"author_name"`
	Content    string                 `json:"content"`
	CreatedAt  time.Time              `json:"created_at"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	ID         int64     `json:"id"`
	FileName   string    `json:"file_name"`
	MimeType   string    `json:"mime_type"`
	SizeBytes  int64     `json:"size_bytes"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// NewTicketSummary maps a domain ticket to its list representation.
func NewTicketSummary(t *domain.Ticket) TicketSummary {
	return TicketSummary{
		ID:            t.ID,
		Title:         t.Title,
		Status:        t.Status,
		Priority:      t.Priority,
		RequesterName: t.RequesterName,
		AssigneeName:  t.AssigneeName,
		OriginDept:    t.OriginDept,
		DestDept:      t.DestDept,
		OpenedAt:      t.OpenedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

// NewTicketSummaries maps a ticket slice.
func NewTicketSummaries(tickets []domain.Ticket) []TicketSummary {
	out := make([]TicketSummary, 0, len(tickets))
	for i := range tickets {
		out = append(out, NewTicketSummary(&tickets[i]))
	}
	return out
}

// NewTicketDetail maps a full ticket detail.
func NewTicketDetail(detail *service.TicketDetail) TicketDetailResponse {
	t := detail.Ticket
	resp := TicketDetailResponse{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		Status:        t.Status,
		Priority:      t.Priority,
		RequesterID:   t.RequesterID,
		RequesterName: t.RequesterName,
		AssigneeID:    t.AssigneeID,
		AssigneeName:  t.AssigneeName,
		OriginDept:    t.OriginDept,
		DestDept:      t.DestDept,
		OpenedAt:      t.OpenedAt,
		ClaimedAt:     t.ClaimedAt,
		ClosedAt:      t.ClosedAt,
		UpdatedAt:     t.UpdatedAt,
		Interactions:  make([]InteractionResponse, 0, len(detail.Interactions)),
		Attachments:   make([]AttachmentResponse, 0, len(detail.Attachments)),
	}
	for _, in := range detail.Interactions {
		resp.Interactions = append(resp.Interactions, NewInteractionResponse(&in))
	}
	for _, at := range detail.Attachments {
		resp.Attachments = append(resp.Attachments, NewAttachmentResponse(&at))
	}
	return resp
}

// NewInteractionResponse maps a thread entry.
func NewInteractionResponse(in *domain.Interaction) InteractionResponse {
	return InteractionResponse{
		ID:         in.ID,
		Kind:       in.Kind,
		AuthorID:   in.AuthorID,
		AuthorName: in.AuthorName,
		Content:    in.Content,
		CreatedAt:  in.CreatedAt,
	}
}

// NewAttachmentResponse maps attachment metadata.
func NewAttachmentResponse(at *domain.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:         at.ID,
		FileName:   at.FileName,
		MimeType:   at.MimeType,
		SizeBytes:  at.SizeBytes,
		UploadedAt: at.UploadedAt,
	}
}
