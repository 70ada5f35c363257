package events

import (
	"time"

	"github.com/helpdesk-br/chamados-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketClaimed       EventType = "ticket_claimed"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketCommented     EventType = "ticket_commented"
	EventTicketDeleted       EventType = "ticket_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int64       `json:"ticket_id"`
	ActorID   int64       `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`

	// Routing hints for the realtime feed; not serialized to clients.
	RequesterID int64  `json:"-"`
	AssigneeID  *int64 `json:"-"`
	DestDeptID  int64  `json:"-"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	Priority      domain.TicketPriority `json:"priority"`
	DestDeptID    int64                 `json:"dest_department_id"`
	RequesterName string                `json:"requester_name"`
}

// TicketClaimedPayload payload.
type TicketClaimedPayload struct {
	AgentID   int64  `json:"agent_id"`
	AgentName string `json:"agent_name"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus     domain.TicketStatus `json:"old_status"`
	NewStatus     domain.TicketStatus `json:"new_status"`
	Justification string              `json:"justification,omitempty"`
}

// TicketCommentedPayload payload.
type TicketCommentedPayload struct {
	InteractionID int64  `json:"interaction_id"`
	AuthorName    string `json:"author_name"`
	Preview       string `json:"preview"`
}

// TicketDeletedPayload payload.
type TicketDeletedPayload struct {
	Title string `json:"title"`
}
