package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	StatusOpen       TicketStatus = "aberto"
	StatusInProgress TicketStatus = "em_andamento"
	StatusWaiting    TicketStatus = "aguardando"
	StatusDone       TicketStatus = "concluido"
	StatusClosed     TicketStatus = "fechado"
	StatusCancelled  TicketStatus = "cancelado"
)

// Terminal reports whether no further transitions leave the state.
func (s TicketStatus) Terminal() bool {
	return s == StatusClosed || s == StatusCancelled
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	PriorityLow    TicketPriority = "baixa"
	PriorityMedium TicketPriority = "media"
	PriorityHigh   TicketPriority = "alta"
)

// Valid reports whether the priority is a known value.
func (p TicketPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Ticket is the aggregate for support requests (table chamados).
// RequesterID is immutable after creation; AssigneeID stays nil until a
// claim succeeds and is never cleared by a normal transition.
type Ticket struct {
	ID           int64
	Title        string
	Description  string
	Status       TicketStatus
	Priority     TicketPriority
	RequesterID  int64
	AssigneeID   *int64
	OriginDeptID int64
	DestDeptID   int64
	BranchID     int64
	OpenedAt     time.Time
	ClaimedAt    *time.Time
	ClosedAt     *time.Time
	UpdatedAt    time.Time

	// Display names resolved by list queries; not persisted on chamados.
	RequesterName string
	AssigneeName  *string
	OriginDept    string
	DestDept      string
}

var allowedTransitions = map[TicketStatus][]TicketStatus{
	StatusOpen:       {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusWaiting, StatusDone, StatusCancelled},
	StatusWaiting:    {StatusInProgress, StatusDone, StatusCancelled},
	StatusDone:       {StatusClosed},
	StatusClosed:     {},
	StatusCancelled:  {},
}

// CanTransition reports whether moving from current to next is legal.
func CanTransition(current, next TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// RequiresJustification reports whether entering the state demands a
// non-empty comment recorded in the same operation.
func RequiresJustification(next TicketStatus) bool {
	return next == StatusWaiting || next == StatusDone
}
