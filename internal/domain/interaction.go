package domain

import "time"

// InteractionKind differentiates user comments from system notes.
type InteractionKind string

const (
	InteractionComment      InteractionKind = "comentario"
	InteractionStatusChange InteractionKind = "mudanca_status"
	InteractionAssignment   InteractionKind = "atribuicao"
	InteractionSystem       InteractionKind = "sistema"
)

// Interaction is an append-only entry in a ticket's thread (table interacao).
// Interactions are never edited or deleted.
type Interaction struct {
	ID        int64
	TicketID  int64
	AuthorID  int64
	Kind      InteractionKind
	Content   string
	CreatedAt time.Time

	AuthorName string
}
