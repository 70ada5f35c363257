package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from TicketStatus
		to   TicketStatus
		want bool
	}{
		{"open to in progress", StatusOpen, StatusInProgress, true},
		{"open to cancelled", StatusOpen, StatusCancelled, true},
		{"open straight to done", StatusOpen, StatusDone, false},
		{"open to waiting", StatusOpen, StatusWaiting, false},
		{"in progress to waiting", StatusInProgress, StatusWaiting, true},
		{"in progress to done", StatusInProgress, StatusDone, true},
		{"in progress to cancelled", StatusInProgress, StatusCancelled, true},
		{"in progress back to open", StatusInProgress, StatusOpen, false},
		{"waiting resumes", StatusWaiting, StatusInProgress, true},
		{"waiting to cancelled", StatusWaiting, StatusCancelled, true},
		{"waiting to done", StatusWaiting, StatusDone, true},
		{"done to closed", StatusDone, StatusClosed, true},
		{"done reopened", StatusDone, StatusInProgress, false},
		{"closed is terminal", StatusClosed, StatusInProgress, false},
		{"cancelled is terminal", StatusCancelled, StatusOpen, false},
		{"same status is not a transition", StatusOpen, StatusOpen, false},
		{"unknown status", TicketStatus("inexistente"), StatusOpen, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestRequiresJustification(t *testing.T) {
	assert.True(t, RequiresJustification(StatusWaiting))
	assert.True(t, RequiresJustification(StatusDone))
	assert.False(t, RequiresJustification(StatusInProgress))
	assert.False(t, RequiresJustification(StatusCancelled))
	assert.False(t, RequiresJustification(StatusClosed))
}

func TestTerminal(t *testing.T) {
	for status, terminal := range map[TicketStatus]bool{
		StatusOpen:       false,
		StatusInProgress: false,
		StatusWaiting:    false,
		StatusDone:       false,
		StatusClosed:     true,
		StatusCancelled:  true,
	} {
		assert.Equal(t, terminal, status.Terminal(), "status %s", status)
	}
}
