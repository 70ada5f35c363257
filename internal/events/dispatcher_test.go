package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var got []Event
	d.Subscribe(EventTicketCreated, func(_ context.Context, event Event) error {
		got = append(got, event)
		return nil
	})

	err := d.Publish(context.Background(), Event{ID: "1", Type: EventTicketCreated, TicketID: 7})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(7), got[0].TicketID)

	// Other event types are not delivered here.
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketDeleted}))
	assert.Len(t, got, 1)
}

func TestDispatcherHandlerErrorDoesNotStopOthers(t *testing.T) {
	d := NewInMemoryDispatcher()
	calls := 0
	d.Subscribe(EventTicketCommented, func(context.Context, Event) error {
		calls++
		return errors.New("first handler failed")
	})
	d.Subscribe(EventTicketCommented, func(context.Context, Event) error {
		calls++
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketCommented}))
	assert.Equal(t, 2, calls)
}

func TestDispatcherWithoutSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketClaimed}))
}
