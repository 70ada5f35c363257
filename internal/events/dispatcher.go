package events

import (
	"context"
	"sync"
)

// EventHandler reacts to a published event. Returning an error never stops
// delivery to the remaining handlers.
type EventHandler func(context.Context, Event) error

// Dispatcher decouples ticket mutations from their side effects (email
// notifications, realtime feed publication).
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

type inMemoryDispatcher struct {
	mu          sync.RWMutex
	subscribers map[EventType][]EventHandler
}

// NewInMemoryDispatcher returns a synchronous in-process dispatcher.
func NewInMemoryDispatcher() Dispatcher {
	return &inMemoryDispatcher{subscribers: make(map[EventType][]EventHandler)}
}

func (d *inMemoryDispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	// Snapshot so a handler that subscribes mid-delivery cannot deadlock.
	handlers := make([]EventHandler, len(d.subscribers[event.Type]))
	copy(handlers, d.subscribers[event.Type])
	d.mu.RUnlock()

	for _, handler := range handlers {
		_ = handler(ctx, event)
	}
	return nil
}

func (d *inMemoryDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subscribers[eventType] = append(d.subscribers[eventType], handler)
}
