package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/helpdesk-br/chamados-service/internal/events"
)

// Channel names scope the change feed: per requester, per assignee, per
// destination department, or all tickets.
func ChannelForRequester(userID int64) string { return fmt.Sprintf("tickets:requester:%d", userID) }
func ChannelForAssignee(userID int64) string  { return fmt.Sprintf("tickets:assignee:%d", userID) }
func ChannelForDepartment(deptID int64) string {
	return fmt.Sprintf("tickets:department:%d", deptID)
}

// ChannelAll carries every ticket change.
const ChannelAll = "tickets:all"

// Feed bridges in-process domain events onto redis pub/sub so that connected
// clients can re-fetch their lists on any change.
type Feed struct {
	client *redis.Client
	logger *zap.Logger
}

// NewFeed creates the feed publisher.
func NewFeed(client *redis.Client, logger *zap.Logger) *Feed {
	return &Feed{client: client, logger: logger}
}

// RegisterHandlers subscribes the feed to every ticket event type.
func (f *Feed) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	for _, eventType := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketClaimed,
		events.EventTicketStatusChanged,
		events.EventTicketCommented,
		events.EventTicketDeleted,
	} {
		dispatcher.Subscribe(eventType, f.publish)
	}
}

func (f *Feed) publish(ctx context.Context, event events.Event) error {
	if f.client == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		f.logger.Error("marshal realtime event", zap.Error(err))
		return err
	}

	channels := []string{
		ChannelAll,
		ChannelForRequester(event.RequesterID),
		ChannelForDepartment(event.DestDeptID),
	}
	if event.AssigneeID != nil {
		channels = append(channels, ChannelForAssignee(*event.AssigneeID))
	}

	for _, channel := range channels {
		if err := f.client.Publish(ctx, channel, payload).Err(); err != nil {
			f.logger.Warn("publish realtime event",
				zap.String("channel", channel),
				zap.String("event_type", string(event.Type)),
				zap.Error(err))
		}
	}
	return nil
}

// Subscribe opens a pub/sub subscription on the given channel. The caller
// owns the returned subscription and must close it.
func (f *Feed) Subscribe(ctx context.Context, channel string) *redis.PubSub {
	return f.client.Subscribe(ctx, channel)
}
