package handlers

import (
	"bufio"
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/helpdesk-br/chamados-service/internal/auth"
	"github.com/helpdesk-br/chamados-service/internal/realtime"
	apperrors "github.com/helpdesk-br/chamados-service/pkg/util"
)

const keepaliveInterval = 25 * time.Second

// EventsHandler streams ticket events over SSE. Clients subscribe to one
// scope and refetch the affected ticket when an event arrives.
type EventsHandler struct {
	feed   *realtime.Feed
	logger *zap.Logger
}

// NewEventsHandler constructs handler.
func NewEventsHandler(feed *realtime.Feed, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{feed: feed, logger: logger}
}

// Stream GET /events/tickets?scope=requester|assignee|department|all&id=N.
func (h *EventsHandler) Stream(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	channel, err := h.resolveChannel(c, principal)
	if err != nil {
		return err
	}

	// The stream writer runs after this handler returns, so the
	// subscription must not be bound to the request context: its cancel
	// would tear the stream down immediately. The stream ends when the
	// client goes away (write failure), the subscription closes, or the
	// server shuts down.
	sub := h.feed.Subscribe(context.Background(), channel)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	userID := principal.User.ID
	shutdown := c.Context().Done()
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer sub.Close()
		pumpEvents(w, sub.Channel(), shutdown, keepaliveInterval)
		h.logger.Debug("event stream closed",
			zap.Int64("user_id", userID),
			zap.String("channel", channel))
	}))
	return nil
}

// pumpEvents forwards pub/sub messages as SSE frames, inserting keepalive
// comments during idle stretches, until the message channel closes, the done
// channel fires, or a write to the client fails.
func pumpEvents(w *bufio.Writer, messages <-chan *redis.Message, done <-chan struct{}, keepalive time.Duration) {
	ticker := time.NewTicker(keepalive)
	defer ticker.Stop()

	for {
		select {
		case msg, open := <-messages:
			if !open {
				return
			}
			if _, err := fmt.Fprintf(w, "event: ticket\ndata: %s\n\n", msg.Payload); err != nil {
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
		case <-done:
			return
		}
		if err := w.Flush(); err != nil {
			return
		}
	}
}

// resolveChannel maps the requested scope to a pub/sub channel, enforcing
// that callers only subscribe to feeds they are allowed to see.
func (h *EventsHandler) resolveChannel(c *fiber.Ctx, principal *auth.Principal) (string, error) {
	switch scope := c.Query("scope", "requester"); scope {
	case "requester":
		return realtime.ChannelForRequester(principal.User.ID), nil
	case "assignee":
		if !principal.IsAttendant() {
			return "", apperrors.NewForbidden("attendant role required")
		}
		return realtime.ChannelForAssignee(principal.User.ID), nil
	case "department":
		if !principal.IsAttendant() && !principal.IsDirector() {
			return "", apperrors.NewForbidden("staff role required")
		}
		deptID := principal.User.DepartmentID
		if principal.IsAdmin() || principal.IsDirector() {
			if raw := c.Query("id"); raw != "" {
				parsed, err := parseQueryID(raw)
				if err != nil {
					return "", err
				}
				deptID = parsed
			}
		}
		return realtime.ChannelForDepartment(deptID), nil
	case "all":
		if !principal.IsAdmin() && !principal.IsDirector() {
			return "", apperrors.NewForbidden("admin or director role required")
		}
		return realtime.ChannelAll, nil
	default:
		return "", apperrors.NewValidationError("unknown scope", map[string]any{"scope": scope})
	}
}

func parseQueryID(raw string) (int64, error) {
	var id int64
	if _, err := fmt.Sscanf(raw, "%d", &id); err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid id", nil)
	}
	return id, nil
}
