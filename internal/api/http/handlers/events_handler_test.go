package handlers

import (
	"bufio"
	"bytes"
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/helpdesk-br/chamados-service/internal/domain"
	"github.com/helpdesk-br/chamados-service/internal/realtime"
)

func TestPumpEventsWritesFrames(t *testing.T) {
	messages := make(chan *redis.Message, 2)
	messages <- &redis.Message{Payload: `{"type":"ticket_created","ticket_id":1}`}
	messages <- &redis.Message{Payload: `{"type":"ticket_claimed","ticket_id":1}`}
	close(messages)

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	pumpEvents(w, messages, make(chan struct{}), time.Minute)

	out := buf.String()
	assert.Contains(t, out, "event: ticket\ndata: {\"type\":\"ticket_created\",\"ticket_id\":1}\n\n")
	assert.Contains(t, out, `"ticket_claimed"`)
}

func TestPumpEventsStopsOnDone(t *testing.T) {
	done := make(chan struct{})
	close(done)

	var buf bytes.Buffer
	pumpEvents(bufio.NewWriter(&buf), make(chan *redis.Message), done, time.Minute)
	assert.Empty(t, buf.String())
}

func TestPumpEventsSendsKeepalive(t *testing.T) {
	messages := make(chan *redis.Message)
	done := make(chan struct{})
	var buf bytes.Buffer
	go func() {
		time.Sleep(30 * time.Millisecond)
		close(done)
	}()
	pumpEvents(bufio.NewWriter(&buf), messages, done, 5*time.Millisecond)
	assert.Contains(t, buf.String(), ": keepalive\n\n")
}

// The stream must survive the handler chain returning: the request context
// is canceled at that point, but the connection stays open until the client
// goes away or the server shuts down.
func TestStreamOutlivesRequestContext(t *testing.T) {
	admin := &domain.User{ID: 7, Role: domain.RoleAdmin, Active: true}
	app, handle, token := authedApp(t, map[int64]*domain.User{admin.ID: admin})

	feed := realtime.NewFeed(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), zap.NewNop())
	handler := NewEventsHandler(feed, zap.NewNop())

	app.Get("/events/tickets", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithCancel(c.UserContext())
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}, handle, handler.Stream)

	req := httptest.NewRequest("GET", "/events/tickets?scope=all", nil)
	req.Header.Set("Authorization", token(admin))

	// A timeout means the stream is still open past the handler return; a
	// completed response means it died with the request context.
	_, err := app.Test(req, 250)
	require.Error(t, err)
}

func TestStreamScopeAuthorization(t *testing.T) {
	requester := &domain.User{ID: 10, Role: domain.RoleRequester, DepartmentID: 2, Active: true}
	app, handle, token := authedApp(t, map[int64]*domain.User{requester.ID: requester})

	feed := realtime.NewFeed(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), zap.NewNop())
	handler := NewEventsHandler(feed, zap.NewNop())
	app.Get("/events/tickets", handle, handler.Stream)

	for _, scope := range []string{"assignee", "department", "all"} {
		req := httptest.NewRequest("GET", "/events/tickets?scope="+scope, nil)
		req.Header.Set("Authorization", token(requester))
		resp, err := app.Test(req)
		require.NoError(t, err, scope)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode, scope)
	}

	req := httptest.NewRequest("GET", "/events/tickets?scope=estranho", nil)
	req.Header.Set("Authorization", token(requester))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
