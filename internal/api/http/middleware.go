package http

import (
	"context"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/helpdesk-br/chamados-service/internal/observability"
	apperrors "github.com/helpdesk-br/chamados-service/pkg/util"
)

// RegisterMiddlewares attaches the global chain: request timeout, error
// envelope rendering and request logging with counters.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorEnvelopeMiddleware(logger, metrics))
	app.Use(observability.RequestLogger(logger, metrics))
}

// requestTimeoutMiddleware bounds each request's UserContext. Streaming
// routes under /events are exempt: their lifetime belongs to the connection,
// not the request, and fasthttp runs the body stream after the handler (and
// this middleware's cancel) have returned.
func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if strings.HasPrefix(c.Path(), "/events/") {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// errorEnvelopeMiddleware recovers panics and renders every error through
// the single JSON envelope {"error":{code,message,details?}}.
func errorEnvelopeMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					zap.Any("panic", r),
					zap.String("path", c.Path()),
					zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err == nil {
				return
			}
			domainErr := apperrors.ToDomainError(err)
			if metrics != nil {
				metrics.RecordError(c.Path(), c.Method(), domainErr.Code)
			}
			response := fiber.Map{"error": fiber.Map{
				"code":    domainErr.Code,
				"message": domainErr.Message,
			}}
			if len(domainErr.Details) > 0 {
				response["error"].(fiber.Map)["details"] = domainErr.Details
			}
			if domainErr.HTTPStatus >= 500 {
				logger.Error("request failed",
					zap.String("method", c.Method()),
					zap.String("path", c.Path()),
					zap.Error(domainErr))
			}
			c.Status(domainErr.HTTPStatus)
			_ = c.JSON(response)
			err = nil
		}()
		return c.Next()
	}
}
