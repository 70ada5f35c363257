package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-br/chamados-service/internal/api/http/handlers"
	"github.com/helpdesk-br/chamados-service/internal/auth"
	"github.com/helpdesk-br/chamados-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	AdminUsers     *handlers.AdminUsersHandler
	Reference      *handlers.ReferenceHandler
	Stats          *handlers.StatsHandler
	Events         *handlers.EventsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/counters", cfg.Health.Counters)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)

	authed := authGroup.Group("", cfg.AuthMiddleware.Handle)
	authed.Post("/password/change", cfg.Auth.ChangePassword)
	authed.Get("/me", cfg.Auth.Me)

	// Every route below requires a session with a current password.
	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequirePasswordCurrent())

	tickets := protected.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("/mine", cfg.Tickets.ListMine)
	tickets.Get("/assigned", auth.RequireRole(domain.RoleAgent, domain.RoleAdmin), cfg.Tickets.ListAssigned)
	tickets.Get("/queue", auth.RequireRole(domain.RoleAgent, domain.RoleAdmin, domain.RoleDirector), cfg.Tickets.ListQueue)
	tickets.Get("/attachments/:id", cfg.Tickets.DownloadAttachment)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Delete("/:id", cfg.Tickets.DeleteTicket)
	tickets.Post("/:id/claim", auth.RequireRole(domain.RoleAgent, domain.RoleAdmin), cfg.Tickets.ClaimTicket)
	tickets.Patch("/:id/status", auth.RequireRole(domain.RoleAgent, domain.RoleAdmin), cfg.Tickets.ChangeStatus)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)
	tickets.Post("/:id/attachments", cfg.Tickets.UploadAttachment)

	protected.Get("/departments", cfg.Reference.ListDepartments)
	protected.Get("/branches", cfg.Reference.ListBranches)

	protected.Get("/stats/overview",
		auth.RequireRole(domain.RoleAgent, domain.RoleAdmin, domain.RoleDirector),
		cfg.Stats.Overview)

	protected.Get("/events/tickets", cfg.Events.Stream)

	admin := protected.Group("/admin", auth.RequireRole(domain.RoleAdmin))
	admin.Post("/users", cfg.AdminUsers.CreateUser)
	admin.Get("/users", cfg.AdminUsers.ListUsers)
	admin.Put("/users/:id", cfg.AdminUsers.UpdateUser)
	admin.Delete("/users/:id", cfg.AdminUsers.DeleteUser)
	admin.Post("/users/:id/password/reset", cfg.AdminUsers.ResetPassword)
	admin.Post("/users/:id/username", cfg.AdminUsers.NormalizeUsername)
}
