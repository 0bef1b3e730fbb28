package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Staff          *handlers.StaffHandler
	Categories     *handlers.CategoriesHandler
	Tickets        *handlers.TicketsHandler
	StaffTickets   *handlers.StaffTicketsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	api := app.Group("/api", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	adminOnly := auth.RequireRole(domain.RoleAdmin)

	api.Get("/users/id/:id", cfg.Users.GetByID)
	api.Get("/users/by-email", cfg.Users.GetByEmail)
	api.Get("/categories", cfg.Categories.List)

	management := api.Group("/management", adminOnly)
	management.Get("/users", cfg.Staff.ListUsers)
	management.Get("/staff", cfg.Staff.ListStaff)
	management.Post("/staff", cfg.Staff.CreateStaff)
	management.Get("/categories", cfg.Categories.Summaries)
	management.Post("/categories", cfg.Categories.Create)

	tickets := api.Group("/tickets")
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Post("/", auth.RequireRole(domain.RoleClient), cfg.Tickets.CreateTicket)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Put("/:id/category", adminOnly, cfg.Tickets.AssignCategory)
	tickets.Put("/:id", auth.RequireRole(domain.RoleAdmin, domain.RoleStaff), cfg.Tickets.UpdateTicket)
	tickets.Delete("/:id", adminOnly, cfg.Tickets.DeleteTicket)
	tickets.Get("/:id/messages", cfg.Tickets.ListMessages)
	tickets.Post("/:id/messages", cfg.Tickets.AddMessage)

	api.Get("/staff/:id/tickets", auth.RequireRole(domain.RoleAdmin, domain.RoleStaff), cfg.StaffTickets.ListStaffTickets)

	notifications := api.Group("/notifications", auth.RequireRole(domain.RoleStaff))
	notifications.Get("/", cfg.StaffTickets.ListNotifications)
	notifications.Put("/:id/read", cfg.StaffTickets.MarkNotificationRead)
}
