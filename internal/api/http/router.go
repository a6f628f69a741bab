package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/asten-tickets/triage-service/internal/api/http/handlers"
	"github.com/asten-tickets/triage-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	Notifications  *handlers.NotificationsHandler
	Dashboard      *handlers.DashboardHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Get("/export.csv", auth.RequireAdmin(), cfg.Tickets.ExportCSV)
	tickets.Post("/", cfg.Tickets.SubmitTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/status", cfg.Tickets.ChangeStatus)
	tickets.Post("/:id/assign", auth.RequireAdmin(), cfg.Tickets.AssignTicket)
	tickets.Post("/:id/transfer", auth.RequireAdmin(), cfg.Tickets.TransferTicket)
	tickets.Post("/:id/category", auth.RequireAdmin(), cfg.Tickets.CorrectCategory)
	tickets.Get("/:id/assignments", auth.RequireAdmin(), cfg.Tickets.ListAssignments)

	notifications := app.Group("/notifications", cfg.AuthMiddleware.Handle)
	notifications.Get("/stream", cfg.Notifications.Stream)
	notifications.Get("/unread/count", cfg.Notifications.UnreadCount)
	notifications.Get("/unread", cfg.Notifications.ListUnread)
	notifications.Get("/", cfg.Notifications.List)
	notifications.Post("/read-all", cfg.Notifications.MarkAllRead)
	notifications.Post("/:id/read", cfg.Notifications.MarkRead)
	notifications.Post("/:id/archive", cfg.Notifications.Archive)

	dashboard := app.Group("/dashboard", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	dashboard.Get("/overview", cfg.Dashboard.Overview)
	dashboard.Get("/categories", cfg.Dashboard.Categories)
	dashboard.Get("/confidence-bands", cfg.Dashboard.ConfidenceBands)
	dashboard.Get("/confidence-distribution", cfg.Dashboard.Distribution)
	dashboard.Get("/team-evolution", cfg.Dashboard.TeamEvolution)
	dashboard.Get("/corrections", cfg.Dashboard.Corrections)
}
