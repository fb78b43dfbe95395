package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Dashboard      *handlers.DashboardHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics.Handler())
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/logout", cfg.AuthMiddleware.Handle, cfg.Users.Logout)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Users.Me)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, cfg.Users.ChangePassword)

	api := app.Group("/api")
	api.Get("/health", cfg.Health.Status)

	protected := api.Group("", cfg.AuthMiddleware.Handle)
	protected.Get("/dashboard", cfg.Dashboard.Dashboard)
	protected.Get("/stats/overview", cfg.Dashboard.Overview)

	protected.Get("/tickets", cfg.Tickets.ListTickets)
	protected.Post("/tickets", cfg.Tickets.CreateTicket)
	protected.Get("/tickets/:id", cfg.Tickets.GetTicket)
	protected.Post("/tickets/:id/update", cfg.Tickets.UpdateTicket)
	protected.Post("/tickets/:id/comments", cfg.Tickets.AddComment)

	protected.Get("/users/technicians", auth.RequireTechnician(), cfg.Users.ListTechnicians)
	protected.Get("/users", auth.RequireAdmin(), cfg.Users.ListUsers)
}

// NewApp builds a fiber app with middlewares and routes registered.
func NewApp(name string, logger *zap.Logger, timeout time.Duration, cfg RouteConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               name,
		DisableStartupMessage: true,
	})
	RegisterMiddlewares(app, logger, cfg.Metrics, timeout)
	RegisterRoutes(app, cfg)
	return app
}
