package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clubhouse-ops/membership-admin/internal/api/http/handlers"
	"github.com/clubhouse-ops/membership-admin/internal/auth"
	"github.com/clubhouse-ops/membership-admin/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Payments       *handlers.PaymentsHandler
	Reports        *handlers.ReportsHandler
	Metrics        *handlers.MetricsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics.Snapshot)
	}

	app.Post("/auth/login", cfg.Auth.Login)

	api := app.Group("/api", cfg.AuthMiddleware.Handle)

	api.Get("/dashboard", cfg.Reports.Dashboard)

	users := api.Group("/users")
	users.Get("/", cfg.Users.List)
	users.Get("/search", cfg.Users.Search)
	users.Post("/", cfg.Users.Create)
	users.Get("/:id", cfg.Users.Get)
	users.Patch("/:id", cfg.Users.Update)
	users.Delete("/:id", auth.RequireRole(domain.OperatorRoleAdmin), cfg.Users.Delete)
	users.Get("/:id/payments", cfg.Users.Payments)

	api.Get("/plans", cfg.Payments.Plans)

	payments := api.Group("/payments")
	payments.Get("/", cfg.Payments.List)
	payments.Post("/", cfg.Payments.Create)
	payments.Patch("/:id", cfg.Payments.Update)

	reports := api.Group("/reports")
	reports.Get("/summary", cfg.Reports.Summary)
	reports.Get("/payments.csv", cfg.Reports.PaymentsCSV)
	reports.Get("/payments/:type", cfg.Reports.ReportCSV)
	reports.Get("/users.csv", cfg.Reports.UsersCSV)
}
