package http

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/binwatch/internal/access"
	"github.com/spec-kit/binwatch/internal/api/http/handlers"
	"github.com/spec-kit/binwatch/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health        *handlers.HealthHandler
	Auth          *handlers.AuthHandler
	Reports       *handlers.ReportsHandler
	Users         *handlers.UsersHandler
	Notifications *handlers.NotificationsHandler
	Access        *access.Middleware
	Metrics       *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/admin/login", cfg.Auth.Login)
	authGroup.Get("/verify-email", cfg.Auth.VerifyEmail)

	session := cfg.Access.Protect(access.SessionOnly)
	verified := cfg.Access.Protect(access.Verified)
	admin := cfg.Access.Protect(access.Admin)
	superAdmin := cfg.Access.Protect(access.SuperAdmin)

	authGroup.Post("/verify/resend", session, cfg.Auth.ResendVerification)
	authGroup.Post("/verify/check", session, cfg.Auth.CheckVerification)
	authGroup.Post("/logout", session, cfg.Auth.Logout)

	app.Get("/me", session, cfg.Auth.Me)

	app.Post("/reports", verified, cfg.Reports.Submit)
	app.Get("/reports/mine", verified, cfg.Reports.ListMine)

	adminGroup := app.Group("/admin", admin)
	adminGroup.Get("/reports", cfg.Reports.List)
	adminGroup.Get("/reports/stats", cfg.Reports.Stats)
	adminGroup.Post("/reports/:id/advance", cfg.Reports.Advance)

	// User management sits under /admin but requires the super-admin role on
	// top of the group's admin gate.
	adminGroup.Get("/users", superAdmin, cfg.Users.List)
	adminGroup.Patch("/users/:uid/role", superAdmin, cfg.Users.UpdateRole)
	adminGroup.Patch("/users/:uid/region", superAdmin, cfg.Users.UpdateRegion)

	notifications := app.Group("/notifications", verified)
	notifications.Get("/", cfg.Notifications.List)
	notifications.Post("/read-all", cfg.Notifications.MarkAllRead)
	notifications.Post("/:id/read", cfg.Notifications.MarkRead)
}
