package handler

import (
	"github.com/foliocms/folio/backend/internal/service"
	"github.com/gofiber/fiber/v2"
)

// jsonBodyLimit caps form submissions; settings posts are a few hundred bytes.
const jsonBodyLimit = 64 * 1024

// Routes holds everything RegisterRoutes mounts.
type Routes struct {
	Tokens       *service.TokenService
	Accounts     AccountAccess
	BookSettings *BookSettingsHandler
	People       *PeopleHandler
	Health       *HealthHandler
	Metrics      *MetricsHandler

	MetricsEnabled bool
	// MetricsToken, when set, guards /metrics with a static bearer token.
	MetricsToken string
}

// RegisterRoutes mounts health, metrics and the token-protected admin pages.
func RegisterRoutes(app *fiber.App, r Routes) {
	app.Get("/health", r.Health.Liveness)
	app.Get("/health/ready", r.Health.Readiness)

	if r.MetricsEnabled {
		if r.MetricsToken != "" {
			app.Get("/metrics", BearerTokenMiddleware(r.MetricsToken), r.Metrics.Handler())
		} else {
			app.Get("/metrics", r.Metrics.Handler())
		}
	}

	admin := app.Group("/admin", AuthMiddleware(r.Tokens, r.Accounts))

	siteConfig := RequirePermission(service.PermissionAdministerSiteConfig)
	admin.Get("/config/content/book", siteConfig, r.BookSettings.GetForm)
	admin.Post("/config/content/book", siteConfig, BodyLimitMiddleware(jsonBodyLimit), r.BookSettings.Submit)

	admin.Get("/people", RequirePermission(service.PermissionAdministerUsers), r.People.List)
}
