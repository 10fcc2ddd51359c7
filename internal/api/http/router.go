package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/visitor-access/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Visitors *handlers.VisitorsHandler
	Visits   *handlers.VisitsHandler
	Reports  *handlers.ReportsHandler
	Gatherer prometheus.Gatherer
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")

	visitors := api.Group("/visitors")
	visitors.Get("/", cfg.Visitors.Search)
	visitors.Get("/:national_id", cfg.Visitors.Get)

	visits := api.Group("/visits")
	visits.Post("/", cfg.Visits.RegisterEntry)
	visits.Get("/active", cfg.Visits.ListActive)
	visits.Get("/history", cfg.Visits.History)
	visits.Post("/:id/exit", cfg.Visits.RegisterExit)

	reports := api.Group("/reports")
	reports.Get("/visits", cfg.Reports.Visits)
	reports.Get("/visits/export", cfg.Reports.Export)
}
