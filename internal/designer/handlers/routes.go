package handlers

import (
	"circuitee/internal/common/metrics"

	"github.com/gofiber/fiber/v3"
)

// Register mounts health, metrics and the design API on app.
func Register(app *fiber.App, designs *DesignHandler, health *HealthHandler, reg *metrics.Registry) {
	// ============================================================
	// Health Check Routes
	// ============================================================

	app.Get("/health/live", health.Liveness)
	app.Get("/health/ready", health.Readiness)
	app.Get("/metrics", Metrics(reg))

	// ============================================================
	// Design Routes
	// ============================================================

	api := app.Group("/api/v1")
	api.Post("/designs", designs.Create)
	api.Get("/designs/:id", designs.Get)
	api.Delete("/designs/:id", designs.Delete)
	api.Post("/designs/:id/commands", designs.Command)
	api.Post("/designs/:id/import", designs.Import)
	api.Get("/designs/:id/share", designs.Share)
}
