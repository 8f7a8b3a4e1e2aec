package handlers

import (
	"circuitee/internal/common/metrics"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
)

// Metrics serves the Prometheus registry.
func Metrics(r *metrics.Registry) fiber.Handler {
	return adaptor.HTTPHandler(r.Handler())
}
