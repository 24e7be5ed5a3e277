package middleware

import (
	"strings"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
)

// MetricsMiddleware records HTTP metrics for every route except the scrape
// endpoint and static assets.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if path == "/metrics" || strings.HasPrefix(path, "/static/") {
			return c.Next()
		}
		return prom.Middleware(c)
	}
}
