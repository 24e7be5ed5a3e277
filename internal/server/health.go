package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
	statusDisabled  = "disabled"

	readinessTimeout = 5 * time.Second
)

// dependency is one backing service probed by the readiness check. Optional
// dependencies report "disabled" when not configured and never fail readiness
// on their own unless configured and unreachable.
type dependency struct {
	name    string
	enabled func() bool
	ping    func(context.Context) error
}

func (s *Server) dependencies() []dependency {
	return []dependency{
		{
			name:    "database",
			enabled: func() bool { return true },
			ping: func(ctx context.Context) error {
				sqlDB, err := s.db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			},
		},
		{
			name:    "redis",
			enabled: s.cache.Available,
			ping:    s.cache.Ping,
		},
	}
}

// LivenessCheck answers as long as the process can serve requests.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "up", "time": time.Now().UTC()})
}

// ReadinessCheck pings every dependency in parallel and returns 503 if any
// configured one is unreachable.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), readinessTimeout)
	defer cancel()

	deps := s.dependencies()
	results := make([]string, len(deps))
	var g errgroup.Group
	for i, dep := range deps {
		if !dep.enabled() {
			results[i] = statusDisabled
			continue
		}
		g.Go(func() error {
			results[i] = statusHealthy
			if err := dep.ping(ctx); err != nil {
				results[i] = statusUnhealthy
			}
			return nil
		})
	}
	_ = g.Wait()

	overall, code := statusHealthy, fiber.StatusOK
	checks := fiber.Map{}
	for i, dep := range deps {
		checks[dep.name] = results[i]
		if results[i] == statusUnhealthy {
			overall, code = statusUnhealthy, fiber.StatusServiceUnavailable
		}
	}

	return c.Status(code).JSON(fiber.Map{
		"status": overall,
		"checks": checks,
		"time":   time.Now().UTC(),
	})
}
