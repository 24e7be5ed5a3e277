package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy decides what happens to a request when the counter store errors.
type FailPolicy int

const (
	FailOpen FailPolicy = iota
	FailClosed
)

// ErrRateLimited is rendered to clients that exceed a limit.
var ErrRateLimited = fiber.NewError(fiber.StatusTooManyRequests, "Too many requests, please try again later.")

var errNoStore = errors.New("rate limit store not configured")

// Rule is a fixed-window limit on one named action.
type Rule struct {
	Name   string
	Limit  int
	Window time.Duration
	Policy FailPolicy
}

// Limiter counts submissions per client in Redis. A disabled limiter allows everything.
type Limiter struct {
	rdb     *redis.Client
	enabled bool
}

func NewLimiter(rdb *redis.Client, enabled bool) *Limiter {
	return &Limiter{rdb: rdb, enabled: enabled}
}

// Allow increments the counter for (rule, client) and reports whether it is
// still within rule.Limit. The window starts with the first hit.
func (l *Limiter) Allow(ctx context.Context, rule Rule, client string) (bool, error) {
	if l == nil || !l.enabled {
		return true, nil
	}
	if l.rdb == nil {
		return false, errNoStore
	}

	key := fmt.Sprintf("rl:%s:%s", rule.Name, client)
	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, rule.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return incr.Val() <= int64(rule.Limit), nil
}

// Handler limits form submissions; GET and HEAD only render forms and pass through.
// Clients are keyed by user ID when signed in, otherwise by remote IP.
func (l *Limiter) Handler(rule Rule) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodGet || c.Method() == fiber.MethodHead {
			return c.Next()
		}

		client := "ip:" + c.IP()
		if uid, ok := c.Locals("userID").(uint); ok && uid != 0 {
			client = fmt.Sprintf("user:%d", uid)
		}
		r := rule
		if r.Name == "" {
			r.Name = c.Path()
		}

		allowed, err := l.Allow(c.UserContext(), r, client)
		switch {
		case err != nil && rule.Policy == FailClosed:
			Logger.WarnContext(c.UserContext(), "rate limit store unavailable, rejecting",
				slog.String("rule", r.Name),
				slog.String("error", err.Error()),
			)
			return fiber.NewError(fiber.StatusServiceUnavailable, "Service temporarily unavailable, please try again later.")
		case err != nil:
			return c.Next()
		case !allowed:
			return ErrRateLimited
		}
		return c.Next()
	}
}
