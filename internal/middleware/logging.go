// Package middleware provides the request pipeline pieces shared by all routes.
package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Logger is the application-wide structured logger.
var Logger *slog.Logger

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	UserIDKey    contextKey = "user_id"
	TraceIDKey   contextKey = "trace_id"
)

// contextFields maps Fiber locals onto request-context keys. The slog handler
// reads the same keys back when a record is logged with a context.
var contextFields = []struct {
	local string
	key   contextKey
}{
	{"requestid", RequestIDKey},
	{"userID", UserIDKey},
	{"traceID", TraceIDKey},
}

type ctxHandler struct {
	slog.Handler
}

func (h *ctxHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, f := range contextFields {
		switch v := ctx.Value(f.key).(type) {
		case string:
			if v != "" {
				r.AddAttrs(slog.String(string(f.key), v))
			}
		case uint:
			if v != 0 {
				r.AddAttrs(slog.Uint64(string(f.key), uint64(v)))
			}
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ctxHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ctxHandler{h.Handler.WithAttrs(attrs)}
}

func (h *ctxHandler) WithGroup(name string) slog.Handler {
	return &ctxHandler{h.Handler.WithGroup(name)}
}

func init() {
	Logger = NewLogger(os.Getenv("APP_ENV"))
}

// NewLogger logs JSON to stdout in production, warnings-only text to stderr
// under test, and text to stdout otherwise.
func NewLogger(env string) *slog.Logger {
	if env == "test" {
		return NewLoggerTo(os.Stderr, env)
	}
	return NewLoggerTo(os.Stdout, env)
}

// NewLoggerTo is NewLogger with an explicit destination.
func NewLoggerTo(w io.Writer, env string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	var handler slog.Handler
	switch env {
	case "production", "prod":
		handler = slog.NewJSONHandler(w, opts)
	case "test":
		opts.Level = slog.LevelWarn
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(&ctxHandler{handler})
}

// ContextMiddleware copies request ID, user ID and trace ID from Fiber locals
// into the request context. It runs after the identity and tracing middleware.
func ContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		for _, f := range contextFields {
			if v := c.Locals(f.local); v != nil {
				ctx = context.WithValue(ctx, f.key, v)
			}
		}
		c.SetUserContext(ctx)
		return c.Next()
	}
}

type statusError interface {
	error
	HTTPStatus() int
}

// quietPrefixes are logged at debug level when they succeed.
var quietPrefixes = []string{"/health/", "/static/", "/metrics"}

// StructuredLogger logs one record per request. Server errors log at error,
// client errors at warn.
func StructuredLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		// Returned errors are rendered by the app's error handler after this
		// middleware unwinds, so the response status is not final yet.
		status := c.Response().StatusCode()
		var fe *fiber.Error
		var se statusError
		switch {
		case errors.As(err, &fe):
			status = fe.Code
		case errors.As(err, &se):
			status = se.HTTPStatus()
		case err != nil:
			status = fiber.StatusInternalServerError
		}

		attrs := []slog.Attr{
			slog.Int("status", status),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("ip", c.IP()),
			slog.Duration("latency", time.Since(start)),
			slog.String("user_agent", c.Get(fiber.HeaderUserAgent)),
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}

		level := slog.LevelInfo
		switch {
		case status >= fiber.StatusInternalServerError:
			level = slog.LevelError
		case status >= fiber.StatusBadRequest:
			level = slog.LevelWarn
		case isQuiet(c.Path()):
			level = slog.LevelDebug
		}

		Logger.LogAttrs(c.UserContext(), level, "request", attrs...)
		return err
	}
}

func isQuiet(path string) bool {
	for _, p := range quietPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
