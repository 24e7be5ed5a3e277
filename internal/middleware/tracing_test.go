package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prevTracer, prevProp := observability.Tracer, otel.GetTextMapPropagator()
	observability.Tracer = provider.Tracer("test")
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		observability.Tracer = prevTracer
		otel.SetTextMapPropagator(prevProp)
	})
	return rec
}

func TestTracingMiddleware_NamesSpanByRoute(t *testing.T) {
	rec := recordSpans(t)

	app := fiber.New()
	app.Use(TracingMiddleware())
	app.Get("/post/:id", func(c *fiber.Ctx) error { return c.SendString("post") })
	app.Get("/health/live", func(c *fiber.Ctx) error { return c.SendString("up") })

	req := httptest.NewRequest(http.MethodGet, "/post/42", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", resp.Header.Get("X-Trace-ID"))

	_, err = app.Test(httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.NoError(t, err)

	spans := rec.Ended()
	require.Len(t, spans, 1, "probe requests are not traced")
	assert.Equal(t, "GET /post/:id", spans[0].Name())
	assert.Equal(t, "00f067aa0ba902b7", spans[0].Parent().SpanID().String())
}

func TestTracingMiddleware_RecordsErrors(t *testing.T) {
	rec := recordSpans(t)

	app := fiber.New()
	app.Use(TracingMiddleware())
	app.Get("/boom", func(c *fiber.Ctx) error { return fiber.ErrBadGateway })

	_, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "Error", spans[0].Status().Code.String())
}
