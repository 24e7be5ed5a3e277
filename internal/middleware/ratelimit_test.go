package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}

var loginRule = Rule{Name: "login", Limit: 2, Window: time.Minute}

func TestLimiter_Disabled(t *testing.T) {
	for _, l := range []*Limiter{nil, NewLimiter(nil, false)} {
		allowed, err := l.Allow(context.Background(), loginRule, "ip:1")
		assert.NoError(t, err)
		assert.True(t, allowed)
	}
}

func TestLimiter_NoStore(t *testing.T) {
	allowed, err := NewLimiter(nil, true).Allow(context.Background(), loginRule, "ip:1")
	assert.ErrorIs(t, err, errNoStore)
	assert.False(t, allowed)
}

func TestLimiter_CountsWithinWindow(t *testing.T) {
	rdb, mr := newTestRedis(t)
	l := NewLimiter(rdb, true)
	ctx := context.Background()

	for range 2 {
		allowed, err := l.Allow(ctx, loginRule, "ip:1")
		require.NoError(t, err)
		assert.True(t, allowed)
	}
	allowed, err := l.Allow(ctx, loginRule, "ip:1")
	require.NoError(t, err)
	assert.False(t, allowed)

	// Other clients have their own counter.
	allowed, err = l.Allow(ctx, loginRule, "ip:2")
	require.NoError(t, err)
	assert.True(t, allowed)

	ttl := mr.TTL("rl:login:ip:1")
	assert.True(t, ttl > 0 && ttl <= time.Minute)

	mr.FastForward(2 * time.Minute)
	allowed, err = l.Allow(ctx, loginRule, "ip:1")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestLimiter_Handler(t *testing.T) {
	rdb, _ := newTestRedis(t)
	l := NewLimiter(rdb, true)

	app := fiber.New()
	app.All("/login", l.Handler(Rule{Name: "login", Limit: 1, Window: time.Minute}), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for range 3 {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/login", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestLimiter_HandlerStoreDown(t *testing.T) {
	tests := []struct {
		name   string
		policy FailPolicy
		status int
	}{
		{"fail open", FailOpen, http.StatusOK},
		{"fail closed", FailClosed, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			rule := Rule{Name: "contact", Limit: 1, Window: time.Minute, Policy: tt.policy}
			app.Post("/contact", NewLimiter(nil, true).Handler(rule), func(c *fiber.Ctx) error {
				return c.SendStatus(fiber.StatusOK)
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/contact", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
