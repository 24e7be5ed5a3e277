// Package cache wraps the optional Redis connection used for caching,
// session revocation and rate limiting.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"inkwell/internal/middleware"
	"inkwell/internal/observability"

	"github.com/redis/go-redis/v9"
	"github.com/redis/go-redis/v9/maintnotifications"
)

// Client is a nil-safe Redis handle. When Redis is not configured or not
// reachable every method degrades to a no-op or a cache miss.
type Client struct {
	rdb *redis.Client
}

type metricsHook struct{}

func (h metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrorRate.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (h metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrorRate.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// Connect dials Redis at addr, which may be "host:port" or a redis:// URL.
// An empty addr or a failed ping yields a disabled Client.
func Connect(addr string) *Client {
	if strings.TrimSpace(addr) == "" {
		middleware.Logger.Info("Redis not configured (continuing without cache)")
		return &Client{}
	}

	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			middleware.Logger.Warn("invalid REDIS_URL (continuing without cache)", slog.String("error", err.Error()))
			return &Client{}
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}
	opts.MaintNotificationsConfig = &maintnotifications.Config{Mode: maintnotifications.ModeDisabled}

	rdb := redis.NewClient(opts)
	rdb.AddHook(metricsHook{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		middleware.Logger.Warn("Redis connection failed (continuing without cache)", slog.String("error", err.Error()))
		_ = rdb.Close()
		return &Client{}
	}

	middleware.Logger.Info("Redis connected successfully")
	return &Client{rdb: rdb}
}

// New wraps an existing go-redis client. A nil rdb yields a disabled Client.
func New(rdb *redis.Client) *Client {
	if rdb != nil {
		rdb.AddHook(metricsHook{})
	}
	return &Client{rdb: rdb}
}

// Available reports whether a Redis connection is present.
func (c *Client) Available() bool {
	return c != nil && c.rdb != nil
}

// Redis exposes the underlying client, or nil when disabled.
func (c *Client) Redis() *redis.Client {
	if c == nil {
		return nil
	}
	return c.rdb
}

// Ping checks the connection. A disabled Client reports no error.
func (c *Client) Ping(ctx context.Context) error {
	if !c.Available() {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

// Close releases the connection.
func (c *Client) Close() error {
	if !c.Available() {
		return nil
	}
	return c.rdb.Close()
}

// GetJSON loads key into dest. It reports false on a miss or when disabled.
func (c *Client) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if !c.Available() {
		return false, nil
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON stores value under key for ttl.
func (c *Client) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if !c.Available() {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, raw, ttl).Err()
}

// Aside serves key from Redis when present; otherwise it calls load, which must
// fill dest, and stores the result. Redis failures fall through to load.
func (c *Client) Aside(ctx context.Context, key string, dest any, ttl time.Duration, load func() error) error {
	family := keyFamily(key)

	hit, err := c.GetJSON(ctx, key, dest)
	switch {
	case err != nil:
		observability.CacheLookups.WithLabelValues(family, "error").Inc()
		middleware.Logger.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	case hit:
		observability.CacheLookups.WithLabelValues(family, "hit").Inc()
		return nil
	case c.Available():
		observability.CacheLookups.WithLabelValues(family, "miss").Inc()
	}

	if err := load(); err != nil {
		return err
	}

	if err := c.SetJSON(ctx, key, dest, ttl); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return nil
}

// Invalidate deletes keys. Errors are logged and otherwise ignored.
func (c *Client) Invalidate(ctx context.Context, keys ...string) {
	if !c.Available() || len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache invalidation failed", slog.Any("keys", keys), slog.String("error", err.Error()))
	}
}

func keyFamily(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
