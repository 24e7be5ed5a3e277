package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedPost struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

func setupRedis(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb), mr
}

func TestClient_DisabledIsNoop(t *testing.T) {
	var nilClient *Client
	disabled := Connect("")
	ctx := context.Background()

	for _, c := range []*Client{nilClient, disabled} {
		assert.False(t, c.Available())
		assert.Nil(t, c.Redis())
		assert.NoError(t, c.Ping(ctx))
		assert.NoError(t, c.SetJSON(ctx, "k", 1, time.Minute))
		hit, err := c.GetJSON(ctx, "k", new(int))
		assert.NoError(t, err)
		assert.False(t, hit)
		assert.NoError(t, c.RevokeSession(ctx, "jti", time.Minute))
		assert.False(t, c.IsSessionRevoked(ctx, "jti"))
		assert.NotPanics(t, func() { c.Invalidate(ctx, "k") })
		assert.NoError(t, c.Close())
	}
}

func TestClient_Aside(t *testing.T) {
	c, mr := setupRedis(t)
	ctx := context.Background()

	loads := 0
	load := func(dest *cachedPost) func() error {
		return func() error {
			loads++
			*dest = cachedPost{ID: 1, Title: "Hello"}
			return nil
		}
	}

	var first cachedPost
	require.NoError(t, c.Aside(ctx, PostKey(1), &first, PostTTL, load(&first)))
	assert.Equal(t, "Hello", first.Title)
	assert.True(t, mr.Exists(PostKey(1)))

	var second cachedPost
	require.NoError(t, c.Aside(ctx, PostKey(1), &second, PostTTL, load(&second)))
	assert.Equal(t, "Hello", second.Title)
	assert.Equal(t, 1, loads, "second lookup must be served from Redis")

	c.InvalidatePost(ctx, 1)
	assert.False(t, mr.Exists(PostKey(1)))
}

func TestClient_AsideLoadError(t *testing.T) {
	c, mr := setupRedis(t)
	boom := errors.New("boom")

	var dest cachedPost
	err := c.Aside(context.Background(), PostKey(2), &dest, PostTTL, func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists(PostKey(2)))
}

func TestClient_AsideFallsBackWhenRedisDown(t *testing.T) {
	c, mr := setupRedis(t)
	mr.Close()

	var dest cachedPost
	err := c.Aside(context.Background(), PostKey(3), &dest, PostTTL, func() error {
		dest = cachedPost{ID: 3, Title: "From DB"}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "From DB", dest.Title)
}

func TestClient_SessionRevocation(t *testing.T) {
	c, mr := setupRedis(t)
	ctx := context.Background()

	assert.False(t, c.IsSessionRevoked(ctx, "abc"))
	require.NoError(t, c.RevokeSession(ctx, "abc", time.Minute))
	assert.True(t, c.IsSessionRevoked(ctx, "abc"))

	mr.FastForward(2 * time.Minute)
	assert.False(t, c.IsSessionRevoked(ctx, "abc"))
}

func TestConnect_InvalidURL(t *testing.T) {
	c := Connect("redis://:bad@[::1")
	assert.False(t, c.Available())
}

func TestKeyFamily(t *testing.T) {
	assert.Equal(t, "post", keyFamily(PostKey(9)))
	assert.Equal(t, "posts", keyFamily(PostsListKey))
	assert.Equal(t, "plain", keyFamily("plain"))
}
