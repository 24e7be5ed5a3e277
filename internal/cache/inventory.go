package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	PostKeyPrefix    = "post:%d"
	PostsListKey     = "posts:all"
	SessionBlacklist = "blacklist:%s"
)

const (
	PostTTL      = 30 * time.Minute
	PostsListTTL = 5 * time.Minute
)

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func SessionBlacklistKey(sessionID string) string {
	return fmt.Sprintf(SessionBlacklist, sessionID)
}

// InvalidatePost drops the cached post and the cached post list.
func (c *Client) InvalidatePost(ctx context.Context, postID uint) {
	c.Invalidate(ctx, PostKey(postID), PostsListKey)
}

// InvalidatePostsList drops the cached post list.
func (c *Client) InvalidatePostsList(ctx context.Context) {
	c.Invalidate(ctx, PostsListKey)
}

// RevokeSession blacklists a session ID until ttl elapses.
func (c *Client) RevokeSession(ctx context.Context, sessionID string, ttl time.Duration) error {
	if !c.Available() || sessionID == "" || ttl <= 0 {
		return nil
	}
	return c.rdb.Set(ctx, SessionBlacklistKey(sessionID), "1", ttl).Err()
}

// IsSessionRevoked reports whether sessionID was blacklisted. Lookup errors
// are treated as not revoked.
func (c *Client) IsSessionRevoked(ctx context.Context, sessionID string) bool {
	if !c.Available() || sessionID == "" {
		return false
	}
	n, err := c.rdb.Exists(ctx, SessionBlacklistKey(sessionID)).Result()
	return err == nil && n > 0
}
