package middleware

import (
	"context"
	"errors"
	"log/slog"

	"inkwell/internal/auth"

	"github.com/gofiber/fiber/v2"
)

const identityLocal = "identity"

// SessionResolver turns a session cookie value into an identity.
type SessionResolver func(ctx context.Context, token string) (*auth.Identity, error)

// LoadIdentity resolves the session cookie once per request. Requests without a
// valid session continue anonymously and a stale cookie is cleared.
func LoadIdentity(resolve SessionResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(auth.SessionCookieName)
		if token == "" {
			return c.Next()
		}

		id, err := resolve(c.UserContext(), token)
		if err != nil || !id.Authenticated() {
			if err != nil && !errors.Is(err, auth.ErrInvalidSession) {
				Logger.WarnContext(c.UserContext(), "session lookup failed", slog.String("error", err.Error()))
			}
			c.ClearCookie(auth.SessionCookieName)
			return c.Next()
		}

		c.Locals(identityLocal, id)
		c.Locals("userID", id.UserID)
		return c.Next()
	}
}

// CurrentIdentity returns the identity loaded for this request, or nil.
func CurrentIdentity(c *fiber.Ctx) *auth.Identity {
	id, _ := c.Locals(identityLocal).(*auth.Identity)
	return id
}
