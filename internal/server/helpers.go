package server

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"inkwell/internal/middleware"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	csrfFormField   = "_csrf"
	csrfCookieName  = "csrf_"
	csrfContextKey  = "csrf"
	flashCookieName = "inkwell_flash"

	flashWarning = "warning"
	flashInfo    = "info"
)

// parseID extracts a positive integer route parameter. Anything else is
// treated as a missing page.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(param), 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewNotFoundError("Page", c.Params(param))
	}
	return uint(id), nil
}

// render executes view inside the main layout. Every page receives the login
// state, the CSRF token and any pending flash message.
func (s *Server) render(c *fiber.Ctx, status int, view, title string, data fiber.Map) error {
	id := middleware.CurrentIdentity(c)
	vm := fiber.Map{
		"Title":    title,
		"LoggedIn": id.Authenticated(),
		"Identity": id,
		"IsAdmin":  id.Authenticated() && s.isAdmin(id.Email),
		"CSRF":     csrfToken(c),
	}
	if msg, kind := popFlash(c); msg != "" {
		vm["Flash"] = msg
		vm["FlashKind"] = kind
	}
	for k, v := range data {
		vm[k] = v
	}
	return c.Status(status).Render(view, vm)
}

func csrfToken(c *fiber.Ctx) string {
	token, _ := c.Locals(csrfContextKey).(string)
	return token
}

// setFlash stores a one-shot message shown on the next rendered page.
func setFlash(c *fiber.Ctx, kind, msg string) {
	c.Cookie(&fiber.Cookie{
		Name:     flashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString([]byte(kind + "|" + msg)),
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(5 * time.Minute),
	})
}

func popFlash(c *fiber.Ctx) (msg, kind string) {
	raw := c.Cookies(flashCookieName)
	if raw == "" {
		return "", ""
	}
	c.ClearCookie(flashCookieName)

	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return "", ""
	}
	kind, msg, ok := strings.Cut(string(decoded), "|")
	if !ok {
		return "", ""
	}
	return msg, kind
}

// appErrorMessage returns the user-facing message of a validation or
// credential error, or "" for anything that belongs on the error page.
func appErrorMessage(err error) string {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case models.ErrCodeValidation, models.ErrCodeUnauthorized:
			return appErr.Message
		}
	}
	return ""
}

// validationMessage returns the message of a validation error, or "".
func validationMessage(err error) string {
	var appErr *models.AppError
	if errors.As(err, &appErr) && appErr.Code == models.ErrCodeValidation {
		return appErr.Message
	}
	return ""
}

// errorHandler renders every error returned by a handler as the error page.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := models.MsgSomethingWentWrong

	var appErr *models.AppError
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &appErr):
		if appErr.Code == models.ErrCodeUnauthorized {
			setFlash(c, flashWarning, appErr.Message)
			return c.Redirect("/login")
		}
		status = appErr.HTTPStatus()
		message = appErr.Message
	case errors.As(err, &fiberErr):
		status = fiberErr.Code
		message = fiberErr.Message
		if status == fiber.StatusNotFound {
			message = "Page not found."
		}
	}

	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"error", err,
		)
	}

	if rerr := s.render(c, status, "error", http.StatusText(status), fiber.Map{
		"Status":  status,
		"Message": message,
	}); rerr != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "failed to render error page", "error", rerr)
		return c.Status(status).SendString(message)
	}
	return nil
}
