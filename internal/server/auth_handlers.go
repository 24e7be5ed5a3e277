package server

import (
	"time"

	"inkwell/internal/auth"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// RegisterPage renders the registration form.
func (s *Server) RegisterPage(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, "register", "Register", fiber.Map{"Form": RegisterForm{}})
}

// Register creates an account and logs it in.
func (s *Server) Register(c *fiber.Ctx) error {
	var form RegisterForm
	if err := c.BodyParser(&form); err != nil {
		return models.NewValidationError("Invalid form submission")
	}

	user, err := s.userService.Register(c.UserContext(), service.RegisterInput{
		Username: form.Username,
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		form.Password = ""
		if msg := appErrorMessage(err); msg != "" {
			return s.render(c, fiber.StatusOK, "register", "Register", fiber.Map{"Form": form, "Warning": msg})
		}
		middleware.Logger.ErrorContext(c.UserContext(), "registration failed", "error", err)
		return s.render(c, fiber.StatusInternalServerError, "register", "Register", fiber.Map{
			"Form":    form,
			"Warning": models.MsgRegistrationFailed,
		})
	}

	if err := s.startSession(c, user); err != nil {
		return err
	}
	return c.Redirect("/")
}

// LoginPage renders the login form.
func (s *Server) LoginPage(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, "login", "Log In", fiber.Map{"Form": LoginForm{}})
}

// Login checks credentials and starts a session.
func (s *Server) Login(c *fiber.Ctx) error {
	var form LoginForm
	if err := c.BodyParser(&form); err != nil {
		return models.NewValidationError("Invalid form submission")
	}

	user, err := s.userService.Authenticate(c.UserContext(), form.Email, form.Password)
	if err != nil {
		form.Password = ""
		if msg := appErrorMessage(err); msg != "" {
			return s.render(c, fiber.StatusOK, "login", "Log In", fiber.Map{"Form": form, "Warning": msg})
		}
		return err
	}

	if err := s.startSession(c, user); err != nil {
		return err
	}
	return c.Redirect("/")
}

// Logout revokes the current session and clears the cookie.
func (s *Server) Logout(c *fiber.Ctx) error {
	id := middleware.CurrentIdentity(c)
	if err := s.cache.RevokeSession(c.UserContext(), id.SessionID, time.Until(id.ExpiresAt)); err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "failed to revoke session", "error", err)
	}
	c.ClearCookie(auth.SessionCookieName)
	return c.Redirect("/")
}

func (s *Server) startSession(c *fiber.Ctx, user *models.User) error {
	token, id, err := s.sessions.Issue(user)
	if err != nil {
		return models.NewInternalError(err)
	}
	c.Cookie(&fiber.Cookie{
		Name:     auth.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  id.ExpiresAt,
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}

// SessionRequired redirects anonymous visitors to the login page.
func (s *Server) SessionRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !middleware.CurrentIdentity(c).Authenticated() {
			setFlash(c, flashWarning, models.MsgLoginRequired)
			return c.Redirect("/login")
		}
		return c.Next()
	}
}

// AdminRequired allows only sessions whose email is in ADMIN_EMAILS.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := middleware.CurrentIdentity(c)
		if !id.Authenticated() {
			setFlash(c, flashWarning, models.MsgLoginRequired)
			return c.Redirect("/login")
		}
		if !s.isAdmin(id.Email) {
			return models.NewForbiddenError(models.MsgAdminAccessRequired)
		}
		return c.Next()
	}
}
