package server

import (
	"inkwell/internal/middleware"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

type flagView struct {
	Name    string
	Value   string
	Enabled bool
}

// About renders the static about page.
func (s *Server) About(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, "about", "About", nil)
}

// ContactPage renders the contact form.
func (s *Server) ContactPage(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, "contact", "Contact", fiber.Map{"Form": ContactForm{}})
}

// Contact relays the form to the site owner. Delivery failures surface as
// the error page with a uniform message.
func (s *Server) Contact(c *fiber.Ctx) error {
	var form ContactForm
	if err := c.BodyParser(&form); err != nil {
		return s.render(c, fiber.StatusOK, "contact", "Contact", fiber.Map{
			"Form":    form,
			"Warning": "Invalid form submission",
		})
	}

	err := s.contactService.Send(c.UserContext(), service.ContactInput{
		Name:    form.Name,
		Email:   form.Email,
		Phone:   form.Phone,
		Message: form.Message,
	})
	if err != nil {
		if msg := validationMessage(err); msg != "" {
			return s.render(c, fiber.StatusOK, "contact", "Contact", fiber.Map{"Form": form, "Warning": msg})
		}
		return err
	}
	return s.render(c, fiber.StatusOK, "contact-sent", "Message Delivered", nil)
}

// AllUsers lists every account together with the feature flag state.
func (s *Server) AllUsers(c *fiber.Ctx) error {
	users, err := s.userService.ListUsers(c.UserContext())
	if err != nil {
		return err
	}

	showLegacy := false
	for _, u := range users {
		if u.Password != "" {
			showLegacy = true
			break
		}
	}

	id := middleware.CurrentIdentity(c)
	raw := s.featureFlags.Raw()
	flags := make([]flagView, 0, len(raw))
	for _, name := range s.featureFlags.Names() {
		flags = append(flags, flagView{
			Name:    name,
			Value:   raw[name],
			Enabled: s.featureFlags.Enabled(name, id.UserID),
		})
	}

	return s.render(c, fiber.StatusOK, "all-users", "Users", fiber.Map{
		"Users":      users,
		"ShowLegacy": showLegacy,
		"Flags":      flags,
	})
}
