// Package validation checks submitted form fields.
package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	maxShortField   = 250
	maxUsernameLen  = 100
	maxEmailLen     = 100
	maxPasswordLen  = 72 // bcrypt input limit, in bytes
	maxBodyLen      = 100000
	maxMessageLen   = 5000
	maxPhoneDigits  = 20
	requiredMessage = "%s is required"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9 ()\-.]{3,30}$`)
)

// Required fails when value is blank.
func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf(requiredMessage, field)
	}
	return nil
}

// MaxLength fails when value has more than max characters.
func MaxLength(field, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return fmt.Errorf("%s must be at most %d characters", field, max)
	}
	return nil
}

// ValidateUsername validates a display name.
func ValidateUsername(username string) error {
	if err := Required("Username", username); err != nil {
		return err
	}
	return MaxLength("Username", username, maxUsernameLen)
}

// ValidateEmail validates an email address.
func ValidateEmail(email string) error {
	if err := Required("Email", email); err != nil {
		return err
	}
	if len(email) > maxEmailLen {
		return fmt.Errorf("email must be at most %d characters", maxEmailLen)
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidatePassword requires a non-empty password that bcrypt can hash.
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf(requiredMessage, "Password")
	}
	if len(password) > maxPasswordLen {
		return fmt.Errorf("password must be at most %d bytes", maxPasswordLen)
	}
	return nil
}

// ValidateImageURL requires an absolute http(s) URL.
func ValidateImageURL(raw string) error {
	if err := Required("Blog image URL", raw); err != nil {
		return err
	}
	if err := MaxLength("Blog image URL", raw, maxShortField); err != nil {
		return err
	}
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("blog image URL must be a valid http or https URL")
	}
	return nil
}

// ValidatePhone accepts digits with common separators.
func ValidatePhone(phone string) error {
	if err := Required("Phone number", phone); err != nil {
		return err
	}
	digits := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if !phoneRegex.MatchString(strings.TrimSpace(phone)) || digits < 3 || digits > maxPhoneDigits {
		return fmt.Errorf("invalid phone number")
	}
	return nil
}

// ValidatePostFields checks the create/edit post form.
func ValidatePostFields(title, subtitle, imgURL, body string) error {
	if err := Required("Blog post title", title); err != nil {
		return err
	}
	if err := MaxLength("Blog post title", title, maxShortField); err != nil {
		return err
	}
	if err := Required("Subtitle", subtitle); err != nil {
		return err
	}
	if err := MaxLength("Subtitle", subtitle, maxShortField); err != nil {
		return err
	}
	if err := ValidateImageURL(imgURL); err != nil {
		return err
	}
	if err := Required("Blog content", body); err != nil {
		return err
	}
	return MaxLength("Blog content", body, maxBodyLen)
}

// ValidateComment checks a comment body.
func ValidateComment(body string) error {
	if err := Required("Comment", body); err != nil {
		return err
	}
	return MaxLength("Comment", body, maxMessageLen)
}

// ValidateContactFields checks the contact form.
func ValidateContactFields(name, email, phone, message string) error {
	if err := Required("Name", name); err != nil {
		return err
	}
	if err := MaxLength("Name", name, maxShortField); err != nil {
		return err
	}
	if err := ValidateEmail(email); err != nil {
		return err
	}
	if err := ValidatePhone(phone); err != nil {
		return err
	}
	if err := Required("Message", message); err != nil {
		return err
	}
	return MaxLength("Message", message, maxMessageLen)
}

// NormalizeEmail is the form in which emails are stored and looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
