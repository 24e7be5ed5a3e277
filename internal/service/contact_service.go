package service

import (
	"context"
	"fmt"
	"strings"

	"inkwell/internal/mail"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/validation"
)

const contactSubject = "New message from the blog contact form"

type ContactService struct {
	sender    mail.Sender
	from      string
	recipient string
}

type ContactInput struct {
	Name    string
	Email   string
	Phone   string
	Message string
}

func NewContactService(sender mail.Sender, from, recipient string) *ContactService {
	return &ContactService{sender: sender, from: from, recipient: recipient}
}

// Send relays a contact-form submission to the site owner. A relay failure
// is returned as an unavailable error; there is no retry.
func (s *ContactService) Send(ctx context.Context, in ContactInput) error {
	ctx, span := observability.StartSpan(ctx, "service.contact", "send")
	defer span.End()

	in = ContactInput{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Phone:   strings.TrimSpace(in.Phone),
		Message: strings.TrimSpace(in.Message),
	}
	if err := validation.ValidateContactFields(in.Name, in.Email, in.Phone, in.Message); err != nil {
		return models.NewValidationError(err.Error())
	}

	msg := mail.Message{
		From:    s.from,
		To:      s.recipient,
		ReplyTo: in.Email,
		Subject: contactSubject,
		Body:    contactBody(in),
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		observability.ContactMessages.WithLabelValues("failed").Inc()
		span.SetError(err)
		middleware.Logger.ErrorContext(ctx, "contact message delivery failed", "error", err)
		return models.NewUnavailableError(err, models.MsgContactFailed)
	}
	observability.ContactMessages.WithLabelValues("sent").Inc()
	return nil
}

func contactBody(in ContactInput) string {
	var b strings.Builder
	b.WriteString("You've received a new message from your website contact form.\n\n")
	fmt.Fprintf(&b, "Name: %s\n", in.Name)
	fmt.Fprintf(&b, "Email: %s\n", in.Email)
	fmt.Fprintf(&b, "Phone No: %s\n\n", in.Phone)
	fmt.Fprintf(&b, "Message:\n%s\n", in.Message)
	return b.String()
}
