// Package mail relays contact-form messages over SMTP.
package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/middleware"

	gomail "github.com/wneessen/go-mail"
)

const sendTimeout = 15 * time.Second

// ErrNotConfigured is returned when a message needs a field the sender lacks.
var ErrNotConfigured = errors.New("mail: sender not configured")

// Message is a plain-text email.
type Message struct {
	From    string
	To      string
	ReplyTo string
	Subject string
	Body    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender relays through an authenticated SMTP server.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	timeout  time.Duration
}

// NewSender returns an SMTP sender when SMTP_HOST is set and a logging
// sender otherwise.
func NewSender(cfg *config.Config) Sender {
	switch {
	case cfg == nil:
		return LogSender{}
	case !cfg.MailEnabled() && cfg.IsLocal():
		return LogSender{}
	case !cfg.MailEnabled():
		return unconfiguredSender{}
	}
	return &SMTPSender{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		timeout:  sendTimeout,
	}
}

// Send dials the relay, authenticates and delivers msg.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m, err := buildMessage(msg)
	if err != nil {
		return err
	}

	opts := []gomail.Option{
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTimeout(s.timeout),
	}
	// Port 465 speaks implicit TLS; everything else upgrades with STARTTLS.
	if s.port == 465 {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	}

	client, err := gomail.NewClient(s.host, opts...)
	if err != nil {
		return fmt.Errorf("mail: create client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("mail: send to %s: %w", msg.To, err)
	}
	return nil
}

func buildMessage(msg Message) (*gomail.Msg, error) {
	if msg.From == "" || msg.To == "" {
		return nil, ErrNotConfigured
	}

	m := gomail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return nil, fmt.Errorf("mail: invalid from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("mail: invalid recipient: %w", err)
	}
	if msg.ReplyTo != "" {
		if err := m.ReplyTo(msg.ReplyTo); err != nil {
			return nil, fmt.Errorf("mail: invalid reply-to: %w", err)
		}
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextPlain, msg.Body)
	return m, nil
}

// unconfiguredSender fails every send so a deployed app without a relay
// shows the failure page instead of claiming delivery.
type unconfiguredSender struct{}

func (unconfiguredSender) Send(ctx context.Context, msg Message) error {
	middleware.Logger.ErrorContext(ctx, "mail relay not configured, contact message not delivered",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
	)
	return ErrNotConfigured
}

// LogSender writes messages to the application log instead of sending them.
type LogSender struct{}

// Send logs msg and always succeeds. Only used in development and test.
func (LogSender) Send(ctx context.Context, msg Message) error {
	middleware.Logger.InfoContext(ctx, "mail relay not configured, logging contact message",
		slog.String("to", msg.To),
		slog.String("reply_to", msg.ReplyTo),
		slog.String("subject", msg.Subject),
		slog.Int("body_bytes", len(msg.Body)),
	)
	return nil
}
