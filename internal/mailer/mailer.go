// Package mailer provides outbound email senders for the portal's
// best-effort notifications.
package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"
)

// SMTPSender delivers mail over SMTP.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender creates an SMTPSender for the given server and sender
// address.
func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// Send delivers one HTML message. The context is honored only up front;
// gomail itself has no cancellation hook.
func (s *SMTPSender) Send(ctx context.Context, to, subject, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

// LogSender logs messages instead of delivering them. Used when no SMTP
// server is configured.
type LogSender struct{}

// Send logs the message and reports success.
func (LogSender) Send(_ context.Context, to, subject, _ string) error {
	slog.Info("email suppressed, no smtp configured", "to", to, "subject", subject)
	return nil
}
