package email

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"time"
)

// Sender delivers signup verification codes to users.
type Sender interface {
	// SendVerificationCode emails the 4-digit code to the address. validFor is
	// included in the message so the user knows how long the code lasts.
	SendVerificationCode(ctx context.Context, toAddress, code string, validFor time.Duration) error
}

// SMTPSender sends mail through a plain SMTP relay.
type SMTPSender struct {
	host     string
	port     string
	username string
	password string
	from     string
}

// NewSMTPSender creates a sender for the given relay credentials.
func NewSMTPSender(host, port, username, password, from string) *SMTPSender {
	return &SMTPSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

var _ Sender = (*SMTPSender)(nil)

// SendVerificationCode emails the verification code to the address.
func (s *SMTPSender) SendVerificationCode(ctx context.Context, toAddress, code string, validFor time.Duration) error {
	subject := "Your verification code"
	body := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(validFor.Minutes()))
	msg := []byte("From: " + s.from + "\r\n" +
		"To: " + toAddress + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" +
		body + "\r\n")

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	addr := s.host + ":" + s.port
	if err := smtp.SendMail(addr, auth, s.from, []string{toAddress}, msg); err != nil {
		return fmt.Errorf("failed to send verification email to %s: %w", toAddress, err)
	}
	return nil
}

// LogSender writes the code to the log instead of sending mail. Used in
// development when no SMTP relay is configured.
type LogSender struct{}

var _ Sender = (*LogSender)(nil)

// SendVerificationCode logs the code instead of delivering it.
func (s *LogSender) SendVerificationCode(ctx context.Context, toAddress, code string, validFor time.Duration) error {
	slog.InfoContext(ctx, "verification code issued (SMTP not configured)",
		slog.String("to", toAddress),
		slog.String("code", code),
		slog.Duration("valid_for", validFor))
	return nil
}
