package notification

import (
	"context"
	"fmt"
	"time"

	"salescrm_backend/platform/config"

	gomail "github.com/wneessen/go-mail"
)

// Sender delivers notification emails.
type Sender interface {
	SendFollowUpDueEmail(ctx context.Context, toEmail, repName, clientName, note string, dueAt time.Time) error
}

// NoopSender is used when email delivery is disabled. Notifications still
// reach the log.
type NoopSender struct{}

func (NoopSender) SendFollowUpDueEmail(ctx context.Context, toEmail, repName, clientName, note string, dueAt time.Time) error {
	return nil
}

// SMTPSender delivers through a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromEmail string
}

// NewSender returns the configured sender, or a noop one when email is
// disabled.
func NewSender(cfg config.SMTPConfig) Sender {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}
	}

	return &SMTPSender{
		host:      cfg.GetSMTPHost(),
		port:      cfg.GetSMTPPort(),
		username:  cfg.GetSMTPUsername(),
		password:  cfg.GetSMTPPassword(),
		fromEmail: cfg.GetEmailFromAddress(),
	}
}

func (s *SMTPSender) SendFollowUpDueEmail(ctx context.Context, toEmail, repName, clientName, note string, dueAt time.Time) error {
	subject := fmt.Sprintf("Follow-up due: %s", clientName)
	body := fmt.Sprintf("Hi %s,\n\nYour follow-up with %s is due (%s).",
		repName, clientName, dueAt.Format("Monday 2 January 2006"))
	if note != "" {
		body += "\n\nNote: " + note
	}

	return s.send(ctx, toEmail, subject, body)
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, body string) error {
	msg := gomail.NewMsg()
	if err := msg.From(s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}
