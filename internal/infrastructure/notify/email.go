package notify

import (
	"context"
	"fmt"
	"time"

	gomail "gopkg.in/mail.v2"

	"github.com/jserafin20190423/competitor-news/internal/config"
	"github.com/jserafin20190423/competitor-news/internal/ports"
)

// EmailNotifier delivers the rendered report over SMTP.
type EmailNotifier struct {
	cfg config.EmailConfig
}

var _ ports.Notifier = (*EmailNotifier)(nil)

// NewEmailNotifier wires SMTP settings.
func NewEmailNotifier(cfg config.EmailConfig) *EmailNotifier {
	return &EmailNotifier{cfg: cfg}
}

// SendReport mails the markdown as a plain-text message.
func (n *EmailNotifier) SendReport(_ context.Context, subject, markdown string) error {
	if !n.cfg.Enabled() {
		return fmt.Errorf("email notifier misconfigured")
	}

	message := gomail.NewMessage()
	message.SetHeader("From", n.cfg.FromEmail)
	message.SetHeader("To", n.cfg.ToEmail)
	message.SetHeader("Subject", subject)
	message.SetBody("text/plain", markdown)

	dialer := gomail.NewDialer(n.cfg.SMTPServer, n.cfg.SMTPPort, n.cfg.SMTPUser, n.cfg.SMTPPass)
	dialer.Timeout = 10 * time.Second

	if err := dialer.DialAndSend(message); err != nil {
		return fmt.Errorf("send report email: %w", err)
	}

	return nil
}
