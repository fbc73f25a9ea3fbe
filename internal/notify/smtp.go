package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/alexanderramin/chronolog/internal/config"
)

// SMTPNotifier sends notifications as plain-text email over STARTTLS.
type SMTPNotifier struct {
	cfg  config.NotifyConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPNotifier creates an SMTPNotifier from config.
func NewSMTPNotifier(cfg config.NotifyConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, send: smtp.SendMail}
}

func (n *SMTPNotifier) Notify(_ context.Context, subject, message string) error {
	if n.cfg.SMTPHost == "" || n.cfg.SMTPUser == "" || n.cfg.Recipient == "" {
		return fmt.Errorf("email notification settings incomplete")
	}

	addr := fmt.Sprintf("%s:%d", n.cfg.SMTPHost, n.cfg.SMTPPort)
	auth := smtp.PlainAuth("", n.cfg.SMTPUser, n.cfg.SMTPPass, n.cfg.SMTPHost)

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", n.cfg.SMTPUser)
	fmt.Fprintf(&b, "To: %s\r\n", n.cfg.Recipient)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(message)

	if err := n.send(addr, auth, n.cfg.SMTPUser, []string{n.cfg.Recipient}, []byte(b.String())); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	return nil
}
