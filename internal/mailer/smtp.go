package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/synapse-edu/classroom-service/internal/config"
	"github.com/synapse-edu/classroom-service/internal/utils"
)

type smtpService struct {
	cfg    config.SMTPConfig
	logger utils.Logger
}

// NewSMTPService sends mail through a plain SMTP relay with optional
// AUTH PLAIN credentials.
func NewSMTPService(cfg config.SMTPConfig, logger utils.Logger) EmailService {
	return &smtpService{cfg: cfg, logger: logger}
}

func (s *smtpService) Send(msg EmailMessage) {
	if len(msg.To) == 0 {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&b, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: text/plain; charset=utf-8\r\n")
	fmt.Fprintf(&b, "\r\n%s\r\n", msg.Body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, s.cfg.From, msg.To, []byte(b.String())); err != nil {
		// Swallowed: notification failures never propagate.
		s.logger.Error("failed to send notification email",
			"error", err, "subject", msg.Subject, "recipients", len(msg.To))
		return
	}

	s.logger.Debug("notification email sent", "subject", msg.Subject, "recipients", len(msg.To))
}
