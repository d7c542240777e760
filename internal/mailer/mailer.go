package mailer

import (
	"github.com/synapse-edu/classroom-service/internal/config"
	"github.com/synapse-edu/classroom-service/internal/utils"
)

// EmailMessage is a plain-text notification email.
type EmailMessage struct {
	To      []string
	Subject string
	Body    string
}

// EmailService delivers notification emails. Delivery is best effort:
// implementations log failures and never return them to the caller, so a
// broken mail setup cannot affect the request that triggered the
// notification.
type EmailService interface {
	Send(msg EmailMessage)
}

// NewFromConfig picks the SMTP backend when mail is configured and the
// console backend otherwise.
func NewFromConfig(cfg *config.Config, logger utils.Logger) EmailService {
	if cfg.SMTP.Configured() {
		return NewSMTPService(cfg.SMTP, logger)
	}
	logger.Info("SMTP not configured, notifications will be logged to console")
	return NewConsoleService(cfg.SMTP.From, logger)
}
