package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"

	"ms-registration/internal/config"
	"ms-registration/internal/logger"
	"ms-registration/internal/models"
)

// Mailer consumes registration events and sends the welcome email.
// Delivery is fire-and-forget: a failed send is logged and the event is
// dropped, nothing upstream depends on it.
type Mailer struct {
	cfg    config.EmailConfig
	logger *logger.Logger
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewMailer(cfg config.EmailConfig, log *logger.Logger) *Mailer {
	return &Mailer{
		cfg:    cfg,
		logger: log,
		send:   smtp.SendMail,
	}
}

type Consumer interface {
	Consume(ctx context.Context, handler func(key, value []byte) error) error
}

// Run consumes registration events until the context is cancelled.
func (m *Mailer) Run(ctx context.Context, consumer Consumer) {
	err := consumer.Consume(ctx, func(_, value []byte) error {
		var event models.RegistrationEvent
		if err := json.Unmarshal(value, &event); err != nil {
			m.logger.Error("MAILER", fmt.Sprintf("failed to unmarshal registration event: %v", err))
			return nil
		}
		m.SendWelcomeEmail(event)
		return nil
	})
	if err != nil && ctx.Err() == nil {
		m.logger.Error("MAILER", fmt.Sprintf("consumer stopped: %v", err))
	}
}

func (m *Mailer) SendWelcomeEmail(event models.RegistrationEvent) {
	if m.cfg.SMTPUsername == "" {
		m.logger.Warn("MAILER", "SMTP not configured, skipping welcome email")
		return
	}

	body := fmt.Sprintf("To: %s\r\nSubject: Workshop registration confirmed\r\n\r\n"+
		"Hi %s,\r\n\r\nYour registration for %q is confirmed. See you there!\r\n",
		event.Email, event.FirstName, event.WorkshopTitle)

	addr := m.cfg.SMTPHost + ":" + m.cfg.SMTPPort
	auth := smtp.PlainAuth("", m.cfg.SMTPUsername, m.cfg.SMTPPassword, m.cfg.SMTPHost)

	if err := m.send(addr, auth, m.cfg.From, []string{event.Email}, []byte(body)); err != nil {
		m.logger.Error("MAILER", fmt.Sprintf("failed to send welcome email to %s: %v", event.Email, err))
		return
	}
	m.logger.Info("MAILER", fmt.Sprintf("welcome email sent to %s for %q", event.Email, event.WorkshopTitle))
}
