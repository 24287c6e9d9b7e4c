package mail

import (
	"context"
	"strconv"

	"github.com/CourseForgeHQ/CourseForge/internal/pkg/env"
	"github.com/google/uuid"
	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"
)

// Message is a single outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
	ReplyTo string
}

// Mailer sends transactional email and returns a provider message id.
type Mailer interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// SMTPMailer sends emails via SMTP.
type SMTPMailer struct {
	dialer *gomail.Dialer
	sender string
	logger *zap.Logger
}

// NewSMTPMailerFromEnv builds an SMTP mailer from SMTP_* environment variables.
func NewSMTPMailerFromEnv(logger *zap.Logger) *SMTPMailer {
	host := env.GetEnv("SMTP_HOST", "localhost")
	port, err := strconv.Atoi(env.GetEnv("SMTP_PORT", "587"))
	if err != nil {
		port = 587
	}
	username := env.GetEnv("SMTP_USERNAME", "")
	password := env.GetEnv("SMTP_PASSWORD", "")
	sender := env.GetEnv("SMTP_SENDER", "")
	if sender == "" {
		sender = "no-reply@localhost"
		logger.Warn("SMTP_SENDER not set, using default sender", zap.String("sender", sender))
	}

	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		sender: sender,
		logger: logger,
	}
}

// Send delivers the message and returns a generated message id. SMTP has no
// provider-assigned id, so one is minted locally and stamped on the message
// for correlation with the email log.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) (string, error) {
	messageID := uuid.NewString()

	gm := gomail.NewMessage()
	gm.SetHeader("From", m.sender)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetHeader("X-Message-ID", messageID)
	if msg.ReplyTo != "" {
		gm.SetHeader("Reply-To", msg.ReplyTo)
	}
	gm.SetBody("text/html", msg.HTML)

	if err := m.dialer.DialAndSend(gm); err != nil {
		m.logger.Error("smtp send failed", zap.String("to", msg.To), zap.Error(err))
		return "", err
	}

	m.logger.Info("email sent",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("message_id", messageID),
	)
	return messageID, nil
}
