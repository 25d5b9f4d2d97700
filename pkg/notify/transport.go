package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/lifelink-dev/bloodlink-api/pkg/config"
)

// Message is a single delivery handed to a transport.
type Message struct {
	Recipient string
	Title     string
	Body      string
}

// Transport delivers one message to one recipient. Implementations are
// fire-and-forget from the dispatcher's perspective; a per-recipient error is
// recorded, never retried here.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPTransport delivers messages over plain SMTP using injected credentials.
type SMTPTransport struct {
	cfg config.NotificationsConfig
}

// NewSMTPTransport builds an email transport from the injected configuration.
func NewSMTPTransport(cfg config.NotificationsConfig) *SMTPTransport {
	return &SMTPTransport{cfg: cfg}
}

// Send delivers a single email.
func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	if msg.Recipient == "" {
		return fmt.Errorf("recipient address required")
	}
	addr := fmt.Sprintf("%s:%d", t.cfg.SMTPHost, t.cfg.SMTPPort)
	var auth smtp.Auth
	if t.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", t.cfg.SMTPUser, t.cfg.SMTPPassword, t.cfg.SMTPHost)
	}

	body := strings.Join([]string{
		"From: " + t.cfg.FromAddress,
		"To: " + msg.Recipient,
		"Subject: " + msg.Title,
		"",
		msg.Body,
	}, "\r\n")

	if err := smtp.SendMail(addr, auth, t.cfg.FromAddress, []string{msg.Recipient}, []byte(body)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// LogTransport records deliveries without touching any external system. Used
// for the SMS channel until a provider is wired, and in development.
type LogTransport struct {
	logger *zap.Logger
}

// NewLogTransport builds a logging transport.
func NewLogTransport(logger *zap.Logger) *LogTransport {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogTransport{logger: logger}
}

// Send logs the message and reports success.
func (t *LogTransport) Send(ctx context.Context, msg Message) error {
	t.logger.Info("notification delivered",
		zap.String("recipient", msg.Recipient),
		zap.String("title", msg.Title),
	)
	return nil
}
