package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/google/uuid"

	"matrixlead/internal/config"
	"matrixlead/internal/domain"
)

// SMTPTransport delivers follow-up messages over plain SMTP with STARTTLS,
// matching how the outbound mail account is provisioned.
type SMTPTransport struct {
	cfg config.SMTPConfig
	log *slog.Logger

	// send is swappable for tests; defaults to smtp.SendMail.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTP(cfg config.SMTPConfig, log *slog.Logger) *SMTPTransport {
	return &SMTPTransport{cfg: cfg, log: log, send: smtp.SendMail}
}

func (t *SMTPTransport) Deliver(_ context.Context, msg domain.Message) error {
	if !t.cfg.Configured() {
		return errors.New("smtp transport not configured")
	}

	from := fmt.Sprintf("%s <%s>", t.cfg.FromName, t.cfg.From)
	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), t.cfg.Host)
	data := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMessage-ID: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		from, msg.To, msg.Subject, messageID, msg.Body)

	addr := fmt.Sprintf("%s:%d", t.cfg.Host, t.cfg.Port)
	auth := smtp.PlainAuth("", t.cfg.User, t.cfg.Password, t.cfg.Host)

	t.log.Debug("delivering follow-up mail", "to", msg.To, "via", addr, "message_id", messageID)
	if err := t.send(addr, auth, t.cfg.From, []string{msg.To}, []byte(data)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
