package smtp

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"

	"github.com/council-xenith/internal/config"
	mail "github.com/go-mail/mail"
)

// Message is one outgoing email. At least one of Text or HTML must be set.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer sends emails.
type Mailer interface {
	SendEmail(ctx context.Context, msg Message) error
}

type mailer struct {
	from   string
	dialer *mail.Dialer
}

func NewMailer(cfg *config.Config) Mailer {
	d := mail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	d.TLSConfig = &tls.Config{ServerName: cfg.SMTPHost}
	if cfg.SMTPPort == 465 {
		d.SSL = true
	}
	return &mailer{from: cfg.SMTPFrom, dialer: d}
}

func (m *mailer) SendEmail(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.To == "" {
		return errors.New("smtp: no recipient")
	}
	if msg.Text == "" && msg.HTML == "" {
		return errors.New("smtp: empty body")
	}

	mm := mail.NewMessage()
	mm.SetHeader("From", m.from)
	mm.SetHeader("To", msg.To)
	mm.SetHeader("Subject", msg.Subject)
	switch {
	case msg.Text != "" && msg.HTML != "":
		mm.SetBody("text/plain", msg.Text)
		mm.AddAlternative("text/html", msg.HTML)
	case msg.HTML != "":
		mm.SetBody("text/html", msg.HTML)
	default:
		mm.SetBody("text/plain", msg.Text)
	}

	if err := m.dialer.DialAndSend(mm); err != nil {
		slog.Error("smtp send failed", "to", msg.To, "err", err)
		return fmt.Errorf("smtp send: %w", err)
	}
	slog.Info("smtp send ok", "to", msg.To, "subject", msg.Subject)
	return nil
}
