package notify

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"
)

// MailerConfig holds SMTP settings. Host and Port are required for delivery;
// auth is optional for relays that allow it.
type MailerConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
	To   string
}

// Mailer sends plain-text notification mail over SMTP.
type Mailer struct {
	cfg MailerConfig
	log zerolog.Logger
}

// NewMailer creates a Mailer.
func NewMailer(cfg MailerConfig, log zerolog.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: log}
}

// Configured reports whether SMTP delivery is possible.
func (m *Mailer) Configured() bool {
	return m.cfg.Host != "" && m.cfg.Port != 0
}

// Send delivers one message. Without SMTP configuration the message is
// logged and dropped so feedback still leaves a trace in environments
// without a relay.
func (m *Mailer) Send(subject, body, replyTo string) error {
	if !m.Configured() {
		m.log.Warn().Msg("no SMTP configured; notification not sent")
		m.log.Info().
			Str("to", m.cfg.To).
			Str("subject", subject).
			Str("body", body).
			Msg("undelivered notification")
		return nil
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", m.cfg.To)
	if replyTo != "" {
		fmt.Fprintf(&msg, "Reply-To: %s\r\n", replyTo)
	}
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.User != "" && m.cfg.Pass != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{m.cfg.To}, []byte(msg.String())); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
