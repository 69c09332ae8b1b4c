package jobs

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

// Mailer delivers a single message.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends mail through a plain SMTP relay.
type SMTPMailer struct {
	Addr string
	From string
}

// Send delivers the message, building a minimal RFC 5322 envelope.
func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + m.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")
	if err := smtp.SendMail(m.Addr, nil, m.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}

// LogMailer records mail instead of sending it. Used when no relay is
// configured and in tests.
type LogMailer struct {
	Logger *slog.Logger
}

func (m *LogMailer) Send(to, subject, _ string) error {
	m.Logger.Info("mail suppressed, no smtp relay configured",
		slog.String("to", to), slog.String("subject", subject))
	return nil
}
