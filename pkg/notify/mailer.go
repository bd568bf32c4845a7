package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/ghuser/ordermgmt/pkg/logger"
)

// Mailer delivers a notification to its recipients.
type Mailer interface {
	Send(ctx context.Context, n Notification) error
}

// LogMailer writes notifications to the log instead of sending them.
type LogMailer struct {
	log logger.Logger
}

// NewLogMailer returns a development Mailer.
func NewLogMailer(log logger.Logger) *LogMailer {
	return &LogMailer{log: log}
}

// Send logs n.
func (m *LogMailer) Send(ctx context.Context, n Notification) error {
	if err := n.Validate(); err != nil {
		return err
	}
	m.log.InfoContext(ctx, "mail",
		"kind", n.Kind,
		"to", strings.Join(n.Recipients, ","),
		"subject", n.Subject,
		"body", n.Body,
	)
	return nil
}

// SMTPMailer sends plain-text mail through an SMTP relay.
type SMTPMailer struct {
	addr string
	from string
	auth smtp.Auth
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailer returns a Mailer for the relay at addr (host:port). PLAIN auth
// is used when user is non-empty.
func NewSMTPMailer(addr, from, user, password string) *SMTPMailer {
	var auth smtp.Auth
	if user != "" {
		host := addr
		if i := strings.LastIndex(addr, ":"); i > 0 {
			host = addr[:i]
		}
		auth = smtp.PlainAuth("", user, password, host)
	}
	return &SMTPMailer{addr: addr, from: from, auth: auth, send: smtp.SendMail}
}

// Send delivers n.
func (m *SMTPMailer) Send(ctx context.Context, n Notification) error {
	if err := n.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := buildMessage(m.from, n, time.Now())
	if err := m.send(m.addr, m.auth, m.from, n.Recipients, msg); err != nil {
		return fmt.Errorf("notify: smtp send %s: %w", n.Kind, err)
	}
	return nil
}

func buildMessage(from string, n Notification, now time.Time) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(n.Recipients, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", sanitizeHeader(n.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", now.UTC().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(n.Body, "\n", "\r\n"))
	b.WriteString("\r\n")
	return []byte(b.String())
}

func sanitizeHeader(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}

// Deliver returns a payload handler that decodes a queued notification and
// sends it with m. Undecodable payloads are reported as errors.
func Deliver(m Mailer) func(ctx context.Context, payload []byte) error {
	return func(ctx context.Context, payload []byte) error {
		n, err := Decode(payload)
		if err != nil {
			return err
		}
		return m.Send(ctx, n)
	}
}
