package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wneessen/go-mail"
)

// SMTPMailer delivers mail through an SMTP relay such as Mailpit.
type SMTPMailer struct {
	from    string
	deliver func(ctx context.Context, msgs ...*mail.Msg) error
}

// NewSMTPMailer constructs a mailer for host:port sending as from. STARTTLS
// is used when the relay offers it.
func NewSMTPMailer(host string, port int, from string) (*SMTPMailer, error) {
	client, err := mail.NewClient(host, mail.WithPort(port), mail.WithTLSPolicy(mail.TLSOpportunistic))
	if err != nil {
		return nil, fmt.Errorf("mailer: client: %w", err)
	}
	return &SMTPMailer{from: from, deliver: client.DialAndSendWithContext}, nil
}

// Send writes msg to the relay.
func (m *SMTPMailer) Send(ctx context.Context, msg SendEmailPayload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.ContainsAny(msg.To+msg.Subject, "\r\n") {
		return fmt.Errorf("mailer: header injection in message to %q", msg.To)
	}
	out, err := m.compose(msg)
	if err != nil {
		return err
	}
	if err := m.deliver(ctx, out); err != nil {
		return fmt.Errorf("mailer: send to %s: %w", msg.To, err)
	}
	return nil
}

func (m *SMTPMailer) compose(msg SendEmailPayload) (*mail.Msg, error) {
	out := mail.NewMsg()
	if err := out.From(m.from); err != nil {
		return nil, fmt.Errorf("mailer: from %q: %w", m.from, err)
	}
	if err := out.To(msg.To); err != nil {
		return nil, fmt.Errorf("mailer: to %q: %w", msg.To, err)
	}
	out.Subject(msg.Subject)
	out.SetDate()
	out.SetMessageID()
	out.SetBodyString(mail.TypeTextPlain, msg.Body)
	return out, nil
}

// LogMailer writes messages to the log instead of delivering them.
type LogMailer struct {
	Logger *slog.Logger
}

// Send logs msg.
func (m LogMailer) Send(ctx context.Context, msg SendEmailPayload) error {
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "mail (not delivered)", slog.String("to", msg.To), slog.String("subject", msg.Subject), slog.String("body", msg.Body))
	return nil
}
