// Package mail is the transactional mail collaborator. Delivery failures
// are reported to the caller but must never roll back the action that
// triggered the mail (registration succeeds even when the confirmation
// message bounces).
package mail

import (
	"context"

	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"notedeck/internal/config"
)

// Sender delivers a single HTML message.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPSender sends mail through a configured SMTP relay.
type SMTPSender struct {
	cfg config.MailConfig
}

var _ Sender = (*SMTPSender)(nil)

// NewSMTPSender creates a sender for the given SMTP configuration.
func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// Send delivers one message synchronously. No retries: the caller decides
// whether a failure matters.
func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg := gomail.NewMsg()
	if err := msg.From(s.cfg.Sender); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlBody)

	opts := []gomail.Option{
		gomail.WithPort(s.cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.cfg.Username),
		gomail.WithPassword(s.cfg.Password),
	}
	if s.cfg.UseTLS {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.NoTLS))
	}

	client, err := gomail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return err
	}
	return client.DialAndSendWithContext(ctx, msg)
}

// LogSender logs messages instead of delivering them. Used when no SMTP
// host is configured and in tests.
type LogSender struct {
	log *zap.Logger
}

var _ Sender = (*LogSender)(nil)

// NewLogSender creates a logging sender.
func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log}
}

// Send logs the message and reports success.
func (s *LogSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	s.log.Info("mail (not delivered, no SMTP host configured)",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("body_bytes", len(htmlBody)),
	)
	return nil
}
