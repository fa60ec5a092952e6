package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

// SMTPConfig configures the outbound mail client.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender delivers notification emails over SMTP.
type SMTPSender struct {
	client  *mail.Client
	from    string
	timeout time.Duration
}

// NewSMTPSender creates a sender with a per-delivery timeout.
func NewSMTPSender(cfg SMTPConfig, timeout time.Duration) (*SMTPSender, error) {
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}

	return &SMTPSender{
		client:  client,
		from:    cfg.From,
		timeout: timeout,
	}, nil
}

// Send delivers one access notification. The delivery attempt is
// bounded by the configured timeout.
func (s *SMTPSender) Send(ctx context.Context, event *Event) error {
	msg := mail.NewMsg()

	if err := msg.From(s.from); err != nil {
		return err
	}

	if err := msg.To(event.Recipient); err != nil {
		return err
	}

	msg.Subject("Your BouncerLink was accessed")
	msg.SetBodyString(mail.TypeTextPlain,
		fmt.Sprintf("Your shortened link (%s) was just accessed.", event.Code))
	msg.AddAlternativeString(mail.TypeTextHTML,
		fmt.Sprintf("<p>Your shortened link (<strong>%s</strong>) was just accessed.</p>", event.Code))

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.client.DialAndSendWithContext(ctx, msg)
}

var _ Sender = (*SMTPSender)(nil)
