package notify

import (
	"context"

	"github.com/wneessen/go-mail"

	appErr "github.com/iqueue/staffing/pkg/errors"
)

// MailerConfig holds SMTP settings.
type MailerConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer delivers notifications over SMTP.
type Mailer struct {
	client *mail.Client
	from   string
}

func NewMailer(cfg MailerConfig) (*Mailer, error) {
	opts := []mail.Option{mail.WithPort(cfg.Port), mail.WithTLSPolicy(mail.TLSOpportunistic)}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "create smtp client failed")
	}
	return &Mailer{client: client, from: cfg.From}, nil
}

// Compose builds the outgoing message without sending it.
func (m *Mailer) Compose(to, subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInvalid, "invalid sender address")
	}
	if err := msg.To(to); err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInvalid, "invalid recipient address")
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	return msg, nil
}

func (m *Mailer) Send(ctx context.Context, to, subject, body string) error {
	msg, err := m.Compose(to, subject, body)
	if err != nil {
		return err
	}
	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return appErr.Wrap(err, appErr.CodeUnavailable, "smtp delivery failed")
	}
	return nil
}
