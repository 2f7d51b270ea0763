package notify

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/wneessen/go-mail"
)

// sendEmail sends the report with the archive attached through the configured
// SMTP relay.
func sendEmail(ctx context.Context, config EmailConfig, report Report) error {
	msg := mail.NewMsg()
	msg.SetMessageIDWithValue(uuid.New().String() + "@gkibuild")

	if err := msg.From(config.From); err != nil {
		return errors.WithStack(err)
	}
	if err := msg.To(config.To); err != nil {
		return errors.WithStack(err)
	}
	msg.Subject(report.Title)
	msg.SetBodyString(mail.TypeTextPlain, caption(report))
	msg.AttachFile(report.ArchivePath)

	opts := []mail.Option{
		mail.WithPort(config.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if config.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(config.Username),
			mail.WithPassword(config.Password),
		)
	}

	client, err := mail.NewClient(config.Host, opts...)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(client.DialAndSendWithContext(ctx, msg))
}
