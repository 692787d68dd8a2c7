package emailsvc

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/semillerodigital/insights/core"
	"github.com/semillerodigital/insights/core/notification"
)

const notificationTemplate = "notification"

type notificationData struct {
	Title     string
	Message   string
	TypeLabel string
}

// Channel delivers notifications by email, one message per recipient.
type Channel struct {
	mailSvc core.EmailService // nil: not configured
}

var _ notification.Channel = (*Channel)(nil) // interface compliance check

func NewChannel(mailSvc core.EmailService) *Channel {
	return &Channel{mailSvc: mailSvc}
}

func (ch *Channel) Name() string { return "email" }

func (ch *Channel) Send(ctx context.Context, n notification.Notification) error {
	if ch.mailSvc == nil {
		return notification.ErrNotConfigured
	}
	recipients := notification.EmailRecipients(n.Recipients)
	if len(recipients) == 0 {
		return nil
	}

	data := notificationData{Title: n.Title, Message: n.Message, TypeLabel: n.Type.Label()}
	for _, r := range recipients {
		msg := &core.EmailMessage{
			To:           []mail.Address{{Name: r.Name, Address: r.Email}},
			Subject:      n.Title,
			TemplateName: notificationTemplate,
			TemplateData: data,
		}
		if err := ch.mailSvc.SendMessage(ctx, msg); err != nil {
			return errors.Wrap(err, fmt.Sprintf("emailing %s", r.Email))
		}
	}
	return nil
}
