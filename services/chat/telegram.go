package chatsvc

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/semillerodigital/insights/core"
	"github.com/semillerodigital/insights/core/notification"
)

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// Telegram sends one bot message per recipient.
type Telegram struct {
	apiURL string
	token  string
}

var _ notification.Channel = (*Telegram)(nil) // interface compliance check

func NewTelegram(conf *core.Config) *Telegram {
	return &Telegram{
		apiURL: strings.TrimRight(conf.Notifications.TelegramApiURL, "/"),
		token:  conf.Notifications.TelegramBotToken,
	}
}

func (tg *Telegram) Name() string { return "telegram" }

func (tg *Telegram) Send(ctx context.Context, n notification.Notification) error {
	if tg.token == "" {
		return notification.ErrNotConfigured
	}
	recipients := notification.TelegramRecipients(n.Recipients)
	if len(recipients) == 0 {
		return nil
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", tg.apiURL, tg.token)
	text := fmt.Sprintf("🔔 *%s*\n\n%s\n\n📊 _%s_", n.Title, n.Message, footer)
	for _, r := range recipients {
		msg := telegramMessage{ChatID: r.Preferences.TelegramID, Text: text, ParseMode: "Markdown"}
		if err := postJSON(ctx, url, msg); err != nil {
			return errors.Wrapf(err, "messaging %s", r.UserID)
		}
	}
	return nil
}
