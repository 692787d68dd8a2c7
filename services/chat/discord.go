package chatsvc

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/semillerodigital/insights/core"
	"github.com/semillerodigital/insights/core/notification"
)

const discordColor = 0x5a25ab

type (
	discordMessage struct {
		Content string         `json:"content,omitempty"`
		Embeds  []discordEmbed `json:"embeds"`
	}

	discordEmbed struct {
		Title       string         `json:"title"`
		Description string         `json:"description"`
		Color       int            `json:"color"`
		Fields      []discordField `json:"fields,omitempty"`
		Footer      discordFooter  `json:"footer"`
		Timestamp   string         `json:"timestamp"`
	}

	discordField struct {
		Name   string `json:"name"`
		Value  string `json:"value"`
		Inline bool   `json:"inline"`
	}

	discordFooter struct {
		Text string `json:"text"`
	}
)

// Discord posts one embed per notification to a webhook, mentioning the recipients with a Discord id.
type Discord struct {
	webhookURL string
}

var _ notification.Channel = (*Discord)(nil) // interface compliance check

func NewDiscord(conf *core.Config) *Discord {
	return &Discord{webhookURL: conf.Notifications.DiscordWebhookURL}
}

func (d *Discord) Name() string { return "discord" }

func (d *Discord) Send(ctx context.Context, n notification.Notification) error {
	if d.webhookURL == "" {
		return notification.ErrNotConfigured
	}
	recipients := notification.DiscordRecipients(n.Recipients)
	if len(recipients) == 0 {
		return nil
	}
	return postJSON(ctx, d.webhookURL, discordPayload(n, recipients))
}

func discordPayload(n notification.Notification, recipients []notification.Recipient) discordMessage {
	lines := lo.Map(recipients, func(r notification.Recipient, _ int) string {
		name := lo.Ternary(r.Name != "", r.Name, r.UserID)
		if r.Role == "" {
			return "• " + name
		}
		return fmt.Sprintf("• %s (%s)", name, r.Role)
	})
	mentions := lo.FilterMap(recipients, func(r notification.Recipient, _ int) (string, bool) {
		return "<@" + r.Preferences.DiscordID + ">", r.Preferences.DiscordID != ""
	})

	return discordMessage{
		Content: strings.Join(mentions, " "),
		Embeds: []discordEmbed{{
			Title:       n.Title,
			Description: n.Message,
			Color:       discordColor,
			Fields:      []discordField{{Name: "👥 Destinatarios", Value: strings.Join(lines, "\n")}},
			Footer:      discordFooter{Text: footer},
			Timestamp:   notification.NowFunc().UTC().Format("2006-01-02T15:04:05.000Z"),
		}},
	}
}
