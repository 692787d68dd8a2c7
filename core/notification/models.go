package notification

import (
	"context"
	"time"

	"github.com/samber/lo"
)

type Type string

const (
	TypeNewSubmission Type = "new_submission"
	TypeAssignmentDue Type = "assignment_due"
	TypeGradeAssigned Type = "grade_assigned"
	TypeAnnouncement  Type = "announcement"
)

var typeLabels = map[Type]string{
	TypeNewSubmission: "Nueva entrega",
	TypeAssignmentDue: "Tarea por vencer",
	TypeGradeAssigned: "Calificación asignada",
	TypeAnnouncement:  "Anuncio",
}

func (t Type) Label() string {
	if l, ok := typeLabels[t]; ok {
		return l
	}
	return string(t)
}

// channel results
const (
	ResultSuccess = "success"
	ResultFailed  = "failed"
)

type (
	// Preferences are the per-channel opt-ins of a Recipient.
	// Email is opt-out: only an explicit false disables it.
	Preferences struct {
		Email      *bool  `json:"email,omitempty"`
		Discord    bool   `json:"discord,omitempty"`
		Telegram   bool   `json:"telegram,omitempty"`
		DiscordID  string `json:"discordId,omitempty"`
		TelegramID string `json:"telegramId,omitempty"`
	}

	Recipient struct {
		UserID      string      `json:"userId" validate:"required"`
		Email       string      `json:"email" validate:"omitempty,email"`
		Name        string      `json:"name"`
		Role        string      `json:"role" validate:"omitempty,oneof=coordinator professor student"`
		Preferences Preferences `json:"preferences"`
	}

	Metadata struct {
		AssignmentID string `json:"assignmentId,omitempty"`
		CourseID     string `json:"courseId,omitempty"`
		CellID       string `json:"cellId,omitempty"`
		StudentID    string `json:"studentId,omitempty"`
	}

	Notification struct {
		Type       Type        `json:"type" validate:"required,oneof=new_submission assignment_due grade_assigned announcement"`
		Title      string      `json:"title" validate:"required,nonblank"`
		Message    string      `json:"message" validate:"required,nonblank"`
		Recipients []Recipient `json:"recipients" validate:"required,min=1,dive"`
		Metadata   Metadata    `json:"metadata"`
	}

	// Record is a sent Notification, as persisted.
	Record struct {
		ID         string            `json:"id"`
		Type       Type              `json:"type"`
		Title      string            `json:"title"`
		Message    string            `json:"message"`
		Recipients []string          `json:"recipients"` // user ids
		Metadata   Metadata          `json:"metadata"`
		Results    map[string]string `json:"results"`
		SentAt     time.Time         `json:"sent_at"`
	}

	// Report is the outcome of a fan-out: one result per channel, plus the failure messages.
	Report struct {
		Message string            `json:"message"`
		Results map[string]string `json:"results"`
		Errors  []string          `json:"errors"`
	}
)

// Channel delivers a Notification through one provider.
// Send picks the recipients the channel applies to and fails as a whole.
type Channel interface {
	Name() string
	Send(ctx context.Context, n Notification) error
}

type Repository interface {
	SaveNotification(ctx context.Context, rec Record) (Record, error)
	// QueryNotifications returns the latest records first.
	QueryNotifications(ctx context.Context, limit int) ([]Record, error)
}

// EmailRecipients are the recipients who did not opt out of email and have an address.
func EmailRecipients(rs []Recipient) []Recipient {
	return lo.Filter(rs, func(r Recipient, _ int) bool {
		return r.Email != "" && (r.Preferences.Email == nil || *r.Preferences.Email)
	})
}

// DiscordRecipients are the recipients who opted in to Discord.
func DiscordRecipients(rs []Recipient) []Recipient {
	return lo.Filter(rs, func(r Recipient, _ int) bool { return r.Preferences.Discord })
}

// TelegramRecipients are the recipients who opted in to Telegram and have a chat id.
func TelegramRecipients(rs []Recipient) []Recipient {
	return lo.Filter(rs, func(r Recipient, _ int) bool {
		return r.Preferences.Telegram && r.Preferences.TelegramID != ""
	})
}
