package sqlxrepos

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/semillerodigital/insights/core"
	"github.com/semillerodigital/insights/core/notification"
)

type notificationRow struct {
	ID         string         `db:"id"`
	Type       string         `db:"type"`
	Title      string         `db:"title"`
	Message    string         `db:"message"`
	Recipients pq.StringArray `db:"recipients"`
	Metadata   null.JSON      `db:"metadata"`
	Results    null.JSON      `db:"results"`
	SentAt     time.Time      `db:"sent_at"`
}

const notificationColumns = "id, type, title, message, recipients, metadata, results, sent_at"

type notificationRepository struct {
	exec core.DBExecutor
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(exec core.DBExecutor) notification.Repository {
	return &notificationRepository{exec: exec}
}

func (repo notificationRepository) SaveNotification(ctx context.Context, rec notification.Record) (notification.Record, error) {
	metadata, err := json.Marshal(rec.Metadata)
	if err != nil {
		return notification.Record{}, errors.Wrap(err, "encoding metadata")
	}
	results, err := json.Marshal(rec.Results)
	if err != nil {
		return notification.Record{}, errors.Wrap(err, "encoding results")
	}
	if rec.SentAt.IsZero() {
		rec.SentAt = time.Now()
	}

	row := notificationRow{
		ID:         uuid.NewString(),
		Type:       string(rec.Type),
		Title:      rec.Title,
		Message:    rec.Message,
		Recipients: pq.StringArray(rec.Recipients),
		Metadata:   null.JSONFrom(metadata),
		Results:    null.JSONFrom(results),
		SentAt:     rec.SentAt.UTC(),
	}
	q := "INSERT INTO notifications (" + notificationColumns + ") " +
		"VALUES (:id, :type, :title, :message, :recipients, :metadata, :results, :sent_at)"
	if _, err = repo.exec.NamedExecContext(ctx, q, row); err != nil {
		return notification.Record{}, errors.Wrap(err, "inserting notification")
	}
	return row.record()
}

func (repo notificationRepository) QueryNotifications(ctx context.Context, limit int) ([]notification.Record, error) {
	var rows []notificationRow
	q := "SELECT " + notificationColumns + " FROM notifications ORDER BY sent_at DESC, id LIMIT $1"
	if err := repo.exec.SelectContext(ctx, &rows, q, limit); err != nil {
		return nil, errors.Wrap(err, "querying notifications")
	}

	records := make([]notification.Record, 0, len(rows))
	for _, r := range rows {
		rec, err := r.record()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r notificationRow) record() (notification.Record, error) {
	rec := notification.Record{
		ID:         r.ID,
		Type:       notification.Type(r.Type),
		Title:      r.Title,
		Message:    r.Message,
		Recipients: []string(r.Recipients),
		Results:    map[string]string{},
		SentAt:     r.SentAt.UTC(),
	}
	if rec.Recipients == nil {
		rec.Recipients = []string{}
	}
	if r.Metadata.Valid {
		if err := r.Metadata.Unmarshal(&rec.Metadata); err != nil {
			return notification.Record{}, errors.Wrap(err, "decoding metadata")
		}
	}
	if r.Results.Valid {
		if err := r.Results.Unmarshal(&rec.Results); err != nil {
			return notification.Record{}, errors.Wrap(err, "decoding results")
		}
	}
	return rec, nil
}
