package dummydb

import (
	"context"
	"sort"

	"github.com/semillerodigital/insights/core/notification"
)

type notificationRepository struct {
	db *notificationTable
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *DB) notification.Repository {
	return &notificationRepository{db: db.notification}
}

func (repo *notificationRepository) SaveNotification(_ context.Context, rec notification.Record) (notification.Record, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	if repo.db.failOn != nil {
		return notification.Record{}, repo.db.failOn
	}
	rec.ID = newID()
	repo.db.table = append(repo.db.table, rec)
	return rec, nil
}

func (repo *notificationRepository) QueryNotifications(_ context.Context, limit int) ([]notification.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	recs := make([]notification.Record, len(repo.db.table))
	copy(recs, repo.db.table)
	// latest first; records saved within the same instant keep reverse insertion order
	for i, j := 0, len(recs)-1; i < j; i, j = i+1, j-1 {
		recs[i], recs[j] = recs[j], recs[i]
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].SentAt.After(recs[j].SentAt) })
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}
