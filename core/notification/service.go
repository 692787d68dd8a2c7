package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/semillerodigital/insights/core"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

var NowFunc = time.Now // mockable

// ErrNotConfigured is returned by a Channel missing its credentials.
var ErrNotConfigured = errors.New("not configured")

type Service struct {
	channels []Channel
	repo     Repository
	validate *validator.Validate
	logger   core.Logger
}

func NewService(repo Repository, validate *validator.Validate, logger core.Logger, channels ...Channel) *Service {
	return &Service{
		channels: channels,
		repo:     repo,
		validate: validate,
		logger:   logger,
	}
}

// Send delivers n through every channel concurrently and waits for all of them.
// Channel failures are reported, not returned; the only error is an invalid Notification.
func (svc *Service) Send(ctx context.Context, n Notification) (Report, error) {
	n.Title = core.CleanString(n.Title)
	n.Message = core.CleanString(n.Message)
	for i := range n.Recipients {
		n.Recipients[i].Email = core.CleanString(n.Recipients[i].Email, true /* lower */)
	}
	if err := svc.validate.Struct(n); err != nil {
		return Report{}, err
	}

	errs := make([]error, len(svc.channels))
	var wg sync.WaitGroup
	for i, ch := range svc.channels {
		wg.Add(1)
		go func(i int, ch Channel) {
			defer wg.Done()
			if err := ch.Send(ctx, n); err != nil {
				errs[i] = errors.Wrapf(err, "%s", ch.Name())
			}
		}(i, ch)
	}
	wg.Wait()

	report := Report{
		Message: "Notifications sent",
		Results: make(map[string]string, len(svc.channels)),
		Errors:  []string{},
	}
	for i, ch := range svc.channels {
		if errs[i] != nil {
			report.Results[ch.Name()] = ResultFailed
			report.Errors = append(report.Errors, errs[i].Error())
			svc.logger.Warn(fmt.Sprintf("sending %s notification", ch.Name()), errs[i])
			continue
		}
		report.Results[ch.Name()] = ResultSuccess
	}

	svc.save(ctx, n, report)
	return report, nil
}

// save persists the notification; a store failure is logged only.
func (svc *Service) save(ctx context.Context, n Notification, report Report) {
	rec := Record{
		Type:       n.Type,
		Title:      n.Title,
		Message:    n.Message,
		Recipients: lo.Map(n.Recipients, func(r Recipient, _ int) string { return r.UserID }),
		Metadata:   n.Metadata,
		Results:    report.Results,
		SentAt:     NowFunc().UTC(),
	}
	if _, err := svc.repo.SaveNotification(ctx, rec); err != nil {
		svc.logger.Error("saving notification", err)
	}
}

// History returns the latest sent notifications.
func (svc *Service) History(ctx context.Context, limit int) ([]Record, error) {
	switch {
	case limit <= 0:
		limit = defaultHistoryLimit
	case limit > maxHistoryLimit:
		limit = maxHistoryLimit
	}
	recs, err := svc.repo.QueryNotifications(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(err, "querying notifications")
	}
	return recs, nil
}
