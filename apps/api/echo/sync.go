package echoapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/semillerodigital/insights/core"
	"github.com/semillerodigital/insights/core/classroom"
)

type (
	SyncRequest struct {
		AccessToken string `json:"access_token"`
	}

	SyncResponse struct {
		Message   string          `json:"message"`
		Duration  string          `json:"duration"`
		Stats     classroom.Stats `json:"stats"`
		Timestamp time.Time       `json:"timestamp"`
	}

	SyncErrorResponse struct {
		Error        string          `json:"error"`
		Details      string          `json:"details"`
		Duration     string          `json:"duration"`
		PartialStats classroom.Stats `json:"partialStats"`
		Timestamp    time.Time       `json:"timestamp"`
	}
)

type syncApi struct {
	svc *classroom.Service
}

// the sync is authorized by the Google access token itself
func registerSyncAPI(g *echo.Group, svc *classroom.Service) {
	api := syncApi{svc: svc}
	g.POST("/sync", api.sync)
}

func durationMillis(d time.Duration) string {
	return fmt.Sprintf("%dms", d.Milliseconds())
}

func (api *syncApi) sync(ctx echo.Context) error {
	var data SyncRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SyncRequest")
	}

	res, err := api.svc.Sync(ctx.Request().Context(), data.AccessToken)
	if err != nil {
		if _, ok := errors.Cause(err).(*core.ValidationError); ok {
			return err
		}
		return ctx.JSON(http.StatusInternalServerError, SyncErrorResponse{
			Error:        "Synchronization failed",
			Details:      errors.Cause(err).Error(),
			Duration:     durationMillis(res.Duration),
			PartialStats: res.Stats,
			Timestamp:    res.Timestamp,
		})
	}

	return ctx.JSON(http.StatusOK, SyncResponse{
		Message:   "Classroom synchronization completed successfully",
		Duration:  durationMillis(res.Duration),
		Stats:     res.Stats,
		Timestamp: res.Timestamp,
	})
}
