package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/semillerodigital/insights/core"
	"github.com/semillerodigital/insights/core/notification"
	"github.com/semillerodigital/insights/core/user"
)

type notificationApi struct {
	svc      *notification.Service
	validate *validator.Validate
}

func registerNotificationAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *notification.Service, validate *validator.Validate) {
	api := notificationApi{svc: svc, validate: validate}

	ng := g.Group("/notifications", jwt, roleMiddleware(user.RoleProfessor))
	ng.POST("", api.send)
	ng.GET("", api.history)
}

func (api *notificationApi) send(ctx echo.Context) error {
	var data notification.Notification
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Notification")
	}

	report, err := api.svc.Send(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, report)
}

func (api *notificationApi) history(ctx echo.Context) error {
	var limit int
	if param := ctx.QueryParam("limit"); param != "" {
		var err error
		if limit, err = strconv.Atoi(param); err != nil {
			return core.NewValidationError(err, core.FieldError{Field: "limit", Error: "limit must be an integer"})
		}
	}

	recs, err := api.svc.History(ctx.Request().Context(), limit)
	if err != nil {
		return errors.Wrap(err, "querying notifications")
	}
	return ctx.JSON(http.StatusOK, recs)
}
