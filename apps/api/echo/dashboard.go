package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/semillerodigital/insights/core/dashboard"
	"github.com/semillerodigital/insights/core/user"
)

type dashboardApi struct {
	svc *dashboard.Service
}

func registerDashboardAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *dashboard.Service) {
	api := dashboardApi{svc: svc}

	dg := g.Group("/dashboard", jwt)
	dg.GET("/coordinator", api.coordinator, roleMiddleware(user.RoleCoordinator))
	dg.GET("/professor", api.professor, roleMiddleware(user.RoleProfessor))
	dg.GET("/student", api.student, roleMiddleware(user.RoleStudent))
}

func (api *dashboardApi) mode(ctx echo.Context) (dashboard.Mode, error) {
	return api.svc.Mode(ctx.QueryParam("mode"))
}

func (api *dashboardApi) coordinator(ctx echo.Context) error {
	mode, err := api.mode(ctx)
	if err != nil {
		return err
	}
	metrics, err := api.svc.Coordinator(ctx.Request().Context(), mode)
	if err != nil {
		return errors.Wrap(err, "computing coordinator dashboard")
	}
	return ctx.JSON(http.StatusOK, metrics)
}

// professor serves the caller's own view; a coordinator may pick any professor with ?email=.
func (api *dashboardApi) professor(ctx echo.Context) error {
	mode, err := api.mode(ctx)
	if err != nil {
		return err
	}
	usr, err := targetUser(ctx)
	if err != nil {
		return err
	}
	metrics, err := api.svc.Professor(ctx.Request().Context(), mode, usr.Email)
	if err != nil {
		return errors.Wrap(err, "computing professor dashboard")
	}
	return ctx.JSON(http.StatusOK, metrics)
}

// student serves the caller's own view; a coordinator may pick any student with ?email=.
func (api *dashboardApi) student(ctx echo.Context) error {
	mode, err := api.mode(ctx)
	if err != nil {
		return err
	}
	usr, err := targetUser(ctx)
	if err != nil {
		return err
	}
	view, err := api.svc.Student(ctx.Request().Context(), mode, usr.Name, usr.Email)
	if err != nil {
		return errors.Wrap(err, "computing student dashboard")
	}
	return ctx.JSON(http.StatusOK, view)
}

func targetUser(ctx echo.Context) (user.User, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return user.User{}, errors.Wrap(err, "getting context claims")
	}
	usr := claims.User()
	if email := ctx.QueryParam("email"); email != "" && usr.IsCoordinator() {
		return user.User{Email: email, Name: user.NameFromEmail(email)}, nil
	}
	return usr, nil
}
