package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/semillerodigital/insights/core/cell"
	"github.com/semillerodigital/insights/core/user"
)

type cellApi struct {
	svc *cell.Service
}

func registerCellAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *cell.Service) {
	api := cellApi{svc: svc}

	cg := g.Group("/cells", jwt)
	cg.GET("", api.distribution, roleMiddleware(user.RoleProfessor))
	cg.POST("/populate", api.populate, roleMiddleware(user.RoleCoordinator))
}

func (api *cellApi) populate(ctx echo.Context) error {
	res, err := api.svc.Populate(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "populating cells")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *cellApi) distribution(ctx echo.Context) error {
	dist, err := api.svc.Distribution(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "getting cell distribution")
	}
	return ctx.JSON(http.StatusOK, dist)
}
