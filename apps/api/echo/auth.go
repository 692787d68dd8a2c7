package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/semillerodigital/insights/core/user"
)

const contextClaimsKey = "userToken"

// jwtMiddleware authenticates the request with an "Authorization: Bearer <jwt>" header.
func jwtMiddleware(secretKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			auth := ctx.Request().Header.Get(echo.HeaderAuthorization)
			scheme, token, found := strings.Cut(auth, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				return errJWTMissing
			}
			claims, err := user.ParseToken(strings.TrimSpace(token), secretKey)
			if err != nil {
				return errJWTInvalid
			}
			ctx.Set(contextClaimsKey, claims)
			return next(ctx)
		}
	}
}

func getContextClaims(ctx echo.Context) (user.Claims, error) {
	if claims, ok := ctx.Get(contextClaimsKey).(*user.Claims); ok {
		return *claims, nil
	}
	return user.Claims{}, errUnauthorized
}
