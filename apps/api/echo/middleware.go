package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/lchelle/servicediary/core/user"
)

// roleMiddleware only lets the given roles through. Role dispatch uses the
// closed enum; a token carrying an unknown role value is rejected too.
func roleMiddleware(roles ...user.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			role, err := user.ParseRole(claims.Role)
			if err != nil {
				return errHttpForbidden
			}
			for _, allowed := range roles {
				if role == allowed {
					return next(ctx)
				}
			}
			return errHttpForbidden
		}
	}
}
