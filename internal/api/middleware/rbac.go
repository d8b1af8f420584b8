package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/user-accounts/internal/core/domain"
)

// RequireRole lets the request through only when the authenticated principal
// holds one of allowed. It must run after Auth.
func RequireRole(allowed ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}
			if !p.HasRole(allowed...) {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
