package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/user-accounts/internal/core/domain"
	"github.com/99minutos/user-accounts/internal/core/ports"
)

const principalKey = "principal"

// Auth verifies the bearer token and stores the caller's domain.Principal in
// the echo context.
func Auth(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := verifier.Verify(parts[1])
			if err != nil {
				return domain.ErrInvalidToken
			}

			c.Set(principalKey, domain.Principal{Email: claims.Subject, Role: claims.Role})
			return next(c)
		}
	}
}

// PrincipalFrom returns the principal stored by Auth.
func PrincipalFrom(c echo.Context) (domain.Principal, bool) {
	p, ok := c.Get(principalKey).(domain.Principal)
	return p, ok && p.Email != ""
}

// SetPrincipal stores p in c the way Auth does.
func SetPrincipal(c echo.Context, p domain.Principal) {
	c.Set(principalKey, p)
}
