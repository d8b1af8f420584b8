package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/user-accounts/internal/api/middleware"
	"github.com/99minutos/user-accounts/internal/core/domain"
)

// ctxPrincipal extracts the principal injected by the Auth middleware. Its
// absence means the route was mounted without Auth, so the caller is
// rejected with 401 before any service call.
func ctxPrincipal(c echo.Context) (domain.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return domain.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return p, nil
}

// authorizeOwner allows the request only when the caller owns target.
func authorizeOwner(c echo.Context, target *domain.User) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	if !p.CanActOn(target.Email) {
		return domain.ErrForbidden
	}
	return nil
}

// authorizeRoleGrant allows only an ADMIN to hand out the ADMIN or MANAGER
// role.
func authorizeRoleGrant(c echo.Context, role domain.Role) error {
	if role != domain.RoleAdmin && role != domain.RoleManager {
		return nil
	}
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	if !p.HasRole(domain.RoleAdmin) {
		return domain.ErrForbidden
	}
	return nil
}

// bindAndValidate binds the request into dst and runs the registered validator.
func bindAndValidate(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(dst)
}
