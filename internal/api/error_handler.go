package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/user-accounts/internal/api/handler"
	"github.com/99minutos/user-accounts/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, handler.ErrorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, rate limiter, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, domain.ErrEmailExists):
		return http.StatusConflict, domain.ErrEmailExists.Error()
	case errors.Is(err, domain.ErrNicknameExists):
		return http.StatusConflict, domain.ErrNicknameExists.Error()
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, domain.ErrInvalidCredentials.Error()
	case errors.Is(err, domain.ErrEmailNotVerified):
		return http.StatusUnauthorized, domain.ErrEmailNotVerified.Error()
	case errors.Is(err, domain.ErrInvalidToken):
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
		return http.StatusUnauthorized, domain.ErrInvalidToken.Error()
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, domain.ErrForbidden.Error()
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrAccountLocked):
		return http.StatusBadRequest, domain.ErrAccountLocked.Error()
	case errors.Is(err, domain.ErrInvalidVerificationToken):
		return http.StatusBadRequest, domain.ErrInvalidVerificationToken.Error()
	case errors.Is(err, domain.ErrDeliveryFailed):
		log.Error().Err(err).Str("method", c.Request().Method).Str("path", c.Path()).Msg("email delivery failed")
		return http.StatusBadGateway, domain.ErrDeliveryFailed.Error()
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
