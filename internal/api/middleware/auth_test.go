package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/user-accounts/internal/core/domain"
	"github.com/99minutos/user-accounts/internal/infrastructure/auth"
)

func newContext(header string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	issuer := auth.NewIssuer("secret")
	signed, err := issuer.Issue(map[string]any{"sub": "alice@example.com", "role": "MANAGER"}, time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	c, rec := newContext("Bearer " + signed)

	called := false
	handler := Auth(issuer)(func(c echo.Context) error {
		called = true
		p, ok := PrincipalFrom(c)
		if !ok {
			t.Fatalf("principal not set")
		}
		if p.Email != "alice@example.com" || p.Role != domain.RoleManager {
			t.Fatalf("unexpected principal: %+v", p)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	c, _ := newContext("")

	handler := Auth(auth.NewIssuer("secret"))(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	err := handler(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	for _, header := range []string{"Token abc", "Bearer", "Bearer "} {
		c, _ := newContext(header)
		handler := Auth(auth.NewIssuer("secret"))(func(c echo.Context) error {
			t.Fatalf("should not reach next handler")
			return nil
		})

		var he *echo.HTTPError
		if err := handler(c); !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
			t.Fatalf("%q: expected 401 HTTPError, got %v", header, err)
		}
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	signed, _ := auth.NewIssuer("other").Issue(map[string]any{"sub": "a@example.com", "role": "ADMIN"}, time.Hour)
	expired, _ := auth.NewIssuer("secret").Issue(map[string]any{"sub": "a@example.com", "role": "ADMIN"}, 0)

	for _, token := range []string{signed, expired, "garbage"} {
		c, _ := newContext("Bearer " + token)
		handler := Auth(auth.NewIssuer("secret"))(func(c echo.Context) error {
			t.Fatalf("should not reach next handler")
			return nil
		})
		if err := handler(c); !errors.Is(err, domain.ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	}
}
