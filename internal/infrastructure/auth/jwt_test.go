package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/99minutos/user-accounts/internal/core/domain"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestIssuer(start time.Time) (*Issuer, *fakeClock) {
	clock := &fakeClock{t: start}
	return NewIssuer("secret", WithClock(clock.now)), clock
}

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestIssuer_RoundTrip(t *testing.T) {
	iss, _ := newTestIssuer(t0)

	tok, err := iss.Issue(map[string]any{"sub": "alice@example.com", "role": "ADMIN"}, time.Hour)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	claims, err := iss.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.Subject != "alice@example.com" || claims.Role != domain.RoleAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if !claims.ExpiresAt.Equal(t0.Add(time.Hour)) {
		t.Fatalf("unexpected expiry: %v", claims.ExpiresAt)
	}
}

func TestIssuer_ZeroTTLIsExpired(t *testing.T) {
	iss, _ := newTestIssuer(t0)

	tok, err := iss.Issue(map[string]any{"sub": "a@example.com", "role": "AUTHENTICATED"}, 0)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if _, err := iss.Verify(tok); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestIssuer_ExpiresAtBoundary(t *testing.T) {
	iss, clock := newTestIssuer(t0)

	tok, err := iss.Issue(map[string]any{"sub": "a@example.com", "role": "AUTHENTICATED"}, 60*time.Minute)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := iss.Verify(tok); err != nil {
		t.Fatalf("fresh token rejected: %v", err)
	}

	clock.t = t0.Add(59*time.Minute + 59*time.Second)
	if _, err := iss.Verify(tok); err != nil {
		t.Fatalf("token rejected before boundary: %v", err)
	}

	clock.t = t0.Add(60 * time.Minute)
	if _, err := iss.Verify(tok); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken at boundary, got %v", err)
	}

	clock.t = t0.Add(61 * time.Minute)
	if _, err := iss.Verify(tok); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after boundary, got %v", err)
	}
}

func TestIssuer_WrongSecret(t *testing.T) {
	iss, _ := newTestIssuer(t0)
	other := NewIssuer("other", WithClock(func() time.Time { return t0 }))

	tok, err := other.Issue(map[string]any{"sub": "a@example.com", "role": "ADMIN"}, time.Hour)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if _, err := iss.Verify(tok); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestIssuer_RejectsOtherAlgorithms(t *testing.T) {
	iss, _ := newTestIssuer(t0)

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub":  "a@example.com",
		"role": "ADMIN",
		"exp":  t0.Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := iss.Verify(tok); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestIssuer_RequiresSubject(t *testing.T) {
	iss, _ := newTestIssuer(t0)

	tok, err := iss.Issue(map[string]any{"role": "ADMIN"}, time.Hour)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if _, err := iss.Verify(tok); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestIssuer_Garbage(t *testing.T) {
	iss, _ := newTestIssuer(t0)
	if _, err := iss.Verify("not-a-token"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
