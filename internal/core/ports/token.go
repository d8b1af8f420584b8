package ports

import (
	"time"

	"github.com/99minutos/user-accounts/internal/core/domain"
)

// TokenIssuer creates signed, time-bounded bearer tokens.
type TokenIssuer interface {
	Issue(claims map[string]any, ttl time.Duration) (string, error)
}

// TokenVerifier checks a bearer token's signature and expiry.
type TokenVerifier interface {
	Verify(token string) (domain.TokenClaims, error)
}
