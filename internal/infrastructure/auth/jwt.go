// Package auth issues and verifies the HS256 bearer tokens handed out at login.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/99minutos/user-accounts/internal/core/domain"
)

// Issuer signs and verifies tokens with a shared secret.
type Issuer struct {
	secret []byte
	now    func() time.Time
}

// Option customises an Issuer.
type Option func(*Issuer)

// WithClock overrides the time source used for exp/iat and for verification.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

func NewIssuer(secret string, opts ...Option) *Issuer {
	i := &Issuer{secret: []byte(secret), now: time.Now}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Issue signs claims with an expiry of now+ttl. Caller-supplied exp/iat
// values are overwritten.
func (i *Issuer) Issue(claims map[string]any, ttl time.Duration) (string, error) {
	now := i.now()
	mc := jwt.MapClaims{}
	for k, v := range claims {
		mc[k] = v
	}
	mc["iat"] = now.Unix()
	mc["exp"] = now.Add(ttl).Unix()

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, mc).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm and expiry. A token is expired from the
// exp instant onward; every failure is reported as domain.ErrInvalidToken.
func (i *Issuer) Verify(token string) (domain.TokenClaims, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !parsed.Valid {
		return domain.TokenClaims{}, errors.Join(domain.ErrInvalidToken, err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil || !i.now().Before(exp.Time) {
		return domain.TokenClaims{}, domain.ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	if sub == "" {
		return domain.TokenClaims{}, domain.ErrInvalidToken
	}

	return domain.TokenClaims{
		Subject:   sub,
		Role:      domain.Role(role),
		ExpiresAt: exp.Time,
	}, nil
}
