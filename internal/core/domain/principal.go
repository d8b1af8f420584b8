package domain

import "time"

// TokenClaims is the verified content of a bearer token.
type TokenClaims struct {
	Subject   string
	Role      Role
	ExpiresAt time.Time
}

// Principal is the authenticated caller of a request.
type Principal struct {
	Email string
	Role  Role
}

// HasRole reports whether the principal holds any of roles.
func (p Principal) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

// CanActOn reports whether the principal may modify the account owned by
// ownerEmail. Only the owner qualifies.
func (p Principal) CanActOn(ownerEmail string) bool {
	return p.Email != "" && p.Email == ownerEmail
}
