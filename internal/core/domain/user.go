package domain

import "time"

// Role is the access level attached to a user account.
type Role string

const (
	RoleAnonymous     Role = "ANONYMOUS"
	RoleAuthenticated Role = "AUTHENTICATED"
	RoleManager       Role = "MANAGER"
	RoleAdmin         Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAnonymous, RoleAuthenticated, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// User models a registered account.
type User struct {
	ID                 string     `json:"id"`
	Email              string     `json:"email"`
	Nickname           string     `json:"nickname"`
	FirstName          string     `json:"first_name,omitempty"`
	LastName           string     `json:"last_name,omitempty"`
	Bio                string     `json:"bio,omitempty"`
	ProfilePictureURL  string     `json:"profile_picture_url,omitempty"`
	LinkedInProfileURL string     `json:"linkedin_profile_url,omitempty"`
	GitHubProfileURL   string     `json:"github_profile_url,omitempty"`
	Role               Role       `json:"role"`
	IsProfessional     bool       `json:"is_professional"`
	EmailVerified      bool       `json:"email_verified"`
	VerificationToken  string     `json:"-"`
	IsLocked           bool       `json:"is_locked"`
	HashedPassword     string     `json:"-"`
	LastLoginAt        *time.Time `json:"last_login_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// MarkVerified consumes the verification token and promotes an anonymous
// account to authenticated.
func (u *User) MarkVerified(now time.Time) {
	u.EmailVerified = true
	u.VerificationToken = ""
	if u.Role == RoleAnonymous {
		u.Role = RoleAuthenticated
	}
	u.UpdatedAt = now
}
