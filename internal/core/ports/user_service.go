package ports

import (
	"context"

	"github.com/99minutos/user-accounts/internal/core/domain"
)

// CreateUserInput carries the data needed to create an account.
type CreateUserInput struct {
	Email              string
	Nickname           string
	Password           string
	FirstName          string
	LastName           string
	Bio                string
	ProfilePictureURL  string
	LinkedInProfileURL string
	GitHubProfileURL   string
	// Role is honoured only by administrative creation.
	Role domain.Role
}

// UpdateUserInput carries a partial update; nil fields are left untouched.
type UpdateUserInput struct {
	Email              *string
	Nickname           *string
	FirstName          *string
	LastName           *string
	Bio                *string
	ProfilePictureURL  *string
	LinkedInProfileURL *string
	GitHubProfileURL   *string
	Role               *domain.Role
	IsProfessional     *bool
}

// UserService defines use-case operations on user accounts.
type UserService interface {
	Register(ctx context.Context, input CreateUserInput) (*domain.User, error)
	Create(ctx context.Context, input CreateUserInput) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByNickname(ctx context.Context, nickname string) (*domain.User, error)
	Update(ctx context.Context, id string, input UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, skip, limit int) ([]*domain.User, int64, error)
	Count(ctx context.Context) (int64, error)

	Login(ctx context.Context, identifier, password string) (string, *domain.User, error)
	IsAccountLocked(ctx context.Context, identifier string) (bool, error)
	Unlock(ctx context.Context, id string) (*domain.User, error)

	VerifyEmail(ctx context.Context, userID, token string) error
	VerifyEmailByToken(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, email string) error

	UpdateProfilePicture(ctx context.Context, id, url string) (*domain.User, error)
	UpdateProfessionalInfo(ctx context.Context, id, linkedinURL, githubURL string) (*domain.User, error)
}
