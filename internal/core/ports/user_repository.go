package ports

import (
	"context"

	"github.com/99minutos/user-accounts/internal/core/domain"
)

// UserRepository defines persistence operations for user accounts.
// Lookups return domain.ErrUserNotFound when no record matches.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByNickname(ctx context.Context, nickname string) (*domain.User, error)
	GetByVerificationToken(ctx context.Context, token string) (*domain.User, error)
	// Create fails with domain.ErrEmailExists or domain.ErrNicknameExists on
	// a uniqueness violation.
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	// List returns users ordered by creation time.
	List(ctx context.Context, skip, limit int) ([]*domain.User, error)
	Count(ctx context.Context) (int64, error)
}
