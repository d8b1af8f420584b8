package handler

import (
	"context"

	"github.com/99minutos/user-accounts/internal/core/domain"
	"github.com/99minutos/user-accounts/internal/core/ports"
)

// stubUserService implements ports.UserService with overridable functions.
// Unset functions panic so tests notice unexpected calls.
type stubUserService struct {
	registerFn         func(ctx context.Context, in ports.CreateUserInput) (*domain.User, error)
	createFn           func(ctx context.Context, in ports.CreateUserInput) (*domain.User, error)
	getByIDFn          func(ctx context.Context, id string) (*domain.User, error)
	updateFn           func(ctx context.Context, id string, in ports.UpdateUserInput) (*domain.User, error)
	deleteFn           func(ctx context.Context, id string) error
	listFn             func(ctx context.Context, skip, limit int) ([]*domain.User, int64, error)
	loginFn            func(ctx context.Context, identifier, password string) (string, *domain.User, error)
	unlockFn           func(ctx context.Context, id string) (*domain.User, error)
	verifyEmailFn      func(ctx context.Context, userID, token string) error
	verifyByTokenFn    func(ctx context.Context, token string) error
	resendFn           func(ctx context.Context, email string) error
	profilePictureFn   func(ctx context.Context, id, url string) (*domain.User, error)
	professionalInfoFn func(ctx context.Context, id, linkedin, github string) (*domain.User, error)
}

func (s *stubUserService) Register(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubUserService) Create(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	return s.createFn(ctx, in)
}

func (s *stubUserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.getByIDFn(ctx, id)
}

func (s *stubUserService) GetByEmail(context.Context, string) (*domain.User, error) {
	panic("unexpected GetByEmail")
}

func (s *stubUserService) GetByNickname(context.Context, string) (*domain.User, error) {
	panic("unexpected GetByNickname")
}

func (s *stubUserService) Update(ctx context.Context, id string, in ports.UpdateUserInput) (*domain.User, error) {
	return s.updateFn(ctx, id, in)
}

func (s *stubUserService) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func (s *stubUserService) List(ctx context.Context, skip, limit int) ([]*domain.User, int64, error) {
	return s.listFn(ctx, skip, limit)
}

func (s *stubUserService) Count(context.Context) (int64, error) {
	panic("unexpected Count")
}

func (s *stubUserService) Login(ctx context.Context, identifier, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, identifier, password)
}

func (s *stubUserService) IsAccountLocked(context.Context, string) (bool, error) {
	panic("unexpected IsAccountLocked")
}

func (s *stubUserService) Unlock(ctx context.Context, id string) (*domain.User, error) {
	return s.unlockFn(ctx, id)
}

func (s *stubUserService) VerifyEmail(ctx context.Context, userID, token string) error {
	return s.verifyEmailFn(ctx, userID, token)
}

func (s *stubUserService) VerifyEmailByToken(ctx context.Context, token string) error {
	return s.verifyByTokenFn(ctx, token)
}

func (s *stubUserService) ResendVerification(ctx context.Context, email string) error {
	return s.resendFn(ctx, email)
}

func (s *stubUserService) UpdateProfilePicture(ctx context.Context, id, url string) (*domain.User, error) {
	return s.profilePictureFn(ctx, id, url)
}

func (s *stubUserService) UpdateProfessionalInfo(ctx context.Context, id, linkedin, github string) (*domain.User, error) {
	return s.professionalInfoFn(ctx, id, linkedin, github)
}
