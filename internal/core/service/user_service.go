package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/user-accounts/internal/core/domain"
	"github.com/99minutos/user-accounts/internal/core/links"
	"github.com/99minutos/user-accounts/internal/core/ports"
	"github.com/99minutos/user-accounts/internal/pkg/metrics"
)

const (
	defaultTokenTTL    = 30 * time.Minute
	defaultMaxAttempts = 3
)

// UserServiceConfig holds the tunables of UserService.
type UserServiceConfig struct {
	TokenTTL         time.Duration
	MaxLoginAttempts int
	BaseURL          string
}

// UserService implements account management, login and email verification.
type UserService struct {
	repo     ports.UserRepository
	emails   ports.EmailService
	outbox   ports.MailQueue
	attempts ports.LoginAttemptTracker
	tokens   ports.TokenIssuer
	cfg      UserServiceConfig
	logger   zerolog.Logger
	now      func() time.Time

	// bootstrapMu serialises registrations while the store is empty.
	bootstrapMu sync.Mutex
}

func NewUserService(
	repo ports.UserRepository,
	emails ports.EmailService,
	outbox ports.MailQueue,
	attempts ports.LoginAttemptTracker,
	tokens ports.TokenIssuer,
	cfg UserServiceConfig,
	logger zerolog.Logger,
) *UserService {
	if cfg.TokenTTL < 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	if cfg.MaxLoginAttempts <= 0 {
		cfg.MaxLoginAttempts = defaultMaxAttempts
	}
	return &UserService{
		repo:     repo,
		emails:   emails,
		outbox:   outbox,
		attempts: attempts,
		tokens:   tokens,
		cfg:      cfg,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a self-service account and emails its verification link.
// The very first account becomes ADMIN and needs no verification. When the
// email cannot be delivered the created user is still returned, together
// with an error wrapping domain.ErrDeliveryFailed.
func (s *UserService) Register(ctx context.Context, input ports.CreateUserInput) (*domain.User, error) {
	role, release, err := s.registrationRole(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.create(ctx, input, role, role == domain.RoleAdmin)
	release()
	if err != nil {
		return nil, err
	}
	metrics.RegistrationsTotal.WithLabelValues("register").Inc()
	s.logger.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user registered")

	if user.EmailVerified {
		return user, nil
	}
	if err := s.emails.SendVerificationEmail(ctx, user); err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("verification email not sent")
		if !errors.Is(err, domain.ErrDeliveryFailed) {
			err = fmt.Errorf("%w: %w", domain.ErrDeliveryFailed, err)
		}
		return user, err
	}
	return user, nil
}

// Create is the administrative counterpart of Register: the requested role is
// honoured and the account starts verified.
func (s *UserService) Create(ctx context.Context, input ports.CreateUserInput) (*domain.User, error) {
	role := input.Role
	if role == "" {
		role = domain.RoleAuthenticated
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, role)
	}

	user, err := s.create(ctx, input, role, true)
	if err != nil {
		return nil, err
	}
	metrics.RegistrationsTotal.WithLabelValues("admin").Inc()
	s.logger.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user created")
	return user, nil
}

// registrationRole returns ADMIN for the first account and ANONYMOUS after
// that. When it returns ADMIN it holds bootstrapMu until release is called,
// so concurrent first registrations in this process yield a single ADMIN.
func (s *UserService) registrationRole(ctx context.Context) (domain.Role, func(), error) {
	noop := func() {}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return "", noop, err
	}
	if total > 0 {
		return domain.RoleAnonymous, noop, nil
	}

	s.bootstrapMu.Lock()
	total, err = s.repo.Count(ctx)
	if err != nil {
		s.bootstrapMu.Unlock()
		return "", noop, err
	}
	if total > 0 {
		s.bootstrapMu.Unlock()
		return domain.RoleAnonymous, noop, nil
	}
	return domain.RoleAdmin, s.bootstrapMu.Unlock, nil
}

func (s *UserService) create(ctx context.Context, input ports.CreateUserInput, role domain.Role, verified bool) (*domain.User, error) {
	email := normalizeEmail(input.Email)
	if email == "" || input.Nickname == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: email, nickname and password are required", domain.ErrValidation)
	}
	if err := s.ensureUnique(ctx, "", email, input.Nickname); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := &domain.User{
		ID:                 uuid.NewString(),
		Email:              email,
		Nickname:           input.Nickname,
		FirstName:          input.FirstName,
		LastName:           input.LastName,
		Bio:                input.Bio,
		ProfilePictureURL:  input.ProfilePictureURL,
		LinkedInProfileURL: input.LinkedInProfileURL,
		GitHubProfileURL:   input.GitHubProfileURL,
		Role:               role,
		EmailVerified:      verified,
		HashedPassword:     string(hash),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if !verified {
		if user.VerificationToken, err = generateVerificationToken(); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ensureUnique rejects email or nickname values owned by an account other than selfID.
func (s *UserService) ensureUnique(ctx context.Context, selfID, email, nickname string) error {
	if email != "" {
		existing, err := s.repo.GetByEmail(ctx, email)
		switch {
		case err == nil && existing.ID != selfID:
			return domain.ErrEmailExists
		case err != nil && !errors.Is(err, domain.ErrUserNotFound):
			return err
		}
	}
	if nickname != "" {
		existing, err := s.repo.GetByNickname(ctx, nickname)
		switch {
		case err == nil && existing.ID != selfID:
			return domain.ErrNicknameExists
		case err != nil && !errors.Is(err, domain.ErrUserNotFound):
			return err
		}
	}
	return nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.repo.GetByEmail(ctx, normalizeEmail(email))
}

func (s *UserService) GetByNickname(ctx context.Context, nickname string) (*domain.User, error) {
	return s.repo.GetByNickname(ctx, nickname)
}

// Update applies the non-nil fields of input to the user identified by id.
func (s *UserService) Update(ctx context.Context, id string, input ports.UpdateUserInput) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var email, nickname string
	if input.Email != nil {
		email = normalizeEmail(*input.Email)
		if email == "" {
			return nil, fmt.Errorf("%w: email must not be empty", domain.ErrValidation)
		}
	}
	if input.Nickname != nil {
		nickname = *input.Nickname
		if nickname == "" {
			return nil, fmt.Errorf("%w: nickname must not be empty", domain.ErrValidation)
		}
	}
	if input.Role != nil && !input.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, *input.Role)
	}
	if err := s.ensureUnique(ctx, user.ID, email, nickname); err != nil {
		return nil, err
	}

	if email != "" {
		user.Email = email
	}
	if nickname != "" {
		user.Nickname = nickname
	}
	setString(&user.FirstName, input.FirstName)
	setString(&user.LastName, input.LastName)
	setString(&user.Bio, input.Bio)
	setString(&user.ProfilePictureURL, input.ProfilePictureURL)
	setString(&user.LinkedInProfileURL, input.LinkedInProfileURL)
	setString(&user.GitHubProfileURL, input.GitHubProfileURL)
	if input.Role != nil {
		user.Role = *input.Role
	}
	if input.IsProfessional != nil {
		user.IsProfessional = *input.IsProfessional
	}

	return s.save(ctx, user)
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.attempts.Reset(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("user_id", id).Msg("failed to clear login attempts")
	}
	s.logger.Info().Str("user_id", id).Msg("user deleted")
	return nil
}

// List returns one page of users and the total number of accounts.
func (s *UserService) List(ctx context.Context, skip, limit int) ([]*domain.User, int64, error) {
	skip, limit = links.Clamp(skip, limit)

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	users, err := s.repo.List(ctx, skip, limit)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (s *UserService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// Login authenticates identifier (email or nickname) with password and
// returns a bearer token. Every wrong password counts towards the lockout
// threshold; reaching it locks the account and notifies its owner.
func (s *UserService) Login(ctx context.Context, identifier, password string) (string, *domain.User, error) {
	if identifier == "" || password == "" {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.lookup(ctx, identifier)
	if errors.Is(err, domain.ErrUserNotFound) {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return "", nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if user.IsLocked {
		metrics.LoginsTotal.WithLabelValues("locked").Inc()
		return "", nil, domain.ErrAccountLocked
	}

	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)) != nil {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		if err := s.recordFailure(ctx, user); err != nil {
			return "", nil, err
		}
		return "", nil, domain.ErrInvalidCredentials
	}

	if !user.EmailVerified {
		metrics.LoginsTotal.WithLabelValues("unverified").Inc()
		return "", nil, domain.ErrEmailNotVerified
	}

	if err := s.attempts.Reset(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID).Msg("failed to reset login attempts")
	}

	now := s.now()
	user.LastLoginAt = &now
	if user, err = s.save(ctx, user); err != nil {
		return "", nil, err
	}

	token, err := s.tokens.Issue(map[string]any{
		"sub":  user.Email,
		"role": string(user.Role),
	}, s.cfg.TokenTTL)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.logger.Info().Str("user_id", user.ID).Msg("user logged in")
	return token, user, nil
}

func (s *UserService) recordFailure(ctx context.Context, user *domain.User) error {
	failures, err := s.attempts.RecordFailure(ctx, user.ID)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID).Msg("failed to record login failure")
		return nil
	}
	if failures < int64(s.cfg.MaxLoginAttempts) {
		return nil
	}

	user.IsLocked = true
	if _, err := s.save(ctx, user); err != nil {
		return err
	}
	metrics.LockoutsTotal.Inc()
	s.logger.Warn().Str("user_id", user.ID).Int64("failures", failures).Msg("account locked")

	s.outbox.Enqueue(ports.MailJob{
		Kind: ports.AccountLocked,
		To:   user.Email,
		Vars: map[string]string{"name": displayName(user)},
	})
	return nil
}

// IsAccountLocked reports whether the account identified by email or
// nickname is locked. Unknown accounts are reported as not locked.
func (s *UserService) IsAccountLocked(ctx context.Context, identifier string) (bool, error) {
	user, err := s.lookup(ctx, identifier)
	if errors.Is(err, domain.ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user.IsLocked, nil
}

// Unlock clears the lock flag and the failed login counter.
func (s *UserService) Unlock(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.attempts.Reset(ctx, id); err != nil {
		return nil, fmt.Errorf("reset login attempts: %w", err)
	}
	user.IsLocked = false
	return s.save(ctx, user)
}

func (s *UserService) lookup(ctx context.Context, identifier string) (*domain.User, error) {
	if strings.Contains(identifier, "@") {
		return s.repo.GetByEmail(ctx, normalizeEmail(identifier))
	}
	return s.repo.GetByNickname(ctx, identifier)
}

// VerifyEmail completes verification for userID when token matches.
func (s *UserService) VerifyEmail(ctx context.Context, userID, token string) error {
	user, err := s.repo.GetByID(ctx, userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.ErrInvalidVerificationToken
	}
	if err != nil {
		return err
	}
	return s.completeVerification(ctx, user, token)
}

// VerifyEmailByToken completes verification for whichever account holds token.
func (s *UserService) VerifyEmailByToken(ctx context.Context, token string) error {
	if token == "" {
		return domain.ErrInvalidVerificationToken
	}
	user, err := s.repo.GetByVerificationToken(ctx, token)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.ErrInvalidVerificationToken
	}
	if err != nil {
		return err
	}
	return s.completeVerification(ctx, user, token)
}

func (s *UserService) completeVerification(ctx context.Context, user *domain.User, token string) error {
	if user.VerificationToken == "" || token == "" ||
		subtle.ConstantTimeCompare([]byte(user.VerificationToken), []byte(token)) != 1 {
		return domain.ErrInvalidVerificationToken
	}

	user.MarkVerified(s.now())
	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}
	metrics.VerificationsTotal.Inc()
	s.logger.Info().Str("user_id", user.ID).Msg("email verified")
	return nil
}

// ResendVerification issues a fresh verification token and queues the email.
// Unknown and already verified addresses are ignored so callers cannot learn
// which accounts exist.
func (s *UserService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return nil
	}

	if user.VerificationToken, err = generateVerificationToken(); err != nil {
		return err
	}
	if user, err = s.save(ctx, user); err != nil {
		return err
	}

	s.outbox.Enqueue(ports.MailJob{
		Kind: ports.VerificationEmail,
		To:   user.Email,
		Vars: VerificationVars(s.cfg.BaseURL, user),
	})
	return nil
}

func (s *UserService) UpdateProfilePicture(ctx context.Context, id, url string) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.ProfilePictureURL = url
	return s.save(ctx, user)
}

// UpdateProfessionalInfo stores the LinkedIn and GitHub profile URLs; empty
// values leave the current ones untouched. An account with either URL set is
// marked professional.
func (s *UserService) UpdateProfessionalInfo(ctx context.Context, id, linkedinURL, githubURL string) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if linkedinURL != "" {
		user.LinkedInProfileURL = linkedinURL
	}
	if githubURL != "" {
		user.GitHubProfileURL = githubURL
	}
	user.IsProfessional = user.LinkedInProfileURL != "" || user.GitHubProfileURL != ""
	return s.save(ctx, user)
}

func (s *UserService) save(ctx context.Context, user *domain.User) (*domain.User, error) {
	user.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// generateVerificationToken returns 32 random bytes encoded URL-safe.
func generateVerificationToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate verification token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
