package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/user-accounts/internal/core/domain"
	"github.com/99minutos/user-accounts/internal/core/ports"
	"github.com/99minutos/user-accounts/internal/pkg/metrics"
)

var emailSubjects = map[string]string{
	ports.EmailVerification: "Verify Your Account",
	ports.VerificationEmail: "Verify Your Account",
	ports.AccountLocked:     "Account Locked Notification",
	ports.PasswordReset:     "Password Reset Instructions",
}

// EmailService renders templates by kind and hands them to a MailSender.
type EmailService struct {
	renderer ports.TemplateRenderer
	sender   ports.MailSender
	baseURL  string
	logger   zerolog.Logger
}

func NewEmailService(renderer ports.TemplateRenderer, sender ports.MailSender, baseURL string, logger zerolog.Logger) *EmailService {
	return &EmailService{renderer: renderer, sender: sender, baseURL: baseURL, logger: logger}
}

// SendUserEmail renders the template named after kind and sends it to to.
func (s *EmailService) SendUserEmail(ctx context.Context, kind string, vars map[string]string, to string) error {
	subject, ok := emailSubjects[kind]
	if !ok {
		return fmt.Errorf("%w: unknown email kind %q", domain.ErrValidation, kind)
	}

	start := time.Now()
	defer func() {
		metrics.EmailDeliveryDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}()

	body, err := s.renderer.Render(kind, vars)
	if err != nil {
		metrics.EmailsSentTotal.WithLabelValues(kind, "failed").Inc()
		return fmt.Errorf("render %s: %w", kind, err)
	}

	if err := s.sender.Send(ctx, ports.EmailMessage{To: to, Subject: subject, HTMLBody: body}); err != nil {
		metrics.EmailsSentTotal.WithLabelValues(kind, "failed").Inc()
		return err
	}

	metrics.EmailsSentTotal.WithLabelValues(kind, "sent").Inc()
	s.logger.Info().Str("kind", kind).Str("to", to).Msg("email sent")
	return nil
}

// SendVerificationEmail sends the account verification link for user.
func (s *EmailService) SendVerificationEmail(ctx context.Context, user *domain.User) error {
	return s.SendUserEmail(ctx, ports.VerificationEmail, VerificationVars(s.baseURL, user), user.Email)
}

// VerificationVars returns the template variables of a verification email.
func VerificationVars(baseURL string, user *domain.User) map[string]string {
	return map[string]string{
		"name":             displayName(user),
		"verification_url": fmt.Sprintf("%s/verify-email/%s/%s", baseURL, user.ID, user.VerificationToken),
	}
}

func displayName(user *domain.User) string {
	if user.FirstName != "" {
		return user.FirstName
	}
	return user.Nickname
}
