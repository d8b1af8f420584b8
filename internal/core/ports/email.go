package ports

import (
	"context"

	"github.com/99minutos/user-accounts/internal/core/domain"
)

// Email kinds understood by the EmailService.
const (
	EmailVerification = "email_verification"
	VerificationEmail = "verification_email"
	AccountLocked     = "account_locked"
	PasswordReset     = "password_reset"
)

// EmailMessage is a single rendered message ready for delivery.
type EmailMessage struct {
	To       string
	Subject  string
	HTMLBody string
}

// TemplateRenderer renders a named template with variable substitution.
type TemplateRenderer interface {
	Render(name string, vars map[string]string) (string, error)
}

// MailSender delivers one message. Failures wrap domain.ErrDeliveryFailed.
type MailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailService renders and sends user-facing emails.
type EmailService interface {
	SendUserEmail(ctx context.Context, kind string, vars map[string]string, to string) error
	SendVerificationEmail(ctx context.Context, user *domain.User) error
}

// MailJob is a deferred EmailService.SendUserEmail call.
type MailJob struct {
	Kind string
	To   string
	Vars map[string]string
}

// MailQueue accepts mail jobs for asynchronous delivery.
type MailQueue interface {
	Enqueue(job MailJob)
}
