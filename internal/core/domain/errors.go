package domain

import "errors"

var (
	ErrUserNotFound             = errors.New("user not found")
	ErrEmailExists              = errors.New("email already registered")
	ErrNicknameExists           = errors.New("nickname already taken")
	ErrInvalidCredentials       = errors.New("incorrect email or password")
	ErrEmailNotVerified         = errors.New("email not verified")
	ErrAccountLocked            = errors.New("account locked due to too many failed login attempts")
	ErrInvalidToken             = errors.New("invalid or expired token")
	ErrInvalidVerificationToken = errors.New("invalid or expired verification token")
	ErrForbidden                = errors.New("access forbidden")
	ErrValidation               = errors.New("validation failed")
	ErrTemplateMissing          = errors.New("template not found")
	ErrDeliveryFailed           = errors.New("email delivery failed")
)
