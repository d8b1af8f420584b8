package handler

import (
	"github.com/99minutos/user-accounts/internal/core/domain"
)

// --- Requests ---

type registerRequest struct {
	Email              string `json:"email" validate:"required,email,max=255"`
	Nickname           string `json:"nickname" validate:"required,nickname"`
	Password           string `json:"password" validate:"required,strongpassword"`
	FirstName          string `json:"first_name" validate:"max=100"`
	LastName           string `json:"last_name" validate:"max=100"`
	Bio                string `json:"bio" validate:"max=500"`
	ProfilePictureURL  string `json:"profile_picture_url" validate:"omitempty,url,max=255"`
	LinkedInProfileURL string `json:"linkedin_profile_url" validate:"omitempty,url,max=255"`
	GitHubProfileURL   string `json:"github_profile_url" validate:"omitempty,url,max=255"`
}

type createUserRequest struct {
	registerRequest
	Role string `json:"role" validate:"omitempty,oneof=ANONYMOUS AUTHENTICATED MANAGER ADMIN"`
}

type updateUserRequest struct {
	Email              *string `json:"email" validate:"omitempty,email,max=255"`
	Nickname           *string `json:"nickname" validate:"omitempty,nickname"`
	FirstName          *string `json:"first_name" validate:"omitempty,max=100"`
	LastName           *string `json:"last_name" validate:"omitempty,max=100"`
	Bio                *string `json:"bio" validate:"omitempty,max=500"`
	ProfilePictureURL  *string `json:"profile_picture_url" validate:"omitempty,url,max=255"`
	LinkedInProfileURL *string `json:"linkedin_profile_url" validate:"omitempty,url,max=255"`
	GitHubProfileURL   *string `json:"github_profile_url" validate:"omitempty,url,max=255"`
	Role               *string `json:"role" validate:"omitempty,oneof=ANONYMOUS AUTHENTICATED MANAGER ADMIN"`
	IsProfessional     *bool   `json:"is_professional"`
}

type loginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type profilePictureRequest struct {
	ProfilePictureURL string `json:"profile_picture_url" validate:"required,url,max=255"`
}

type professionalInfoRequest struct {
	LinkedInProfileURL string `json:"linkedin_profile_url" validate:"required_without=GitHubProfileURL,omitempty,url,max=255"`
	GitHubProfileURL   string `json:"github_profile_url" validate:"omitempty,url,max=255"`
}

type resendVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// --- Responses ---

type userResponse struct {
	*domain.User
	Links []domain.Link `json:"links"`
}

type registerResponse struct {
	userResponse
	VerificationEmailSent bool `json:"verification_email_sent"`
}

type userListResponse struct {
	Items []userResponse `json:"items"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
	Links []domain.Link  `json:"links"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the canonical error envelope for all API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}
