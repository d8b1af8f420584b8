package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/user-accounts/internal/core/domain"
	"github.com/99minutos/user-accounts/internal/core/ports"
)

// AuthHandler serves registration, login and email verification.
type AuthHandler struct {
	service ports.UserService
	baseURL string
}

func NewAuthHandler(service ports.UserService, baseURL string) *AuthHandler {
	return &AuthHandler{service: service, baseURL: baseURL}
}

// Register creates a new user account and emails a verification link.
// When the email cannot be delivered the account is still created and the
// response reports verification_email_sent=false.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  registerResponse
// @Failure      409   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.service.Register(c.Request().Context(), toCreateInput(req))
	if err != nil && (user == nil || !errors.Is(err, domain.ErrDeliveryFailed)) {
		return err
	}

	return c.JSON(http.StatusCreated, registerResponse{
		userResponse:          toUserResponse(h.baseURL, user),
		VerificationEmailSent: err == nil && !user.EmailVerified,
	})
}

// Login authenticates by email or nickname and returns a bearer token.
// Accepts an OAuth2 password form or a JSON body.
//
// @Summary      Login
// @Tags         auth
// @Accept       x-www-form-urlencoded,json
// @Produce      json
// @Param        username  formData  string  true  "Email or nickname"
// @Param        password  formData  string  true  "Password"
// @Success      200  {object}  tokenResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      429  {object}  ErrorResponse
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, _, err := h.service.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

// VerifyEmail consumes the link sent by email.
//
// @Summary      Verify email
// @Tags         auth
// @Produce      json
// @Param        user_id  path      string  true  "User ID"
// @Param        token    path      string  true  "Verification token"
// @Success      200      {object}  messageResponse
// @Failure      400      {object}  ErrorResponse
// @Router       /verify-email/{user_id}/{token} [get]
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	if err := h.service.VerifyEmail(c.Request().Context(), c.Param("user_id"), c.Param("token")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Email verified successfully"})
}

// VerifyEmailByToken verifies whichever account holds the token.
//
// @Summary      Verify email by token
// @Tags         auth
// @Produce      json
// @Param        token  path      string  true  "Verification token"
// @Success      200    {object}  messageResponse
// @Failure      400    {object}  ErrorResponse
// @Router       /users/verify-email/{token} [post]
func (h *AuthHandler) VerifyEmailByToken(c echo.Context) error {
	if err := h.service.VerifyEmailByToken(c.Request().Context(), c.Param("token")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Email verified successfully"})
}

// ResendVerification queues a fresh verification email. The response does
// not reveal whether the address is registered.
//
// @Summary      Resend verification email
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resendVerificationRequest  true  "Email address"
// @Success      202   {object}  messageResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /verify-email/resend [post]
func (h *AuthHandler) ResendVerification(c echo.Context) error {
	var req resendVerificationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.service.ResendVerification(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, messageResponse{
		Message: "If the address belongs to an unverified account, a verification email is on its way",
	})
}
