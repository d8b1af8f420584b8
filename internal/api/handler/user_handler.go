package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/user-accounts/internal/core/domain"
	"github.com/99minutos/user-accounts/internal/core/links"
	"github.com/99minutos/user-accounts/internal/core/ports"
)

// UserHandler serves the user management endpoints.
type UserHandler struct {
	service ports.UserService
	baseURL string
}

func NewUserHandler(service ports.UserService, baseURL string) *UserHandler {
	return &UserHandler{service: service, baseURL: baseURL}
}

// List returns a page of users with pagination links.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        skip   query     int  false  "Number of users to skip"  default(0)
// @Param        limit  query     int  false  "Page size (max 100)"      default(10)
// @Success      200    {object}  userListResponse
// @Failure      401    {object}  ErrorResponse
// @Failure      403    {object}  ErrorResponse
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	skip, limit := 0, links.DefaultLimit
	if err := echo.QueryParamsBinder(c).Int("skip", &skip).Int("limit", &limit).BindError(); err != nil {
		return fmt.Errorf("%w: skip and limit must be integers", domain.ErrValidation)
	}
	skip, limit = links.Clamp(skip, limit)

	users, total, err := h.service.List(c.Request().Context(), skip, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserListResponse(h.baseURL, users, skip, limit, total))
}

// Create adds a user with an explicit role. Only an ADMIN may create ADMIN
// or MANAGER accounts.
//
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "User details"
// @Success      201   {object}  userResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	in := toCreateInput(req.registerRequest)
	in.Role = domain.Role(req.Role)
	if err := authorizeRoleGrant(c, in.Role); err != nil {
		return err
	}

	user, err := h.service.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	resp := toUserResponse(h.baseURL, user)
	if self, ok := links.Find(resp.Links, "self"); ok {
		c.Response().Header().Set(echo.HeaderLocation, self.Href)
	}
	return c.JSON(http.StatusCreated, resp)
}

// Get returns one user.
//
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  userResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.service.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(h.baseURL, user))
}

// Update applies a partial update to a user. Only an ADMIN may change a role
// to ADMIN or MANAGER.
//
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User ID"
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  userResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	in := toUpdateInput(req)
	if in.Role != nil {
		if err := authorizeRoleGrant(c, *in.Role); err != nil {
			return err
		}
	}

	user, err := h.service.Update(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(h.baseURL, user))
}

// Delete removes a user.
//
// @Summary      Delete a user
// @Tags         users
// @Security     BearerAuth
// @Param        id   path  string  true  "User ID"
// @Success      204
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Unlock clears an account lockout.
//
// @Summary      Unlock a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  userResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id}/unlock [post]
func (h *UserHandler) Unlock(c echo.Context) error {
	user, err := h.service.Unlock(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(h.baseURL, user))
}

// UpdateProfilePicture sets the caller's own profile picture.
//
// @Summary      Update profile picture
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "User ID"
// @Param        body  body      profilePictureRequest  true  "Picture URL"
// @Success      200   {object}  userResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /users/{id}/profile-picture [patch]
func (h *UserHandler) UpdateProfilePicture(c echo.Context) error {
	target, err := h.ownedTarget(c)
	if err != nil {
		return err
	}

	var req profilePictureRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.service.UpdateProfilePicture(c.Request().Context(), target.ID, req.ProfilePictureURL)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(h.baseURL, user))
}

// UpdateProfessionalInfo sets the caller's LinkedIn and GitHub profiles.
//
// @Summary      Update professional info
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                   true  "User ID"
// @Param        body  body      professionalInfoRequest  true  "Profile URLs"
// @Success      200   {object}  userResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /users/{id}/professional [patch]
func (h *UserHandler) UpdateProfessionalInfo(c echo.Context) error {
	target, err := h.ownedTarget(c)
	if err != nil {
		return err
	}

	var req professionalInfoRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.service.UpdateProfessionalInfo(c.Request().Context(), target.ID, req.LinkedInProfileURL, req.GitHubProfileURL)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(h.baseURL, user))
}

func (h *UserHandler) ownedTarget(c echo.Context) (*domain.User, error) {
	if _, err := ctxPrincipal(c); err != nil {
		return nil, err
	}
	target, err := h.service.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner(c, target); err != nil {
		return nil, err
	}
	return target, nil
}
