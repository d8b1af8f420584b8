package handler

import (
	"github.com/99minutos/user-accounts/internal/core/domain"
	"github.com/99minutos/user-accounts/internal/core/links"
	"github.com/99minutos/user-accounts/internal/core/ports"
)

// --- Request → Service input ---

func toCreateInput(req registerRequest) ports.CreateUserInput {
	return ports.CreateUserInput{
		Email:              req.Email,
		Nickname:           req.Nickname,
		Password:           req.Password,
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Bio:                req.Bio,
		ProfilePictureURL:  req.ProfilePictureURL,
		LinkedInProfileURL: req.LinkedInProfileURL,
		GitHubProfileURL:   req.GitHubProfileURL,
	}
}

func toUpdateInput(req updateUserRequest) ports.UpdateUserInput {
	in := ports.UpdateUserInput{
		Email:              req.Email,
		Nickname:           req.Nickname,
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Bio:                req.Bio,
		ProfilePictureURL:  req.ProfilePictureURL,
		LinkedInProfileURL: req.LinkedInProfileURL,
		GitHubProfileURL:   req.GitHubProfileURL,
		IsProfessional:     req.IsProfessional,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		in.Role = &role
	}
	return in
}

// --- Domain → Response ---

func toUserResponse(baseURL string, u *domain.User) userResponse {
	return userResponse{User: u, Links: links.ForUser(baseURL, u.ID)}
}

func toUserListResponse(baseURL string, users []*domain.User, skip, limit int, total int64) userListResponse {
	items := make([]userResponse, len(users))
	for i, u := range users {
		items[i] = toUserResponse(baseURL, u)
	}
	return userListResponse{
		Items: items,
		Total: total,
		Page:  links.Window{Offset: skip, Limit: limit, Total: total}.Page(),
		Size:  len(items),
		Links: links.ForPage(baseURL, skip, limit, total),
	}
}
