package dto

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// LoginRequest payload.
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" form:"current_password"`
	NewPassword     string `json:"new_password" form:"new_password"`
}

// AuthResponse is returned on login.
type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        UserResponse `json:"user"`
}

// UserSummary is the compact form embedded in tickets and comments.
type UserSummary struct {
	ID       int64       `json:"id"`
	Username string      `json:"username"`
	FullName string      `json:"full_name"`
	Role     domain.Role `json:"role"`
}

// UserResponse is the full profile.
type UserResponse struct {
	ID         int64       `json:"id"`
	Username   string      `json:"username"`
	Email      string      `json:"email"`
	FullName   string      `json:"full_name"`
	Role       domain.Role `json:"role"`
	Department string      `json:"department"`
	IsActive   bool        `json:"is_active"`
	CreatedAt  time.Time   `json:"created_at"`
}

// NewUserSummary maps a user; nil stays nil.
func NewUserSummary(u *domain.User) *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Username: u.Username, FullName: u.FullName, Role: u.Role}
}

// NewUserResponse maps a user profile.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FullName:   u.FullName,
		Role:       u.Role,
		Department: u.Department,
		IsActive:   u.IsActive,
		CreatedAt:  u.CreatedAt,
	}
}

// NewUserResponses maps a list, never returning nil.
func NewUserResponses(users []domain.User) []UserResponse {
	items := make([]UserResponse, 0, len(users))
	for i := range users {
		items = append(items, NewUserResponse(&users[i]))
	}
	return items
}
