package dto

import (
	"github.com/splitr-app/splitr_backend/internal/core/domain"
)

// RegisterUserRequest defines the payload for creating a new user.
type RegisterUserRequest struct {
	Username   string  `json:"username" binding:"required,min=3,max=50"`
	Password   string  `json:"password" binding:"required,min=8"`
	FirstName  string  `json:"firstName" binding:"required"`
	LastName   string  `json:"lastName" binding:"required"`
	HourlyWage float64 `json:"wage" binding:"omitempty,gte=0"`
	Venmo      string  `json:"venmo"`
}

// UpdateUserRequest defines the payload for updating a user's profile.
// Nil fields are left unchanged.
type UpdateUserRequest struct {
	FirstName  *string  `json:"firstName" binding:"omitempty,min=1"`
	LastName   *string  `json:"lastName" binding:"omitempty,min=1"`
	HourlyWage *float64 `json:"wage" binding:"omitempty,gte=0"`
	Venmo      *string  `json:"venmo"`
}

// LoginRequest defines the payload for password login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest defines the payload for refreshing an access token.
type RefreshRequest struct {
	UserID       string `json:"userID" binding:"required"`
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// ListUsersParams defines query parameters for listing users.
type ListUsersParams struct {
	Limit  int `form:"limit,default=100"`
	Offset int `form:"offset,default=0"`
}

// UserResponse is the client-facing identity shape: the fields the expense
// views need to label participants and compute proportional splits.
type UserResponse struct {
	User      string  `json:"user"`
	Username  string  `json:"username,omitempty"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Wage      float64 `json:"wage"`
	Venmo     string  `json:"venmo,omitempty"`
}

// ListUsersResponse wraps the list of users.
type ListUsersResponse struct {
	Users []UserResponse `json:"users"`
}

// ToUserResponse converts a domain.User to UserResponse DTO.
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		User:      u.UserID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Wage:      u.HourlyWage,
		Venmo:     u.Venmo,
	}
}

// ToListUsersResponse converts a slice of domain.User to ListUsersResponse DTO.
func ToListUsersResponse(users []domain.User) ListUsersResponse {
	responses := make([]UserResponse, len(users))
	for i := range users {
		responses[i] = ToUserResponse(&users[i])
	}
	return ListUsersResponse{Users: responses}
}
