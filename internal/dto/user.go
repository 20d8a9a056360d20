package dto

import (
	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
)

// RegisterUserRequest starts the signup flow with email and password.
type RegisterUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// VerifyCodeRequest submits the 4-digit email verification code.
type VerifyCodeRequest struct {
	Code string `json:"code" binding:"required,len=4,numeric"`
}

// CompleteRegistrationRequest finishes signup with profile details.
type CompleteRegistrationRequest struct {
	Name                string `json:"name" binding:"required"`
	DefaultCurrencyCode string `json:"defaultCurrencyCode" binding:"required,len=3,uppercase"`
}

// LoginRequest authenticates with email and password.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateUserRequest defines the data allowed for updating a user.
// Using pointers to differentiate between omitted fields and zero-value fields.
type UpdateUserRequest struct {
	Name *string `json:"name"`
}

// ChangeDefaultCurrencyRequest switches the user's reporting currency.
type ChangeDefaultCurrencyRequest struct {
	CurrencyCode string `json:"currencyCode" binding:"required,len=3,uppercase"`
}

// ListUsersParams defines query parameters for listing users.
type ListUsersParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// UserResponse defines the data returned for a user.
type UserResponse struct {
	UserID              string            `json:"userID"`
	Name                string            `json:"name"`
	Email               string            `json:"email"`
	AuthStatus          domain.AuthStatus `json:"authStatus"`
	EmailVerified       bool              `json:"emailVerified"`
	DefaultCurrencyCode string            `json:"defaultCurrencyCode"`
}

// ListUsersResponse wraps the list of users.
type ListUsersResponse struct {
	Users []UserResponse `json:"users"`
}

// ToUserResponse converts a domain.User to UserResponse DTO
func ToUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		UserID:              user.UserID,
		Name:                user.Name,
		Email:               user.Email,
		AuthStatus:          user.AuthStatus,
		EmailVerified:       user.EmailVerified,
		DefaultCurrencyCode: user.DefaultCurrencyCode,
	}
}

// ToListUserResponse converts a slice of domain.User to ListUsersResponse DTO
func ToListUserResponse(users []domain.User) ListUsersResponse {
	userResponses := make([]UserResponse, len(users))
	for i := range users {
		userResponses[i] = ToUserResponse(&users[i])
	}
	return ListUsersResponse{Users: userResponses}
}
