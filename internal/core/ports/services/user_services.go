package services

import (
	"context"
	"time"

	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
	"github.com/qodirovs/finance_tracker_app/internal/dto"
)

// UserReaderSvc defines read operations for user data
type UserReaderSvc interface {
	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)

	// GetUserByEmail retrieves a user by email.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// ListUsers retrieves a paginated list of users.
	ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error)
}

// UserRegistrationSvc drives the staged signup flow:
// NEW -> CODE_VERIFIED -> DONE.
type UserRegistrationSvc interface {
	// RegisterUser creates a NEW user from email and password and emails a
	// 4-digit verification code valid for two minutes.
	RegisterUser(ctx context.Context, req dto.RegisterUserRequest) (*domain.User, error)

	// ResendVerificationCode issues a fresh code. Throttled to once per two minutes.
	ResendVerificationCode(ctx context.Context, userID string) error

	// VerifyEmailCode checks the submitted code and advances the user to CODE_VERIFIED.
	VerifyEmailCode(ctx context.Context, userID string, code string) error

	// CompleteRegistration sets name and default currency and advances to DONE.
	CompleteRegistration(ctx context.Context, userID string, req dto.CompleteRegistrationRequest) (*domain.User, error)
}

// UserWriterSvc defines write operations for user data
type UserWriterSvc interface {
	// UpdateUser updates an existing user.
	UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, requestingUserID string) (*domain.User, error)

	// ChangeDefaultCurrency switches the user's reporting currency and triggers
	// the explicit batch repricing of their transaction history. Returns the
	// number of repriced transactions.
	ChangeDefaultCurrency(ctx context.Context, userID string, currencyCode string) (int, error)

	// UpdateRefreshToken updates the refresh token details for a user.
	UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, refreshTokenExpiryTime time.Time) error

	// ClearRefreshToken clears the refresh token for a user.
	ClearRefreshToken(ctx context.Context, userID string) error
}

// UserLifecycleSvc defines operations for managing user lifecycle
type UserLifecycleSvc interface {
	// DeleteUser marks a user as deleted (soft delete).
	DeleteUser(ctx context.Context, userID string, requestingUserID string) error
}

// UserAuthSvc defines operations for user authentication
type UserAuthSvc interface {
	// AuthenticateUser authenticates a user with email and password.
	AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error)

	// CreateOrGetOAuthUser finds or provisions a user from an external provider identity.
	CreateOrGetOAuthUser(ctx context.Context, name, email string, provider domain.AuthProvider, providerUserID string, emailVerified bool) (*domain.User, error)
}

// UserSvcFacade combines all user-related service interfaces
type UserSvcFacade interface {
	UserReaderSvc
	UserRegistrationSvc
	UserWriterSvc
	UserLifecycleSvc
	UserAuthSvc
}
