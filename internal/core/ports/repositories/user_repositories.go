package repositories

import (
	"context"
	"time"

	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
)

// UserReader defines read operations for user data
type UserReader interface {
	// FindUserByID retrieves a specific user by their ID.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByEmail retrieves a user by email, excluding soft-deleted users.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// FindUserByProviderID retrieves a user by external auth provider identity.
	FindUserByProviderID(ctx context.Context, provider domain.AuthProvider, providerUserID string) (*domain.User, error)

	// FindUsers retrieves a paginated list of users.
	FindUsers(ctx context.Context, limit int, offset int) ([]domain.User, error)
}

// UserWriter defines write operations for user data
type UserWriter interface {
	// SaveUser persists a new user.
	SaveUser(ctx context.Context, user domain.User) error

	// UpdateUser updates an existing user's details.
	UpdateUser(ctx context.Context, user domain.User) error

	// UpdateRefreshTokenHash stores or clears the user's hashed refresh token.
	UpdateRefreshTokenHash(ctx context.Context, userID string, tokenHash *string, expiry *time.Time, now time.Time) error
}

// UserLifecycleManager defines operations for managing user lifecycle
type UserLifecycleManager interface {
	// MarkUserDeleted marks a user as deleted (soft delete).
	MarkUserDeleted(ctx context.Context, userID string, deletedAt time.Time, deletedBy string) error
}

// VerificationManager defines operations on signup verification codes
type VerificationManager interface {
	// SaveVerification persists a new verification code, superseding earlier ones.
	SaveVerification(ctx context.Context, verification domain.EmailVerification) error

	// FindActiveVerification retrieves the latest unconsumed code for a user.
	FindActiveVerification(ctx context.Context, userID string) (*domain.EmailVerification, error)

	// MarkVerificationConsumed stamps the code as used.
	MarkVerificationConsumed(ctx context.Context, verificationID string, now time.Time) error
}

// UserRepositoryFacade combines all user-related repository interfaces
// This is a facade for clients that need access to all operations
type UserRepositoryFacade interface {
	UserReader
	UserWriter
	UserLifecycleManager
	VerificationManager
}
