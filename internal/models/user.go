package models

import (
	"database/sql"
	"time"
)

// User represents a users table row.
type User struct {
	UserID              string         `db:"user_id"` // Primary Key (e.g., UUID)
	Name                string         `db:"name"`
	Email               string         `db:"email"`
	PasswordHash        sql.NullString `db:"password_hash"` // NULL for provider-only accounts
	AuthProvider        string         `db:"auth_provider"`
	ProviderUserID      sql.NullString `db:"provider_user_id"`
	EmailVerified       bool           `db:"email_verified"`
	AuthStatus          string         `db:"auth_status"`
	DefaultCurrencyCode string         `db:"default_currency_code"`
	IsAdmin             bool           `db:"is_admin"`
	AuditFields
	DeletedAt *time.Time `db:"deleted_at"`

	// Refresh Token Fields
	RefreshTokenHash       sql.NullString `db:"refresh_token_hash"`        // Store hash of the refresh token
	RefreshTokenExpiryTime sql.NullTime   `db:"refresh_token_expiry_time"` // Expiry of the stored refresh token
}

// EmailVerification represents an email_verifications table row.
type EmailVerification struct {
	VerificationID string       `db:"verification_id"` // Primary Key (e.g., UUID)
	UserID         string       `db:"user_id"`
	Email          string       `db:"email"`
	Code           string       `db:"code"`
	ExpiresAt      time.Time    `db:"expires_at"`
	LastSentAt     time.Time    `db:"last_sent_at"`
	ConsumedAt     sql.NullTime `db:"consumed_at"`
	AuditFields
}
