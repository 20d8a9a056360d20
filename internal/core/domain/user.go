package domain

import "time"

// AuthProvider identifies how a user authenticates.
type AuthProvider string

const (
	ProviderLocal  AuthProvider = "LOCAL"
	ProviderGoogle AuthProvider = "GOOGLE"
)

// AuthStatus tracks signup progress for local accounts.
type AuthStatus string

const (
	AuthStatusNew          AuthStatus = "NEW"           // Registered, email code not yet verified
	AuthStatusCodeVerified AuthStatus = "CODE_VERIFIED" // Code accepted, profile incomplete
	AuthStatusDone         AuthStatus = "DONE"          // Fully registered
)

// User represents a user of the application in the domain.
type User struct {
	UserID              string       `json:"userID"` // Primary Key (e.g., UUID)
	Name                string       `json:"name"`
	Email               string       `json:"email"`
	PasswordHash        string       `json:"-"` // Empty for provider-only accounts
	AuthProvider        AuthProvider `json:"authProvider"`
	ProviderUserID      string       `json:"-"` // Subject claim from the external provider
	EmailVerified       bool         `json:"emailVerified"`
	AuthStatus          AuthStatus   `json:"authStatus"`
	DefaultCurrencyCode string       `json:"defaultCurrencyCode"` // Reporting currency for frozen conversions
	IsAdmin             bool         `json:"isAdmin"`
	RefreshTokenHash    string       `json:"-"`
	RefreshTokenExpiry  *time.Time   `json:"-"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"` // Used for soft delete
}

// GoogleUserInfo carries the subset of Google profile claims the app consumes.
type GoogleUserInfo struct {
	ProviderUserID string `json:"sub"`
	Email          string `json:"email"`
	EmailVerified  bool   `json:"email_verified"`
	Name           string `json:"name"`
	Picture        string `json:"picture"`
}

// EmailVerification is a short-lived 4-digit code sent during signup.
type EmailVerification struct {
	VerificationID string     `json:"verificationID"` // Primary Key (e.g., UUID)
	UserID         string     `json:"userID"`
	Email          string     `json:"email"`
	Code           string     `json:"-"`
	ExpiresAt      time.Time  `json:"expiresAt"`
	LastSentAt     time.Time  `json:"lastSentAt"` // Resend throttle anchor
	ConsumedAt     *time.Time `json:"consumedAt,omitempty"`
	AuditFields
}
