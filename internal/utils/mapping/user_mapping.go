package mapping

import (
	"database/sql"

	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
	"github.com/qodirovs/finance_tracker_app/internal/models"
)

// ToModelUser converts a domain User to a model User
func ToModelUser(d domain.User) models.User {
	m := models.User{
		UserID:              d.UserID,
		Name:                d.Name,
		Email:               d.Email,
		PasswordHash:        toNullString(d.PasswordHash),
		AuthProvider:        string(d.AuthProvider),
		ProviderUserID:      toNullString(d.ProviderUserID),
		EmailVerified:       d.EmailVerified,
		AuthStatus:          string(d.AuthStatus),
		DefaultCurrencyCode: d.DefaultCurrencyCode,
		IsAdmin:             d.IsAdmin,
		AuditFields:         ToModelAuditFields(d.AuditFields),
		DeletedAt:           d.DeletedAt,
		RefreshTokenHash:    toNullString(d.RefreshTokenHash),
	}
	if d.RefreshTokenExpiry != nil {
		m.RefreshTokenExpiryTime = sql.NullTime{Time: *d.RefreshTokenExpiry, Valid: true}
	}
	return m
}

// ToDomainUser converts a model User to a domain User
func ToDomainUser(m models.User) domain.User {
	d := domain.User{
		UserID:              m.UserID,
		Name:                m.Name,
		Email:               m.Email,
		PasswordHash:        m.PasswordHash.String,
		AuthProvider:        domain.AuthProvider(m.AuthProvider),
		ProviderUserID:      m.ProviderUserID.String,
		EmailVerified:       m.EmailVerified,
		AuthStatus:          domain.AuthStatus(m.AuthStatus),
		DefaultCurrencyCode: m.DefaultCurrencyCode,
		IsAdmin:             m.IsAdmin,
		AuditFields:         ToDomainAuditFields(m.AuditFields),
		DeletedAt:           m.DeletedAt,
		RefreshTokenHash:    m.RefreshTokenHash.String,
	}
	if m.RefreshTokenExpiryTime.Valid {
		expiry := m.RefreshTokenExpiryTime.Time
		d.RefreshTokenExpiry = &expiry
	}
	return d
}

// ToDomainUserSlice converts a slice of model Users to a slice of domain Users
func ToDomainUserSlice(ms []models.User) []domain.User {
	ds := make([]domain.User, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainUser(m)
	}
	return ds
}

// ToModelEmailVerification converts a domain EmailVerification to its model
func ToModelEmailVerification(d domain.EmailVerification) models.EmailVerification {
	m := models.EmailVerification{
		VerificationID: d.VerificationID,
		UserID:         d.UserID,
		Email:          d.Email,
		Code:           d.Code,
		ExpiresAt:      d.ExpiresAt,
		LastSentAt:     d.LastSentAt,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
	if d.ConsumedAt != nil {
		m.ConsumedAt = sql.NullTime{Time: *d.ConsumedAt, Valid: true}
	}
	return m
}

// ToDomainEmailVerification converts a model EmailVerification to its domain form
func ToDomainEmailVerification(m models.EmailVerification) domain.EmailVerification {
	d := domain.EmailVerification{
		VerificationID: m.VerificationID,
		UserID:         m.UserID,
		Email:          m.Email,
		Code:           m.Code,
		ExpiresAt:      m.ExpiresAt,
		LastSentAt:     m.LastSentAt,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
	if m.ConsumedAt.Valid {
		consumed := m.ConsumedAt.Time
		d.ConsumedAt = &consumed
	}
	return d
}
