package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate represents a dated conversion rate between two currencies.
// Rates are stored per direction; the reverse direction is derived by inversion
// when no direct row exists.
type ExchangeRate struct {
	ExchangeRateID   string          `json:"exchangeRateID"`   // Primary Key (e.g., UUID)
	FromCurrencyCode string          `json:"fromCurrencyCode"` // FK -> currencies.code
	ToCurrencyCode   string          `json:"toCurrencyCode"`   // FK -> currencies.code
	Rate             decimal.Decimal `json:"rate"`             // Strictly positive multiplier
	DateEffective    time.Time       `json:"dateEffective"`    // Rate applies from this date onward
	AuditFields
}
