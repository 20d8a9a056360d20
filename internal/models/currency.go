package models

// Currency represents a supported currency row.
type Currency struct {
	CurrencyCode string `db:"currency_code"` // Primary Key (e.g., "USD")
	Symbol       string `db:"symbol"`
	Name         string `db:"name"`
	IsActive     bool   `db:"is_active"`
	AuditFields
}
