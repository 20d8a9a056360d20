package models

import "github.com/shopspring/decimal"

// CardStatus mirrors the allowed card lifecycle states in the database.
type CardStatus string

const (
	CardActive   CardStatus = "ACTIVE"
	CardInactive CardStatus = "INACTIVE"
	CardBlocked  CardStatus = "BLOCKED"
)

// Card represents a cards table row.
type Card struct {
	CardID         string          `db:"card_id"` // Primary Key (e.g., UUID)
	UserID         string          `db:"user_id"`
	Name           string          `db:"name"`
	CurrencyCode   string          `db:"currency_code"`
	Balance        decimal.Decimal `db:"balance"`         // NUMERIC(15,2)
	InitialBalance decimal.Decimal `db:"initial_balance"` // NUMERIC(15,2)
	LastFourDigits string          `db:"last_four_digits"`
	BankName       string          `db:"bank_name"`
	Color          string          `db:"color"`
	Status         CardStatus      `db:"status"`
	IsDefault      bool            `db:"is_default"`
	AuditFields
}
