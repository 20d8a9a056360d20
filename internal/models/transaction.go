package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType indicates whether a transaction adds to or removes from a card balance.
type TransactionType string

const (
	Income  TransactionType = "INCOME"
	Expense TransactionType = "EXPENSE"
)

// Transaction represents a transactions table row. The frozen conversion
// columns carry the rate and converted amount captured at the last save.
type Transaction struct {
	TransactionID        string          `db:"transaction_id"` // Primary Key (e.g., UUID)
	UserID               string          `db:"user_id"`
	CardID               string          `db:"card_id"`
	CategoryID           string          `db:"category_id"`
	Type                 TransactionType `db:"type"`
	Amount               decimal.Decimal `db:"amount"` // NUMERIC(15,2), positive
	CurrencyCode         string          `db:"currency_code"`
	ExchangeRateUsed     decimal.Decimal `db:"exchange_rate_used"`
	AmountInUserCurrency decimal.Decimal `db:"amount_in_user_currency"`
	Title                string          `db:"title"`
	Description          string          `db:"description"`
	Location             string          `db:"location"`
	TransactionDate      time.Time       `db:"transaction_date"`
	AuditFields
}
