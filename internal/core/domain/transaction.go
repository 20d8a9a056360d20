package domain

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

// Transaction represents a single income or expense entry against one card.
// Amount is always positive and denominated in the card currency;
// AmountInUserCurrency carries the value converted to the user's default
// currency at the rate frozen when the record was last saved.
type Transaction struct {
	TransactionID        string          `json:"transactionID"` // Primary Key (e.g., UUID)
	UserID               string          `json:"userID"`        // FK -> users.user_id (Not Null)
	CardID               string          `json:"cardID"`        // FK -> cards.card_id (Not Null)
	CategoryID           string          `json:"categoryID"`    // FK -> categories.category_id
	Type                 TransactionType `json:"type"`
	Amount               decimal.Decimal `json:"amount"`       // Positive value in card currency
	CurrencyCode         string          `json:"currencyCode"` // Denormalized card currency
	ExchangeRateUsed     decimal.Decimal `json:"exchangeRateUsed"`
	AmountInUserCurrency decimal.Decimal `json:"amountInUserCurrency"`
	Title                string          `json:"title"`
	Description          string          `json:"description"` // Nullable
	Location             string          `json:"location"`    // Nullable
	TransactionDate      time.Time       `json:"transactionDate"`
	TagIDs               []string        `json:"tagIDs,omitempty"`
	AuditFields
}

// BalanceEffect returns the signed delta this transaction applies to its card
// balance: positive for income, negative for expense.
func (t Transaction) BalanceEffect() decimal.Decimal {
	if t.Type == Expense {
		return t.Amount.Neg()
	}
	return t.Amount
}
