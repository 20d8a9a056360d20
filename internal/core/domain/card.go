package domain

import "github.com/shopspring/decimal"

// CardStatus indicates the lifecycle state of a card.
type CardStatus string

const (
	CardActive   CardStatus = "ACTIVE"
	CardInactive CardStatus = "INACTIVE"
	CardBlocked  CardStatus = "BLOCKED"
)

// Card represents a card or wallet owned by a user. The currency is fixed at
// creation; the balance is only ever mutated by the transaction recorder, the
// transfer engine, or an explicit balance correction.
type Card struct {
	CardID         string          `json:"cardID"`       // Primary Key (e.g., UUID)
	UserID         string          `json:"userID"`       // FK -> users.user_id (Not Null)
	Name           string          `json:"name"`         // User-defined name
	CurrencyCode   string          `json:"currencyCode"` // FK -> currencies.code, immutable after creation
	Balance        decimal.Decimal `json:"balance"`
	InitialBalance decimal.Decimal `json:"initialBalance"` // Balance at creation, kept for the ledger invariant
	LastFourDigits string          `json:"lastFourDigits"` // Optional display hint
	BankName       string          `json:"bankName"`       // Optional
	Color          string          `json:"color"`          // Optional UI color tag
	Status         CardStatus      `json:"status"`
	IsDefault      bool            `json:"isDefault"` // At most one default card per user
	AuditFields
}
