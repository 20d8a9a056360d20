package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CardTransfer moves money between two cards of the same user. Transfers are
// immutable once created; corrections are made with an opposite transfer.
type CardTransfer struct {
	TransferID      string          `json:"transferID"` // Primary Key (e.g., UUID)
	UserID          string          `json:"userID"`
	FromCardID      string          `json:"fromCardID"`
	ToCardID        string          `json:"toCardID"`
	Amount          decimal.Decimal `json:"amount"`          // In the source card currency
	ExchangeRate    decimal.Decimal `json:"exchangeRate"`    // Frozen at creation, 1 for same-currency transfers
	ConvertedAmount decimal.Decimal `json:"convertedAmount"` // Amount * ExchangeRate, credited to the destination
	Description     string          `json:"description"`     // Nullable
	TransferDate    time.Time       `json:"transferDate"`
	AuditFields
}

// FeeAmount is the fee charged for the transfer. Transfers are currently free.
func (t CardTransfer) FeeAmount() decimal.Decimal {
	return decimal.Zero
}
