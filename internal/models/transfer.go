package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CardTransfer represents a card_transfers table row. Rows are immutable.
type CardTransfer struct {
	TransferID      string          `db:"transfer_id"` // Primary Key (e.g., UUID)
	UserID          string          `db:"user_id"`
	FromCardID      string          `db:"from_card_id"`
	ToCardID        string          `db:"to_card_id"`
	Amount          decimal.Decimal `db:"amount"`
	ExchangeRate    decimal.Decimal `db:"exchange_rate"`
	ConvertedAmount decimal.Decimal `db:"converted_amount"`
	Description     string          `db:"description"`
	TransferDate    time.Time       `db:"transfer_date"`
	AuditFields
}
