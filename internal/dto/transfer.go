package dto

import (
	"time"

	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateTransferRequest defines the data needed for a card-to-card transfer.
type CreateTransferRequest struct {
	FromCardID   string          `json:"fromCardID" binding:"required"`
	ToCardID     string          `json:"toCardID" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"required,dgt0"` // Service enforces the 0.01 minimum
	Description  string          `json:"description"`
	TransferDate time.Time       `json:"transferDate"`
}

// TransferResponse defines the data returned for a transfer.
type TransferResponse struct {
	TransferID      string          `json:"transferID"`
	FromCardID      string          `json:"fromCardID"`
	ToCardID        string          `json:"toCardID"`
	Amount          decimal.Decimal `json:"amount"`
	ExchangeRate    decimal.Decimal `json:"exchangeRate"`
	ConvertedAmount decimal.Decimal `json:"convertedAmount"`
	FeeAmount       decimal.Decimal `json:"feeAmount"`
	Description     string          `json:"description,omitempty"`
	TransferDate    time.Time       `json:"transferDate"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// ListTransfersResponse wraps a page of transfers with the next-page token.
type ListTransfersResponse struct {
	Transfers []TransferResponse `json:"transfers"`
	NextToken *string            `json:"nextToken,omitempty"`
}

// ToTransferResponse converts a domain.CardTransfer to TransferResponse DTO
func ToTransferResponse(tr *domain.CardTransfer) TransferResponse {
	return TransferResponse{
		TransferID:      tr.TransferID,
		FromCardID:      tr.FromCardID,
		ToCardID:        tr.ToCardID,
		Amount:          tr.Amount,
		ExchangeRate:    tr.ExchangeRate,
		ConvertedAmount: tr.ConvertedAmount,
		FeeAmount:       tr.FeeAmount(),
		Description:     tr.Description,
		TransferDate:    tr.TransferDate,
		CreatedAt:       tr.CreatedAt,
	}
}

// ToListTransfersResponse converts a page of domain transfers to the list DTO
func ToListTransfersResponse(transfers []domain.CardTransfer, nextToken *string) ListTransfersResponse {
	res := ListTransfersResponse{
		Transfers: make([]TransferResponse, len(transfers)),
		NextToken: nextToken,
	}
	for i := range transfers {
		res.Transfers[i] = ToTransferResponse(&transfers[i])
	}
	return res
}
