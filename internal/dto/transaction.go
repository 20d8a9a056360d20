package dto

import (
	"time"

	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest defines the data needed to record an income or expense.
type CreateTransactionRequest struct {
	CardID          string                 `json:"cardID" binding:"required"`
	CategoryID      string                 `json:"categoryID" binding:"required"`
	Type            domain.TransactionType `json:"type" binding:"required,oneof=INCOME EXPENSE"`
	Amount          decimal.Decimal        `json:"amount" binding:"required,dgt0"`
	Title           string                 `json:"title" binding:"required"`
	Description     string                 `json:"description"`
	Location        string                 `json:"location"`
	TransactionDate time.Time              `json:"transactionDate" binding:"required"`
	TagIDs          []string               `json:"tagIDs"`
}

// UpdateTransactionRequest defines the data allowed for editing a transaction.
// Pointers distinguish omitted fields from zero values.
type UpdateTransactionRequest struct {
	CardID          *string                 `json:"cardID"`
	CategoryID      *string                 `json:"categoryID"`
	Type            *domain.TransactionType `json:"type" binding:"omitempty,oneof=INCOME EXPENSE"`
	Amount          *decimal.Decimal        `json:"amount"`
	Title           *string                 `json:"title"`
	Description     *string                 `json:"description"`
	Location        *string                 `json:"location"`
	TransactionDate *time.Time              `json:"transactionDate"`
}

// ListTransactionsRequest defines query parameters for listing transactions.
type ListTransactionsRequest struct {
	CardID     *string    `form:"cardID"`
	CategoryID *string    `form:"categoryID"`
	Type       *string    `form:"type" binding:"omitempty,oneof=INCOME EXPENSE"`
	DateFrom   *time.Time `form:"dateFrom" time_format:"2006-01-02"`
	DateTo     *time.Time `form:"dateTo" time_format:"2006-01-02"`
	Limit      int        `form:"limit,default=20"`
	NextToken  *string    `form:"nextToken"`
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID        string                 `json:"transactionID"`
	CardID               string                 `json:"cardID"`
	CategoryID           string                 `json:"categoryID"`
	Type                 domain.TransactionType `json:"type"`
	Amount               decimal.Decimal        `json:"amount"`
	CurrencyCode         string                 `json:"currencyCode"`
	ExchangeRateUsed     decimal.Decimal        `json:"exchangeRateUsed"`
	AmountInUserCurrency decimal.Decimal        `json:"amountInUserCurrency"`
	Title                string                 `json:"title"`
	Description          string                 `json:"description,omitempty"`
	Location             string                 `json:"location,omitempty"`
	TransactionDate      time.Time              `json:"transactionDate"`
	TagIDs               []string               `json:"tagIDs,omitempty"`
	CreatedAt            time.Time              `json:"createdAt"`
	LastUpdatedAt        time.Time              `json:"lastUpdatedAt"`
}

// ListTransactionsResponse wraps a page of transactions with the next-page token.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// RecomputeReportingResponse reports the result of a batch repricing.
type RecomputeReportingResponse struct {
	UpdatedCount int    `json:"updatedCount"`
	CurrencyCode string `json:"currencyCode"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:        txn.TransactionID,
		CardID:               txn.CardID,
		CategoryID:           txn.CategoryID,
		Type:                 txn.Type,
		Amount:               txn.Amount,
		CurrencyCode:         txn.CurrencyCode,
		ExchangeRateUsed:     txn.ExchangeRateUsed,
		AmountInUserCurrency: txn.AmountInUserCurrency,
		Title:                txn.Title,
		Description:          txn.Description,
		Location:             txn.Location,
		TransactionDate:      txn.TransactionDate,
		TagIDs:               txn.TagIDs,
		CreatedAt:            txn.CreatedAt,
		LastUpdatedAt:        txn.LastUpdatedAt,
	}
}

// ToListTransactionsResponse converts a page of domain transactions to the list DTO
func ToListTransactionsResponse(txns []domain.Transaction, nextToken *string) ListTransactionsResponse {
	res := ListTransactionsResponse{
		Transactions: make([]TransactionResponse, len(txns)),
		NextToken:    nextToken,
	}
	for i := range txns {
		res.Transactions[i] = ToTransactionResponse(&txns[i])
	}
	return res
}
