package services

import (
	"context"

	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
	"github.com/qodirovs/finance_tracker_app/internal/dto"
)

// TransactionReaderSvc defines read operations for transaction data
type TransactionReaderSvc interface {
	// GetTransactionByID retrieves one of the user's transactions.
	GetTransactionByID(ctx context.Context, userID string, transactionID string) (*domain.Transaction, error)

	// ListTransactions retrieves a filtered, token-paginated page of the user's
	// transactions, newest first. Returns the page and the next-page token.
	ListTransactions(ctx context.Context, userID string, req dto.ListTransactionsRequest) ([]domain.Transaction, *string, error)
}

// TransactionWriterSvc defines write operations for transaction data
type TransactionWriterSvc interface {
	// CreateTransaction records a new income or expense, freezing the
	// conversion to the user's default currency and moving the card balance.
	CreateTransaction(ctx context.Context, userID string, req dto.CreateTransactionRequest) (*domain.Transaction, error)

	// UpdateTransaction edits an existing record: the old effect is reversed on
	// the old card, the new effect applied to the (possibly different) card,
	// and the frozen conversion recomputed.
	UpdateTransaction(ctx context.Context, userID string, transactionID string, req dto.UpdateTransactionRequest) (*domain.Transaction, error)

	// DeleteTransaction removes a record after reversing its balance effect.
	DeleteTransaction(ctx context.Context, userID string, transactionID string) error

	// RecomputeReportingAmounts reprices every transaction of the user against
	// their current default currency. Returns the number of rows rewritten.
	RecomputeReportingAmounts(ctx context.Context, userID string) (int, error)
}

// TransactionSvcFacade combines all transaction-related service interfaces
// This is a facade for clients that need access to all operations
type TransactionSvcFacade interface {
	TransactionReaderSvc
	TransactionWriterSvc
}
