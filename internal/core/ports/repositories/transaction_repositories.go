package repositories

import (
	"context"
	"time"

	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransactionListFilters narrows a transaction listing. Nil fields are ignored.
type TransactionListFilters struct {
	CardID     *string
	CategoryID *string
	Type       *domain.TransactionType
	DateFrom   *time.Time
	DateTo     *time.Time
}

// CurrencyTotal is an aggregate of transaction amounts grouped by currency.
type CurrencyTotal struct {
	CurrencyCode string
	Total        decimal.Decimal
}

// ReportingAmountUpdate carries one recomputed frozen conversion for a transaction.
type ReportingAmountUpdate struct {
	TransactionID        string
	ExchangeRateUsed     decimal.Decimal
	AmountInUserCurrency decimal.Decimal
}

// TransactionReader defines read operations for transaction data
type TransactionReader interface {
	// FindTransactionByID retrieves a specific transaction by its unique identifier.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactionsByUser retrieves a paginated, filtered list of the user's
	// transactions using token-based pagination, newest first.
	ListTransactionsByUser(ctx context.Context, userID string, filters TransactionListFilters, limit int, nextToken *string) ([]domain.Transaction, *string, error)

	// ListAllTransactionsByUser retrieves every transaction of the user, for
	// batch repricing. No pagination.
	ListAllTransactionsByUser(ctx context.Context, userID string) ([]domain.Transaction, error)

	// SumAmountsByCategory totals transaction amounts for a category and type in
	// [from, to), grouped by card currency.
	SumAmountsByCategory(ctx context.Context, userID, categoryID string, txType domain.TransactionType, from, to time.Time) ([]CurrencyTotal, error)

	// SumAmountsByCard totals transaction amounts for one card and type in [from, to).
	SumAmountsByCard(ctx context.Context, cardID string, txType domain.TransactionType, from, to time.Time) (decimal.Decimal, error)

	// HasTransactionsForCard reports whether any transaction references the card.
	HasTransactionsForCard(ctx context.Context, cardID string) (bool, error)

	// HasTransactionsForCategory reports whether any transaction references the category.
	HasTransactionsForCategory(ctx context.Context, categoryID string) (bool, error)
}

// TransactionWriter defines write operations for transaction data. The save,
// update and delete methods each run a single database transaction that locks
// the affected cards and applies the supplied balance deltas together with the
// row change, so balances and history can never diverge.
type TransactionWriter interface {
	// SaveTransaction persists a new transaction and applies its balance effect.
	SaveTransaction(ctx context.Context, txn domain.Transaction, balanceChanges map[string]decimal.Decimal) error

	// UpdateTransaction rewrites an existing transaction and applies the
	// reversal-plus-reapply deltas, which may touch two different cards.
	UpdateTransaction(ctx context.Context, txn domain.Transaction, balanceChanges map[string]decimal.Decimal) error

	// DeleteTransaction removes a transaction and applies the reversal delta.
	DeleteTransaction(ctx context.Context, transactionID string, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error

	// UpdateReportingAmounts batch-rewrites frozen conversions after a default
	// currency change. Card balances are not touched.
	UpdateReportingAmounts(ctx context.Context, userID string, updates []ReportingAmountUpdate, now time.Time) error
}

// TransactionRepositoryFacade combines all transaction-related repository interfaces
// This is a facade for clients that need access to all operations
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}

// TransactionRepositoryWithTx extends TransactionRepositoryFacade with transaction capabilities
type TransactionRepositoryWithTx interface {
	TransactionRepositoryFacade
	TransactionManager
}
