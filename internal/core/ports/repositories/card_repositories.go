package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CardReader defines read operations for card data
type CardReader interface {
	// FindCardByID retrieves a specific card by its unique identifier.
	FindCardByID(ctx context.Context, cardID string) (*domain.Card, error)

	// FindCardsByIDs retrieves multiple cards by their IDs.
	FindCardsByIDs(ctx context.Context, cardIDs []string) (map[string]domain.Card, error)

	// ListCardsByUser retrieves all cards belonging to a user.
	ListCardsByUser(ctx context.Context, userID string) ([]domain.Card, error)

	// CountActiveCardsByUser returns the number of the user's cards in ACTIVE status.
	CountActiveCardsByUser(ctx context.Context, userID string) (int, error)
}

// CardWriter defines write operations for card data
type CardWriter interface {
	// SaveCard persists a new card.
	SaveCard(ctx context.Context, card domain.Card) error

	// UpdateCardDetails updates mutable card attributes (name, bank, color, last4).
	// The currency and balance are never touched by this method.
	UpdateCardDetails(ctx context.Context, card domain.Card) error

	// UpdateCardStatus changes the card status, clearing the default flag when
	// the card leaves ACTIVE status.
	UpdateCardStatus(ctx context.Context, cardID string, status domain.CardStatus, userID string, now time.Time) error

	// SetDefaultCard promotes the card to default and demotes every other card
	// of the user within a single database transaction.
	SetDefaultCard(ctx context.Context, userID string, cardID string, now time.Time) error

	// SetCardBalance overwrites the card balance with an explicit corrected value.
	SetCardBalance(ctx context.Context, cardID string, balance decimal.Decimal, userID string, now time.Time) error

	// DeleteCard removes a card permanently. Callers must enforce the
	// no-transaction-history guard before invoking this.
	DeleteCard(ctx context.Context, cardID string) error
}

// CardTransactionSupport defines operations used by money-movement repositories
// running inside their own database transactions.
type CardTransactionSupport interface {
	// FindCardsByIDsForUpdate selects cards and locks them for update within a transaction.
	FindCardsByIDsForUpdate(ctx context.Context, tx pgx.Tx, cardIDs []string) (map[string]domain.Card, error)

	// UpdateCardBalancesInTx applies signed balance deltas to multiple cards within a given transaction.
	UpdateCardBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error
}

// CardRepositoryFacade combines all card-related repository interfaces
// This is a facade for clients that need access to all operations
type CardRepositoryFacade interface {
	CardReader
	CardWriter
	CardTransactionSupport
}

// CardRepositoryWithTx extends CardRepositoryFacade with transaction capabilities
type CardRepositoryWithTx interface {
	CardRepositoryFacade
	TransactionManager
}
