package services

import (
	"context"

	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
	"github.com/qodirovs/finance_tracker_app/internal/dto"
	"github.com/shopspring/decimal"
)

// CardReaderSvc defines read operations for card data
type CardReaderSvc interface {
	// GetCardByID retrieves one of the user's cards by ID.
	GetCardByID(ctx context.Context, userID string, cardID string) (*domain.Card, error)

	// ListCards retrieves all cards belonging to the user.
	ListCards(ctx context.Context, userID string) ([]domain.Card, error)

	// GetBalanceInCurrency returns the card balance converted to the target
	// currency. The boolean is false when no rate can be resolved.
	GetBalanceInCurrency(ctx context.Context, userID string, cardID string, currencyCode string) (decimal.Decimal, bool, error)
}

// CardWriterSvc defines write operations for card data
type CardWriterSvc interface {
	// CreateCard persists a new card with its initial balance.
	CreateCard(ctx context.Context, userID string, req dto.CreateCardRequest) (*domain.Card, error)

	// UpdateCard updates mutable card attributes. Currency and balance are immutable here.
	UpdateCard(ctx context.Context, userID string, cardID string, req dto.UpdateCardRequest) (*domain.Card, error)

	// SetDefaultCard makes the card the user's default, demoting all others atomically.
	SetDefaultCard(ctx context.Context, userID string, cardID string) (*domain.Card, error)

	// ChangeCardStatus moves the card between ACTIVE, INACTIVE and BLOCKED.
	// Leaving ACTIVE clears the default flag.
	ChangeCardStatus(ctx context.Context, userID string, cardID string, status domain.CardStatus) (*domain.Card, error)

	// CorrectBalance overwrites the card balance with an audited manual correction.
	CorrectBalance(ctx context.Context, userID string, cardID string, req dto.CorrectBalanceRequest) (*domain.Card, error)

	// DeleteCard removes a card. Rejected when the card has transaction history
	// or is the user's last active card.
	DeleteCard(ctx context.Context, userID string, cardID string) error
}

// CardSvcFacade combines all card-related service interfaces
// This is a facade for clients that need access to all operations
type CardSvcFacade interface {
	CardReaderSvc
	CardWriterSvc
}
