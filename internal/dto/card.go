package dto

import (
	"time"

	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateCardRequest defines the data needed to create a new card.
type CreateCardRequest struct {
	Name           string          `json:"name" binding:"required"`
	CurrencyCode   string          `json:"currencyCode" binding:"required,len=3,uppercase"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	LastFourDigits string          `json:"lastFourDigits" binding:"omitempty,len=4,numeric"`
	BankName       string          `json:"bankName"`
	Color          string          `json:"color"`
	IsDefault      bool            `json:"isDefault"`
}

// UpdateCardRequest defines the data allowed for updating a card.
// Currency and balance are not updatable through this request.
type UpdateCardRequest struct {
	Name           *string `json:"name"`
	LastFourDigits *string `json:"lastFourDigits" binding:"omitempty,len=4,numeric"`
	BankName       *string `json:"bankName"`
	Color          *string `json:"color"`
}

// ChangeCardStatusRequest moves a card between statuses.
type ChangeCardStatusRequest struct {
	Status domain.CardStatus `json:"status" binding:"required,oneof=ACTIVE INACTIVE BLOCKED"`
}

// CorrectBalanceRequest overwrites a card balance with an audited correction.
type CorrectBalanceRequest struct {
	NewBalance decimal.Decimal `json:"newBalance" binding:"required"`
	Reason     string          `json:"reason" binding:"required"`
}

// CardResponse defines the data returned for a card.
type CardResponse struct {
	CardID         string            `json:"cardID"`
	Name           string            `json:"name"`
	CurrencyCode   string            `json:"currencyCode"`
	Balance        decimal.Decimal   `json:"balance"`
	InitialBalance decimal.Decimal   `json:"initialBalance"`
	LastFourDigits string            `json:"lastFourDigits,omitempty"`
	BankName       string            `json:"bankName,omitempty"`
	Color          string            `json:"color,omitempty"`
	Status         domain.CardStatus `json:"status"`
	IsDefault      bool              `json:"isDefault"`
	CreatedAt      time.Time         `json:"createdAt"`
	LastUpdatedAt  time.Time         `json:"lastUpdatedAt"`
}

// CardBalanceResponse defines the data returned for a converted balance query.
type CardBalanceResponse struct {
	CardID        string          `json:"cardID"`
	CurrencyCode  string          `json:"currencyCode"`
	Balance       decimal.Decimal `json:"balance"`
	RateAvailable bool            `json:"rateAvailable"`
}

// ToCardResponse converts a domain.Card to CardResponse DTO
func ToCardResponse(card *domain.Card) CardResponse {
	return CardResponse{
		CardID:         card.CardID,
		Name:           card.Name,
		CurrencyCode:   card.CurrencyCode,
		Balance:        card.Balance,
		InitialBalance: card.InitialBalance,
		LastFourDigits: card.LastFourDigits,
		BankName:       card.BankName,
		Color:          card.Color,
		Status:         card.Status,
		IsDefault:      card.IsDefault,
		CreatedAt:      card.CreatedAt,
		LastUpdatedAt:  card.LastUpdatedAt,
	}
}

// ToListCardResponse converts a slice of domain.Card to a slice of CardResponse DTOs
func ToListCardResponse(cards []domain.Card) []CardResponse {
	res := make([]CardResponse, len(cards))
	for i := range cards {
		res[i] = ToCardResponse(&cards[i])
	}
	return res
}
