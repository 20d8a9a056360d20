package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/qodirovs/finance_tracker_app/internal/apperrors"
	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
	portsrepo "github.com/qodirovs/finance_tracker_app/internal/core/ports/repositories"
	portssvc "github.com/qodirovs/finance_tracker_app/internal/core/ports/services"
	"github.com/qodirovs/finance_tracker_app/internal/dto"
	"github.com/shopspring/decimal"
)

// cardService provides business logic for cards and wallets.
type cardService struct {
	BaseService
	cardRepo        portsrepo.CardRepositoryFacade
	transactionRepo portsrepo.TransactionReader
	currencyService portssvc.CurrencySvcFacade
	rateService     portssvc.ExchangeRateReaderSvc
}

// NewCardService creates a new card service.
func NewCardService(
	cardRepo portsrepo.CardRepositoryFacade,
	transactionRepo portsrepo.TransactionReader,
	currencyService portssvc.CurrencySvcFacade,
	rateService portssvc.ExchangeRateReaderSvc,
) portssvc.CardSvcFacade {
	return &cardService{
		cardRepo:        cardRepo,
		transactionRepo: transactionRepo,
		currencyService: currencyService,
		rateService:     rateService,
	}
}

var _ portssvc.CardSvcFacade = (*cardService)(nil)

// getOwnedCard loads a card and verifies it belongs to the user.
func (s *cardService) getOwnedCard(ctx context.Context, userID, cardID string) (*domain.Card, error) {
	card, err := s.cardRepo.FindCardByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card.UserID != userID {
		return nil, fmt.Errorf("%w: card %s does not belong to user", apperrors.ErrForbidden, cardID)
	}
	return card, nil
}

// CreateCard persists a new card with its initial balance. The first card of a
// user automatically becomes the default.
func (s *cardService) CreateCard(ctx context.Context, userID string, req dto.CreateCardRequest) (*domain.Card, error) {
	if req.InitialBalance.IsNegative() {
		return nil, fmt.Errorf("%w: initial balance cannot be negative", apperrors.ErrValidation)
	}

	currency, err := s.currencyService.GetCurrencyByCode(ctx, req.CurrencyCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: currency code '%s' not found", apperrors.ErrValidation, req.CurrencyCode)
		}
		return nil, fmt.Errorf("failed to validate currency '%s': %w", req.CurrencyCode, err)
	}
	if !currency.IsActive {
		return nil, fmt.Errorf("%w: currency '%s' is not active", apperrors.ErrValidation, req.CurrencyCode)
	}

	existing, err := s.cardRepo.ListCardsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards before create: %w", err)
	}

	now := time.Now().UTC()
	card := domain.Card{
		CardID:         uuid.NewString(),
		UserID:         userID,
		Name:           req.Name,
		CurrencyCode:   req.CurrencyCode,
		Balance:        req.InitialBalance,
		InitialBalance: req.InitialBalance,
		LastFourDigits: req.LastFourDigits,
		BankName:       req.BankName,
		Color:          req.Color,
		Status:         domain.CardActive,
		IsDefault:      len(existing) == 0,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.cardRepo.SaveCard(ctx, card); err != nil {
		return nil, fmt.Errorf("failed to create card in service: %w", err)
	}

	if req.IsDefault && !card.IsDefault {
		if err := s.cardRepo.SetDefaultCard(ctx, userID, card.CardID, now); err != nil {
			return nil, fmt.Errorf("failed to set new card as default: %w", err)
		}
		card.IsDefault = true
	}

	s.LogInfo(ctx, "card created",
		slog.String("card_id", card.CardID),
		slog.String("user_id", userID),
		slog.String("currency", card.CurrencyCode))

	return &card, nil
}

// GetCardByID retrieves one of the user's cards by ID.
func (s *cardService) GetCardByID(ctx context.Context, userID string, cardID string) (*domain.Card, error) {
	return s.getOwnedCard(ctx, userID, cardID)
}

// ListCards retrieves all cards belonging to the user.
func (s *cardService) ListCards(ctx context.Context, userID string) ([]domain.Card, error) {
	cards, err := s.cardRepo.ListCardsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards in service: %w", err)
	}
	if cards == nil {
		return []domain.Card{}, nil
	}
	return cards, nil
}

// GetBalanceInCurrency returns the card balance converted to the target
// currency. The boolean is false when no rate can be resolved.
func (s *cardService) GetBalanceInCurrency(ctx context.Context, userID string, cardID string, currencyCode string) (decimal.Decimal, bool, error) {
	card, err := s.getOwnedCard(ctx, userID, cardID)
	if err != nil {
		return decimal.Zero, false, err
	}
	return s.rateService.Convert(ctx, card.Balance, card.CurrencyCode, currencyCode)
}

// UpdateCard updates mutable card attributes. Currency and balance are immutable here.
func (s *cardService) UpdateCard(ctx context.Context, userID string, cardID string, req dto.UpdateCardRequest) (*domain.Card, error) {
	card, err := s.getOwnedCard(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		card.Name = *req.Name
	}
	if req.LastFourDigits != nil {
		card.LastFourDigits = *req.LastFourDigits
	}
	if req.BankName != nil {
		card.BankName = *req.BankName
	}
	if req.Color != nil {
		card.Color = *req.Color
	}
	card.LastUpdatedAt = time.Now().UTC()
	card.LastUpdatedBy = userID

	if err := s.cardRepo.UpdateCardDetails(ctx, *card); err != nil {
		return nil, fmt.Errorf("failed to update card in service: %w", err)
	}
	return card, nil
}

// SetDefaultCard makes the card the user's default, demoting all others atomically.
func (s *cardService) SetDefaultCard(ctx context.Context, userID string, cardID string) (*domain.Card, error) {
	card, err := s.getOwnedCard(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}
	if card.Status != domain.CardActive {
		return nil, fmt.Errorf("%w: only an active card can be the default", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	if err := s.cardRepo.SetDefaultCard(ctx, userID, cardID, now); err != nil {
		return nil, fmt.Errorf("failed to set default card in service: %w", err)
	}

	card.IsDefault = true
	card.LastUpdatedAt = now
	card.LastUpdatedBy = userID
	return card, nil
}

// ChangeCardStatus moves the card between ACTIVE, INACTIVE and BLOCKED.
// Leaving ACTIVE clears the default flag.
func (s *cardService) ChangeCardStatus(ctx context.Context, userID string, cardID string, status domain.CardStatus) (*domain.Card, error) {
	card, err := s.getOwnedCard(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}
	if card.Status == status {
		return card, nil
	}

	now := time.Now().UTC()
	if err := s.cardRepo.UpdateCardStatus(ctx, cardID, status, userID, now); err != nil {
		return nil, fmt.Errorf("failed to change card status in service: %w", err)
	}

	card.Status = status
	if status != domain.CardActive {
		card.IsDefault = false
	}
	card.LastUpdatedAt = now
	card.LastUpdatedBy = userID
	return card, nil
}

// CorrectBalance overwrites the card balance with an audited manual correction.
func (s *cardService) CorrectBalance(ctx context.Context, userID string, cardID string, req dto.CorrectBalanceRequest) (*domain.Card, error) {
	card, err := s.getOwnedCard(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.cardRepo.SetCardBalance(ctx, cardID, req.NewBalance, userID, now); err != nil {
		return nil, fmt.Errorf("failed to correct card balance in service: %w", err)
	}

	s.LogInfo(ctx, "card balance corrected",
		slog.String("card_id", cardID),
		slog.String("user_id", userID),
		slog.String("old_balance", card.Balance.String()),
		slog.String("new_balance", req.NewBalance.String()),
		slog.String("reason", req.Reason))

	card.Balance = req.NewBalance
	card.LastUpdatedAt = now
	card.LastUpdatedBy = userID
	return card, nil
}

// DeleteCard removes a card. Rejected when the card has transaction history or
// is the user's last active card.
func (s *cardService) DeleteCard(ctx context.Context, userID string, cardID string) error {
	card, err := s.getOwnedCard(ctx, userID, cardID)
	if err != nil {
		return err
	}

	hasHistory, err := s.transactionRepo.HasTransactionsForCard(ctx, cardID)
	if err != nil {
		return fmt.Errorf("failed to check card history before delete: %w", err)
	}
	if hasHistory {
		return fmt.Errorf("%w: card has transaction history and cannot be deleted", apperrors.ErrConflict)
	}

	if card.Status == domain.CardActive {
		activeCount, err := s.cardRepo.CountActiveCardsByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to count active cards before delete: %w", err)
		}
		if activeCount <= 1 {
			return fmt.Errorf("%w: cannot delete the last active card", apperrors.ErrConflict)
		}
	}

	if err := s.cardRepo.DeleteCard(ctx, cardID); err != nil {
		return fmt.Errorf("failed to delete card in service: %w", err)
	}

	s.LogInfo(ctx, "card deleted", slog.String("card_id", cardID), slog.String("user_id", userID))
	return nil
}
