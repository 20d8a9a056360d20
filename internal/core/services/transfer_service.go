package services

import (
	"context"
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

// minTransferAmount is the smallest allowed transfer in the source currency.
var minTransferAmount = decimal.NewFromFloat(0.01)

// transferService moves money between two cards of the same user. A rejected
// transfer never touches either balance; the repository re-checks the source
// balance under the row lock before moving anything.
type transferService struct {
	BaseService
	transferRepo portsrepo.TransferRepositoryFacade
	cardRepo     portsrepo.CardRepositoryFacade
	rateService  portssvc.ExchangeRateReaderSvc
}

// NewTransferService creates a new transfer service.
func NewTransferService(
	transferRepo portsrepo.TransferRepositoryFacade,
	cardRepo portsrepo.CardRepositoryFacade,
	rateService portssvc.ExchangeRateReaderSvc,
) portssvc.TransferSvcFacade {
	return &transferService{
		transferRepo: transferRepo,
		cardRepo:     cardRepo,
		rateService:  rateService,
	}
}

var _ portssvc.TransferSvcFacade = (*transferService)(nil)

// validateTransferCard loads a card, checks ownership and that it is active.
func (s *transferService) validateTransferCard(ctx context.Context, userID, cardID string) (*domain.Card, error) {
	card, err := s.cardRepo.FindCardByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card.UserID != userID {
		return nil, fmt.Errorf("%w: card %s does not belong to user", apperrors.ErrForbidden, cardID)
	}
	if card.Status != domain.CardActive {
		return nil, fmt.Errorf("%w: card %s is not active", apperrors.ErrValidation, cardID)
	}
	return card, nil
}

// CreateTransfer validates and executes a card-to-card transfer atomically.
// Cross-currency transfers freeze the rate in effect at creation time; a
// missing rate is a hard failure, unlike the reporting fallback.
func (s *transferService) CreateTransfer(ctx context.Context, userID string, req dto.CreateTransferRequest) (*domain.CardTransfer, error) {
	if req.FromCardID == req.ToCardID {
		return nil, fmt.Errorf("%w: cannot transfer to the same card", apperrors.ErrValidation)
	}

	fromCard, err := s.validateTransferCard(ctx, userID, req.FromCardID)
	if err != nil {
		return nil, err
	}
	toCard, err := s.validateTransferCard(ctx, userID, req.ToCardID)
	if err != nil {
		return nil, err
	}

	if fromCard.Balance.LessThan(req.Amount) {
		return nil, fmt.Errorf("%w: insufficient balance on card %s", apperrors.ErrValidation, fromCard.CardID)
	}
	if req.Amount.LessThan(minTransferAmount) {
		return nil, fmt.Errorf("%w: transfer amount must be at least %s", apperrors.ErrValidation, minTransferAmount.String())
	}

	rate := decimal.NewFromInt(1)
	if fromCard.CurrencyCode != toCard.CurrencyCode {
		resolved, ok, err := s.rateService.GetLatestRate(ctx, fromCard.CurrencyCode, toCard.CurrencyCode)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: no exchange rate available for %s to %s",
				apperrors.ErrValidation, fromCard.CurrencyCode, toCard.CurrencyCode)
		}
		rate = resolved
	}

	now := time.Now().UTC()
	transferDate := req.TransferDate
	if transferDate.IsZero() {
		transferDate = now
	}

	transfer := domain.CardTransfer{
		TransferID:      uuid.NewString(),
		UserID:          userID,
		FromCardID:      fromCard.CardID,
		ToCardID:        toCard.CardID,
		Amount:          req.Amount,
		ExchangeRate:    rate,
		ConvertedAmount: req.Amount.Mul(rate),
		Description:     req.Description,
		TransferDate:    transferDate,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.transferRepo.SaveTransfer(ctx, transfer); err != nil {
		return nil, fmt.Errorf("failed to execute transfer in service: %w", err)
	}

	s.LogInfo(ctx, "transfer executed",
		slog.String("transfer_id", transfer.TransferID),
		slog.String("user_id", userID),
		slog.String("from_card", transfer.FromCardID),
		slog.String("to_card", transfer.ToCardID),
		slog.String("amount", transfer.Amount.String()),
		slog.String("converted_amount", transfer.ConvertedAmount.String()))

	return &transfer, nil
}

// GetTransferByID retrieves one of the user's transfers.
func (s *transferService) GetTransferByID(ctx context.Context, userID string, transferID string) (*domain.CardTransfer, error) {
	transfer, err := s.transferRepo.FindTransferByID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if transfer.UserID != userID {
		return nil, fmt.Errorf("%w: transfer %s does not belong to user", apperrors.ErrForbidden, transferID)
	}
	return transfer, nil
}

// ListTransfers retrieves a token-paginated page of the user's transfers, newest first.
func (s *transferService) ListTransfers(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.CardTransfer, *string, error) {
	transfers, newToken, err := s.transferRepo.ListTransfersByUser(ctx, userID, limit, nextToken)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list transfers in service: %w", err)
	}
	return transfers, newToken, nil
}
