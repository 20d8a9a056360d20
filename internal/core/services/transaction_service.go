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

// transactionService records incomes and expenses against cards. Every save
// freezes the conversion to the user's default currency so reporting stays
// stable when rates move later.
type transactionService struct {
	BaseService
	transactionRepo portsrepo.TransactionRepositoryFacade
	cardRepo        portsrepo.CardRepositoryFacade
	categoryRepo    portsrepo.CategoryRepositoryFacade
	userRepo        portsrepo.UserReader
	rateService     portssvc.ExchangeRateReaderSvc
}

// NewTransactionService creates a new transaction service.
func NewTransactionService(
	transactionRepo portsrepo.TransactionRepositoryFacade,
	cardRepo portsrepo.CardRepositoryFacade,
	categoryRepo portsrepo.CategoryRepositoryFacade,
	userRepo portsrepo.UserReader,
	rateService portssvc.ExchangeRateReaderSvc,
) portssvc.TransactionSvcFacade {
	return &transactionService{
		transactionRepo: transactionRepo,
		cardRepo:        cardRepo,
		categoryRepo:    categoryRepo,
		userRepo:        userRepo,
		rateService:     rateService,
	}
}

var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

// categoryTypeFor maps a transaction type to the category side it must use.
func categoryTypeFor(txType domain.TransactionType) domain.CategoryType {
	if txType == domain.Income {
		return domain.CategoryIncome
	}
	return domain.CategoryExpense
}

// resolveFrozenRate resolves the rate from the card currency to the user's
// default currency. When no rate exists the conversion silently falls back to
// rate 1 so recording is never blocked by missing rate data.
func (s *transactionService) resolveFrozenRate(ctx context.Context, fromCode, toCode string) (decimal.Decimal, error) {
	rate, ok, err := s.rateService.GetLatestRate(ctx, fromCode, toCode)
	if err != nil {
		return decimal.Zero, err
	}
	if !ok {
		s.LogWarn(ctx, "no exchange rate for reporting conversion, falling back to 1",
			slog.String("from", fromCode),
			slog.String("to", toCode))
		return decimal.NewFromInt(1), nil
	}
	return rate, nil
}

// getOwnedTransaction loads a transaction and verifies it belongs to the user.
func (s *transactionService) getOwnedTransaction(ctx context.Context, userID, transactionID string) (*domain.Transaction, error) {
	txn, err := s.transactionRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.UserID != userID {
		return nil, fmt.Errorf("%w: transaction %s does not belong to user", apperrors.ErrForbidden, transactionID)
	}
	return txn, nil
}

// validateCard loads the card, checks ownership and that it can record transactions.
func (s *transactionService) validateCard(ctx context.Context, userID, cardID string) (*domain.Card, error) {
	card, err := s.cardRepo.FindCardByID(ctx, cardID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: card %s not found", apperrors.ErrValidation, cardID)
		}
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

// validateCategory checks the category is visible to the user and matches the
// transaction type.
func (s *transactionService) validateCategory(ctx context.Context, userID, categoryID string, txType domain.TransactionType) error {
	category, err := s.categoryRepo.FindCategoryByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: category %s not found", apperrors.ErrValidation, categoryID)
		}
		return err
	}
	if !category.IsSystem && category.UserID != userID {
		return fmt.Errorf("%w: category %s does not belong to user", apperrors.ErrForbidden, categoryID)
	}
	if category.Type != categoryTypeFor(txType) {
		return fmt.Errorf("%w: category type does not match transaction type", apperrors.ErrValidation)
	}
	return nil
}

// validateTags checks every tag belongs to the user.
func (s *transactionService) validateTags(ctx context.Context, userID string, tagIDs []string) error {
	for _, tagID := range tagIDs {
		tag, err := s.categoryRepo.FindTagByID(ctx, tagID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("%w: tag %s not found", apperrors.ErrValidation, tagID)
			}
			return err
		}
		if tag.UserID != userID {
			return fmt.Errorf("%w: tag %s does not belong to user", apperrors.ErrForbidden, tagID)
		}
	}
	return nil
}

// CreateTransaction records a new income or expense. The card balance moves in
// the same database transaction as the inserted row.
func (s *transactionService) CreateTransaction(ctx context.Context, userID string, req dto.CreateTransactionRequest) (*domain.Transaction, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}

	card, err := s.validateCard(ctx, userID, req.CardID)
	if err != nil {
		return nil, err
	}
	if err := s.validateCategory(ctx, userID, req.CategoryID, req.Type); err != nil {
		return nil, err
	}
	if err := s.validateTags(ctx, userID, req.TagIDs); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user for reporting conversion: %w", err)
	}

	rate, err := s.resolveFrozenRate(ctx, card.CurrencyCode, user.DefaultCurrencyCode)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	txn := domain.Transaction{
		TransactionID:        uuid.NewString(),
		UserID:               userID,
		CardID:               card.CardID,
		CategoryID:           req.CategoryID,
		Type:                 req.Type,
		Amount:               req.Amount,
		CurrencyCode:         card.CurrencyCode,
		ExchangeRateUsed:     rate,
		AmountInUserCurrency: req.Amount.Mul(rate),
		Title:                req.Title,
		Description:          req.Description,
		Location:             req.Location,
		TransactionDate:      req.TransactionDate,
		TagIDs:               req.TagIDs,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	balanceChanges := map[string]decimal.Decimal{
		card.CardID: txn.BalanceEffect(),
	}
	if err := s.transactionRepo.SaveTransaction(ctx, txn, balanceChanges); err != nil {
		return nil, fmt.Errorf("failed to save transaction in service: %w", err)
	}

	s.LogInfo(ctx, "transaction recorded",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("user_id", userID),
		slog.String("card_id", card.CardID),
		slog.String("type", string(txn.Type)),
		slog.String("amount", txn.Amount.String()))

	return &txn, nil
}

// GetTransactionByID retrieves one of the user's transactions.
func (s *transactionService) GetTransactionByID(ctx context.Context, userID string, transactionID string) (*domain.Transaction, error) {
	return s.getOwnedTransaction(ctx, userID, transactionID)
}

// ListTransactions retrieves a filtered, token-paginated page of the user's
// transactions, newest first.
func (s *transactionService) ListTransactions(ctx context.Context, userID string, req dto.ListTransactionsRequest) ([]domain.Transaction, *string, error) {
	filters := portsrepo.TransactionListFilters{
		CardID:     req.CardID,
		CategoryID: req.CategoryID,
		DateFrom:   req.DateFrom,
		DateTo:     req.DateTo,
	}
	if req.Type != nil {
		txType := domain.TransactionType(*req.Type)
		filters.Type = &txType
	}

	txns, nextToken, err := s.transactionRepo.ListTransactionsByUser(ctx, userID, filters, req.Limit, req.NextToken)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list transactions in service: %w", err)
	}
	return txns, nextToken, nil
}

// UpdateTransaction edits an existing record. The old balance effect is
// reversed on the old card and the new effect applied to the (possibly
// different) card in one database transaction, and the frozen conversion is
// recomputed at the current rate.
func (s *transactionService) UpdateTransaction(ctx context.Context, userID string, transactionID string, req dto.UpdateTransactionRequest) (*domain.Transaction, error) {
	existing, err := s.getOwnedTransaction(ctx, userID, transactionID)
	if err != nil {
		return nil, err
	}

	updated := *existing
	if req.Type != nil {
		updated.Type = *req.Type
	}
	if req.Amount != nil {
		updated.Amount = *req.Amount
	}
	if updated.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}
	if req.Title != nil {
		updated.Title = *req.Title
	}
	if req.Description != nil {
		updated.Description = *req.Description
	}
	if req.Location != nil {
		updated.Location = *req.Location
	}
	if req.TransactionDate != nil {
		updated.TransactionDate = *req.TransactionDate
	}

	card, err := s.validateCard(ctx, userID, existing.CardID)
	if err != nil {
		return nil, err
	}
	if req.CardID != nil && *req.CardID != existing.CardID {
		card, err = s.validateCard(ctx, userID, *req.CardID)
		if err != nil {
			return nil, err
		}
		updated.CardID = card.CardID
		updated.CurrencyCode = card.CurrencyCode
	}

	if req.CategoryID != nil {
		updated.CategoryID = *req.CategoryID
	}
	if err := s.validateCategory(ctx, userID, updated.CategoryID, updated.Type); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user for reporting conversion: %w", err)
	}
	rate, err := s.resolveFrozenRate(ctx, updated.CurrencyCode, user.DefaultCurrencyCode)
	if err != nil {
		return nil, err
	}
	updated.ExchangeRateUsed = rate
	updated.AmountInUserCurrency = updated.Amount.Mul(rate)

	now := time.Now().UTC()
	updated.LastUpdatedAt = now
	updated.LastUpdatedBy = userID

	// Reverse the old effect on the old card, apply the new effect on the new
	// card. The deltas collapse when card and amount are unchanged.
	balanceChanges := map[string]decimal.Decimal{}
	balanceChanges[existing.CardID] = balanceChanges[existing.CardID].Sub(existing.BalanceEffect())
	balanceChanges[updated.CardID] = balanceChanges[updated.CardID].Add(updated.BalanceEffect())

	if err := s.transactionRepo.UpdateTransaction(ctx, updated, balanceChanges); err != nil {
		return nil, fmt.Errorf("failed to update transaction in service: %w", err)
	}

	return &updated, nil
}

// DeleteTransaction removes a record after reversing its balance effect.
func (s *transactionService) DeleteTransaction(ctx context.Context, userID string, transactionID string) error {
	txn, err := s.getOwnedTransaction(ctx, userID, transactionID)
	if err != nil {
		return err
	}

	balanceChanges := map[string]decimal.Decimal{
		txn.CardID: txn.BalanceEffect().Neg(),
	}
	now := time.Now().UTC()
	if err := s.transactionRepo.DeleteTransaction(ctx, transactionID, balanceChanges, userID, now); err != nil {
		return fmt.Errorf("failed to delete transaction in service: %w", err)
	}

	s.LogInfo(ctx, "transaction deleted",
		slog.String("transaction_id", transactionID),
		slog.String("user_id", userID))
	return nil
}

// RecomputeReportingAmounts reprices every transaction of the user against
// their current default currency and rewrites the frozen conversions in one
// batch. Returns the number of rows rewritten.
func (s *transactionService) RecomputeReportingAmounts(ctx context.Context, userID string) (int, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load user for repricing: %w", err)
	}

	txns, err := s.transactionRepo.ListAllTransactionsByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to list transactions for repricing: %w", err)
	}
	if len(txns) == 0 {
		return 0, nil
	}

	// One rate lookup per source currency; most users only hold a few.
	rateCache := map[string]decimal.Decimal{}
	updates := make([]portsrepo.ReportingAmountUpdate, 0, len(txns))
	for _, txn := range txns {
		rate, cached := rateCache[txn.CurrencyCode]
		if !cached {
			rate, err = s.resolveFrozenRate(ctx, txn.CurrencyCode, user.DefaultCurrencyCode)
			if err != nil {
				return 0, err
			}
			rateCache[txn.CurrencyCode] = rate
		}
		updates = append(updates, portsrepo.ReportingAmountUpdate{
			TransactionID:        txn.TransactionID,
			ExchangeRateUsed:     rate,
			AmountInUserCurrency: txn.Amount.Mul(rate),
		})
	}

	now := time.Now().UTC()
	if err := s.transactionRepo.UpdateReportingAmounts(ctx, userID, updates, now); err != nil {
		return 0, fmt.Errorf("failed to rewrite reporting amounts: %w", err)
	}

	s.LogInfo(ctx, "reporting amounts recomputed",
		slog.String("user_id", userID),
		slog.String("currency", user.DefaultCurrencyCode),
		slog.Int("updated", len(updates)))

	return len(updates), nil
}
