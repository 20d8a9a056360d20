package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
	portsrepo "github.com/qodirovs/finance_tracker_app/internal/core/ports/repositories"
	portssvc "github.com/qodirovs/finance_tracker_app/internal/core/ports/services"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// reportingService assembles the per-user dashboard aggregates.
type reportingService struct {
	BaseService
	userRepo        portsrepo.UserReader
	cardRepo        portsrepo.CardReader
	transactionRepo portsrepo.TransactionReader
	rateService     portssvc.ExchangeRateReaderSvc
}

// NewReportingService creates a new reporting service.
func NewReportingService(
	userRepo portsrepo.UserReader,
	cardRepo portsrepo.CardReader,
	transactionRepo portsrepo.TransactionReader,
	rateService portssvc.ExchangeRateReaderSvc,
) portssvc.ReportingSvcFacade {
	return &reportingService{
		userRepo:        userRepo,
		cardRepo:        cardRepo,
		transactionRepo: transactionRepo,
		rateService:     rateService,
	}
}

var _ portssvc.ReportingSvcFacade = (*reportingService)(nil)

// GetFinancialSummary assembles the user's dashboard: total balance and
// monthly flows in the default currency plus per-card breakdowns in each
// card's own currency. Cards whose currency cannot be converted are listed
// but excluded from the totals.
func (s *reportingService) GetFinancialSummary(ctx context.Context, userID string) (*domain.FinancialSummary, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	cards, err := s.cardRepo.ListCardsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards for summary: %w", err)
	}

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	// The monthly sums hit the transaction table once per card and type, so
	// they run concurrently per card.
	cardSummaries := make([]domain.CardSummary, len(cards))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, card := range cards {
		g.Go(func() error {
			income, err := s.transactionRepo.SumAmountsByCard(gctx, card.CardID, domain.Income, monthStart, monthEnd)
			if err != nil {
				return fmt.Errorf("failed to sum monthly income for card %s: %w", card.CardID, err)
			}
			expense, err := s.transactionRepo.SumAmountsByCard(gctx, card.CardID, domain.Expense, monthStart, monthEnd)
			if err != nil {
				return fmt.Errorf("failed to sum monthly expense for card %s: %w", card.CardID, err)
			}
			cardSummaries[i] = domain.CardSummary{
				CardID:         card.CardID,
				Name:           card.Name,
				CurrencyCode:   card.CurrencyCode,
				Balance:        card.Balance,
				MonthlyIncome:  income,
				MonthlyExpense: expense,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &domain.FinancialSummary{
		CurrencyCode:   user.DefaultCurrencyCode,
		TotalBalance:   decimal.Zero,
		MonthlyIncome:  decimal.Zero,
		MonthlyExpense: decimal.Zero,
		Cards:          cardSummaries,
	}

	// One rate lookup per card currency, reused for balance and both flows.
	type cachedRate struct {
		rate decimal.Decimal
		ok   bool
	}
	rateCache := map[string]cachedRate{}
	for _, cs := range cardSummaries {
		cached, hit := rateCache[cs.CurrencyCode]
		if !hit {
			rate, ok, err := s.rateService.GetLatestRate(ctx, cs.CurrencyCode, user.DefaultCurrencyCode)
			if err != nil {
				return nil, err
			}
			cached = cachedRate{rate: rate, ok: ok}
			rateCache[cs.CurrencyCode] = cached
		}
		if !cached.ok {
			s.LogWarn(ctx, "card excluded from dashboard totals, no exchange rate",
				slog.String("card_id", cs.CardID),
				slog.String("from", cs.CurrencyCode),
				slog.String("to", user.DefaultCurrencyCode))
			continue
		}
		summary.TotalBalance = summary.TotalBalance.Add(cs.Balance.Mul(cached.rate))
		summary.MonthlyIncome = summary.MonthlyIncome.Add(cs.MonthlyIncome.Mul(cached.rate))
		summary.MonthlyExpense = summary.MonthlyExpense.Add(cs.MonthlyExpense.Mul(cached.rate))
	}

	return summary, nil
}
