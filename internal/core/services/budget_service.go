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
	"golang.org/x/sync/errgroup"
)

// defaultAlertThreshold is the percent of the cap that triggers an alert when
// the request does not specify one.
const defaultAlertThreshold = 80

// budgetService caps spending per category over recurring periods. Budgets
// hold no running counters; every evaluation recomputes the spent total from
// the transaction history.
type budgetService struct {
	BaseService
	budgetRepo      portsrepo.BudgetRepositoryFacade
	categoryRepo    portsrepo.CategoryReader
	transactionRepo portsrepo.TransactionReader
	currencyService portssvc.CurrencySvcFacade
	rateService     portssvc.ExchangeRateReaderSvc
}

// NewBudgetService creates a new budget service.
func NewBudgetService(
	budgetRepo portsrepo.BudgetRepositoryFacade,
	categoryRepo portsrepo.CategoryReader,
	transactionRepo portsrepo.TransactionReader,
	currencyService portssvc.CurrencySvcFacade,
	rateService portssvc.ExchangeRateReaderSvc,
) portssvc.BudgetSvcFacade {
	return &budgetService{
		budgetRepo:      budgetRepo,
		categoryRepo:    categoryRepo,
		transactionRepo: transactionRepo,
		currencyService: currencyService,
		rateService:     rateService,
	}
}

var _ portssvc.BudgetSvcFacade = (*budgetService)(nil)

// getOwnedBudget loads a budget and verifies it belongs to the user.
func (s *budgetService) getOwnedBudget(ctx context.Context, userID, budgetID string) (*domain.Budget, error) {
	budget, err := s.budgetRepo.FindBudgetByID(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	if budget.UserID != userID {
		return nil, fmt.Errorf("%w: budget %s does not belong to user", apperrors.ErrForbidden, budgetID)
	}
	return budget, nil
}

// CreateBudget persists a new budget over an expense category.
func (s *budgetService) CreateBudget(ctx context.Context, userID string, req dto.CreateBudgetRequest) (*domain.Budget, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: budget amount must be positive", apperrors.ErrValidation)
	}
	if req.EndDate != nil && !req.EndDate.After(req.StartDate) {
		return nil, fmt.Errorf("%w: end date must be after start date", apperrors.ErrValidation)
	}

	if _, err := s.currencyService.GetCurrencyByCode(ctx, req.CurrencyCode); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: currency code '%s' not found", apperrors.ErrValidation, req.CurrencyCode)
		}
		return nil, fmt.Errorf("failed to validate currency '%s': %w", req.CurrencyCode, err)
	}

	category, err := s.categoryRepo.FindCategoryByID(ctx, req.CategoryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: category %s not found", apperrors.ErrValidation, req.CategoryID)
		}
		return nil, err
	}
	if !category.IsSystem && category.UserID != userID {
		return nil, fmt.Errorf("%w: category %s does not belong to user", apperrors.ErrForbidden, req.CategoryID)
	}
	if category.Type != domain.CategoryExpense {
		return nil, fmt.Errorf("%w: budgets can only cap expense categories", apperrors.ErrValidation)
	}

	threshold := req.AlertThreshold
	if threshold == 0 {
		threshold = defaultAlertThreshold
	}

	now := time.Now().UTC()
	budget := domain.Budget{
		BudgetID:       uuid.NewString(),
		UserID:         userID,
		CategoryID:     req.CategoryID,
		Name:           req.Name,
		Amount:         req.Amount,
		CurrencyCode:   req.CurrencyCode,
		Period:         req.Period,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		AlertThreshold: threshold,
		AlertSent:      false,
		Status:         domain.BudgetActive,
		IsRecurring:    req.IsRecurring,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.budgetRepo.SaveBudget(ctx, budget); err != nil {
		return nil, fmt.Errorf("failed to create budget in service: %w", err)
	}
	return &budget, nil
}

// GetBudgetByID retrieves one of the user's budgets.
func (s *budgetService) GetBudgetByID(ctx context.Context, userID string, budgetID string) (*domain.Budget, error) {
	return s.getOwnedBudget(ctx, userID, budgetID)
}

// ListBudgets retrieves the user's budgets.
func (s *budgetService) ListBudgets(ctx context.Context, userID string, activeOnly bool) ([]domain.Budget, error) {
	budgets, err := s.budgetRepo.ListBudgetsByUser(ctx, userID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets in service: %w", err)
	}
	if budgets == nil {
		return []domain.Budget{}, nil
	}
	return budgets, nil
}

// UpdateBudget updates an existing budget's details.
func (s *budgetService) UpdateBudget(ctx context.Context, userID string, budgetID string, req dto.UpdateBudgetRequest) (*domain.Budget, error) {
	budget, err := s.getOwnedBudget(ctx, userID, budgetID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		budget.Name = *req.Name
	}
	if req.Amount != nil {
		if req.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: budget amount must be positive", apperrors.ErrValidation)
		}
		budget.Amount = *req.Amount
	}
	if req.Period != nil {
		budget.Period = *req.Period
	}
	if req.EndDate != nil {
		budget.EndDate = req.EndDate
	}
	if req.AlertThreshold != nil {
		budget.AlertThreshold = *req.AlertThreshold
	}
	if req.Status != nil {
		budget.Status = *req.Status
	}
	if req.IsRecurring != nil {
		budget.IsRecurring = *req.IsRecurring
	}
	budget.LastUpdatedAt = time.Now().UTC()
	budget.LastUpdatedBy = userID

	if err := s.budgetRepo.UpdateBudget(ctx, *budget); err != nil {
		return nil, fmt.Errorf("failed to update budget in service: %w", err)
	}
	return budget, nil
}

// DeleteBudget removes a budget and its alert history.
func (s *budgetService) DeleteBudget(ctx context.Context, userID string, budgetID string) error {
	if _, err := s.getOwnedBudget(ctx, userID, budgetID); err != nil {
		return err
	}
	if err := s.budgetRepo.DeleteBudget(ctx, budgetID); err != nil {
		return fmt.Errorf("failed to delete budget in service: %w", err)
	}
	return nil
}

// computeProgress evaluates the budget for the period containing now. Spending
// is summed per card currency and converted to the budget currency; amounts in
// currencies with no resolvable rate are excluded with a warning.
func (s *budgetService) computeProgress(ctx context.Context, budget domain.Budget, now time.Time) (*domain.BudgetProgress, error) {
	periodStart := budget.CurrentPeriodStart(now)
	periodEnd := budget.CurrentPeriodEnd(now)

	totals, err := s.transactionRepo.SumAmountsByCategory(ctx, budget.UserID, budget.CategoryID, domain.Expense, periodStart, periodEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to sum spending for budget %s: %w", budget.BudgetID, err)
	}

	spent := decimal.Zero
	for _, total := range totals {
		converted, ok, err := s.rateService.Convert(ctx, total.Total, total.CurrencyCode, budget.CurrencyCode)
		if err != nil {
			return nil, err
		}
		if !ok {
			s.LogWarn(ctx, "spending excluded from budget, no exchange rate",
				slog.String("budget_id", budget.BudgetID),
				slog.String("from", total.CurrencyCode),
				slog.String("to", budget.CurrencyCode))
			continue
		}
		spent = spent.Add(converted)
	}

	percentUsed := decimal.Zero
	if budget.Amount.IsPositive() {
		percentUsed = spent.Div(budget.Amount).Mul(decimal.NewFromInt(100))
	}

	return &domain.BudgetProgress{
		Budget:      budget,
		SpentAmount: spent,
		Remaining:   budget.Amount.Sub(spent),
		PercentUsed: percentUsed,
		Exceeded:    spent.GreaterThan(budget.Amount),
	}, nil
}

// GetBudgetProgress evaluates one budget for its current period.
func (s *budgetService) GetBudgetProgress(ctx context.Context, userID string, budgetID string) (*domain.BudgetProgress, error) {
	budget, err := s.getOwnedBudget(ctx, userID, budgetID)
	if err != nil {
		return nil, err
	}
	return s.computeProgress(ctx, *budget, time.Now().UTC())
}

// ListBudgetAlerts retrieves the alert history for a budget.
func (s *budgetService) ListBudgetAlerts(ctx context.Context, userID string, budgetID string, limit int) ([]domain.BudgetAlert, error) {
	if _, err := s.getOwnedBudget(ctx, userID, budgetID); err != nil {
		return nil, err
	}
	alerts, err := s.budgetRepo.ListBudgetAlerts(ctx, budgetID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list budget alerts in service: %w", err)
	}
	return alerts, nil
}

// EvaluateBudgets evaluates every schedulable budget of the user. Progress is
// computed concurrently; alert and status writes run sequentially afterwards
// to keep the repository access simple.
func (s *budgetService) EvaluateBudgets(ctx context.Context, userID string) ([]domain.BudgetProgress, error) {
	budgets, err := s.budgetRepo.ListBudgetsByUser(ctx, userID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets for evaluation: %w", err)
	}

	now := time.Now().UTC()
	evaluable := make([]domain.Budget, 0, len(budgets))
	for _, b := range budgets {
		if b.Status == domain.BudgetCompleted || !b.IsWithinSchedule(now) {
			continue
		}
		evaluable = append(evaluable, b)
	}
	if len(evaluable) == 0 {
		return []domain.BudgetProgress{}, nil
	}

	results := make([]*domain.BudgetProgress, len(evaluable))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, b := range evaluable {
		g.Go(func() error {
			progress, err := s.computeProgress(gctx, b, now)
			if err != nil {
				return err
			}
			results[i] = progress
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	progressList := make([]domain.BudgetProgress, 0, len(results))
	for i := range results {
		progress := results[i]
		budget := &progress.Budget

		periodStart := budget.CurrentPeriodStart(now)

		// Reset the alert flag when the last alert belongs to an earlier period.
		if budget.AlertSent {
			alerts, err := s.budgetRepo.ListBudgetAlerts(ctx, budget.BudgetID, 1)
			if err != nil {
				return nil, fmt.Errorf("failed to check alert history for budget %s: %w", budget.BudgetID, err)
			}
			if len(alerts) == 0 || alerts[0].PeriodStart.Before(periodStart) {
				if err := s.budgetRepo.SetAlertSent(ctx, budget.BudgetID, false, userID, now); err != nil {
					return nil, err
				}
				budget.AlertSent = false
			}
		}

		if budget.ShouldSendAlert(progress.PercentUsed) {
			alert := domain.BudgetAlert{
				AlertID:     uuid.NewString(),
				BudgetID:    budget.BudgetID,
				UserID:      userID,
				SpentAmount: progress.SpentAmount,
				PercentUsed: progress.PercentUsed,
				PeriodStart: periodStart,
				AuditFields: domain.AuditFields{
					CreatedAt:     now,
					CreatedBy:     userID,
					LastUpdatedAt: now,
					LastUpdatedBy: userID,
				},
			}
			if err := s.budgetRepo.SaveBudgetAlert(ctx, alert); err != nil {
				return nil, fmt.Errorf("failed to record alert for budget %s: %w", budget.BudgetID, err)
			}
			if err := s.budgetRepo.SetAlertSent(ctx, budget.BudgetID, true, userID, now); err != nil {
				return nil, err
			}
			budget.AlertSent = true

			s.LogInfo(ctx, "budget alert recorded",
				slog.String("budget_id", budget.BudgetID),
				slog.String("user_id", userID),
				slog.String("percent_used", progress.PercentUsed.StringFixed(2)))
		}

		if progress.Exceeded && budget.Status == domain.BudgetActive {
			if err := s.budgetRepo.UpdateBudgetStatus(ctx, budget.BudgetID, domain.BudgetExceeded, userID, now); err != nil {
				return nil, err
			}
			budget.Status = domain.BudgetExceeded
		} else if !progress.Exceeded && budget.Status == domain.BudgetExceeded {
			// Spending dropped back under the cap, e.g. after a period rollover
			// or a deleted transaction.
			if err := s.budgetRepo.UpdateBudgetStatus(ctx, budget.BudgetID, domain.BudgetActive, userID, now); err != nil {
				return nil, err
			}
			budget.Status = domain.BudgetActive
		}

		progressList = append(progressList, *progress)
	}

	return progressList, nil
}
