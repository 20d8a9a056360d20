package services

import (
	"context"

	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
	"github.com/qodirovs/finance_tracker_app/internal/dto"
)

// BudgetReaderSvc defines read operations for budget data
type BudgetReaderSvc interface {
	// GetBudgetByID retrieves one of the user's budgets.
	GetBudgetByID(ctx context.Context, userID string, budgetID string) (*domain.Budget, error)

	// ListBudgets retrieves the user's budgets.
	ListBudgets(ctx context.Context, userID string, activeOnly bool) ([]domain.Budget, error)

	// GetBudgetProgress evaluates one budget for its current period: spent
	// total converted to the budget currency, remaining, percent used.
	GetBudgetProgress(ctx context.Context, userID string, budgetID string) (*domain.BudgetProgress, error)

	// ListBudgetAlerts retrieves the alert history for a budget.
	ListBudgetAlerts(ctx context.Context, userID string, budgetID string, limit int) ([]domain.BudgetAlert, error)
}

// BudgetWriterSvc defines write operations for budget data
type BudgetWriterSvc interface {
	// CreateBudget persists a new budget.
	CreateBudget(ctx context.Context, userID string, req dto.CreateBudgetRequest) (*domain.Budget, error)

	// UpdateBudget updates an existing budget's details.
	UpdateBudget(ctx context.Context, userID string, budgetID string, req dto.UpdateBudgetRequest) (*domain.Budget, error)

	// DeleteBudget removes a budget and its alert history.
	DeleteBudget(ctx context.Context, userID string, budgetID string) error
}

// BudgetEvaluatorSvc evaluates budgets against recorded spending
type BudgetEvaluatorSvc interface {
	// EvaluateBudgets evaluates every active budget of the user concurrently,
	// recording alerts for crossed thresholds and refreshing statuses.
	EvaluateBudgets(ctx context.Context, userID string) ([]domain.BudgetProgress, error)
}

// BudgetSvcFacade combines all budget-related service interfaces
// This is a facade for clients that need access to all operations
type BudgetSvcFacade interface {
	BudgetReaderSvc
	BudgetWriterSvc
	BudgetEvaluatorSvc
}
