package repositories

import (
	"context"
	"time"

	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
)

// BudgetReader defines read operations for budget data
type BudgetReader interface {
	// FindBudgetByID retrieves a specific budget by its unique identifier.
	FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error)

	// ListBudgetsByUser retrieves the user's budgets, optionally only those in
	// ACTIVE status.
	ListBudgetsByUser(ctx context.Context, userID string, activeOnly bool) ([]domain.Budget, error)

	// ListBudgetAlerts retrieves the alert history for a budget, newest first.
	ListBudgetAlerts(ctx context.Context, budgetID string, limit int) ([]domain.BudgetAlert, error)
}

// BudgetWriter defines write operations for budget data
type BudgetWriter interface {
	// SaveBudget persists a new budget.
	SaveBudget(ctx context.Context, budget domain.Budget) error

	// UpdateBudget updates an existing budget's details.
	UpdateBudget(ctx context.Context, budget domain.Budget) error

	// UpdateBudgetStatus changes only the evaluated status of a budget.
	UpdateBudgetStatus(ctx context.Context, budgetID string, status domain.BudgetStatus, userID string, now time.Time) error

	// SetAlertSent flips the alert flag, used when alerting and at period rollover.
	SetAlertSent(ctx context.Context, budgetID string, sent bool, userID string, now time.Time) error

	// DeleteBudget removes a budget and its alert history.
	DeleteBudget(ctx context.Context, budgetID string) error

	// SaveBudgetAlert records a threshold crossing.
	SaveBudgetAlert(ctx context.Context, alert domain.BudgetAlert) error
}

// BudgetRepositoryFacade combines all budget-related repository interfaces
// This is a facade for clients that need access to all operations
type BudgetRepositoryFacade interface {
	BudgetReader
	BudgetWriter
}
