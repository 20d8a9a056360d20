package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/qodirovs/finance_tracker_app/internal/apperrors"
	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
	portsrepo "github.com/qodirovs/finance_tracker_app/internal/core/ports/repositories"
	"github.com/qodirovs/finance_tracker_app/internal/models"
	"github.com/qodirovs/finance_tracker_app/internal/utils/mapping"
)

const budgetColumns = `budget_id, user_id, category_id, name, amount, currency_code, period, start_date, end_date, alert_threshold, alert_sent, status, is_recurring, created_at, created_by, last_updated_at, last_updated_by`

type PgxBudgetRepository struct {
	BaseRepository
}

// newPgxBudgetRepository creates a new repository for budget data.
func newPgxBudgetRepository(pool *pgxpool.Pool) portsrepo.BudgetRepositoryFacade {
	return &PgxBudgetRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.BudgetRepositoryFacade = (*PgxBudgetRepository)(nil)

func scanBudget(row pgx.Row) (models.Budget, error) {
	var m models.Budget
	err := row.Scan(
		&m.BudgetID,
		&m.UserID,
		&m.CategoryID,
		&m.Name,
		&m.Amount,
		&m.CurrencyCode,
		&m.Period,
		&m.StartDate,
		&m.EndDate,
		&m.AlertThreshold,
		&m.AlertSent,
		&m.Status,
		&m.IsRecurring,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveBudget inserts a new budget.
func (r *PgxBudgetRepository) SaveBudget(ctx context.Context, budget domain.Budget) error {
	m := mapping.ToModelBudget(budget)

	query := `
		INSERT INTO budgets (` + budgetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.BudgetID,
		m.UserID,
		m.CategoryID,
		m.Name,
		m.Amount,
		m.CurrencyCode,
		m.Period,
		m.StartDate,
		m.EndDate,
		m.AlertThreshold,
		m.AlertSent,
		m.Status,
		m.IsRecurring,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: budget with ID %s already exists", apperrors.ErrDuplicate, m.BudgetID)
		}
		return fmt.Errorf("failed to save budget %s: %w", m.BudgetID, err)
	}
	return nil
}

// UpdateBudget updates an existing budget's details.
func (r *PgxBudgetRepository) UpdateBudget(ctx context.Context, budget domain.Budget) error {
	m := mapping.ToModelBudget(budget)

	query := `
		UPDATE budgets
		SET category_id = $2, name = $3, amount = $4, currency_code = $5, period = $6,
		    start_date = $7, end_date = $8, alert_threshold = $9, alert_sent = $10,
		    status = $11, is_recurring = $12, last_updated_at = $13, last_updated_by = $14
		WHERE budget_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		m.BudgetID,
		m.CategoryID,
		m.Name,
		m.Amount,
		m.CurrencyCode,
		m.Period,
		m.StartDate,
		m.EndDate,
		m.AlertThreshold,
		m.AlertSent,
		m.Status,
		m.IsRecurring,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update budget %s: %w", m.BudgetID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateBudgetStatus changes only the evaluated status of a budget.
func (r *PgxBudgetRepository) UpdateBudgetStatus(ctx context.Context, budgetID string, status domain.BudgetStatus, userID string, now time.Time) error {
	query := `
		UPDATE budgets
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE budget_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, budgetID, models.BudgetStatus(status), now, userID)
	if err != nil {
		return fmt.Errorf("failed to update status of budget %s: %w", budgetID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SetAlertSent flips the alert flag, used when alerting and at period rollover.
func (r *PgxBudgetRepository) SetAlertSent(ctx context.Context, budgetID string, sent bool, userID string, now time.Time) error {
	query := `
		UPDATE budgets
		SET alert_sent = $2, last_updated_at = $3, last_updated_by = $4
		WHERE budget_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, budgetID, sent, now, userID)
	if err != nil {
		return fmt.Errorf("failed to set alert flag of budget %s: %w", budgetID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteBudget removes a budget and its alert history.
func (r *PgxBudgetRepository) DeleteBudget(ctx context.Context, budgetID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `DELETE FROM budget_alerts WHERE budget_id = $1`, budgetID); err != nil {
		return fmt.Errorf("failed to delete alerts of budget %s: %w", budgetID, err)
	}

	cmdTag, err := tx.Exec(ctx, `DELETE FROM budgets WHERE budget_id = $1`, budgetID)
	if err != nil {
		return fmt.Errorf("failed to delete budget %s: %w", budgetID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return r.Commit(ctx, tx)
}

// FindBudgetByID retrieves a budget by its ID.
func (r *PgxBudgetRepository) FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE budget_id = $1;`

	m, err := scanBudget(r.Pool.QueryRow(ctx, query, budgetID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find budget by ID %s: %w", budgetID, err)
	}

	domainBudget := mapping.ToDomainBudget(m)
	return &domainBudget, nil
}

// ListBudgetsByUser retrieves the user's budgets, optionally only active ones.
func (r *PgxBudgetRepository) ListBudgetsByUser(ctx context.Context, userID string, activeOnly bool) ([]domain.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE user_id = $1`
	args := []interface{}{userID}

	if activeOnly {
		query += ` AND status = $2`
		args = append(args, models.BudgetActive)
	}
	query += ` ORDER BY created_at ASC;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets for user %s: %w", userID, err)
	}
	defer rows.Close()

	modelBudgets := []models.Budget{}
	for rows.Next() {
		m, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget row for user %s: %w", userID, err)
		}
		modelBudgets = append(modelBudgets, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating budget rows for user %s: %w", userID, rows.Err())
	}

	return mapping.ToDomainBudgetSlice(modelBudgets), nil
}

// SaveBudgetAlert records a threshold crossing.
func (r *PgxBudgetRepository) SaveBudgetAlert(ctx context.Context, alert domain.BudgetAlert) error {
	m := mapping.ToModelBudgetAlert(alert)

	query := `
		INSERT INTO budget_alerts (alert_id, budget_id, user_id, spent_amount, percent_used, period_start, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.AlertID,
		m.BudgetID,
		m.UserID,
		m.SpentAmount,
		m.PercentUsed,
		m.PeriodStart,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save budget alert %s: %w", m.AlertID, err)
	}
	return nil
}

// ListBudgetAlerts retrieves the alert history for a budget, newest first.
func (r *PgxBudgetRepository) ListBudgetAlerts(ctx context.Context, budgetID string, limit int) ([]domain.BudgetAlert, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT alert_id, budget_id, user_id, spent_amount, percent_used, period_start, created_at, created_by, last_updated_at, last_updated_by
		FROM budget_alerts
		WHERE budget_id = $1
		ORDER BY created_at DESC
		LIMIT $2;
	`

	rows, err := r.Pool.Query(ctx, query, budgetID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts for budget %s: %w", budgetID, err)
	}
	defer rows.Close()

	modelAlerts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.BudgetAlert, error) {
		var m models.BudgetAlert
		err := row.Scan(
			&m.AlertID,
			&m.BudgetID,
			&m.UserID,
			&m.SpentAmount,
			&m.PercentUsed,
			&m.PeriodStart,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan budget alerts: %w", err)
	}

	return mapping.ToDomainBudgetAlertSlice(modelAlerts), nil
}
