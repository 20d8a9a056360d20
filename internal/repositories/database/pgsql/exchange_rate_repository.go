package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/qodirovs/finance_tracker_app/internal/apperrors"
	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
	portsrepo "github.com/qodirovs/finance_tracker_app/internal/core/ports/repositories"
	"github.com/qodirovs/finance_tracker_app/internal/models"
	"github.com/qodirovs/finance_tracker_app/internal/utils/mapping"
)

// PgxExchangeRateRepository implements the exchange rate ports using pgxpool.
type PgxExchangeRateRepository struct {
	BaseRepository
}

// newPgxExchangeRateRepository creates a new PgxExchangeRateRepository.
func newPgxExchangeRateRepository(db *pgxpool.Pool) portsrepo.ExchangeRateRepositoryFacade {
	return &PgxExchangeRateRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

var _ portsrepo.ExchangeRateRepositoryFacade = (*PgxExchangeRateRepository)(nil)

// SaveExchangeRate inserts an exchange rate, replacing any rate already stored
// for the same pair and effective date.
func (r *PgxExchangeRateRepository) SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	fromCurrency := strings.ToUpper(rate.FromCurrencyCode)
	toCurrency := strings.ToUpper(rate.ToCurrencyCode)

	if fromCurrency == toCurrency {
		return apperrors.NewValidationError("from and to currencies cannot be the same")
	}

	modelRate := mapping.ToModelExchangeRate(rate)
	modelRate.FromCurrencyCode = fromCurrency
	modelRate.ToCurrencyCode = toCurrency

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	// Replace a rate already stored for the same pair and date.
	var existingID string
	err = tx.QueryRow(ctx,
		`SELECT exchange_rate_id FROM exchange_rates
		 WHERE from_currency_code = $1 AND to_currency_code = $2 AND date_effective = $3`,
		modelRate.FromCurrencyCode, modelRate.ToCurrencyCode, modelRate.DateEffective,
	).Scan(&existingID)

	switch {
	case err == nil:
		_, err = tx.Exec(ctx,
			`UPDATE exchange_rates
			 SET rate = $2, last_updated_at = $3, last_updated_by = $4
			 WHERE exchange_rate_id = $1`,
			existingID, modelRate.Rate, modelRate.LastUpdatedAt, modelRate.LastUpdatedBy,
		)
		if err != nil {
			return fmt.Errorf("failed to update exchange rate %s: %w", existingID, err)
		}
	case errors.Is(err, pgx.ErrNoRows):
		_, err = tx.Exec(ctx,
			`INSERT INTO exchange_rates (exchange_rate_id, from_currency_code, to_currency_code, rate, date_effective, created_at, created_by, last_updated_at, last_updated_by)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			modelRate.ExchangeRateID,
			modelRate.FromCurrencyCode,
			modelRate.ToCurrencyCode,
			modelRate.Rate,
			modelRate.DateEffective,
			modelRate.CreatedAt,
			modelRate.CreatedBy,
			modelRate.LastUpdatedAt,
			modelRate.LastUpdatedBy,
		)
		if err != nil {
			return fmt.Errorf("failed to insert exchange rate %s->%s: %w", modelRate.FromCurrencyCode, modelRate.ToCurrencyCode, err)
		}
	default:
		return fmt.Errorf("failed to check for existing exchange rate: %w", err)
	}

	return r.Commit(ctx, tx)
}

// FindLatestRate retrieves the most recent direct rate for the pair effective
// on or before the given date. The inverse direction is the caller's concern.
func (r *PgxExchangeRateRepository) FindLatestRate(ctx context.Context, fromCurrencyCode, toCurrencyCode string, onOrBefore time.Time) (*domain.ExchangeRate, error) {
	query := `
		SELECT exchange_rate_id, from_currency_code, to_currency_code, rate, date_effective, created_at, created_by, last_updated_at, last_updated_by
		FROM exchange_rates
		WHERE from_currency_code = $1 AND to_currency_code = $2 AND date_effective <= $3
		ORDER BY date_effective DESC
		LIMIT 1;
	`

	var modelRate models.ExchangeRate
	err := r.Pool.QueryRow(ctx, query, strings.ToUpper(fromCurrencyCode), strings.ToUpper(toCurrencyCode), onOrBefore).Scan(
		&modelRate.ExchangeRateID,
		&modelRate.FromCurrencyCode,
		&modelRate.ToCurrencyCode,
		&modelRate.Rate,
		&modelRate.DateEffective,
		&modelRate.CreatedAt,
		&modelRate.CreatedBy,
		&modelRate.LastUpdatedAt,
		&modelRate.LastUpdatedBy,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find rate %s->%s: %w", fromCurrencyCode, toCurrencyCode, err)
	}

	domainRate := mapping.ToDomainExchangeRate(modelRate)
	return &domainRate, nil
}

// ListExchangeRates retrieves the dated rates for a pair, newest first.
func (r *PgxExchangeRateRepository) ListExchangeRates(ctx context.Context, fromCurrencyCode, toCurrencyCode string, limit int) ([]domain.ExchangeRate, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT exchange_rate_id, from_currency_code, to_currency_code, rate, date_effective, created_at, created_by, last_updated_at, last_updated_by
		FROM exchange_rates
		WHERE from_currency_code = $1 AND to_currency_code = $2
		ORDER BY date_effective DESC
		LIMIT $3;
	`

	rows, err := r.Pool.Query(ctx, query, strings.ToUpper(fromCurrencyCode), strings.ToUpper(toCurrencyCode), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query exchange rates %s->%s: %w", fromCurrencyCode, toCurrencyCode, err)
	}
	defer rows.Close()

	modelRates, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ExchangeRate, error) {
		var rate models.ExchangeRate
		err := row.Scan(
			&rate.ExchangeRateID,
			&rate.FromCurrencyCode,
			&rate.ToCurrencyCode,
			&rate.Rate,
			&rate.DateEffective,
			&rate.CreatedAt,
			&rate.CreatedBy,
			&rate.LastUpdatedAt,
			&rate.LastUpdatedBy,
		)
		return rate, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan exchange rates: %w", err)
	}

	return mapping.ToDomainExchangeRateSlice(modelRates), nil
}
