package pgsql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/qodirovs/finance_tracker_app/internal/apperrors"
	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
	portsrepo "github.com/qodirovs/finance_tracker_app/internal/core/ports/repositories"
	"github.com/qodirovs/finance_tracker_app/internal/models"
	"github.com/qodirovs/finance_tracker_app/internal/utils/mapping"
	"github.com/shopspring/decimal"
)

const cardColumns = `card_id, user_id, name, currency_code, balance, initial_balance, last_four_digits, bank_name, color, status, is_default, created_at, created_by, last_updated_at, last_updated_by`

type PgxCardRepository struct {
	BaseRepository
}

// newPgxCardRepository creates a new repository for card data.
func newPgxCardRepository(pool *pgxpool.Pool) *PgxCardRepository {
	return &PgxCardRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxCardRepository implements the full facade
var _ portsrepo.CardRepositoryWithTx = (*PgxCardRepository)(nil)

func scanCard(row pgx.Row) (models.Card, error) {
	var m models.Card
	err := row.Scan(
		&m.CardID,
		&m.UserID,
		&m.Name,
		&m.CurrencyCode,
		&m.Balance,
		&m.InitialBalance,
		&m.LastFourDigits,
		&m.BankName,
		&m.Color,
		&m.Status,
		&m.IsDefault,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveCard inserts a new card.
func (r *PgxCardRepository) SaveCard(ctx context.Context, card domain.Card) error {
	m := mapping.ToModelCard(card)

	query := `
		INSERT INTO cards (` + cardColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`

	_, err := r.Pool.Exec(ctx, query,
		m.CardID,
		m.UserID,
		m.Name,
		m.CurrencyCode,
		m.Balance,
		m.InitialBalance,
		m.LastFourDigits,
		m.BankName,
		m.Color,
		m.Status,
		m.IsDefault,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: card with ID %s already exists", apperrors.ErrDuplicate, m.CardID)
		}
		return fmt.Errorf("failed to save card %s: %w", m.CardID, err)
	}
	return nil
}

// FindCardByID retrieves a card by its ID.
func (r *PgxCardRepository) FindCardByID(ctx context.Context, cardID string) (*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE card_id = $1;`

	m, err := scanCard(r.Pool.QueryRow(ctx, query, cardID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find card by ID %s: %w", cardID, err)
	}

	domainCard := mapping.ToDomainCard(m)
	return &domainCard, nil
}

// FindCardsByIDs retrieves multiple cards by their IDs.
func (r *PgxCardRepository) FindCardsByIDs(ctx context.Context, cardIDs []string) (map[string]domain.Card, error) {
	if len(cardIDs) == 0 {
		return map[string]domain.Card{}, nil
	}

	query := `SELECT ` + cardColumns + ` FROM cards WHERE card_id = ANY($1);`

	rows, err := r.Pool.Query(ctx, query, cardIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards by IDs: %w", err)
	}
	defer rows.Close()

	cardsMap := make(map[string]domain.Card)
	for rows.Next() {
		m, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card row during batch fetch: %w", err)
		}
		cardsMap[m.CardID] = mapping.ToDomainCard(m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating card rows during batch fetch: %w", err)
	}

	// Missing IDs are simply absent from the map; callers decide whether that matters.
	return cardsMap, nil
}

// ListCardsByUser retrieves all cards belonging to a user, default card first.
func (r *PgxCardRepository) ListCardsByUser(ctx context.Context, userID string) ([]domain.Card, error) {
	query := `
		SELECT ` + cardColumns + `
		FROM cards
		WHERE user_id = $1
		ORDER BY is_default DESC, created_at ASC;
	`

	rows, err := r.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards for user %s: %w", userID, err)
	}
	defer rows.Close()

	cards := []domain.Card{}
	for rows.Next() {
		m, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card row for user %s: %w", userID, err)
		}
		cards = append(cards, mapping.ToDomainCard(m))
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating card rows for user %s: %w", userID, rows.Err())
	}

	return cards, nil
}

// CountActiveCardsByUser returns the number of the user's cards in ACTIVE status.
func (r *PgxCardRepository) CountActiveCardsByUser(ctx context.Context, userID string) (int, error) {
	query := `SELECT COUNT(*) FROM cards WHERE user_id = $1 AND status = $2;`

	var count int
	if err := r.Pool.QueryRow(ctx, query, userID, models.CardActive).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count active cards for user %s: %w", userID, err)
	}
	return count, nil
}

// UpdateCardDetails updates mutable card attributes. Currency and balance are
// intentionally not part of the SET list.
func (r *PgxCardRepository) UpdateCardDetails(ctx context.Context, card domain.Card) error {
	m := mapping.ToModelCard(card)

	query := `
		UPDATE cards
		SET name = $2, last_four_digits = $3, bank_name = $4, color = $5, last_updated_at = $6, last_updated_by = $7
		WHERE card_id = $1;
	`

	cmdTag, err := r.Pool.Exec(ctx, query,
		m.CardID,
		m.Name,
		m.LastFourDigits,
		m.BankName,
		m.Color,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update card %s: %w", m.CardID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateCardStatus changes the card status. A card leaving ACTIVE status also
// loses its default flag.
func (r *PgxCardRepository) UpdateCardStatus(ctx context.Context, cardID string, status domain.CardStatus, userID string, now time.Time) error {
	query := `
		UPDATE cards
		SET status = $2,
		    is_default = CASE WHEN $2 = $5 THEN is_default ELSE FALSE END,
		    last_updated_at = $3, last_updated_by = $4
		WHERE card_id = $1;
	`

	cmdTag, err := r.Pool.Exec(ctx, query, cardID, models.CardStatus(status), now, userID, models.CardActive)
	if err != nil {
		return fmt.Errorf("failed to update status of card %s: %w", cardID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SetDefaultCard promotes one card and demotes the user's other cards in a
// single database transaction.
func (r *PgxCardRepository) SetDefaultCard(ctx context.Context, userID string, cardID string, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	_, err = tx.Exec(ctx,
		`UPDATE cards
		 SET is_default = FALSE, last_updated_at = $2, last_updated_by = $3
		 WHERE user_id = $1 AND is_default = TRUE AND card_id <> $4`,
		userID, now, userID, cardID,
	)
	if err != nil {
		return fmt.Errorf("failed to demote previous default card for user %s: %w", userID, err)
	}

	cmdTag, err := tx.Exec(ctx,
		`UPDATE cards
		 SET is_default = TRUE, last_updated_at = $3, last_updated_by = $4
		 WHERE card_id = $1 AND user_id = $2`,
		cardID, userID, now, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to promote card %s to default: %w", cardID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return r.Commit(ctx, tx)
}

// SetCardBalance overwrites the card balance with an explicit corrected value.
func (r *PgxCardRepository) SetCardBalance(ctx context.Context, cardID string, balance decimal.Decimal, userID string, now time.Time) error {
	query := `
		UPDATE cards
		SET balance = $2, last_updated_at = $3, last_updated_by = $4
		WHERE card_id = $1;
	`

	cmdTag, err := r.Pool.Exec(ctx, query, cardID, balance, now, userID)
	if err != nil {
		return fmt.Errorf("failed to set balance of card %s: %w", cardID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteCard removes a card permanently.
func (r *PgxCardRepository) DeleteCard(ctx context.Context, cardID string) error {
	cmdTag, err := r.Pool.Exec(ctx, `DELETE FROM cards WHERE card_id = $1;`, cardID)
	if err != nil {
		return fmt.Errorf("failed to delete card %s: %w", cardID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindCardsByIDsForUpdate retrieves multiple cards by IDs and locks the rows
// for update. Must be called within a transaction.
func (r *PgxCardRepository) FindCardsByIDsForUpdate(ctx context.Context, tx pgx.Tx, cardIDs []string) (map[string]domain.Card, error) {
	if len(cardIDs) == 0 {
		return map[string]domain.Card{}, nil
	}

	query := `SELECT ` + cardColumns + ` FROM cards WHERE card_id = ANY($1) FOR UPDATE;`

	rows, err := tx.Query(ctx, query, cardIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards by IDs for update: %w", err)
	}
	defer rows.Close()

	cardsMap := make(map[string]domain.Card)
	for rows.Next() {
		m, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan locked card row: %w", err)
		}
		cardsMap[m.CardID] = mapping.ToDomainCard(m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locked card rows: %w", err)
	}

	if len(cardsMap) != len(cardIDs) {
		missing := []string{}
		requested := make(map[string]bool)
		for _, id := range cardIDs {
			requested[id] = true
		}
		for id := range requested {
			if _, found := cardsMap[id]; !found {
				missing = append(missing, id)
			}
		}
		slog.WarnContext(ctx, "Some cards requested for update lock were not found", "missing_cards", missing)
		return nil, fmt.Errorf("%w: could not find or lock all requested cards, missing: %v", apperrors.ErrNotFound, missing)
	}

	return cardsMap, nil
}

// UpdateCardBalancesInTx applies signed balance deltas to multiple cards within a transaction.
func (r *PgxCardRepository) UpdateCardBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	if len(balanceChanges) == 0 {
		return nil
	}

	query := `
		UPDATE cards
		SET balance = COALESCE(balance, 0) + $2, last_updated_at = $3, last_updated_by = $4
		WHERE card_id = $1;
	`

	batch := &pgx.Batch{}
	cardIDs := make([]string, 0, len(balanceChanges))
	for cardID, delta := range balanceChanges {
		if !delta.IsZero() {
			batch.Queue(query, cardID, delta, now, userID)
			cardIDs = append(cardIDs, cardID)
		}
	}

	if batch.Len() == 0 {
		return nil
	}

	br := tx.SendBatch(ctx, batch)
	var batchErr error
	updatedCount := 0
	for i := 0; i < batch.Len(); i++ {
		ct, err := br.Exec()
		if err != nil {
			if batchErr == nil {
				batchErr = fmt.Errorf("failed to update balance for card %s: %w", cardIDs[i], err)
			}
		} else if ct.RowsAffected() == 0 {
			if batchErr == nil {
				batchErr = fmt.Errorf("%w: card %s not found during balance update", apperrors.ErrNotFound, cardIDs[i])
			}
		} else {
			updatedCount++
		}
	}

	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = fmt.Errorf("failed to close balance update batch: %w", err)
	}

	if batchErr != nil {
		return batchErr
	}

	if updatedCount != batch.Len() {
		slog.WarnContext(ctx, "Mismatch between expected and actual card balance updates", "expected", batch.Len(), "actual", updatedCount)
	}

	return nil
}
