package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/qodirovs/finance_tracker_app/internal/apperrors"
	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
	portsrepo "github.com/qodirovs/finance_tracker_app/internal/core/ports/repositories"
	"github.com/qodirovs/finance_tracker_app/internal/models"
	"github.com/qodirovs/finance_tracker_app/internal/utils/mapping"
	"github.com/qodirovs/finance_tracker_app/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

const transferColumns = `transfer_id, user_id, from_card_id, to_card_id, amount, exchange_rate, converted_amount, description, transfer_date, created_at, created_by, last_updated_at, last_updated_by`

// PgxTransferRepository persists card-to-card transfers and moves the money
// between the two cards in the same database transaction.
type PgxTransferRepository struct {
	BaseRepository
	cardRepo portsrepo.CardTransactionSupport
}

// newPgxTransferRepository creates a new repository for transfer data.
func newPgxTransferRepository(pool *pgxpool.Pool, cardRepo portsrepo.CardTransactionSupport) portsrepo.TransferRepositoryWithTx {
	return &PgxTransferRepository{
		BaseRepository: BaseRepository{Pool: pool},
		cardRepo:       cardRepo,
	}
}

var _ portsrepo.TransferRepositoryWithTx = (*PgxTransferRepository)(nil)

func scanTransfer(row pgx.Row) (models.CardTransfer, error) {
	var m models.CardTransfer
	err := row.Scan(
		&m.TransferID,
		&m.UserID,
		&m.FromCardID,
		&m.ToCardID,
		&m.Amount,
		&m.ExchangeRate,
		&m.ConvertedAmount,
		&m.Description,
		&m.TransferDate,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveTransfer persists the transfer and moves the money in one database
// transaction. Both cards are locked, the source balance is re-checked under
// the lock, then the source is debited and the destination credited.
func (r *PgxTransferRepository) SaveTransfer(ctx context.Context, transfer domain.CardTransfer) error {
	m := mapping.ToModelCardTransfer(transfer)

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	cardIDs := []string{m.FromCardID, m.ToCardID}
	sort.Strings(cardIDs) // Stable lock order to avoid deadlocks between concurrent transfers

	lockedCards, err := r.cardRepo.FindCardsByIDsForUpdate(ctx, tx, cardIDs)
	if err != nil {
		return fmt.Errorf("failed to lock cards for transfer %s: %w", m.TransferID, err)
	}

	// Re-check under the lock so a concurrent debit cannot overdraw the source.
	sourceCard := lockedCards[m.FromCardID]
	if sourceCard.Balance.LessThan(m.Amount) {
		return fmt.Errorf("%w: insufficient balance on card %s", apperrors.ErrValidation, m.FromCardID)
	}

	query := `
		INSERT INTO card_transfers (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err = tx.Exec(ctx, query,
		m.TransferID,
		m.UserID,
		m.FromCardID,
		m.ToCardID,
		m.Amount,
		m.ExchangeRate,
		m.ConvertedAmount,
		m.Description,
		m.TransferDate,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transfer %s: %w", m.TransferID, err)
	}

	balanceChanges := map[string]decimal.Decimal{
		m.FromCardID: m.Amount.Neg(),
		m.ToCardID:   m.ConvertedAmount,
	}
	if err := r.cardRepo.UpdateCardBalancesInTx(ctx, tx, balanceChanges, m.UserID, m.LastUpdatedAt); err != nil {
		return fmt.Errorf("failed to move balances for transfer %s: %w", m.TransferID, err)
	}

	return r.Commit(ctx, tx)
}

// FindTransferByID retrieves a transfer by its ID.
func (r *PgxTransferRepository) FindTransferByID(ctx context.Context, transferID string) (*domain.CardTransfer, error) {
	query := `SELECT ` + transferColumns + ` FROM card_transfers WHERE transfer_id = $1;`

	m, err := scanTransfer(r.Pool.QueryRow(ctx, query, transferID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transfer by ID %s: %w", transferID, err)
	}

	domainTransfer := mapping.ToDomainCardTransfer(m)
	return &domainTransfer, nil
}

// ListTransfersByUser retrieves a page of the user's transfers, newest first,
// using (transfer_date, created_at) keyset pagination.
func (r *PgxTransferRepository) ListTransfersByUser(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.CardTransfer, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	query := `SELECT ` + transferColumns + ` FROM card_transfers WHERE user_id = $1`
	args := []interface{}{userID}
	argNum := 2

	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidationError(fmt.Sprintf("invalid pagination token: %v", err))
		}
		query += fmt.Sprintf(" AND (transfer_date, created_at) < ($%d, $%d)", argNum, argNum+1)
		args = append(args, lastDate, lastCreatedAt)
		argNum += 2
	}

	query += fmt.Sprintf(" ORDER BY transfer_date DESC, created_at DESC LIMIT $%d", argNum)
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query transfers for user %s: %w", userID, err)
	}
	defer rows.Close()

	modelTransfers := []models.CardTransfer{}
	for rows.Next() {
		m, err := scanTransfer(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan transfer row for user %s: %w", userID, err)
		}
		modelTransfers = append(modelTransfers, m)
	}
	if rows.Err() != nil {
		return nil, nil, fmt.Errorf("error iterating transfer rows for user %s: %w", userID, rows.Err())
	}

	var newNextToken *string
	if len(modelTransfers) == fetchLimit {
		modelTransfers = modelTransfers[:limit]
		last := modelTransfers[limit-1]
		token := pagination.EncodeToken(last.TransferDate, last.CreatedAt)
		newNextToken = &token
	}

	return mapping.ToDomainCardTransferSlice(modelTransfers), newNextToken, nil
}
