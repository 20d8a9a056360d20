package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

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

const transactionColumns = `transaction_id, user_id, card_id, category_id, type, amount, currency_code, exchange_rate_used, amount_in_user_currency, title, description, location, transaction_date, created_at, created_by, last_updated_at, last_updated_by`

// PgxTransactionRepository persists transactions and applies their balance
// effects to cards in the same database transaction.
type PgxTransactionRepository struct {
	BaseRepository
	cardRepo portsrepo.CardTransactionSupport
}

// newPgxTransactionRepository creates a new repository for transaction data.
func newPgxTransactionRepository(pool *pgxpool.Pool, cardRepo portsrepo.CardTransactionSupport) portsrepo.TransactionRepositoryWithTx {
	return &PgxTransactionRepository{
		BaseRepository: BaseRepository{Pool: pool},
		cardRepo:       cardRepo,
	}
}

var _ portsrepo.TransactionRepositoryWithTx = (*PgxTransactionRepository)(nil)

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.UserID,
		&m.CardID,
		&m.CategoryID,
		&m.Type,
		&m.Amount,
		&m.CurrencyCode,
		&m.ExchangeRateUsed,
		&m.AmountInUserCurrency,
		&m.Title,
		&m.Description,
		&m.Location,
		&m.TransactionDate,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// loadTagIDs fetches tag links for the given transactions and fills TagIDs in place.
func (r *PgxTransactionRepository) loadTagIDs(ctx context.Context, txns []domain.Transaction) error {
	if len(txns) == 0 {
		return nil
	}

	ids := make([]string, len(txns))
	for i, t := range txns {
		ids[i] = t.TransactionID
	}

	rows, err := r.Pool.Query(ctx,
		`SELECT transaction_id, tag_id FROM transaction_tags WHERE transaction_id = ANY($1) ORDER BY tag_id`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("failed to query transaction tags: %w", err)
	}
	defer rows.Close()

	tagsByTxn := make(map[string][]string)
	for rows.Next() {
		var txnID, tagID string
		if err := rows.Scan(&txnID, &tagID); err != nil {
			return fmt.Errorf("failed to scan transaction tag row: %w", err)
		}
		tagsByTxn[txnID] = append(tagsByTxn[txnID], tagID)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating transaction tag rows: %w", err)
	}

	for i := range txns {
		txns[i].TagIDs = tagsByTxn[txns[i].TransactionID]
	}
	return nil
}

// replaceTagLinksInTx rewrites the tag links of a transaction within a database transaction.
func replaceTagLinksInTx(ctx context.Context, tx pgx.Tx, transactionID string, tagIDs []string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM transaction_tags WHERE transaction_id = $1`, transactionID); err != nil {
		return fmt.Errorf("failed to clear tag links for transaction %s: %w", transactionID, err)
	}
	if len(tagIDs) == 0 {
		return nil
	}

	sorted := append([]string(nil), tagIDs...)
	sort.Strings(sorted)

	batch := &pgx.Batch{}
	for _, tagID := range sorted {
		batch.Queue(
			`INSERT INTO transaction_tags (transaction_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			transactionID, tagID,
		)
	}
	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to link tag to transaction %s: %w", transactionID, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close tag link batch: %w", err)
	}
	return nil
}

// SaveTransaction inserts the transaction and applies its balance effect to
// the card atomically. The card row is locked before the balance moves.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction, balanceChanges map[string]decimal.Decimal) error {
	m := mapping.ToModelTransaction(txn)

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err = tx.Exec(ctx, query,
		m.TransactionID,
		m.UserID,
		m.CardID,
		m.CategoryID,
		m.Type,
		m.Amount,
		m.CurrencyCode,
		m.ExchangeRateUsed,
		m.AmountInUserCurrency,
		m.Title,
		m.Description,
		m.Location,
		m.TransactionDate,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction %s: %w", m.TransactionID, err)
	}

	if err := replaceTagLinksInTx(ctx, tx, m.TransactionID, txn.TagIDs); err != nil {
		return err
	}

	if err := r.applyBalanceChanges(ctx, tx, balanceChanges, m.UserID, m.LastUpdatedAt); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// UpdateTransaction rewrites the transaction row and applies the supplied
// reversal-plus-reapply deltas, which may touch two different cards.
func (r *PgxTransactionRepository) UpdateTransaction(ctx context.Context, txn domain.Transaction, balanceChanges map[string]decimal.Decimal) error {
	m := mapping.ToModelTransaction(txn)

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		UPDATE transactions
		SET card_id = $2, category_id = $3, type = $4, amount = $5, currency_code = $6,
		    exchange_rate_used = $7, amount_in_user_currency = $8,
		    title = $9, description = $10, location = $11, transaction_date = $12,
		    last_updated_at = $13, last_updated_by = $14
		WHERE transaction_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query,
		m.TransactionID,
		m.CardID,
		m.CategoryID,
		m.Type,
		m.Amount,
		m.CurrencyCode,
		m.ExchangeRateUsed,
		m.AmountInUserCurrency,
		m.Title,
		m.Description,
		m.Location,
		m.TransactionDate,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction %s: %w", m.TransactionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	if err := replaceTagLinksInTx(ctx, tx, m.TransactionID, txn.TagIDs); err != nil {
		return err
	}

	if err := r.applyBalanceChanges(ctx, tx, balanceChanges, m.UserID, m.LastUpdatedAt); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// DeleteTransaction removes the transaction and applies the reversal delta atomically.
func (r *PgxTransactionRepository) DeleteTransaction(ctx context.Context, transactionID string, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `DELETE FROM transaction_tags WHERE transaction_id = $1`, transactionID); err != nil {
		return fmt.Errorf("failed to clear tag links for transaction %s: %w", transactionID, err)
	}

	cmdTag, err := tx.Exec(ctx, `DELETE FROM transactions WHERE transaction_id = $1`, transactionID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction %s: %w", transactionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	if err := r.applyBalanceChanges(ctx, tx, balanceChanges, userID, now); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// applyBalanceChanges locks the affected cards and applies the deltas.
func (r *PgxTransactionRepository) applyBalanceChanges(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	if len(balanceChanges) == 0 {
		return nil
	}

	cardIDs := make([]string, 0, len(balanceChanges))
	for cardID := range balanceChanges {
		cardIDs = append(cardIDs, cardID)
	}
	sort.Strings(cardIDs) // Lock cards in a stable order to avoid deadlocks

	if _, err := r.cardRepo.FindCardsByIDsForUpdate(ctx, tx, cardIDs); err != nil {
		return fmt.Errorf("failed to lock cards for balance update: %w", err)
	}

	if err := r.cardRepo.UpdateCardBalancesInTx(ctx, tx, balanceChanges, userID, now); err != nil {
		return fmt.Errorf("failed to apply card balance changes: %w", err)
	}
	return nil
}

// UpdateReportingAmounts batch-rewrites the frozen conversion columns after a
// default currency change. Card balances are not touched.
func (r *PgxTransactionRepository) UpdateReportingAmounts(ctx context.Context, userID string, updates []portsrepo.ReportingAmountUpdate, now time.Time) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		UPDATE transactions
		SET exchange_rate_used = $2, amount_in_user_currency = $3, last_updated_at = $4, last_updated_by = $5
		WHERE transaction_id = $1 AND user_id = $6;
	`

	batch := &pgx.Batch{}
	for _, u := range updates {
		batch.Queue(query, u.TransactionID, u.ExchangeRateUsed, u.AmountInUserCurrency, now, userID, userID)
	}

	br := tx.SendBatch(ctx, batch)
	var batchErr error
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil && batchErr == nil {
			batchErr = fmt.Errorf("failed to update reporting amounts for transaction %s: %w", updates[i].TransactionID, err)
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = fmt.Errorf("failed to close reporting amount batch: %w", err)
	}
	if batchErr != nil {
		return batchErr
	}

	return r.Commit(ctx, tx)
}

// FindTransactionByID retrieves a transaction with its tag IDs.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`

	m, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction by ID %s: %w", transactionID, err)
	}

	txns := []domain.Transaction{mapping.ToDomainTransaction(m)}
	if err := r.loadTagIDs(ctx, txns); err != nil {
		return nil, err
	}
	return &txns[0], nil
}

// ListTransactionsByUser retrieves a filtered page of the user's transactions,
// newest first, using (transaction_date, created_at) keyset pagination.
func (r *PgxTransactionRepository) ListTransactionsByUser(ctx context.Context, userID string, filters portsrepo.TransactionListFilters, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1 // Fetch one extra to know whether another page exists

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = $1`
	args := []interface{}{userID}
	argNum := 2

	if filters.CardID != nil {
		query += fmt.Sprintf(" AND card_id = $%d", argNum)
		args = append(args, *filters.CardID)
		argNum++
	}
	if filters.CategoryID != nil {
		query += fmt.Sprintf(" AND category_id = $%d", argNum)
		args = append(args, *filters.CategoryID)
		argNum++
	}
	if filters.Type != nil {
		query += fmt.Sprintf(" AND type = $%d", argNum)
		args = append(args, models.TransactionType(*filters.Type))
		argNum++
	}
	if filters.DateFrom != nil {
		query += fmt.Sprintf(" AND transaction_date >= $%d", argNum)
		args = append(args, *filters.DateFrom)
		argNum++
	}
	if filters.DateTo != nil {
		query += fmt.Sprintf(" AND transaction_date <= $%d", argNum)
		args = append(args, *filters.DateTo)
		argNum++
	}

	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidationError(fmt.Sprintf("invalid pagination token: %v", err))
		}
		query += fmt.Sprintf(" AND (transaction_date, created_at) < ($%d, $%d)", argNum, argNum+1)
		args = append(args, lastDate, lastCreatedAt)
		argNum += 2
	}

	query += fmt.Sprintf(" ORDER BY transaction_date DESC, created_at DESC LIMIT $%d", argNum)
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query transactions for user %s: %w", userID, err)
	}
	defer rows.Close()

	modelTxns := []models.Transaction{}
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan transaction row for user %s: %w", userID, err)
		}
		modelTxns = append(modelTxns, m)
	}
	if rows.Err() != nil {
		return nil, nil, fmt.Errorf("error iterating transaction rows for user %s: %w", userID, rows.Err())
	}

	var newNextToken *string
	if len(modelTxns) == fetchLimit {
		modelTxns = modelTxns[:limit]
		last := modelTxns[limit-1]
		token := pagination.EncodeToken(last.TransactionDate, last.CreatedAt)
		newNextToken = &token
	}

	txns := mapping.ToDomainTransactionSlice(modelTxns)
	if err := r.loadTagIDs(ctx, txns); err != nil {
		return nil, nil, err
	}
	return txns, newNextToken, nil
}

// ListAllTransactionsByUser retrieves every transaction of the user, oldest
// first, for batch repricing.
func (r *PgxTransactionRepository) ListAllTransactionsByUser(ctx context.Context, userID string) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = $1 ORDER BY transaction_date ASC, created_at ASC;`

	rows, err := r.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query all transactions for user %s: %w", userID, err)
	}
	defer rows.Close()

	modelTxns := []models.Transaction{}
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row for user %s: %w", userID, err)
		}
		modelTxns = append(modelTxns, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating transaction rows for user %s: %w", userID, rows.Err())
	}

	return mapping.ToDomainTransactionSlice(modelTxns), nil
}

// SumAmountsByCategory totals transaction amounts for a category and type in
// [from, to), grouped by the transaction currency.
func (r *PgxTransactionRepository) SumAmountsByCategory(ctx context.Context, userID, categoryID string, txType domain.TransactionType, from, to time.Time) ([]portsrepo.CurrencyTotal, error) {
	query := `
		SELECT currency_code, COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = $1 AND category_id = $2 AND type = $3
		  AND transaction_date >= $4 AND transaction_date < $5
		GROUP BY currency_code;
	`

	rows, err := r.Pool.Query(ctx, query, userID, categoryID, models.TransactionType(txType), from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to sum transactions for category %s: %w", categoryID, err)
	}
	defer rows.Close()

	totals := []portsrepo.CurrencyTotal{}
	for rows.Next() {
		var t portsrepo.CurrencyTotal
		if err := rows.Scan(&t.CurrencyCode, &t.Total); err != nil {
			return nil, fmt.Errorf("failed to scan category total row: %w", err)
		}
		totals = append(totals, t)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating category total rows: %w", rows.Err())
	}

	return totals, nil
}

// SumAmountsByCard totals transaction amounts for one card and type in [from, to).
func (r *PgxTransactionRepository) SumAmountsByCard(ctx context.Context, cardID string, txType domain.TransactionType, from, to time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE card_id = $1 AND type = $2 AND transaction_date >= $3 AND transaction_date < $4;
	`

	var total decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, cardID, models.TransactionType(txType), from, to).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum transactions for card %s: %w", cardID, err)
	}
	return total, nil
}

// HasTransactionsForCard reports whether any transaction references the card.
func (r *PgxTransactionRepository) HasTransactionsForCard(ctx context.Context, cardID string) (bool, error) {
	var exists bool
	err := r.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM transactions WHERE card_id = $1)`, cardID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check transactions for card %s: %w", cardID, err)
	}
	return exists, nil
}

// HasTransactionsForCategory reports whether any transaction references the category.
func (r *PgxTransactionRepository) HasTransactionsForCategory(ctx context.Context, categoryID string) (bool, error) {
	var exists bool
	err := r.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM transactions WHERE category_id = $1)`, categoryID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check transactions for category %s: %w", categoryID, err)
	}
	return exists, nil
}
