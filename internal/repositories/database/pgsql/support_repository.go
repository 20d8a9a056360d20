package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/qodirovs/finance_tracker_app/internal/apperrors"
	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
	portsrepo "github.com/qodirovs/finance_tracker_app/internal/core/ports/repositories"
	"github.com/qodirovs/finance_tracker_app/internal/models"
	"github.com/qodirovs/finance_tracker_app/internal/utils/mapping"
	"github.com/qodirovs/finance_tracker_app/internal/utils/pagination"
)

const supportMessageColumns = `message_id, user_id, body, is_admin_reply, is_read, created_at, created_by, last_updated_at, last_updated_by`

type PgxSupportRepository struct {
	BaseRepository
}

// newPgxSupportRepository creates a new repository for support thread data.
func newPgxSupportRepository(pool *pgxpool.Pool) portsrepo.SupportRepositoryFacade {
	return &PgxSupportRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.SupportRepositoryFacade = (*PgxSupportRepository)(nil)

func scanSupportMessage(row pgx.Row) (models.SupportMessage, error) {
	var m models.SupportMessage
	err := row.Scan(
		&m.MessageID,
		&m.UserID,
		&m.Body,
		&m.IsAdminReply,
		&m.IsRead,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveSupportMessage persists a new message in a user's thread.
func (r *PgxSupportRepository) SaveSupportMessage(ctx context.Context, message domain.SupportMessage) error {
	m := mapping.ToModelSupportMessage(message)

	query := `
		INSERT INTO support_messages (` + supportMessageColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.MessageID,
		m.UserID,
		m.Body,
		m.IsAdminReply,
		m.IsRead,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save support message %s: %w", m.MessageID, err)
	}
	return nil
}

// ListMessagesByUser retrieves a page of the user's support thread, newest
// first, using created_at keyset pagination.
func (r *PgxSupportRepository) ListMessagesByUser(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.SupportMessage, *string, error) {
	if limit <= 0 {
		limit = 50
	}
	fetchLimit := limit + 1

	query := `SELECT ` + supportMessageColumns + ` FROM support_messages WHERE user_id = $1`
	args := []interface{}{userID}
	argNum := 2

	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, err := pagination.DecodeDateBasedToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidationError(fmt.Sprintf("invalid pagination token: %v", err))
		}
		query += fmt.Sprintf(" AND created_at < $%d", argNum)
		args = append(args, lastCreatedAt)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argNum)
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query support messages for user %s: %w", userID, err)
	}
	defer rows.Close()

	modelMessages := []models.SupportMessage{}
	for rows.Next() {
		m, err := scanSupportMessage(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan support message row for user %s: %w", userID, err)
		}
		modelMessages = append(modelMessages, m)
	}
	if rows.Err() != nil {
		return nil, nil, fmt.Errorf("error iterating support message rows for user %s: %w", userID, rows.Err())
	}

	var newNextToken *string
	if len(modelMessages) == fetchLimit {
		modelMessages = modelMessages[:limit]
		token := pagination.EncodeDateBasedToken(modelMessages[limit-1].CreatedAt)
		newNextToken = &token
	}

	return mapping.ToDomainSupportMessageSlice(modelMessages), newNextToken, nil
}

// CountUnreadForUser counts admin replies the user has not read yet.
func (r *PgxSupportRepository) CountUnreadForUser(ctx context.Context, userID string) (int, error) {
	query := `SELECT COUNT(*) FROM support_messages WHERE user_id = $1 AND is_admin_reply = TRUE AND is_read = FALSE;`

	var count int
	if err := r.Pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread support messages for user %s: %w", userID, err)
	}
	return count, nil
}

// ListUserIDsWithUnreadForAdmin lists users with unread messages on the admin side.
func (r *PgxSupportRepository) ListUserIDsWithUnreadForAdmin(ctx context.Context) ([]string, error) {
	query := `
		SELECT user_id
		FROM support_messages
		WHERE is_admin_reply = FALSE AND is_read = FALSE
		GROUP BY user_id
		ORDER BY MAX(created_at) DESC;
	`

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users with unread support messages: %w", err)
	}
	defer rows.Close()

	userIDs := []string{}
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan user ID row: %w", err)
		}
		userIDs = append(userIDs, userID)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating user ID rows: %w", rows.Err())
	}

	return userIDs, nil
}

// MarkThreadRead marks the thread read for one side. With adminSide true the
// user's messages are marked read, otherwise the admin replies are.
func (r *PgxSupportRepository) MarkThreadRead(ctx context.Context, userID string, adminSide bool) error {
	query := `
		UPDATE support_messages
		SET is_read = TRUE
		WHERE user_id = $1 AND is_admin_reply = $2 AND is_read = FALSE;
	`
	// adminSide reads the user's messages, the user reads admin replies.
	_, err := r.Pool.Exec(ctx, query, userID, !adminSide)
	if err != nil {
		return fmt.Errorf("failed to mark support thread read for user %s: %w", userID, err)
	}
	return nil
}
