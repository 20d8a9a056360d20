package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/qodirovs/finance_tracker_app/internal/apperrors"
	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
	portsrepo "github.com/qodirovs/finance_tracker_app/internal/core/ports/repositories"
	"github.com/qodirovs/finance_tracker_app/internal/models"
	"github.com/qodirovs/finance_tracker_app/internal/utils/mapping"
)

const categoryColumns = `category_id, user_id, name, type, icon, parent_category_id, is_system, created_at, created_by, last_updated_at, last_updated_by`

type PgxCategoryRepository struct {
	BaseRepository
}

// newPgxCategoryRepository creates a new repository for category and tag data.
func newPgxCategoryRepository(pool *pgxpool.Pool) portsrepo.CategoryRepositoryFacade {
	return &PgxCategoryRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.CategoryRepositoryFacade = (*PgxCategoryRepository)(nil)

func scanCategory(row pgx.Row) (models.Category, error) {
	var m models.Category
	err := row.Scan(
		&m.CategoryID,
		&m.UserID,
		&m.Name,
		&m.Type,
		&m.Icon,
		&m.ParentCategoryID,
		&m.IsSystem,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveCategory inserts a new category.
func (r *PgxCategoryRepository) SaveCategory(ctx context.Context, category domain.Category) error {
	m := mapping.ToModelCategory(category)

	query := `
		INSERT INTO categories (` + categoryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.CategoryID,
		m.UserID,
		m.Name,
		m.Type,
		m.Icon,
		m.ParentCategoryID,
		m.IsSystem,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: category with ID %s already exists", apperrors.ErrDuplicate, m.CategoryID)
		}
		return fmt.Errorf("failed to save category %s: %w", m.CategoryID, err)
	}
	return nil
}

// UpdateCategory updates an existing category's details.
func (r *PgxCategoryRepository) UpdateCategory(ctx context.Context, category domain.Category) error {
	m := mapping.ToModelCategory(category)

	query := `
		UPDATE categories
		SET name = $2, icon = $3, parent_category_id = $4, last_updated_at = $5, last_updated_by = $6
		WHERE category_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		m.CategoryID,
		m.Name,
		m.Icon,
		m.ParentCategoryID,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update category %s: %w", m.CategoryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteCategory removes a category.
func (r *PgxCategoryRepository) DeleteCategory(ctx context.Context, categoryID string) error {
	cmdTag, err := r.Pool.Exec(ctx, `DELETE FROM categories WHERE category_id = $1;`, categoryID)
	if err != nil {
		return fmt.Errorf("failed to delete category %s: %w", categoryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindCategoryByID retrieves a category by its ID.
func (r *PgxCategoryRepository) FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE category_id = $1;`

	m, err := scanCategory(r.Pool.QueryRow(ctx, query, categoryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find category by ID %s: %w", categoryID, err)
	}

	domainCat := mapping.ToDomainCategory(m)
	return &domainCat, nil
}

// ListCategories retrieves the system categories plus the user's own,
// optionally filtered by type.
func (r *PgxCategoryRepository) ListCategories(ctx context.Context, userID string, categoryType *domain.CategoryType) ([]domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE (user_id IS NULL OR user_id = $1)`
	args := []interface{}{userID}

	if categoryType != nil {
		query += ` AND type = $2`
		args = append(args, models.CategoryType(*categoryType))
	}
	query += ` ORDER BY is_system DESC, name ASC;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories for user %s: %w", userID, err)
	}
	defer rows.Close()

	modelCats := []models.Category{}
	for rows.Next() {
		m, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category row for user %s: %w", userID, err)
		}
		modelCats = append(modelCats, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating category rows for user %s: %w", userID, rows.Err())
	}

	return mapping.ToDomainCategorySlice(modelCats), nil
}

// SaveTag persists a new tag.
func (r *PgxCategoryRepository) SaveTag(ctx context.Context, tag domain.Tag) error {
	m := mapping.ToModelTag(tag)

	query := `
		INSERT INTO tags (tag_id, user_id, name, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.TagID,
		m.UserID,
		m.Name,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: tag %q already exists for user %s", apperrors.ErrDuplicate, m.Name, m.UserID)
		}
		return fmt.Errorf("failed to save tag %s: %w", m.TagID, err)
	}
	return nil
}

// FindTagByID retrieves a tag by its ID.
func (r *PgxCategoryRepository) FindTagByID(ctx context.Context, tagID string) (*domain.Tag, error) {
	query := `SELECT tag_id, user_id, name, created_at, created_by, last_updated_at, last_updated_by FROM tags WHERE tag_id = $1;`

	var m models.Tag
	err := r.Pool.QueryRow(ctx, query, tagID).Scan(
		&m.TagID,
		&m.UserID,
		&m.Name,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find tag by ID %s: %w", tagID, err)
	}

	domainTag := mapping.ToDomainTag(m)
	return &domainTag, nil
}

// ListTagsByUser retrieves all tags of a user.
func (r *PgxCategoryRepository) ListTagsByUser(ctx context.Context, userID string) ([]domain.Tag, error) {
	query := `SELECT tag_id, user_id, name, created_at, created_by, last_updated_at, last_updated_by FROM tags WHERE user_id = $1 ORDER BY name;`

	rows, err := r.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags for user %s: %w", userID, err)
	}
	defer rows.Close()

	modelTags, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Tag, error) {
		var m models.Tag
		err := row.Scan(
			&m.TagID,
			&m.UserID,
			&m.Name,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan tags for user %s: %w", userID, err)
	}

	return mapping.ToDomainTagSlice(modelTags), nil
}

// FindTagIDsByTransaction retrieves the tag IDs attached to a transaction.
func (r *PgxCategoryRepository) FindTagIDsByTransaction(ctx context.Context, transactionID string) ([]string, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT tag_id FROM transaction_tags WHERE transaction_id = $1 ORDER BY tag_id`,
		transactionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags for transaction %s: %w", transactionID, err)
	}
	defer rows.Close()

	tagIDs := []string{}
	for rows.Next() {
		var tagID string
		if err := rows.Scan(&tagID); err != nil {
			return nil, fmt.Errorf("failed to scan tag ID row: %w", err)
		}
		tagIDs = append(tagIDs, tagID)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating tag ID rows: %w", rows.Err())
	}

	return tagIDs, nil
}

// DeleteTag removes a tag and all its transaction relations.
func (r *PgxCategoryRepository) DeleteTag(ctx context.Context, tagID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `DELETE FROM transaction_tags WHERE tag_id = $1`, tagID); err != nil {
		return fmt.Errorf("failed to clear transaction links for tag %s: %w", tagID, err)
	}

	cmdTag, err := tx.Exec(ctx, `DELETE FROM tags WHERE tag_id = $1`, tagID)
	if err != nil {
		return fmt.Errorf("failed to delete tag %s: %w", tagID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return r.Commit(ctx, tx)
}

// AttachTag links a tag to a transaction. Attaching an already linked tag is a no-op.
func (r *PgxCategoryRepository) AttachTag(ctx context.Context, transactionID, tagID string) error {
	_, err := r.Pool.Exec(ctx,
		`INSERT INTO transaction_tags (transaction_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		transactionID, tagID,
	)
	if err != nil {
		return fmt.Errorf("failed to attach tag %s to transaction %s: %w", tagID, transactionID, err)
	}
	return nil
}

// DetachTag removes the link between a tag and a transaction.
func (r *PgxCategoryRepository) DetachTag(ctx context.Context, transactionID, tagID string) error {
	cmdTag, err := r.Pool.Exec(ctx,
		`DELETE FROM transaction_tags WHERE transaction_id = $1 AND tag_id = $2`,
		transactionID, tagID,
	)
	if err != nil {
		return fmt.Errorf("failed to detach tag %s from transaction %s: %w", tagID, transactionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
