package repositories

import (
	"context"

	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
)

// CategoryReader defines read operations for category data
type CategoryReader interface {
	// FindCategoryByID retrieves a specific category by its unique identifier.
	FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error)

	// ListCategories retrieves the system categories plus the user's own,
	// optionally filtered by type.
	ListCategories(ctx context.Context, userID string, categoryType *domain.CategoryType) ([]domain.Category, error)
}

// CategoryWriter defines write operations for category data
type CategoryWriter interface {
	// SaveCategory persists a new category.
	SaveCategory(ctx context.Context, category domain.Category) error

	// UpdateCategory updates an existing category's details.
	UpdateCategory(ctx context.Context, category domain.Category) error

	// DeleteCategory removes a category. Callers enforce the system-category
	// and transaction-history guards.
	DeleteCategory(ctx context.Context, categoryID string) error
}

// TagReader defines read operations for tags
type TagReader interface {
	// FindTagByID retrieves a specific tag.
	FindTagByID(ctx context.Context, tagID string) (*domain.Tag, error)

	// ListTagsByUser retrieves all tags of a user.
	ListTagsByUser(ctx context.Context, userID string) ([]domain.Tag, error)

	// FindTagIDsByTransaction retrieves the tag IDs attached to a transaction.
	FindTagIDsByTransaction(ctx context.Context, transactionID string) ([]string, error)
}

// TagWriter defines write operations for tags
type TagWriter interface {
	// SaveTag persists a new tag.
	SaveTag(ctx context.Context, tag domain.Tag) error

	// DeleteTag removes a tag and all its transaction relations.
	DeleteTag(ctx context.Context, tagID string) error

	// AttachTag links a tag to a transaction. Attaching an already linked tag is a no-op.
	AttachTag(ctx context.Context, transactionID, tagID string) error

	// DetachTag removes the link between a tag and a transaction.
	DetachTag(ctx context.Context, transactionID, tagID string) error
}

// CategoryRepositoryFacade combines all category and tag repository interfaces
// This is a facade for clients that need access to all operations
type CategoryRepositoryFacade interface {
	CategoryReader
	CategoryWriter
	TagReader
	TagWriter
}
