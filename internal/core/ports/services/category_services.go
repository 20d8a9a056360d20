package services

import (
	"context"

	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
	"github.com/qodirovs/finance_tracker_app/internal/dto"
)

// CategoryReaderSvc defines read operations for category data
type CategoryReaderSvc interface {
	// GetCategoryByID retrieves a category visible to the user.
	GetCategoryByID(ctx context.Context, userID string, categoryID string) (*domain.Category, error)

	// ListCategories retrieves system categories plus the user's own, optionally by type.
	ListCategories(ctx context.Context, userID string, categoryType *domain.CategoryType) ([]domain.Category, error)
}

// CategoryWriterSvc defines write operations for category data
type CategoryWriterSvc interface {
	// CreateCategory persists a new user category.
	CreateCategory(ctx context.Context, userID string, req dto.CreateCategoryRequest) (*domain.Category, error)

	// UpdateCategory updates one of the user's categories.
	UpdateCategory(ctx context.Context, userID string, categoryID string, req dto.UpdateCategoryRequest) (*domain.Category, error)

	// DeleteCategory removes a user category. System categories and categories
	// with transaction history are rejected.
	DeleteCategory(ctx context.Context, userID string, categoryID string) error
}

// TagSvc defines operations on transaction tags
type TagSvc interface {
	// CreateTag persists a new tag for the user.
	CreateTag(ctx context.Context, userID string, req dto.CreateTagRequest) (*domain.Tag, error)

	// ListTags retrieves the user's tags.
	ListTags(ctx context.Context, userID string) ([]domain.Tag, error)

	// DeleteTag removes a tag and detaches it everywhere.
	DeleteTag(ctx context.Context, userID string, tagID string) error

	// AttachTag links a tag to one of the user's transactions.
	AttachTag(ctx context.Context, userID string, transactionID string, tagID string) error

	// DetachTag unlinks a tag from a transaction.
	DetachTag(ctx context.Context, userID string, transactionID string, tagID string) error
}

// CategorySvcFacade combines all category and tag service interfaces
type CategorySvcFacade interface {
	CategoryReaderSvc
	CategoryWriterSvc
	TagSvc
}
