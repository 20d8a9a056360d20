package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/qodirovs/finance_tracker_app/internal/apperrors"
	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
	portsrepo "github.com/qodirovs/finance_tracker_app/internal/core/ports/repositories"
	portssvc "github.com/qodirovs/finance_tracker_app/internal/core/ports/services"
	"github.com/qodirovs/finance_tracker_app/internal/dto"
)

// categoryService provides business logic for categories and tags.
type categoryService struct {
	BaseService
	categoryRepo    portsrepo.CategoryRepositoryFacade
	transactionRepo portsrepo.TransactionReader
}

// NewCategoryService creates a new category service.
func NewCategoryService(categoryRepo portsrepo.CategoryRepositoryFacade, transactionRepo portsrepo.TransactionReader) portssvc.CategorySvcFacade {
	return &categoryService{
		categoryRepo:    categoryRepo,
		transactionRepo: transactionRepo,
	}
}

var _ portssvc.CategorySvcFacade = (*categoryService)(nil)

// getVisibleCategory loads a category the user is allowed to see: a system
// category or one of their own.
func (s *categoryService) getVisibleCategory(ctx context.Context, userID, categoryID string) (*domain.Category, error) {
	category, err := s.categoryRepo.FindCategoryByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if !category.IsSystem && category.UserID != userID {
		return nil, fmt.Errorf("%w: category %s does not belong to user", apperrors.ErrForbidden, categoryID)
	}
	return category, nil
}

// GetCategoryByID retrieves a category visible to the user.
func (s *categoryService) GetCategoryByID(ctx context.Context, userID string, categoryID string) (*domain.Category, error) {
	return s.getVisibleCategory(ctx, userID, categoryID)
}

// ListCategories retrieves system categories plus the user's own, optionally by type.
func (s *categoryService) ListCategories(ctx context.Context, userID string, categoryType *domain.CategoryType) ([]domain.Category, error) {
	categories, err := s.categoryRepo.ListCategories(ctx, userID, categoryType)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories in service: %w", err)
	}
	if categories == nil {
		return []domain.Category{}, nil
	}
	return categories, nil
}

// CreateCategory persists a new user category, optionally nested under a
// visible parent of the same type.
func (s *categoryService) CreateCategory(ctx context.Context, userID string, req dto.CreateCategoryRequest) (*domain.Category, error) {
	parentID := ""
	if req.ParentCategoryID != nil && *req.ParentCategoryID != "" {
		parent, err := s.getVisibleCategory(ctx, userID, *req.ParentCategoryID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: parent category %s not found", apperrors.ErrValidation, *req.ParentCategoryID)
			}
			return nil, err
		}
		if parent.Type != req.Type {
			return nil, fmt.Errorf("%w: parent category type does not match", apperrors.ErrValidation)
		}
		parentID = parent.CategoryID
	}

	now := time.Now().UTC()
	category := domain.Category{
		CategoryID:       uuid.NewString(),
		UserID:           userID,
		Name:             req.Name,
		Type:             req.Type,
		Icon:             req.Icon,
		ParentCategoryID: parentID,
		IsSystem:         false,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.categoryRepo.SaveCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category in service: %w", err)
	}
	return &category, nil
}

// UpdateCategory updates one of the user's categories. System categories are immutable.
func (s *categoryService) UpdateCategory(ctx context.Context, userID string, categoryID string, req dto.UpdateCategoryRequest) (*domain.Category, error) {
	category, err := s.getVisibleCategory(ctx, userID, categoryID)
	if err != nil {
		return nil, err
	}
	if category.IsSystem {
		return nil, fmt.Errorf("%w: system categories cannot be modified", apperrors.ErrForbidden)
	}

	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Icon != nil {
		category.Icon = *req.Icon
	}
	category.LastUpdatedAt = time.Now().UTC()
	category.LastUpdatedBy = userID

	if err := s.categoryRepo.UpdateCategory(ctx, *category); err != nil {
		return nil, fmt.Errorf("failed to update category in service: %w", err)
	}
	return category, nil
}

// DeleteCategory removes a user category. System categories and categories
// with transaction history are rejected.
func (s *categoryService) DeleteCategory(ctx context.Context, userID string, categoryID string) error {
	category, err := s.getVisibleCategory(ctx, userID, categoryID)
	if err != nil {
		return err
	}
	if category.IsSystem {
		return fmt.Errorf("%w: system categories cannot be deleted", apperrors.ErrForbidden)
	}

	hasHistory, err := s.transactionRepo.HasTransactionsForCategory(ctx, categoryID)
	if err != nil {
		return fmt.Errorf("failed to check category history before delete: %w", err)
	}
	if hasHistory {
		return fmt.Errorf("%w: category has transaction history and cannot be deleted", apperrors.ErrConflict)
	}

	if err := s.categoryRepo.DeleteCategory(ctx, categoryID); err != nil {
		return fmt.Errorf("failed to delete category in service: %w", err)
	}
	return nil
}

// CreateTag persists a new tag for the user.
func (s *categoryService) CreateTag(ctx context.Context, userID string, req dto.CreateTagRequest) (*domain.Tag, error) {
	now := time.Now().UTC()
	tag := domain.Tag{
		TagID:  uuid.NewString(),
		UserID: userID,
		Name:   req.Name,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.categoryRepo.SaveTag(ctx, tag); err != nil {
		return nil, fmt.Errorf("failed to create tag in service: %w", err)
	}
	return &tag, nil
}

// ListTags retrieves the user's tags.
func (s *categoryService) ListTags(ctx context.Context, userID string) ([]domain.Tag, error) {
	tags, err := s.categoryRepo.ListTagsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags in service: %w", err)
	}
	if tags == nil {
		return []domain.Tag{}, nil
	}
	return tags, nil
}

// getOwnedTag loads a tag and verifies it belongs to the user.
func (s *categoryService) getOwnedTag(ctx context.Context, userID, tagID string) (*domain.Tag, error) {
	tag, err := s.categoryRepo.FindTagByID(ctx, tagID)
	if err != nil {
		return nil, err
	}
	if tag.UserID != userID {
		return nil, fmt.Errorf("%w: tag %s does not belong to user", apperrors.ErrForbidden, tagID)
	}
	return tag, nil
}

// getOwnedTransaction loads a transaction and verifies it belongs to the user.
func (s *categoryService) getOwnedTransaction(ctx context.Context, userID, transactionID string) (*domain.Transaction, error) {
	txn, err := s.transactionRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.UserID != userID {
		return nil, fmt.Errorf("%w: transaction %s does not belong to user", apperrors.ErrForbidden, transactionID)
	}
	return txn, nil
}

// DeleteTag removes a tag and detaches it everywhere.
func (s *categoryService) DeleteTag(ctx context.Context, userID string, tagID string) error {
	if _, err := s.getOwnedTag(ctx, userID, tagID); err != nil {
		return err
	}
	if err := s.categoryRepo.DeleteTag(ctx, tagID); err != nil {
		return fmt.Errorf("failed to delete tag in service: %w", err)
	}
	return nil
}

// AttachTag links a tag to one of the user's transactions.
func (s *categoryService) AttachTag(ctx context.Context, userID string, transactionID string, tagID string) error {
	if _, err := s.getOwnedTag(ctx, userID, tagID); err != nil {
		return err
	}
	if _, err := s.getOwnedTransaction(ctx, userID, transactionID); err != nil {
		return err
	}
	if err := s.categoryRepo.AttachTag(ctx, transactionID, tagID); err != nil {
		return fmt.Errorf("failed to attach tag in service: %w", err)
	}
	return nil
}

// DetachTag unlinks a tag from a transaction.
func (s *categoryService) DetachTag(ctx context.Context, userID string, transactionID string, tagID string) error {
	if _, err := s.getOwnedTag(ctx, userID, tagID); err != nil {
		return err
	}
	if _, err := s.getOwnedTransaction(ctx, userID, transactionID); err != nil {
		return err
	}
	if err := s.categoryRepo.DetachTag(ctx, transactionID, tagID); err != nil {
		return fmt.Errorf("failed to detach tag in service: %w", err)
	}
	return nil
}
