package dto

import (
	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
)

// CreateCategoryRequest defines the data needed to create a user category.
type CreateCategoryRequest struct {
	Name             string              `json:"name" binding:"required"`
	Type             domain.CategoryType `json:"type" binding:"required,oneof=INCOME EXPENSE"`
	Icon             string              `json:"icon"`
	ParentCategoryID *string             `json:"parentCategoryID"`
}

// UpdateCategoryRequest defines the data allowed for updating a category.
type UpdateCategoryRequest struct {
	Name *string `json:"name"`
	Icon *string `json:"icon"`
}

// CategoryResponse defines the data returned for a category.
type CategoryResponse struct {
	CategoryID       string              `json:"categoryID"`
	Name             string              `json:"name"`
	Type             domain.CategoryType `json:"type"`
	Icon             string              `json:"icon,omitempty"`
	ParentCategoryID string              `json:"parentCategoryID,omitempty"`
	IsSystem         bool                `json:"isSystem"`
}

// ToCategoryResponse converts a domain.Category to CategoryResponse DTO
func ToCategoryResponse(cat *domain.Category) CategoryResponse {
	return CategoryResponse{
		CategoryID:       cat.CategoryID,
		Name:             cat.Name,
		Type:             cat.Type,
		Icon:             cat.Icon,
		ParentCategoryID: cat.ParentCategoryID,
		IsSystem:         cat.IsSystem,
	}
}

// ToListCategoryResponse converts a slice of domain.Category to CategoryResponse DTOs
func ToListCategoryResponse(categories []domain.Category) []CategoryResponse {
	res := make([]CategoryResponse, len(categories))
	for i := range categories {
		res[i] = ToCategoryResponse(&categories[i])
	}
	return res
}

// CreateTagRequest defines the data needed to create a tag.
type CreateTagRequest struct {
	Name string `json:"name" binding:"required"`
}

// TagResponse defines the data returned for a tag.
type TagResponse struct {
	TagID string `json:"tagID"`
	Name  string `json:"name"`
}

// ToTagResponse converts a domain.Tag to TagResponse DTO
func ToTagResponse(tag *domain.Tag) TagResponse {
	return TagResponse{TagID: tag.TagID, Name: tag.Name}
}

// ToListTagResponse converts a slice of domain.Tag to TagResponse DTOs
func ToListTagResponse(tags []domain.Tag) []TagResponse {
	res := make([]TagResponse, len(tags))
	for i := range tags {
		res[i] = ToTagResponse(&tags[i])
	}
	return res
}
