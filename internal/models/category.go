package models

import "database/sql"

// CategoryType scopes a category to income or expense.
type CategoryType string

const (
	CategoryIncome  CategoryType = "INCOME"
	CategoryExpense CategoryType = "EXPENSE"
)

// Category represents a categories table row. UserID is NULL for system defaults.
type Category struct {
	CategoryID       string         `db:"category_id"` // Primary Key (e.g., UUID)
	UserID           sql.NullString `db:"user_id"`
	Name             string         `db:"name"`
	Type             CategoryType   `db:"type"`
	Icon             string         `db:"icon"`
	ParentCategoryID sql.NullString `db:"parent_category_id"`
	IsSystem         bool           `db:"is_system"`
	AuditFields
}

// Tag represents a tags table row.
type Tag struct {
	TagID  string `db:"tag_id"` // Primary Key (e.g., UUID)
	UserID string `db:"user_id"`
	Name   string `db:"name"`
	AuditFields
}
