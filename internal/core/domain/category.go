package domain

// CategoryType scopes a category to one side of the ledger.
type CategoryType string

const (
	CategoryIncome  CategoryType = "INCOME"
	CategoryExpense CategoryType = "EXPENSE"
)

// Category classifies transactions. System categories (empty UserID, IsSystem)
// are shared defaults and cannot be deleted; users may add their own, optionally
// nested under a parent.
type Category struct {
	CategoryID       string       `json:"categoryID"` // Primary Key (e.g., UUID)
	UserID           string       `json:"userID"`     // Empty for system categories
	Name             string       `json:"name"`
	Type             CategoryType `json:"type"`
	Icon             string       `json:"icon"`             // Optional UI icon name
	ParentCategoryID string       `json:"parentCategoryID"` // Nullable FK -> categories.category_id
	IsSystem         bool         `json:"isSystem"`
	AuditFields
}

// Tag is a free-form user label attachable to transactions.
type Tag struct {
	TagID  string `json:"tagID"` // Primary Key (e.g., UUID)
	UserID string `json:"userID"`
	Name   string `json:"name"`
	AuditFields
}
