package dto

import (
	"time"

	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateBudgetRequest defines the data needed to create a budget.
type CreateBudgetRequest struct {
	CategoryID     string              `json:"categoryID" binding:"required"`
	Name           string              `json:"name" binding:"required"`
	Amount         decimal.Decimal     `json:"amount" binding:"required,dgt0"`
	CurrencyCode   string              `json:"currencyCode" binding:"required,len=3,uppercase"`
	Period         domain.BudgetPeriod `json:"period" binding:"required,oneof=DAILY WEEKLY MONTHLY YEARLY"`
	StartDate      time.Time           `json:"startDate" binding:"required"`
	EndDate        *time.Time          `json:"endDate"`
	AlertThreshold int                 `json:"alertThreshold" binding:"omitempty,min=1,max=100"`
	IsRecurring    bool                `json:"isRecurring"`
}

// UpdateBudgetRequest defines the data allowed for updating a budget.
type UpdateBudgetRequest struct {
	Name           *string              `json:"name"`
	Amount         *decimal.Decimal     `json:"amount"`
	Period         *domain.BudgetPeriod `json:"period" binding:"omitempty,oneof=DAILY WEEKLY MONTHLY YEARLY"`
	EndDate        *time.Time           `json:"endDate"`
	AlertThreshold *int                 `json:"alertThreshold" binding:"omitempty,min=1,max=100"`
	Status         *domain.BudgetStatus `json:"status" binding:"omitempty,oneof=ACTIVE PAUSED COMPLETED EXCEEDED"`
	IsRecurring    *bool                `json:"isRecurring"`
}

// BudgetResponse defines the data returned for a budget.
type BudgetResponse struct {
	BudgetID       string              `json:"budgetID"`
	CategoryID     string              `json:"categoryID"`
	Name           string              `json:"name"`
	Amount         decimal.Decimal     `json:"amount"`
	CurrencyCode   string              `json:"currencyCode"`
	Period         domain.BudgetPeriod `json:"period"`
	StartDate      time.Time           `json:"startDate"`
	EndDate        *time.Time          `json:"endDate,omitempty"`
	AlertThreshold int                 `json:"alertThreshold"`
	AlertSent      bool                `json:"alertSent"`
	Status         domain.BudgetStatus `json:"status"`
	IsRecurring    bool                `json:"isRecurring"`
	CreatedAt      time.Time           `json:"createdAt"`
	LastUpdatedAt  time.Time           `json:"lastUpdatedAt"`
}

// BudgetProgressResponse defines the evaluated state of a budget period.
type BudgetProgressResponse struct {
	Budget      BudgetResponse  `json:"budget"`
	SpentAmount decimal.Decimal `json:"spentAmount"`
	Remaining   decimal.Decimal `json:"remaining"`
	PercentUsed decimal.Decimal `json:"percentUsed"`
	Exceeded    bool            `json:"exceeded"`
}

// BudgetAlertResponse defines one recorded threshold crossing.
type BudgetAlertResponse struct {
	AlertID     string          `json:"alertID"`
	BudgetID    string          `json:"budgetID"`
	SpentAmount decimal.Decimal `json:"spentAmount"`
	PercentUsed decimal.Decimal `json:"percentUsed"`
	PeriodStart time.Time       `json:"periodStart"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// ToBudgetResponse converts a domain.Budget to BudgetResponse DTO
func ToBudgetResponse(b *domain.Budget) BudgetResponse {
	return BudgetResponse{
		BudgetID:       b.BudgetID,
		CategoryID:     b.CategoryID,
		Name:           b.Name,
		Amount:         b.Amount,
		CurrencyCode:   b.CurrencyCode,
		Period:         b.Period,
		StartDate:      b.StartDate,
		EndDate:        b.EndDate,
		AlertThreshold: b.AlertThreshold,
		AlertSent:      b.AlertSent,
		Status:         b.Status,
		IsRecurring:    b.IsRecurring,
		CreatedAt:      b.CreatedAt,
		LastUpdatedAt:  b.LastUpdatedAt,
	}
}

// ToListBudgetResponse converts a slice of domain.Budget to BudgetResponse DTOs
func ToListBudgetResponse(budgets []domain.Budget) []BudgetResponse {
	res := make([]BudgetResponse, len(budgets))
	for i := range budgets {
		res[i] = ToBudgetResponse(&budgets[i])
	}
	return res
}

// ToBudgetProgressResponse converts a domain.BudgetProgress to its DTO
func ToBudgetProgressResponse(p *domain.BudgetProgress) BudgetProgressResponse {
	return BudgetProgressResponse{
		Budget:      ToBudgetResponse(&p.Budget),
		SpentAmount: p.SpentAmount,
		Remaining:   p.Remaining,
		PercentUsed: p.PercentUsed,
		Exceeded:    p.Exceeded,
	}
}

// ToListBudgetProgressResponse converts evaluated budgets to DTOs
func ToListBudgetProgressResponse(progress []domain.BudgetProgress) []BudgetProgressResponse {
	res := make([]BudgetProgressResponse, len(progress))
	for i := range progress {
		res[i] = ToBudgetProgressResponse(&progress[i])
	}
	return res
}

// ToBudgetAlertResponse converts a domain.BudgetAlert to its DTO
func ToBudgetAlertResponse(a *domain.BudgetAlert) BudgetAlertResponse {
	return BudgetAlertResponse{
		AlertID:     a.AlertID,
		BudgetID:    a.BudgetID,
		SpentAmount: a.SpentAmount,
		PercentUsed: a.PercentUsed,
		PeriodStart: a.PeriodStart,
		CreatedAt:   a.CreatedAt,
	}
}

// ToListBudgetAlertResponse converts alert history to DTOs
func ToListBudgetAlertResponse(alerts []domain.BudgetAlert) []BudgetAlertResponse {
	res := make([]BudgetAlertResponse, len(alerts))
	for i := range alerts {
		res[i] = ToBudgetAlertResponse(&alerts[i])
	}
	return res
}
