package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetPeriod is the recurrence window a budget is evaluated over.
type BudgetPeriod string

const (
	PeriodDaily   BudgetPeriod = "DAILY"
	PeriodWeekly  BudgetPeriod = "WEEKLY"
	PeriodMonthly BudgetPeriod = "MONTHLY"
	PeriodYearly  BudgetPeriod = "YEARLY"
)

// BudgetStatus reflects the evaluated state of a budget.
type BudgetStatus string

const (
	BudgetActive    BudgetStatus = "ACTIVE"
	BudgetPaused    BudgetStatus = "PAUSED"
	BudgetCompleted BudgetStatus = "COMPLETED"
	BudgetExceeded  BudgetStatus = "EXCEEDED"
)

// Budget caps spending for one category over a recurring period. Budgets hold
// no running counters; spent totals are always computed from transactions.
type Budget struct {
	BudgetID       string          `json:"budgetID"` // Primary Key (e.g., UUID)
	UserID         string          `json:"userID"`
	CategoryID     string          `json:"categoryID"` // Expense category being capped
	Name           string          `json:"name"`
	Amount         decimal.Decimal `json:"amount"`       // Cap, in CurrencyCode
	CurrencyCode   string          `json:"currencyCode"` // FK -> currencies.code
	Period         BudgetPeriod    `json:"period"`
	StartDate      time.Time       `json:"startDate"`
	EndDate        *time.Time      `json:"endDate,omitempty"` // Nullable; open-ended when nil
	AlertThreshold int             `json:"alertThreshold"`    // Percent of Amount that triggers an alert
	AlertSent      bool            `json:"alertSent"`         // Reset at each period rollover
	Status         BudgetStatus    `json:"status"`
	IsRecurring    bool            `json:"isRecurring"`
	AuditFields
}

// BudgetAlert records a threshold crossing for a budget period.
type BudgetAlert struct {
	AlertID     string          `json:"alertID"` // Primary Key (e.g., UUID)
	BudgetID    string          `json:"budgetID"`
	UserID      string          `json:"userID"`
	SpentAmount decimal.Decimal `json:"spentAmount"` // In the budget currency
	PercentUsed decimal.Decimal `json:"percentUsed"`
	PeriodStart time.Time       `json:"periodStart"`
	AuditFields
}

// CurrentPeriodStart returns the inclusive start of the period containing now.
// Weeks start on Monday.
func (b Budget) CurrentPeriodStart(now time.Time) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch b.Period {
	case PeriodDaily:
		return day
	case PeriodWeekly:
		offset := (int(day.Weekday()) + 6) % 7 // days since Monday
		return day.AddDate(0, 0, -offset)
	case PeriodMonthly:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	case PeriodYearly:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	default:
		return day
	}
}

// CurrentPeriodEnd returns the exclusive end of the period containing now,
// i.e. the start of the next period.
func (b Budget) CurrentPeriodEnd(now time.Time) time.Time {
	start := b.CurrentPeriodStart(now)
	switch b.Period {
	case PeriodDaily:
		return start.AddDate(0, 0, 1)
	case PeriodWeekly:
		return start.AddDate(0, 0, 7)
	case PeriodMonthly:
		return start.AddDate(0, 1, 0)
	case PeriodYearly:
		return start.AddDate(1, 0, 0)
	default:
		return start.AddDate(0, 0, 1)
	}
}

// IsWithinSchedule reports whether now falls inside the budget's overall
// start/end window.
func (b Budget) IsWithinSchedule(now time.Time) bool {
	if now.Before(b.StartDate) {
		return false
	}
	if b.EndDate != nil && now.After(*b.EndDate) {
		return false
	}
	return true
}

// ShouldSendAlert reports whether the spent percentage crosses the alert
// threshold for a budget that has not alerted in the current period.
func (b Budget) ShouldSendAlert(percentUsed decimal.Decimal) bool {
	if b.AlertSent || b.Status == BudgetPaused {
		return false
	}
	return percentUsed.GreaterThanOrEqual(decimal.NewFromInt(int64(b.AlertThreshold)))
}
