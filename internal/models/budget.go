package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// BudgetPeriod mirrors the allowed budget recurrence values.
type BudgetPeriod string

const (
	PeriodDaily   BudgetPeriod = "DAILY"
	PeriodWeekly  BudgetPeriod = "WEEKLY"
	PeriodMonthly BudgetPeriod = "MONTHLY"
	PeriodYearly  BudgetPeriod = "YEARLY"
)

// BudgetStatus mirrors the allowed budget states.
type BudgetStatus string

const (
	BudgetActive    BudgetStatus = "ACTIVE"
	BudgetPaused    BudgetStatus = "PAUSED"
	BudgetCompleted BudgetStatus = "COMPLETED"
	BudgetExceeded  BudgetStatus = "EXCEEDED"
)

// Budget represents a budgets table row.
type Budget struct {
	BudgetID       string          `db:"budget_id"` // Primary Key (e.g., UUID)
	UserID         string          `db:"user_id"`
	CategoryID     string          `db:"category_id"`
	Name           string          `db:"name"`
	Amount         decimal.Decimal `db:"amount"`
	CurrencyCode   string          `db:"currency_code"`
	Period         BudgetPeriod    `db:"period"`
	StartDate      time.Time       `db:"start_date"`
	EndDate        sql.NullTime    `db:"end_date"`
	AlertThreshold int             `db:"alert_threshold"`
	AlertSent      bool            `db:"alert_sent"`
	Status         BudgetStatus    `db:"status"`
	IsRecurring    bool            `db:"is_recurring"`
	AuditFields
}

// BudgetAlert represents a budget_alerts table row.
type BudgetAlert struct {
	AlertID     string          `db:"alert_id"` // Primary Key (e.g., UUID)
	BudgetID    string          `db:"budget_id"`
	UserID      string          `db:"user_id"`
	SpentAmount decimal.Decimal `db:"spent_amount"`
	PercentUsed decimal.Decimal `db:"percent_used"`
	PeriodStart time.Time       `db:"period_start"`
	AuditFields
}
