package domain

import (
	"github.com/shopspring/decimal"
)

// CardSummary is one card's contribution to the dashboard, with monthly flows
// in the card's own currency.
type CardSummary struct {
	CardID         string          `json:"cardID"`
	Name           string          `json:"name"`
	CurrencyCode   string          `json:"currencyCode"`
	Balance        decimal.Decimal `json:"balance"`
	MonthlyIncome  decimal.Decimal `json:"monthlyIncome"`
	MonthlyExpense decimal.Decimal `json:"monthlyExpense"`
}

// FinancialSummary is the per-user dashboard aggregate. Totals are expressed
// in the user's default currency; cards that cannot be converted are listed
// but excluded from the totals.
type FinancialSummary struct {
	CurrencyCode   string          `json:"currencyCode"` // User default currency
	TotalBalance   decimal.Decimal `json:"totalBalance"`
	MonthlyIncome  decimal.Decimal `json:"monthlyIncome"`
	MonthlyExpense decimal.Decimal `json:"monthlyExpense"`
	Cards          []CardSummary   `json:"cards"`
}

// BudgetProgress is the evaluated state of one budget for its current period.
type BudgetProgress struct {
	Budget      Budget          `json:"budget"`
	SpentAmount decimal.Decimal `json:"spentAmount"` // In the budget currency
	Remaining   decimal.Decimal `json:"remaining"`
	PercentUsed decimal.Decimal `json:"percentUsed"`
	Exceeded    bool            `json:"exceeded"`
}
