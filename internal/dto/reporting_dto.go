package dto

import (
	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CardSummaryResponse represents one card on the dashboard.
type CardSummaryResponse struct {
	CardID         string          `json:"cardID"`
	Name           string          `json:"name"`
	CurrencyCode   string          `json:"currencyCode"`
	Balance        decimal.Decimal `json:"balance"`
	MonthlyIncome  decimal.Decimal `json:"monthlyIncome"`
	MonthlyExpense decimal.Decimal `json:"monthlyExpense"`
}

// FinancialSummaryResponse represents the user dashboard aggregate.
type FinancialSummaryResponse struct {
	CurrencyCode   string                `json:"currencyCode"`
	TotalBalance   decimal.Decimal       `json:"totalBalance"`
	MonthlyIncome  decimal.Decimal       `json:"monthlyIncome"`
	MonthlyExpense decimal.Decimal       `json:"monthlyExpense"`
	Cards          []CardSummaryResponse `json:"cards"`
}

// ToFinancialSummaryResponse converts the domain summary to its DTO
func ToFinancialSummaryResponse(s *domain.FinancialSummary) FinancialSummaryResponse {
	res := FinancialSummaryResponse{
		CurrencyCode:   s.CurrencyCode,
		TotalBalance:   s.TotalBalance,
		MonthlyIncome:  s.MonthlyIncome,
		MonthlyExpense: s.MonthlyExpense,
		Cards:          make([]CardSummaryResponse, len(s.Cards)),
	}
	for i, c := range s.Cards {
		res.Cards[i] = CardSummaryResponse{
			CardID:         c.CardID,
			Name:           c.Name,
			CurrencyCode:   c.CurrencyCode,
			Balance:        c.Balance,
			MonthlyIncome:  c.MonthlyIncome,
			MonthlyExpense: c.MonthlyExpense,
		}
	}
	return res
}
