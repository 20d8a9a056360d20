package services

import (
	"context"

	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
)

// ReportingSvcFacade defines operations for the dashboard aggregates
type ReportingSvcFacade interface {
	// GetFinancialSummary assembles the user's dashboard: total balance in the
	// default currency plus per-card monthly income and expense flows.
	GetFinancialSummary(ctx context.Context, userID string) (*domain.FinancialSummary, error)
}
