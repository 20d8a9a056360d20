package domain_test

import (
	"testing"
	"time"

	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBudget_CurrentPeriodBoundaries(t *testing.T) {
	// Wednesday, 2026-08-19 14:30 UTC
	now := time.Date(2026, time.August, 19, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		period    domain.BudgetPeriod
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "daily period spans midnight to next midnight",
			period:    domain.PeriodDaily,
			wantStart: time.Date(2026, time.August, 19, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2026, time.August, 20, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "weekly period starts on Monday",
			period:    domain.PeriodWeekly,
			wantStart: time.Date(2026, time.August, 17, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2026, time.August, 24, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "monthly period starts on the first",
			period:    domain.PeriodMonthly,
			wantStart: time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "yearly period starts on January 1st",
			period:    domain.PeriodYearly,
			wantStart: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := domain.Budget{Period: tt.period}
			assert.Equal(t, tt.wantStart, b.CurrentPeriodStart(now))
			assert.Equal(t, tt.wantEnd, b.CurrentPeriodEnd(now))
		})
	}
}

func TestBudget_CurrentPeriodEnd_DoesNotEqualStart(t *testing.T) {
	// The end boundary must always advance past the start, for every period kind.
	now := time.Date(2026, time.December, 31, 23, 59, 59, 0, time.UTC)
	for _, p := range []domain.BudgetPeriod{
		domain.PeriodDaily, domain.PeriodWeekly, domain.PeriodMonthly, domain.PeriodYearly,
	} {
		b := domain.Budget{Period: p}
		assert.True(t, b.CurrentPeriodEnd(now).After(b.CurrentPeriodStart(now)), "period %s", p)
	}
}

func TestBudget_ShouldSendAlert(t *testing.T) {
	tests := []struct {
		name        string
		budget      domain.Budget
		percentUsed decimal.Decimal
		want        bool
	}{
		{
			name:        "crosses threshold",
			budget:      domain.Budget{AlertThreshold: 80, Status: domain.BudgetActive},
			percentUsed: decimal.NewFromInt(85),
			want:        true,
		},
		{
			name:        "exactly at threshold",
			budget:      domain.Budget{AlertThreshold: 80, Status: domain.BudgetActive},
			percentUsed: decimal.NewFromInt(80),
			want:        true,
		},
		{
			name:        "below threshold",
			budget:      domain.Budget{AlertThreshold: 80, Status: domain.BudgetActive},
			percentUsed: decimal.NewFromInt(79),
			want:        false,
		},
		{
			name:        "already alerted this period",
			budget:      domain.Budget{AlertThreshold: 80, AlertSent: true, Status: domain.BudgetActive},
			percentUsed: decimal.NewFromInt(95),
			want:        false,
		},
		{
			name:        "paused budgets never alert",
			budget:      domain.Budget{AlertThreshold: 80, Status: domain.BudgetPaused},
			percentUsed: decimal.NewFromInt(95),
			want:        false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.budget.ShouldSendAlert(tt.percentUsed))
		})
	}
}

func TestBudget_IsWithinSchedule(t *testing.T) {
	start := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC)

	open := domain.Budget{StartDate: start}
	bounded := domain.Budget{StartDate: start, EndDate: &end}

	assert.False(t, open.IsWithinSchedule(start.Add(-time.Hour)))
	assert.True(t, open.IsWithinSchedule(start.AddDate(10, 0, 0)))
	assert.True(t, bounded.IsWithinSchedule(start.AddDate(0, 0, 15)))
	assert.False(t, bounded.IsWithinSchedule(end.Add(time.Hour)))
}
