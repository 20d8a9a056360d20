package domain_test

import (
	"testing"

	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransaction_BalanceEffect(t *testing.T) {
	tests := []struct {
		name string
		tx   domain.Transaction
		want decimal.Decimal
	}{
		{
			name: "income adds to the card balance",
			tx: domain.Transaction{
				Type:   domain.Income,
				Amount: decimal.NewFromFloat(200.00),
			},
			want: decimal.NewFromFloat(200.00),
		},
		{
			name: "expense subtracts from the card balance",
			tx: domain.Transaction{
				Type:   domain.Expense,
				Amount: decimal.NewFromFloat(75.50),
			},
			want: decimal.NewFromFloat(-75.50),
		},
		{
			name: "zero amount has no effect either way",
			tx: domain.Transaction{
				Type:   domain.Expense,
				Amount: decimal.Zero,
			},
			want: decimal.Zero,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.tx.BalanceEffect()
			assert.True(t, tt.want.Equal(got), "want %s got %s", tt.want, got)
		})
	}
}
