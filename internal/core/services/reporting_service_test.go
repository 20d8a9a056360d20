package services_test

import (
	"context"
	"testing"

	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
	portssvc "github.com/qodirovs/finance_tracker_app/internal/core/ports/services"
	"github.com/qodirovs/finance_tracker_app/internal/core/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Test Suite ---
type ReportingServiceTestSuite struct {
	suite.Suite
	mockUserRepo *MockUserRepository
	mockCardRepo *MockCardRepository
	mockTxnRepo  *MockTransactionRepository
	mockRateSvc  *MockExchangeRateService
	service      portssvc.ReportingSvcFacade

	userID string
}

func (suite *ReportingServiceTestSuite) SetupTest() {
	suite.mockUserRepo = new(MockUserRepository)
	suite.mockCardRepo = new(MockCardRepository)
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockRateSvc = new(MockExchangeRateService)
	suite.service = services.NewReportingService(suite.mockUserRepo, suite.mockCardRepo, suite.mockTxnRepo, suite.mockRateSvc)

	suite.userID = uuid.NewString()
	suite.mockUserRepo.On("FindUserByID", mock.Anything, suite.userID).
		Return(&domain.User{UserID: suite.userID, DefaultCurrencyCode: "USD"}, nil)
}

func (suite *ReportingServiceTestSuite) summaryCard(currency string, balance int64) domain.Card {
	return domain.Card{
		CardID:       uuid.NewString(),
		UserID:       suite.userID,
		Name:         currency + " card",
		CurrencyCode: currency,
		Balance:      decimal.NewFromInt(balance),
		Status:       domain.CardActive,
	}
}

// expectMonthlySums registers the per-card income and expense sums. The
// service fans out per card, so the context is not the test's own.
func (suite *ReportingServiceTestSuite) expectMonthlySums(cardID string, income, expense int64) {
	suite.mockTxnRepo.On("SumAmountsByCard", mock.Anything, cardID, domain.Income, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
		Return(decimal.NewFromInt(income), nil).Once()
	suite.mockTxnRepo.On("SumAmountsByCard", mock.Anything, cardID, domain.Expense, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
		Return(decimal.NewFromInt(expense), nil).Once()
}

// --- Test Cases ---

func (suite *ReportingServiceTestSuite) TestGetFinancialSummary_ConvertsToDefaultCurrency() {
	ctx := context.Background()
	usdCard := suite.summaryCard("USD", 500)
	eurCard := suite.summaryCard("EUR", 200)

	suite.mockCardRepo.On("ListCardsByUser", ctx, suite.userID).Return([]domain.Card{usdCard, eurCard}, nil).Once()
	suite.expectMonthlySums(usdCard.CardID, 100, 40)
	suite.expectMonthlySums(eurCard.CardID, 80, 20)
	suite.mockRateSvc.On("GetLatestRate", ctx, "USD", "USD").Return(decimal.NewFromInt(1), true, nil).Once()
	suite.mockRateSvc.On("GetLatestRate", ctx, "EUR", "USD").Return(decimal.NewFromFloat(1.25), true, nil).Once()

	summary, err := suite.service.GetFinancialSummary(ctx, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("USD", summary.CurrencyCode)
	// 500 + 200*1.25
	suite.True(summary.TotalBalance.Equal(decimal.NewFromInt(750)), "got %s", summary.TotalBalance.String())
	// 100 + 80*1.25
	suite.True(summary.MonthlyIncome.Equal(decimal.NewFromInt(200)))
	// 40 + 20*1.25
	suite.True(summary.MonthlyExpense.Equal(decimal.NewFromInt(65)))
	suite.Len(summary.Cards, 2)
}

func (suite *ReportingServiceTestSuite) TestGetFinancialSummary_UnconvertibleCardListedButExcluded() {
	ctx := context.Background()
	usdCard := suite.summaryCard("USD", 500)
	uzsCard := suite.summaryCard("UZS", 632500)

	suite.mockCardRepo.On("ListCardsByUser", ctx, suite.userID).Return([]domain.Card{usdCard, uzsCard}, nil).Once()
	suite.expectMonthlySums(usdCard.CardID, 100, 40)
	suite.expectMonthlySums(uzsCard.CardID, 0, 126500)
	suite.mockRateSvc.On("GetLatestRate", ctx, "USD", "USD").Return(decimal.NewFromInt(1), true, nil).Once()
	suite.mockRateSvc.On("GetLatestRate", ctx, "UZS", "USD").Return(decimal.Zero, false, nil).Once()

	summary, err := suite.service.GetFinancialSummary(ctx, suite.userID)

	suite.Require().NoError(err)
	suite.True(summary.TotalBalance.Equal(decimal.NewFromInt(500)))
	suite.True(summary.MonthlyExpense.Equal(decimal.NewFromInt(40)))
	// The card still shows up with its own-currency figures.
	suite.Len(summary.Cards, 2)
}

func (suite *ReportingServiceTestSuite) TestGetFinancialSummary_NoCards() {
	ctx := context.Background()

	suite.mockCardRepo.On("ListCardsByUser", ctx, suite.userID).Return([]domain.Card{}, nil).Once()

	summary, err := suite.service.GetFinancialSummary(ctx, suite.userID)

	suite.Require().NoError(err)
	suite.True(summary.TotalBalance.IsZero())
	suite.Empty(summary.Cards)
}

func TestReportingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReportingServiceTestSuite))
}
