package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/qodirovs/finance_tracker_app/internal/apperrors"
	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
	portsrepo "github.com/qodirovs/finance_tracker_app/internal/core/ports/repositories"
	portssvc "github.com/qodirovs/finance_tracker_app/internal/core/ports/services"
	"github.com/qodirovs/finance_tracker_app/internal/core/services"
	"github.com/qodirovs/finance_tracker_app/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock BudgetRepository ---
type MockBudgetRepository struct {
	mock.Mock
}

func (m *MockBudgetRepository) FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error) {
	args := m.Called(ctx, budgetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Budget), args.Error(1)
}

func (m *MockBudgetRepository) ListBudgetsByUser(ctx context.Context, userID string, activeOnly bool) ([]domain.Budget, error) {
	args := m.Called(ctx, userID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Budget), args.Error(1)
}

func (m *MockBudgetRepository) ListBudgetAlerts(ctx context.Context, budgetID string, limit int) ([]domain.BudgetAlert, error) {
	args := m.Called(ctx, budgetID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BudgetAlert), args.Error(1)
}

func (m *MockBudgetRepository) SaveBudget(ctx context.Context, budget domain.Budget) error {
	args := m.Called(ctx, budget)
	return args.Error(0)
}

func (m *MockBudgetRepository) UpdateBudget(ctx context.Context, budget domain.Budget) error {
	args := m.Called(ctx, budget)
	return args.Error(0)
}

func (m *MockBudgetRepository) UpdateBudgetStatus(ctx context.Context, budgetID string, status domain.BudgetStatus, userID string, now time.Time) error {
	args := m.Called(ctx, budgetID, status, userID, now)
	return args.Error(0)
}

func (m *MockBudgetRepository) SetAlertSent(ctx context.Context, budgetID string, sent bool, userID string, now time.Time) error {
	args := m.Called(ctx, budgetID, sent, userID, now)
	return args.Error(0)
}

func (m *MockBudgetRepository) DeleteBudget(ctx context.Context, budgetID string) error {
	args := m.Called(ctx, budgetID)
	return args.Error(0)
}

func (m *MockBudgetRepository) SaveBudgetAlert(ctx context.Context, alert domain.BudgetAlert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

// --- Test Suite ---
type BudgetServiceTestSuite struct {
	suite.Suite
	mockBudgetRepo   *MockBudgetRepository
	mockCategoryRepo *MockCategoryRepository
	mockTxnRepo      *MockTransactionRepository
	mockCurrencySvc  *MockCurrencyService
	mockRateSvc      *MockExchangeRateService
	service          portssvc.BudgetSvcFacade

	userID     string
	categoryID string
}

func (suite *BudgetServiceTestSuite) SetupTest() {
	suite.mockBudgetRepo = new(MockBudgetRepository)
	suite.mockCategoryRepo = new(MockCategoryRepository)
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockCurrencySvc = new(MockCurrencyService)
	suite.mockRateSvc = new(MockExchangeRateService)
	suite.service = services.NewBudgetService(
		suite.mockBudgetRepo,
		suite.mockCategoryRepo,
		suite.mockTxnRepo,
		suite.mockCurrencySvc,
		suite.mockRateSvc,
	)

	suite.userID = uuid.NewString()
	suite.categoryID = uuid.NewString()
}

func (suite *BudgetServiceTestSuite) monthlyBudget(amount int64, threshold int) *domain.Budget {
	return &domain.Budget{
		BudgetID:       uuid.NewString(),
		UserID:         suite.userID,
		CategoryID:     suite.categoryID,
		Name:           "Groceries cap",
		Amount:         decimal.NewFromInt(amount),
		CurrencyCode:   "USD",
		Period:         domain.PeriodMonthly,
		StartDate:      time.Now().UTC().AddDate(0, -1, 0),
		AlertThreshold: threshold,
		Status:         domain.BudgetActive,
	}
}

// --- Test Cases ---

func (suite *BudgetServiceTestSuite) TestCreateBudget_DefaultThresholdApplied() {
	ctx := context.Background()
	req := dto.CreateBudgetRequest{
		CategoryID:   suite.categoryID,
		Name:         "Groceries cap",
		Amount:       decimal.NewFromInt(300),
		CurrencyCode: "USD",
		Period:       domain.PeriodMonthly,
		StartDate:    time.Now().UTC(),
	}

	suite.mockCurrencySvc.On("GetCurrencyByCode", ctx, "USD").Return(&domain.Currency{CurrencyCode: "USD", IsActive: true}, nil).Once()
	suite.mockCategoryRepo.On("FindCategoryByID", ctx, suite.categoryID).Return(&domain.Category{
		CategoryID: suite.categoryID,
		UserID:     suite.userID,
		Type:       domain.CategoryExpense,
	}, nil).Once()
	suite.mockBudgetRepo.On("SaveBudget", ctx, mock.MatchedBy(func(b domain.Budget) bool {
		return b.AlertThreshold == 80 && b.Status == domain.BudgetActive
	})).Return(nil).Once()

	budget, err := suite.service.CreateBudget(ctx, suite.userID, req)

	suite.Require().NoError(err)
	suite.Equal(80, budget.AlertThreshold)
	suite.mockBudgetRepo.AssertExpectations(suite.T())
}

func (suite *BudgetServiceTestSuite) TestCreateBudget_IncomeCategoryRejected() {
	ctx := context.Background()
	req := dto.CreateBudgetRequest{
		CategoryID:   suite.categoryID,
		Name:         "Salary cap",
		Amount:       decimal.NewFromInt(300),
		CurrencyCode: "USD",
		Period:       domain.PeriodMonthly,
		StartDate:    time.Now().UTC(),
	}

	suite.mockCurrencySvc.On("GetCurrencyByCode", ctx, "USD").Return(&domain.Currency{CurrencyCode: "USD", IsActive: true}, nil).Once()
	suite.mockCategoryRepo.On("FindCategoryByID", ctx, suite.categoryID).Return(&domain.Category{
		CategoryID: suite.categoryID,
		UserID:     suite.userID,
		Type:       domain.CategoryIncome,
	}, nil).Once()

	budget, err := suite.service.CreateBudget(ctx, suite.userID, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(budget)
	suite.mockBudgetRepo.AssertNotCalled(suite.T(), "SaveBudget", mock.Anything, mock.Anything)
}

func (suite *BudgetServiceTestSuite) TestCreateBudget_EndDateBeforeStartRejected() {
	ctx := context.Background()
	start := time.Now().UTC()
	end := start.AddDate(0, 0, -1)
	req := dto.CreateBudgetRequest{
		CategoryID:   suite.categoryID,
		Name:         "Backwards",
		Amount:       decimal.NewFromInt(100),
		CurrencyCode: "USD",
		Period:       domain.PeriodMonthly,
		StartDate:    start,
		EndDate:      &end,
	}

	budget, err := suite.service.CreateBudget(ctx, suite.userID, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(budget)
}

func (suite *BudgetServiceTestSuite) TestGetBudgetProgress_ConvertsSpendingAcrossCurrencies() {
	ctx := context.Background()
	budget := suite.monthlyBudget(300, 80)

	suite.mockBudgetRepo.On("FindBudgetByID", ctx, budget.BudgetID).Return(budget, nil).Once()
	suite.mockTxnRepo.On("SumAmountsByCategory", ctx, suite.userID, suite.categoryID, domain.Expense,
		mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return([]portsrepo.CurrencyTotal{
		{CurrencyCode: "USD", Total: decimal.NewFromInt(100)},
		{CurrencyCode: "UZS", Total: decimal.NewFromInt(632500)},
	}, nil).Once()
	suite.mockRateSvc.On("Convert", ctx, decimal.NewFromInt(100), "USD", "USD").Return(decimal.NewFromInt(100), true, nil).Once()
	suite.mockRateSvc.On("Convert", ctx, decimal.NewFromInt(632500), "UZS", "USD").Return(decimal.NewFromInt(50), true, nil).Once()

	progress, err := suite.service.GetBudgetProgress(ctx, suite.userID, budget.BudgetID)

	suite.Require().NoError(err)
	suite.True(progress.SpentAmount.Equal(decimal.NewFromInt(150)))
	suite.True(progress.Remaining.Equal(decimal.NewFromInt(150)))
	suite.True(progress.PercentUsed.Equal(decimal.NewFromInt(50)))
	suite.False(progress.Exceeded)
}

func (suite *BudgetServiceTestSuite) TestGetBudgetProgress_UnconvertibleSpendingExcluded() {
	ctx := context.Background()
	budget := suite.monthlyBudget(300, 80)

	suite.mockBudgetRepo.On("FindBudgetByID", ctx, budget.BudgetID).Return(budget, nil).Once()
	suite.mockTxnRepo.On("SumAmountsByCategory", ctx, suite.userID, suite.categoryID, domain.Expense,
		mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return([]portsrepo.CurrencyTotal{
		{CurrencyCode: "USD", Total: decimal.NewFromInt(100)},
		{CurrencyCode: "XXX", Total: decimal.NewFromInt(999)},
	}, nil).Once()
	suite.mockRateSvc.On("Convert", ctx, decimal.NewFromInt(100), "USD", "USD").Return(decimal.NewFromInt(100), true, nil).Once()
	suite.mockRateSvc.On("Convert", ctx, decimal.NewFromInt(999), "XXX", "USD").Return(decimal.Zero, false, nil).Once()

	progress, err := suite.service.GetBudgetProgress(ctx, suite.userID, budget.BudgetID)

	suite.Require().NoError(err)
	suite.True(progress.SpentAmount.Equal(decimal.NewFromInt(100)))
}

func (suite *BudgetServiceTestSuite) TestEvaluateBudgets_CrossingThresholdRecordsAlert() {
	ctx := context.Background()
	budget := suite.monthlyBudget(300, 80)

	suite.mockBudgetRepo.On("ListBudgetsByUser", ctx, suite.userID, false).Return([]domain.Budget{*budget}, nil).Once()
	suite.mockTxnRepo.On("SumAmountsByCategory", mock.Anything, suite.userID, suite.categoryID, domain.Expense,
		mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return([]portsrepo.CurrencyTotal{
		{CurrencyCode: "USD", Total: decimal.NewFromInt(270)},
	}, nil).Once()
	suite.mockRateSvc.On("Convert", mock.Anything, decimal.NewFromInt(270), "USD", "USD").Return(decimal.NewFromInt(270), true, nil).Once()
	suite.mockBudgetRepo.On("SaveBudgetAlert", ctx, mock.MatchedBy(func(a domain.BudgetAlert) bool {
		return a.BudgetID == budget.BudgetID && a.SpentAmount.Equal(decimal.NewFromInt(270))
	})).Return(nil).Once()
	suite.mockBudgetRepo.On("SetAlertSent", ctx, budget.BudgetID, true, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	progress, err := suite.service.EvaluateBudgets(ctx, suite.userID)

	suite.Require().NoError(err)
	suite.Require().Len(progress, 1)
	suite.True(progress[0].Budget.AlertSent)
	suite.Equal(domain.BudgetActive, progress[0].Budget.Status)
	suite.mockBudgetRepo.AssertExpectations(suite.T())
}

func (suite *BudgetServiceTestSuite) TestEvaluateBudgets_AlertNotRepeatedWithinPeriod() {
	ctx := context.Background()
	budget := suite.monthlyBudget(300, 80)
	budget.AlertSent = true

	suite.mockBudgetRepo.On("ListBudgetsByUser", ctx, suite.userID, false).Return([]domain.Budget{*budget}, nil).Once()
	suite.mockTxnRepo.On("SumAmountsByCategory", mock.Anything, suite.userID, suite.categoryID, domain.Expense,
		mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return([]portsrepo.CurrencyTotal{
		{CurrencyCode: "USD", Total: decimal.NewFromInt(270)},
	}, nil).Once()
	suite.mockRateSvc.On("Convert", mock.Anything, decimal.NewFromInt(270), "USD", "USD").Return(decimal.NewFromInt(270), true, nil).Once()
	// The last alert is from the current period, so the flag stays set.
	suite.mockBudgetRepo.On("ListBudgetAlerts", ctx, budget.BudgetID, 1).Return([]domain.BudgetAlert{
		{BudgetID: budget.BudgetID, PeriodStart: budget.CurrentPeriodStart(time.Now().UTC())},
	}, nil).Once()

	progress, err := suite.service.EvaluateBudgets(ctx, suite.userID)

	suite.Require().NoError(err)
	suite.Require().Len(progress, 1)
	suite.mockBudgetRepo.AssertNotCalled(suite.T(), "SaveBudgetAlert", mock.Anything, mock.Anything)
}

func (suite *BudgetServiceTestSuite) TestEvaluateBudgets_ExceededBudgetTransitions() {
	ctx := context.Background()
	budget := suite.monthlyBudget(300, 80)
	budget.AlertSent = true

	suite.mockBudgetRepo.On("ListBudgetsByUser", ctx, suite.userID, false).Return([]domain.Budget{*budget}, nil).Once()
	suite.mockTxnRepo.On("SumAmountsByCategory", mock.Anything, suite.userID, suite.categoryID, domain.Expense,
		mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return([]portsrepo.CurrencyTotal{
		{CurrencyCode: "USD", Total: decimal.NewFromInt(350)},
	}, nil).Once()
	suite.mockRateSvc.On("Convert", mock.Anything, decimal.NewFromInt(350), "USD", "USD").Return(decimal.NewFromInt(350), true, nil).Once()
	suite.mockBudgetRepo.On("ListBudgetAlerts", ctx, budget.BudgetID, 1).Return([]domain.BudgetAlert{
		{BudgetID: budget.BudgetID, PeriodStart: budget.CurrentPeriodStart(time.Now().UTC())},
	}, nil).Once()
	suite.mockBudgetRepo.On("UpdateBudgetStatus", ctx, budget.BudgetID, domain.BudgetExceeded, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	progress, err := suite.service.EvaluateBudgets(ctx, suite.userID)

	suite.Require().NoError(err)
	suite.Require().Len(progress, 1)
	suite.True(progress[0].Exceeded)
	suite.Equal(domain.BudgetExceeded, progress[0].Budget.Status)
}

func (suite *BudgetServiceTestSuite) TestEvaluateBudgets_SpendingDropReactivatesBudget() {
	ctx := context.Background()
	budget := suite.monthlyBudget(300, 80)
	budget.Status = domain.BudgetExceeded

	suite.mockBudgetRepo.On("ListBudgetsByUser", ctx, suite.userID, false).Return([]domain.Budget{*budget}, nil).Once()
	suite.mockTxnRepo.On("SumAmountsByCategory", mock.Anything, suite.userID, suite.categoryID, domain.Expense,
		mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return([]portsrepo.CurrencyTotal{
		{CurrencyCode: "USD", Total: decimal.NewFromInt(50)},
	}, nil).Once()
	suite.mockRateSvc.On("Convert", mock.Anything, decimal.NewFromInt(50), "USD", "USD").Return(decimal.NewFromInt(50), true, nil).Once()
	suite.mockBudgetRepo.On("UpdateBudgetStatus", ctx, budget.BudgetID, domain.BudgetActive, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	progress, err := suite.service.EvaluateBudgets(ctx, suite.userID)

	suite.Require().NoError(err)
	suite.Require().Len(progress, 1)
	suite.Equal(domain.BudgetActive, progress[0].Budget.Status)
}

func (suite *BudgetServiceTestSuite) TestEvaluateBudgets_CompletedBudgetSkipped() {
	ctx := context.Background()
	budget := suite.monthlyBudget(300, 80)
	budget.Status = domain.BudgetCompleted

	suite.mockBudgetRepo.On("ListBudgetsByUser", ctx, suite.userID, false).Return([]domain.Budget{*budget}, nil).Once()

	progress, err := suite.service.EvaluateBudgets(ctx, suite.userID)

	suite.Require().NoError(err)
	suite.Empty(progress)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SumAmountsByCategory", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BudgetServiceTestSuite) TestDeleteBudget_OtherUsersBudgetForbidden() {
	ctx := context.Background()
	budget := suite.monthlyBudget(300, 80)
	budget.UserID = uuid.NewString()

	suite.mockBudgetRepo.On("FindBudgetByID", ctx, budget.BudgetID).Return(budget, nil).Once()

	err := suite.service.DeleteBudget(ctx, suite.userID, budget.BudgetID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockBudgetRepo.AssertNotCalled(suite.T(), "DeleteBudget", mock.Anything, mock.Anything)
}

func TestBudgetServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BudgetServiceTestSuite))
}
