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

// --- Mock TransactionRepository ---
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListTransactionsByUser(ctx context.Context, userID string, filters portsrepo.TransactionListFilters, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, userID, filters, limit, nextToken)
	var txns []domain.Transaction
	if args.Get(0) != nil {
		txns = args.Get(0).([]domain.Transaction)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return txns, token, args.Error(2)
}

func (m *MockTransactionRepository) ListAllTransactionsByUser(ctx context.Context, userID string) ([]domain.Transaction, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) SumAmountsByCategory(ctx context.Context, userID, categoryID string, txType domain.TransactionType, from, to time.Time) ([]portsrepo.CurrencyTotal, error) {
	args := m.Called(ctx, userID, categoryID, txType, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]portsrepo.CurrencyTotal), args.Error(1)
}

func (m *MockTransactionRepository) SumAmountsByCard(ctx context.Context, cardID string, txType domain.TransactionType, from, to time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, cardID, txType, from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockTransactionRepository) HasTransactionsForCard(ctx context.Context, cardID string) (bool, error) {
	args := m.Called(ctx, cardID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTransactionRepository) HasTransactionsForCategory(ctx context.Context, categoryID string) (bool, error) {
	args := m.Called(ctx, categoryID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction, balanceChanges map[string]decimal.Decimal) error {
	args := m.Called(ctx, txn, balanceChanges)
	return args.Error(0)
}

func (m *MockTransactionRepository) UpdateTransaction(ctx context.Context, txn domain.Transaction, balanceChanges map[string]decimal.Decimal) error {
	args := m.Called(ctx, txn, balanceChanges)
	return args.Error(0)
}

func (m *MockTransactionRepository) DeleteTransaction(ctx context.Context, transactionID string, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, transactionID, balanceChanges, userID, now)
	return args.Error(0)
}

func (m *MockTransactionRepository) UpdateReportingAmounts(ctx context.Context, userID string, updates []portsrepo.ReportingAmountUpdate, now time.Time) error {
	args := m.Called(ctx, userID, updates, now)
	return args.Error(0)
}

// --- Mock CategoryRepository ---
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockCategoryRepository) ListCategories(ctx context.Context, userID string, categoryType *domain.CategoryType) ([]domain.Category, error) {
	args := m.Called(ctx, userID, categoryType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *MockCategoryRepository) SaveCategory(ctx context.Context, category domain.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) UpdateCategory(ctx context.Context, category domain.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) DeleteCategory(ctx context.Context, categoryID string) error {
	args := m.Called(ctx, categoryID)
	return args.Error(0)
}

func (m *MockCategoryRepository) FindTagByID(ctx context.Context, tagID string) (*domain.Tag, error) {
	args := m.Called(ctx, tagID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tag), args.Error(1)
}

func (m *MockCategoryRepository) ListTagsByUser(ctx context.Context, userID string) ([]domain.Tag, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Tag), args.Error(1)
}

func (m *MockCategoryRepository) FindTagIDsByTransaction(ctx context.Context, transactionID string) ([]string, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockCategoryRepository) SaveTag(ctx context.Context, tag domain.Tag) error {
	args := m.Called(ctx, tag)
	return args.Error(0)
}

func (m *MockCategoryRepository) DeleteTag(ctx context.Context, tagID string) error {
	args := m.Called(ctx, tagID)
	return args.Error(0)
}

func (m *MockCategoryRepository) AttachTag(ctx context.Context, transactionID, tagID string) error {
	args := m.Called(ctx, transactionID, tagID)
	return args.Error(0)
}

func (m *MockCategoryRepository) DetachTag(ctx context.Context, transactionID, tagID string) error {
	args := m.Called(ctx, transactionID, tagID)
	return args.Error(0)
}

// --- Mock ExchangeRateService ---
type MockExchangeRateService struct {
	mock.Mock
}

func (m *MockExchangeRateService) GetLatestRate(ctx context.Context, fromCode, toCode string) (decimal.Decimal, bool, error) {
	args := m.Called(ctx, fromCode, toCode)
	return args.Get(0).(decimal.Decimal), args.Bool(1), args.Error(2)
}

func (m *MockExchangeRateService) Convert(ctx context.Context, amount decimal.Decimal, fromCode, toCode string) (decimal.Decimal, bool, error) {
	args := m.Called(ctx, amount, fromCode, toCode)
	return args.Get(0).(decimal.Decimal), args.Bool(1), args.Error(2)
}

func (m *MockExchangeRateService) ListExchangeRates(ctx context.Context, fromCode, toCode string, limit int) ([]domain.ExchangeRate, error) {
	args := m.Called(ctx, fromCode, toCode, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExchangeRate), args.Error(1)
}

// --- Test Suite ---
type TransactionServiceTestSuite struct {
	suite.Suite
	mockTxnRepo      *MockTransactionRepository
	mockCardRepo     *MockCardRepository
	mockCategoryRepo *MockCategoryRepository
	mockUserRepo     *MockUserRepository
	mockRateSvc      *MockExchangeRateService
	service          portssvc.TransactionSvcFacade

	userID     string
	cardID     string
	categoryID string
}

func (suite *TransactionServiceTestSuite) SetupTest() {
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockCardRepo = new(MockCardRepository)
	suite.mockCategoryRepo = new(MockCategoryRepository)
	suite.mockUserRepo = new(MockUserRepository)
	suite.mockRateSvc = new(MockExchangeRateService)
	suite.service = services.NewTransactionService(
		suite.mockTxnRepo,
		suite.mockCardRepo,
		suite.mockCategoryRepo,
		suite.mockUserRepo,
		suite.mockRateSvc,
	)

	suite.userID = uuid.NewString()
	suite.cardID = uuid.NewString()
	suite.categoryID = uuid.NewString()
}

func (suite *TransactionServiceTestSuite) card(balance int64, currency string) *domain.Card {
	return &domain.Card{
		CardID:       suite.cardID,
		UserID:       suite.userID,
		CurrencyCode: currency,
		Balance:      decimal.NewFromInt(balance),
		Status:       domain.CardActive,
	}
}

func (suite *TransactionServiceTestSuite) expenseCategory() *domain.Category {
	return &domain.Category{
		CategoryID: suite.categoryID,
		UserID:     suite.userID,
		Type:       domain.CategoryExpense,
	}
}

func (suite *TransactionServiceTestSuite) user(defaultCurrency string) *domain.User {
	return &domain.User{
		UserID:              suite.userID,
		DefaultCurrencyCode: defaultCurrency,
	}
}

// --- Test Cases ---

func (suite *TransactionServiceTestSuite) TestCreateTransaction_ExpenseDebitsCardAndFreezesConversion() {
	ctx := context.Background()
	req := dto.CreateTransactionRequest{
		CardID:          suite.cardID,
		CategoryID:      suite.categoryID,
		Type:            domain.Expense,
		Amount:          decimal.NewFromInt(100),
		Title:           "Groceries",
		TransactionDate: time.Now().UTC(),
	}

	suite.mockCardRepo.On("FindCardByID", ctx, suite.cardID).Return(suite.card(500, "USD"), nil).Once()
	suite.mockCategoryRepo.On("FindCategoryByID", ctx, suite.categoryID).Return(suite.expenseCategory(), nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, suite.userID).Return(suite.user("UZS"), nil).Once()
	suite.mockRateSvc.On("GetLatestRate", ctx, "USD", "UZS").Return(decimal.NewFromInt(12650), true, nil).Once()
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.MatchedBy(func(txn domain.Transaction) bool {
		return txn.ExchangeRateUsed.Equal(decimal.NewFromInt(12650)) &&
			txn.AmountInUserCurrency.Equal(decimal.NewFromInt(1265000)) &&
			txn.CurrencyCode == "USD"
	}), mock.MatchedBy(func(changes map[string]decimal.Decimal) bool {
		return changes[suite.cardID].Equal(decimal.NewFromInt(-100))
	})).Return(nil).Once()

	txn, err := suite.service.CreateTransaction(ctx, suite.userID, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(txn)
	suite.True(txn.AmountInUserCurrency.Equal(decimal.NewFromInt(1265000)))
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_MissingRateFallsBackToOne() {
	ctx := context.Background()
	req := dto.CreateTransactionRequest{
		CardID:          suite.cardID,
		CategoryID:      suite.categoryID,
		Type:            domain.Expense,
		Amount:          decimal.NewFromInt(50),
		Title:           "Lunch",
		TransactionDate: time.Now().UTC(),
	}

	suite.mockCardRepo.On("FindCardByID", ctx, suite.cardID).Return(suite.card(500, "GBP"), nil).Once()
	suite.mockCategoryRepo.On("FindCategoryByID", ctx, suite.categoryID).Return(suite.expenseCategory(), nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, suite.userID).Return(suite.user("USD"), nil).Once()
	suite.mockRateSvc.On("GetLatestRate", ctx, "GBP", "USD").Return(decimal.Zero, false, nil).Once()
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.MatchedBy(func(txn domain.Transaction) bool {
		return txn.ExchangeRateUsed.Equal(decimal.NewFromInt(1)) &&
			txn.AmountInUserCurrency.Equal(decimal.NewFromInt(50))
	}), mock.Anything).Return(nil).Once()

	txn, err := suite.service.CreateTransaction(ctx, suite.userID, req)

	suite.Require().NoError(err, "recording must not be blocked by missing rate data")
	suite.Require().NotNil(txn)
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_ExpenseMayOverdrawCard() {
	ctx := context.Background()
	req := dto.CreateTransactionRequest{
		CardID:          suite.cardID,
		CategoryID:      suite.categoryID,
		Type:            domain.Expense,
		Amount:          decimal.NewFromInt(600),
		Title:           "Rent",
		TransactionDate: time.Now().UTC(),
	}

	suite.mockCardRepo.On("FindCardByID", ctx, suite.cardID).Return(suite.card(500, "USD"), nil).Once()
	suite.mockCategoryRepo.On("FindCategoryByID", ctx, suite.categoryID).Return(suite.expenseCategory(), nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, suite.userID).Return(suite.user("USD"), nil).Once()
	suite.mockRateSvc.On("GetLatestRate", ctx, "USD", "USD").Return(decimal.NewFromInt(1), true, nil).Once()
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.MatchedBy(func(txn domain.Transaction) bool {
		return txn.Amount.Equal(decimal.NewFromInt(600))
	}), mock.MatchedBy(func(changes map[string]decimal.Decimal) bool {
		return changes[suite.cardID].Equal(decimal.NewFromInt(-600))
	})).Return(nil).Once()

	// An expense larger than the card balance is still recorded; the balance
	// simply goes negative.
	txn, err := suite.service.CreateTransaction(ctx, suite.userID, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(txn)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_CategoryTypeMismatch() {
	ctx := context.Background()
	req := dto.CreateTransactionRequest{
		CardID:          suite.cardID,
		CategoryID:      suite.categoryID,
		Type:            domain.Income,
		Amount:          decimal.NewFromInt(100),
		Title:           "Salary",
		TransactionDate: time.Now().UTC(),
	}

	suite.mockCardRepo.On("FindCardByID", ctx, suite.cardID).Return(suite.card(500, "USD"), nil).Once()
	suite.mockCategoryRepo.On("FindCategoryByID", ctx, suite.categoryID).Return(suite.expenseCategory(), nil).Once()

	txn, err := suite.service.CreateTransaction(ctx, suite.userID, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(txn)
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_InactiveCardRejected() {
	ctx := context.Background()
	card := suite.card(500, "USD")
	card.Status = domain.CardBlocked
	req := dto.CreateTransactionRequest{
		CardID:          suite.cardID,
		CategoryID:      suite.categoryID,
		Type:            domain.Expense,
		Amount:          decimal.NewFromInt(10),
		Title:           "Coffee",
		TransactionDate: time.Now().UTC(),
	}

	suite.mockCardRepo.On("FindCardByID", ctx, suite.cardID).Return(card, nil).Once()

	txn, err := suite.service.CreateTransaction(ctx, suite.userID, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(txn)
}

func (suite *TransactionServiceTestSuite) TestUpdateTransaction_AmountChangeAppliesDelta() {
	ctx := context.Background()
	existing := &domain.Transaction{
		TransactionID:   uuid.NewString(),
		UserID:          suite.userID,
		CardID:          suite.cardID,
		CategoryID:      suite.categoryID,
		Type:            domain.Expense,
		Amount:          decimal.NewFromInt(100),
		CurrencyCode:    "USD",
		TransactionDate: time.Now().UTC(),
	}
	newAmount := decimal.NewFromInt(150)
	req := dto.UpdateTransactionRequest{Amount: &newAmount}

	suite.mockTxnRepo.On("FindTransactionByID", ctx, existing.TransactionID).Return(existing, nil).Once()
	suite.mockCardRepo.On("FindCardByID", ctx, suite.cardID).Return(suite.card(500, "USD"), nil).Once()
	suite.mockCategoryRepo.On("FindCategoryByID", ctx, suite.categoryID).Return(suite.expenseCategory(), nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, suite.userID).Return(suite.user("USD"), nil).Once()
	suite.mockRateSvc.On("GetLatestRate", ctx, "USD", "USD").Return(decimal.NewFromInt(1), true, nil).Once()
	// Old expense of 100 reversed (+100), new expense of 150 applied (-150): net -50.
	suite.mockTxnRepo.On("UpdateTransaction", ctx, mock.MatchedBy(func(txn domain.Transaction) bool {
		return txn.Amount.Equal(newAmount)
	}), mock.MatchedBy(func(changes map[string]decimal.Decimal) bool {
		return len(changes) == 1 && changes[suite.cardID].Equal(decimal.NewFromInt(-50))
	})).Return(nil).Once()

	txn, err := suite.service.UpdateTransaction(ctx, suite.userID, existing.TransactionID, req)

	suite.Require().NoError(err)
	suite.True(txn.Amount.Equal(newAmount))
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestDeleteTransaction_ReversesIncome() {
	ctx := context.Background()
	existing := &domain.Transaction{
		TransactionID: uuid.NewString(),
		UserID:        suite.userID,
		CardID:        suite.cardID,
		Type:          domain.Income,
		Amount:        decimal.NewFromInt(200),
		CurrencyCode:  "USD",
	}

	suite.mockTxnRepo.On("FindTransactionByID", ctx, existing.TransactionID).Return(existing, nil).Once()
	suite.mockTxnRepo.On("DeleteTransaction", ctx, existing.TransactionID, mock.MatchedBy(func(changes map[string]decimal.Decimal) bool {
		return changes[suite.cardID].Equal(decimal.NewFromInt(-200))
	}), suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	err := suite.service.DeleteTransaction(ctx, suite.userID, existing.TransactionID)

	suite.Require().NoError(err)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestDeleteTransaction_OtherUsersTransactionForbidden() {
	ctx := context.Background()
	existing := &domain.Transaction{
		TransactionID: uuid.NewString(),
		UserID:        uuid.NewString(),
		CardID:        suite.cardID,
		Type:          domain.Expense,
		Amount:        decimal.NewFromInt(10),
	}

	suite.mockTxnRepo.On("FindTransactionByID", ctx, existing.TransactionID).Return(existing, nil).Once()

	err := suite.service.DeleteTransaction(ctx, suite.userID, existing.TransactionID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "DeleteTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestRecomputeReportingAmounts_RepricesAllRows() {
	ctx := context.Background()
	txns := []domain.Transaction{
		{TransactionID: "t1", UserID: suite.userID, Amount: decimal.NewFromInt(100), CurrencyCode: "USD"},
		{TransactionID: "t2", UserID: suite.userID, Amount: decimal.NewFromInt(40), CurrencyCode: "USD"},
	}

	suite.mockUserRepo.On("FindUserByID", ctx, suite.userID).Return(suite.user("UZS"), nil).Once()
	suite.mockTxnRepo.On("ListAllTransactionsByUser", ctx, suite.userID).Return(txns, nil).Once()
	// Both rows share a currency so the rate is resolved once.
	suite.mockRateSvc.On("GetLatestRate", ctx, "USD", "UZS").Return(decimal.NewFromInt(12650), true, nil).Once()
	suite.mockTxnRepo.On("UpdateReportingAmounts", ctx, suite.userID, mock.MatchedBy(func(updates []portsrepo.ReportingAmountUpdate) bool {
		return len(updates) == 2 &&
			updates[0].AmountInUserCurrency.Equal(decimal.NewFromInt(1265000)) &&
			updates[1].AmountInUserCurrency.Equal(decimal.NewFromInt(506000))
	}), mock.AnythingOfType("time.Time")).Return(nil).Once()

	count, err := suite.service.RecomputeReportingAmounts(ctx, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(2, count)
	suite.mockRateSvc.AssertNumberOfCalls(suite.T(), "GetLatestRate", 1)
}

func TestTransactionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}
