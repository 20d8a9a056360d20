package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/qodirovs/finance_tracker_app/internal/apperrors"
	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
	portssvc "github.com/qodirovs/finance_tracker_app/internal/core/ports/services"
	"github.com/qodirovs/finance_tracker_app/internal/core/services"
	"github.com/qodirovs/finance_tracker_app/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock CardRepository ---
type MockCardRepository struct {
	mock.Mock
}

func (m *MockCardRepository) FindCardByID(ctx context.Context, cardID string) (*domain.Card, error) {
	args := m.Called(ctx, cardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Card), args.Error(1)
}

func (m *MockCardRepository) FindCardsByIDs(ctx context.Context, cardIDs []string) (map[string]domain.Card, error) {
	args := m.Called(ctx, cardIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Card), args.Error(1)
}

func (m *MockCardRepository) ListCardsByUser(ctx context.Context, userID string) ([]domain.Card, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Card), args.Error(1)
}

func (m *MockCardRepository) CountActiveCardsByUser(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockCardRepository) SaveCard(ctx context.Context, card domain.Card) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockCardRepository) UpdateCardDetails(ctx context.Context, card domain.Card) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockCardRepository) UpdateCardStatus(ctx context.Context, cardID string, status domain.CardStatus, userID string, now time.Time) error {
	args := m.Called(ctx, cardID, status, userID, now)
	return args.Error(0)
}

func (m *MockCardRepository) SetDefaultCard(ctx context.Context, userID string, cardID string, now time.Time) error {
	args := m.Called(ctx, userID, cardID, now)
	return args.Error(0)
}

func (m *MockCardRepository) SetCardBalance(ctx context.Context, cardID string, balance decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, cardID, balance, userID, now)
	return args.Error(0)
}

func (m *MockCardRepository) DeleteCard(ctx context.Context, cardID string) error {
	args := m.Called(ctx, cardID)
	return args.Error(0)
}

func (m *MockCardRepository) FindCardsByIDsForUpdate(ctx context.Context, tx pgx.Tx, cardIDs []string) (map[string]domain.Card, error) {
	args := m.Called(ctx, tx, cardIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Card), args.Error(1)
}

func (m *MockCardRepository) UpdateCardBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, tx, balanceChanges, userID, now)
	return args.Error(0)
}

// --- Test Suite ---
type CardServiceTestSuite struct {
	suite.Suite
	mockCardRepo    *MockCardRepository
	mockTxnRepo     *MockTransactionRepository
	mockCurrencySvc *MockCurrencyService
	mockRateSvc     *MockExchangeRateService
	service         portssvc.CardSvcFacade
	userID          string
}

func (suite *CardServiceTestSuite) SetupTest() {
	suite.mockCardRepo = new(MockCardRepository)
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockCurrencySvc = new(MockCurrencyService)
	suite.mockRateSvc = new(MockExchangeRateService)
	suite.service = services.NewCardService(suite.mockCardRepo, suite.mockTxnRepo, suite.mockCurrencySvc, suite.mockRateSvc)
	suite.userID = uuid.NewString()
}

func (suite *CardServiceTestSuite) activeCard(balance int64) *domain.Card {
	return &domain.Card{
		CardID:       uuid.NewString(),
		UserID:       suite.userID,
		Name:         "Main",
		CurrencyCode: "USD",
		Balance:      decimal.NewFromInt(balance),
		Status:       domain.CardActive,
	}
}

// --- Test Cases ---

func (suite *CardServiceTestSuite) TestCreateCard_FirstCardBecomesDefault() {
	ctx := context.Background()
	req := dto.CreateCardRequest{
		Name:           "Salary card",
		CurrencyCode:   "USD",
		InitialBalance: decimal.NewFromInt(500),
	}

	suite.mockCurrencySvc.On("GetCurrencyByCode", ctx, "USD").Return(&domain.Currency{CurrencyCode: "USD", IsActive: true}, nil).Once()
	suite.mockCardRepo.On("ListCardsByUser", ctx, suite.userID).Return([]domain.Card{}, nil).Once()
	suite.mockCardRepo.On("SaveCard", ctx, mock.MatchedBy(func(c domain.Card) bool {
		return c.IsDefault && c.Balance.Equal(decimal.NewFromInt(500)) && c.Status == domain.CardActive
	})).Return(nil).Once()

	card, err := suite.service.CreateCard(ctx, suite.userID, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(card)
	suite.True(card.IsDefault)
	suite.True(card.InitialBalance.Equal(decimal.NewFromInt(500)))
	suite.mockCardRepo.AssertExpectations(suite.T())
}

func (suite *CardServiceTestSuite) TestCreateCard_SecondCardNotDefault() {
	ctx := context.Background()
	req := dto.CreateCardRequest{
		Name:         "Second",
		CurrencyCode: "USD",
	}

	suite.mockCurrencySvc.On("GetCurrencyByCode", ctx, "USD").Return(&domain.Currency{CurrencyCode: "USD", IsActive: true}, nil).Once()
	suite.mockCardRepo.On("ListCardsByUser", ctx, suite.userID).Return([]domain.Card{*suite.activeCard(0)}, nil).Once()
	suite.mockCardRepo.On("SaveCard", ctx, mock.MatchedBy(func(c domain.Card) bool {
		return !c.IsDefault
	})).Return(nil).Once()

	card, err := suite.service.CreateCard(ctx, suite.userID, req)

	suite.Require().NoError(err)
	suite.False(card.IsDefault)
}

func (suite *CardServiceTestSuite) TestCreateCard_InactiveCurrencyRejected() {
	ctx := context.Background()
	req := dto.CreateCardRequest{Name: "X", CurrencyCode: "XAU"}

	suite.mockCurrencySvc.On("GetCurrencyByCode", ctx, "XAU").Return(&domain.Currency{CurrencyCode: "XAU", IsActive: false}, nil).Once()

	card, err := suite.service.CreateCard(ctx, suite.userID, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(card)
	suite.mockCardRepo.AssertNotCalled(suite.T(), "SaveCard", mock.Anything, mock.Anything)
}

func (suite *CardServiceTestSuite) TestGetCardByID_OtherUsersCardForbidden() {
	ctx := context.Background()
	card := suite.activeCard(100)
	card.UserID = uuid.NewString()

	suite.mockCardRepo.On("FindCardByID", ctx, card.CardID).Return(card, nil).Once()

	got, err := suite.service.GetCardByID(ctx, suite.userID, card.CardID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.Nil(got)
}

func (suite *CardServiceTestSuite) TestSetDefaultCard_InactiveCardRejected() {
	ctx := context.Background()
	card := suite.activeCard(100)
	card.Status = domain.CardBlocked

	suite.mockCardRepo.On("FindCardByID", ctx, card.CardID).Return(card, nil).Once()

	got, err := suite.service.SetDefaultCard(ctx, suite.userID, card.CardID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(got)
	suite.mockCardRepo.AssertNotCalled(suite.T(), "SetDefaultCard", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *CardServiceTestSuite) TestChangeCardStatus_LeavingActiveClearsDefault() {
	ctx := context.Background()
	card := suite.activeCard(100)
	card.IsDefault = true

	suite.mockCardRepo.On("FindCardByID", ctx, card.CardID).Return(card, nil).Once()
	suite.mockCardRepo.On("UpdateCardStatus", ctx, card.CardID, domain.CardInactive, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	got, err := suite.service.ChangeCardStatus(ctx, suite.userID, card.CardID, domain.CardInactive)

	suite.Require().NoError(err)
	suite.Equal(domain.CardInactive, got.Status)
	suite.False(got.IsDefault)
}

func (suite *CardServiceTestSuite) TestGetBalanceInCurrency_Converted() {
	ctx := context.Background()
	card := suite.activeCard(100)

	suite.mockCardRepo.On("FindCardByID", ctx, card.CardID).Return(card, nil).Once()
	suite.mockRateSvc.On("Convert", ctx, card.Balance, "USD", "UZS").Return(decimal.NewFromInt(1265000), true, nil).Once()

	balance, ok, err := suite.service.GetBalanceInCurrency(ctx, suite.userID, card.CardID, "UZS")

	suite.Require().NoError(err)
	suite.True(ok)
	suite.True(balance.Equal(decimal.NewFromInt(1265000)))
}

func (suite *CardServiceTestSuite) TestCorrectBalance_Overwrites() {
	ctx := context.Background()
	card := suite.activeCard(100)
	req := dto.CorrectBalanceRequest{NewBalance: decimal.NewFromInt(250), Reason: "bank statement"}

	suite.mockCardRepo.On("FindCardByID", ctx, card.CardID).Return(card, nil).Once()
	suite.mockCardRepo.On("SetCardBalance", ctx, card.CardID, req.NewBalance, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	got, err := suite.service.CorrectBalance(ctx, suite.userID, card.CardID, req)

	suite.Require().NoError(err)
	suite.True(got.Balance.Equal(decimal.NewFromInt(250)))
}

func (suite *CardServiceTestSuite) TestDeleteCard_WithHistoryRejected() {
	ctx := context.Background()
	card := suite.activeCard(100)

	suite.mockCardRepo.On("FindCardByID", ctx, card.CardID).Return(card, nil).Once()
	suite.mockTxnRepo.On("HasTransactionsForCard", ctx, card.CardID).Return(true, nil).Once()

	err := suite.service.DeleteCard(ctx, suite.userID, card.CardID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockCardRepo.AssertNotCalled(suite.T(), "DeleteCard", mock.Anything, mock.Anything)
}

func (suite *CardServiceTestSuite) TestDeleteCard_LastActiveCardRejected() {
	ctx := context.Background()
	card := suite.activeCard(100)

	suite.mockCardRepo.On("FindCardByID", ctx, card.CardID).Return(card, nil).Once()
	suite.mockTxnRepo.On("HasTransactionsForCard", ctx, card.CardID).Return(false, nil).Once()
	suite.mockCardRepo.On("CountActiveCardsByUser", ctx, suite.userID).Return(1, nil).Once()

	err := suite.service.DeleteCard(ctx, suite.userID, card.CardID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockCardRepo.AssertNotCalled(suite.T(), "DeleteCard", mock.Anything, mock.Anything)
}

func (suite *CardServiceTestSuite) TestDeleteCard_Success() {
	ctx := context.Background()
	card := suite.activeCard(100)

	suite.mockCardRepo.On("FindCardByID", ctx, card.CardID).Return(card, nil).Once()
	suite.mockTxnRepo.On("HasTransactionsForCard", ctx, card.CardID).Return(false, nil).Once()
	suite.mockCardRepo.On("CountActiveCardsByUser", ctx, suite.userID).Return(2, nil).Once()
	suite.mockCardRepo.On("DeleteCard", ctx, card.CardID).Return(nil).Once()

	err := suite.service.DeleteCard(ctx, suite.userID, card.CardID)

	suite.Require().NoError(err)
	suite.mockCardRepo.AssertExpectations(suite.T())
}

func TestCardServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CardServiceTestSuite))
}
