package services_test

import (
	"context"
	"testing"
	"time"

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

// --- Mock ExchangeRateRepository ---
type MockExchangeRateRepository struct {
	mock.Mock
}

func (m *MockExchangeRateRepository) SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *MockExchangeRateRepository) FindLatestRate(ctx context.Context, fromCurrencyCode, toCurrencyCode string, onOrBefore time.Time) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, fromCurrencyCode, toCurrencyCode, onOrBefore)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) ListExchangeRates(ctx context.Context, fromCurrencyCode, toCurrencyCode string, limit int) ([]domain.ExchangeRate, error) {
	args := m.Called(ctx, fromCurrencyCode, toCurrencyCode, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExchangeRate), args.Error(1)
}

// --- Mock CurrencyService ---
type MockCurrencyService struct {
	mock.Mock
}

func (m *MockCurrencyService) GetCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyService) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}

func (m *MockCurrencyService) CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest, creatorUserID string) (*domain.Currency, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

// --- Test Suite ---
type ExchangeRateServiceTestSuite struct {
	suite.Suite
	mockRateRepo    *MockExchangeRateRepository
	mockCurrencySvc *MockCurrencyService
	service         portssvc.ExchangeRateSvcFacade
}

func (suite *ExchangeRateServiceTestSuite) SetupTest() {
	suite.mockRateRepo = new(MockExchangeRateRepository)
	suite.mockCurrencySvc = new(MockCurrencyService)
	suite.service = services.NewExchangeRateService(suite.mockRateRepo, suite.mockCurrencySvc)
}

// --- Test Cases ---

func (suite *ExchangeRateServiceTestSuite) TestCreateExchangeRate_Success() {
	ctx := context.Background()
	creatorUserID := uuid.NewString()
	req := dto.CreateExchangeRateRequest{
		FromCurrencyCode: "USD",
		ToCurrencyCode:   "UZS",
		Rate:             decimal.NewFromInt(12650),
		DateEffective:    time.Now().UTC(),
	}

	suite.mockCurrencySvc.On("GetCurrencyByCode", ctx, "USD").Return(&domain.Currency{CurrencyCode: "USD"}, nil).Once()
	suite.mockCurrencySvc.On("GetCurrencyByCode", ctx, "UZS").Return(&domain.Currency{CurrencyCode: "UZS"}, nil).Once()
	suite.mockRateRepo.On("SaveExchangeRate", ctx, mock.AnythingOfType("domain.ExchangeRate")).Return(nil).Once()

	rate, err := suite.service.CreateExchangeRate(ctx, req, creatorUserID)

	suite.Require().NoError(err)
	suite.Require().NotNil(rate)
	suite.NotEmpty(rate.ExchangeRateID)
	suite.True(rate.Rate.Equal(req.Rate))
	suite.Equal(creatorUserID, rate.CreatedBy)
	suite.mockRateRepo.AssertExpectations(suite.T())
	suite.mockCurrencySvc.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestCreateExchangeRate_SameCurrency() {
	ctx := context.Background()
	req := dto.CreateExchangeRateRequest{
		FromCurrencyCode: "USD",
		ToCurrencyCode:   "USD",
		Rate:             decimal.NewFromInt(1),
		DateEffective:    time.Now().UTC(),
	}

	rate, err := suite.service.CreateExchangeRate(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(rate)
	suite.mockRateRepo.AssertNotCalled(suite.T(), "SaveExchangeRate", mock.Anything, mock.Anything)
}

func (suite *ExchangeRateServiceTestSuite) TestCreateExchangeRate_NonPositiveRate() {
	ctx := context.Background()
	req := dto.CreateExchangeRateRequest{
		FromCurrencyCode: "USD",
		ToCurrencyCode:   "EUR",
		Rate:             decimal.Zero,
		DateEffective:    time.Now().UTC(),
	}

	rate, err := suite.service.CreateExchangeRate(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(rate)
}

func (suite *ExchangeRateServiceTestSuite) TestCreateExchangeRate_UnknownCurrency() {
	ctx := context.Background()
	req := dto.CreateExchangeRateRequest{
		FromCurrencyCode: "XXX",
		ToCurrencyCode:   "USD",
		Rate:             decimal.NewFromInt(2),
		DateEffective:    time.Now().UTC(),
	}

	suite.mockCurrencySvc.On("GetCurrencyByCode", ctx, "XXX").Return(nil, apperrors.ErrNotFound).Once()

	rate, err := suite.service.CreateExchangeRate(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(rate)
}

func (suite *ExchangeRateServiceTestSuite) TestGetLatestRate_Identity() {
	ctx := context.Background()

	rate, ok, err := suite.service.GetLatestRate(ctx, "USD", "USD")

	suite.Require().NoError(err)
	suite.True(ok)
	suite.True(rate.Equal(decimal.NewFromInt(1)))
	suite.mockRateRepo.AssertNotCalled(suite.T(), "FindLatestRate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ExchangeRateServiceTestSuite) TestGetLatestRate_Direct() {
	ctx := context.Background()
	stored := &domain.ExchangeRate{
		ExchangeRateID:   uuid.NewString(),
		FromCurrencyCode: "USD",
		ToCurrencyCode:   "UZS",
		Rate:             decimal.NewFromInt(12650),
	}

	suite.mockRateRepo.On("FindLatestRate", ctx, "USD", "UZS", mock.AnythingOfType("time.Time")).Return(stored, nil).Once()

	rate, ok, err := suite.service.GetLatestRate(ctx, "USD", "UZS")

	suite.Require().NoError(err)
	suite.True(ok)
	suite.True(rate.Equal(decimal.NewFromInt(12650)))
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestGetLatestRate_InverseFallback() {
	ctx := context.Background()
	reverse := &domain.ExchangeRate{
		ExchangeRateID:   uuid.NewString(),
		FromCurrencyCode: "USD",
		ToCurrencyCode:   "EUR",
		Rate:             decimal.NewFromFloat(0.8),
	}

	suite.mockRateRepo.On("FindLatestRate", ctx, "EUR", "USD", mock.AnythingOfType("time.Time")).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRateRepo.On("FindLatestRate", ctx, "USD", "EUR", mock.AnythingOfType("time.Time")).Return(reverse, nil).Once()

	rate, ok, err := suite.service.GetLatestRate(ctx, "EUR", "USD")

	suite.Require().NoError(err)
	suite.True(ok)
	suite.True(rate.Equal(decimal.NewFromFloat(1.25)), "expected 1/0.8, got %s", rate.String())
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestGetLatestRate_NoRateEitherDirection() {
	ctx := context.Background()

	suite.mockRateRepo.On("FindLatestRate", ctx, "GBP", "JPY", mock.AnythingOfType("time.Time")).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRateRepo.On("FindLatestRate", ctx, "JPY", "GBP", mock.AnythingOfType("time.Time")).Return(nil, apperrors.ErrNotFound).Once()

	rate, ok, err := suite.service.GetLatestRate(ctx, "GBP", "JPY")

	suite.Require().NoError(err, "an absent rate is not an error")
	suite.False(ok)
	suite.True(rate.IsZero())
}

func (suite *ExchangeRateServiceTestSuite) TestGetLatestRate_LowercaseCodesNormalized() {
	ctx := context.Background()
	stored := &domain.ExchangeRate{
		FromCurrencyCode: "USD",
		ToCurrencyCode:   "UZS",
		Rate:             decimal.NewFromInt(12650),
	}

	suite.mockRateRepo.On("FindLatestRate", ctx, "USD", "UZS", mock.AnythingOfType("time.Time")).Return(stored, nil).Once()

	_, ok, err := suite.service.GetLatestRate(ctx, "usd", "uzs")

	suite.Require().NoError(err)
	suite.True(ok)
}

func (suite *ExchangeRateServiceTestSuite) TestConvert_AppliesRate() {
	ctx := context.Background()
	stored := &domain.ExchangeRate{
		FromCurrencyCode: "USD",
		ToCurrencyCode:   "UZS",
		Rate:             decimal.NewFromInt(12650),
	}

	suite.mockRateRepo.On("FindLatestRate", ctx, "USD", "UZS", mock.AnythingOfType("time.Time")).Return(stored, nil).Once()

	converted, ok, err := suite.service.Convert(ctx, decimal.NewFromInt(100), "USD", "UZS")

	suite.Require().NoError(err)
	suite.True(ok)
	suite.True(converted.Equal(decimal.NewFromInt(1265000)))
}

func TestExchangeRateServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ExchangeRateServiceTestSuite))
}
