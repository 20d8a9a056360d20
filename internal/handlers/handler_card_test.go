package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/qodirovs/finance_tracker_app/internal/apperrors"
	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
	portssvc "github.com/qodirovs/finance_tracker_app/internal/core/ports/services"
	"github.com/qodirovs/finance_tracker_app/internal/dto"
	"github.com/qodirovs/finance_tracker_app/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock CardService ---
type MockCardService struct {
	mock.Mock
}

func (m *MockCardService) GetCardByID(ctx context.Context, userID string, cardID string) (*domain.Card, error) {
	args := m.Called(ctx, userID, cardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Card), args.Error(1)
}

func (m *MockCardService) ListCards(ctx context.Context, userID string) ([]domain.Card, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Card), args.Error(1)
}

func (m *MockCardService) GetBalanceInCurrency(ctx context.Context, userID string, cardID string, currencyCode string) (decimal.Decimal, bool, error) {
	args := m.Called(ctx, userID, cardID, currencyCode)
	return args.Get(0).(decimal.Decimal), args.Bool(1), args.Error(2)
}

func (m *MockCardService) CreateCard(ctx context.Context, userID string, req dto.CreateCardRequest) (*domain.Card, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Card), args.Error(1)
}

func (m *MockCardService) UpdateCard(ctx context.Context, userID string, cardID string, req dto.UpdateCardRequest) (*domain.Card, error) {
	args := m.Called(ctx, userID, cardID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Card), args.Error(1)
}

func (m *MockCardService) SetDefaultCard(ctx context.Context, userID string, cardID string) (*domain.Card, error) {
	args := m.Called(ctx, userID, cardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Card), args.Error(1)
}

func (m *MockCardService) ChangeCardStatus(ctx context.Context, userID string, cardID string, status domain.CardStatus) (*domain.Card, error) {
	args := m.Called(ctx, userID, cardID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Card), args.Error(1)
}

func (m *MockCardService) CorrectBalance(ctx context.Context, userID string, cardID string, req dto.CorrectBalanceRequest) (*domain.Card, error) {
	args := m.Called(ctx, userID, cardID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Card), args.Error(1)
}

func (m *MockCardService) DeleteCard(ctx context.Context, userID string, cardID string) error {
	args := m.Called(ctx, userID, cardID)
	return args.Error(0)
}

// Ensure mock implements the interface
var _ portssvc.CardSvcFacade = (*MockCardService)(nil)

// --- Test Suite ---
type CardHandlerTestSuite struct {
	suite.Suite
	router          *gin.Engine
	mockCardService *MockCardService
	jwtSecret       string

	userID string
}

// generateTestToken creates a signed JWT for the test user.
func (suite *CardHandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "fta-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *CardHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"

	suite.router.Use(middleware.AuthMiddleware(suite.jwtSecret))

	suite.mockCardService = new(MockCardService)
	suite.userID = uuid.NewString()

	v1 := suite.router.Group("/api/v1")
	registerCardRoutes(v1, suite.mockCardService)
}

// doRequest serves an authenticated request and returns the recorder.
func (suite *CardHandlerTestSuite) doRequest(method, url string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, url, nil)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(suite.userID))
	req.Header.Set("Accept", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *CardHandlerTestSuite) TestDeleteCard_Success() {
	cardID := uuid.NewString()

	suite.mockCardService.On("DeleteCard", mock.Anything, suite.userID, cardID).Return(nil).Once()

	w := suite.doRequest(http.MethodDelete, fmt.Sprintf("/api/v1/cards/%s", cardID))

	suite.Equal(http.StatusNoContent, w.Code)
	suite.mockCardService.AssertExpectations(suite.T())
}

func (suite *CardHandlerTestSuite) TestDeleteCard_WithHistoryConflict() {
	cardID := uuid.NewString()

	suite.mockCardService.On("DeleteCard", mock.Anything, suite.userID, cardID).
		Return(fmt.Errorf("%w: card has transaction history and cannot be deleted", apperrors.ErrConflict)).Once()

	w := suite.doRequest(http.MethodDelete, fmt.Sprintf("/api/v1/cards/%s", cardID))

	suite.Equal(http.StatusConflict, w.Code)
	suite.Contains(w.Body.String(), "transaction history")
}

func (suite *CardHandlerTestSuite) TestDeleteCard_ForeignCardForbidden() {
	cardID := uuid.NewString()

	suite.mockCardService.On("DeleteCard", mock.Anything, suite.userID, cardID).
		Return(fmt.Errorf("%w: card does not belong to user", apperrors.ErrForbidden)).Once()

	w := suite.doRequest(http.MethodDelete, fmt.Sprintf("/api/v1/cards/%s", cardID))

	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *CardHandlerTestSuite) TestDeleteCard_Unauthenticated() {
	req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("/api/v1/cards/%s", uuid.NewString()), nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockCardService.AssertNotCalled(suite.T(), "DeleteCard", mock.Anything, mock.Anything, mock.Anything)
}

func TestCardHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(CardHandlerTestSuite))
}
