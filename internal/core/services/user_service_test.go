package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/qodirovs/finance_tracker_app/internal/apperrors"
	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
	portssvc "github.com/qodirovs/finance_tracker_app/internal/core/ports/services"
	"github.com/qodirovs/finance_tracker_app/internal/core/services"
	"github.com/qodirovs/finance_tracker_app/internal/dto"
	"github.com/qodirovs/finance_tracker_app/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock UserRepository ---
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByProviderID(ctx context.Context, provider domain.AuthProvider, providerUserID string) (*domain.User, error) {
	args := m.Called(ctx, provider, providerUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUsers(ctx context.Context, limit int, offset int) ([]domain.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateRefreshTokenHash(ctx context.Context, userID string, tokenHash *string, expiry *time.Time, now time.Time) error {
	args := m.Called(ctx, userID, tokenHash, expiry, now)
	return args.Error(0)
}

func (m *MockUserRepository) MarkUserDeleted(ctx context.Context, userID string, deletedAt time.Time, deletedBy string) error {
	args := m.Called(ctx, userID, deletedAt, deletedBy)
	return args.Error(0)
}

func (m *MockUserRepository) SaveVerification(ctx context.Context, verification domain.EmailVerification) error {
	args := m.Called(ctx, verification)
	return args.Error(0)
}

func (m *MockUserRepository) FindActiveVerification(ctx context.Context, userID string) (*domain.EmailVerification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EmailVerification), args.Error(1)
}

func (m *MockUserRepository) MarkVerificationConsumed(ctx context.Context, verificationID string, now time.Time) error {
	args := m.Called(ctx, verificationID, now)
	return args.Error(0)
}

// --- Mock TransactionService ---
type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) GetTransactionByID(ctx context.Context, userID string, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, userID, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionService) ListTransactions(ctx context.Context, userID string, req dto.ListTransactionsRequest) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, userID, req)
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

func (m *MockTransactionService) CreateTransaction(ctx context.Context, userID string, req dto.CreateTransactionRequest) (*domain.Transaction, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionService) UpdateTransaction(ctx context.Context, userID string, transactionID string, req dto.UpdateTransactionRequest) (*domain.Transaction, error) {
	args := m.Called(ctx, userID, transactionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionService) DeleteTransaction(ctx context.Context, userID string, transactionID string) error {
	args := m.Called(ctx, userID, transactionID)
	return args.Error(0)
}

func (m *MockTransactionService) RecomputeReportingAmounts(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

// recordingSender captures issued codes without touching SMTP. Delivery runs in
// a goroutine, so access is mutex guarded and tests never assert on it directly.
type recordingSender struct {
	mu    sync.Mutex
	codes []string
}

func (s *recordingSender) SendVerificationCode(ctx context.Context, toAddress, code string, validFor time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes = append(s.codes, code)
	return nil
}

// --- Test Suite ---
type UserServiceTestSuite struct {
	suite.Suite
	mockUserRepo    *MockUserRepository
	mockCurrencySvc *MockCurrencyService
	mockTxnSvc      *MockTransactionService
	sender          *recordingSender
	service         portssvc.UserSvcFacade
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.mockUserRepo = new(MockUserRepository)
	suite.mockCurrencySvc = new(MockCurrencyService)
	suite.mockTxnSvc = new(MockTransactionService)
	suite.sender = &recordingSender{}
	suite.service = services.NewUserService(suite.mockUserRepo, suite.mockCurrencySvc, suite.mockTxnSvc, suite.sender)
}

func (suite *UserServiceTestSuite) localUser(status domain.AuthStatus) *domain.User {
	hash, err := utils.HashPassword("correct-horse")
	suite.Require().NoError(err)
	return &domain.User{
		UserID:       uuid.NewString(),
		Email:        "user@example.com",
		PasswordHash: hash,
		AuthProvider: domain.ProviderLocal,
		AuthStatus:   status,
	}
}

// --- Test Cases ---

func (suite *UserServiceTestSuite) TestRegisterUser_CreatesNewUserAndIssuesCode() {
	ctx := context.Background()
	req := dto.RegisterUserRequest{Email: "new@example.com", Password: "password123"}

	suite.mockUserRepo.On("FindUserByEmail", ctx, req.Email).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockUserRepo.On("SaveUser", ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.AuthStatus == domain.AuthStatusNew && u.AuthProvider == domain.ProviderLocal && !u.EmailVerified
	})).Return(nil).Once()
	suite.mockUserRepo.On("SaveVerification", ctx, mock.MatchedBy(func(v domain.EmailVerification) bool {
		return len(v.Code) == 4 && v.ExpiresAt.After(time.Now().UTC())
	})).Return(nil).Once()

	user, err := suite.service.RegisterUser(ctx, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(user)
	suite.Equal(domain.AuthStatusNew, user.AuthStatus)
	suite.NotEqual(req.Password, user.PasswordHash)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestRegisterUser_DuplicateEmailRejected() {
	ctx := context.Background()
	req := dto.RegisterUserRequest{Email: "taken@example.com", Password: "password123"}

	suite.mockUserRepo.On("FindUserByEmail", ctx, req.Email).Return(suite.localUser(domain.AuthStatusDone), nil).Once()

	user, err := suite.service.RegisterUser(ctx, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.Nil(user)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "SaveUser", mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestVerifyEmailCode_AdvancesToCodeVerified() {
	ctx := context.Background()
	user := suite.localUser(domain.AuthStatusNew)
	verification := &domain.EmailVerification{
		VerificationID: uuid.NewString(),
		UserID:         user.UserID,
		Code:           "1234",
		ExpiresAt:      time.Now().UTC().Add(time.Minute),
	}

	suite.mockUserRepo.On("FindUserByID", ctx, user.UserID).Return(user, nil).Once()
	suite.mockUserRepo.On("FindActiveVerification", ctx, user.UserID).Return(verification, nil).Once()
	suite.mockUserRepo.On("MarkVerificationConsumed", ctx, verification.VerificationID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockUserRepo.On("UpdateUser", ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.AuthStatus == domain.AuthStatusCodeVerified && u.EmailVerified
	})).Return(nil).Once()

	err := suite.service.VerifyEmailCode(ctx, user.UserID, "1234")

	suite.Require().NoError(err)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestVerifyEmailCode_WrongCodeRejected() {
	ctx := context.Background()
	user := suite.localUser(domain.AuthStatusNew)
	verification := &domain.EmailVerification{
		VerificationID: uuid.NewString(),
		UserID:         user.UserID,
		Code:           "1234",
		ExpiresAt:      time.Now().UTC().Add(time.Minute),
	}

	suite.mockUserRepo.On("FindUserByID", ctx, user.UserID).Return(user, nil).Once()
	suite.mockUserRepo.On("FindActiveVerification", ctx, user.UserID).Return(verification, nil).Once()

	err := suite.service.VerifyEmailCode(ctx, user.UserID, "9999")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "MarkVerificationConsumed", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestVerifyEmailCode_ExpiredCodeRejected() {
	ctx := context.Background()
	user := suite.localUser(domain.AuthStatusNew)
	verification := &domain.EmailVerification{
		VerificationID: uuid.NewString(),
		UserID:         user.UserID,
		Code:           "1234",
		ExpiresAt:      time.Now().UTC().Add(-time.Second),
	}

	suite.mockUserRepo.On("FindUserByID", ctx, user.UserID).Return(user, nil).Once()
	suite.mockUserRepo.On("FindActiveVerification", ctx, user.UserID).Return(verification, nil).Once()

	err := suite.service.VerifyEmailCode(ctx, user.UserID, "1234")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "MarkVerificationConsumed", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestVerifyEmailCode_AlreadyVerifiedConflict() {
	ctx := context.Background()
	user := suite.localUser(domain.AuthStatusCodeVerified)

	suite.mockUserRepo.On("FindUserByID", ctx, user.UserID).Return(user, nil).Once()

	err := suite.service.VerifyEmailCode(ctx, user.UserID, "1234")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "FindActiveVerification", mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestResendVerificationCode_ThrottledWithinWindow() {
	ctx := context.Background()
	user := suite.localUser(domain.AuthStatusNew)
	verification := &domain.EmailVerification{
		VerificationID: uuid.NewString(),
		UserID:         user.UserID,
		Code:           "1234",
		LastSentAt:     time.Now().UTC().Add(-30 * time.Second),
		ExpiresAt:      time.Now().UTC().Add(90 * time.Second),
	}

	suite.mockUserRepo.On("FindUserByID", ctx, user.UserID).Return(user, nil).Once()
	suite.mockUserRepo.On("FindActiveVerification", ctx, user.UserID).Return(verification, nil).Once()

	err := suite.service.ResendVerificationCode(ctx, user.UserID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "SaveVerification", mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestResendVerificationCode_AfterWindowIssuesNewCode() {
	ctx := context.Background()
	user := suite.localUser(domain.AuthStatusNew)
	verification := &domain.EmailVerification{
		VerificationID: uuid.NewString(),
		UserID:         user.UserID,
		Code:           "1234",
		LastSentAt:     time.Now().UTC().Add(-3 * time.Minute),
		ExpiresAt:      time.Now().UTC().Add(-time.Minute),
	}

	suite.mockUserRepo.On("FindUserByID", ctx, user.UserID).Return(user, nil).Once()
	suite.mockUserRepo.On("FindActiveVerification", ctx, user.UserID).Return(verification, nil).Once()
	suite.mockUserRepo.On("SaveVerification", ctx, mock.AnythingOfType("domain.EmailVerification")).Return(nil).Once()

	err := suite.service.ResendVerificationCode(ctx, user.UserID)

	suite.Require().NoError(err)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestCompleteRegistration_RequiresVerifiedEmail() {
	ctx := context.Background()
	user := suite.localUser(domain.AuthStatusNew)
	req := dto.CompleteRegistrationRequest{Name: "Sardor", DefaultCurrencyCode: "UZS"}

	suite.mockUserRepo.On("FindUserByID", ctx, user.UserID).Return(user, nil).Once()

	got, err := suite.service.CompleteRegistration(ctx, user.UserID, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.Nil(got)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "UpdateUser", mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestCompleteRegistration_AdvancesToDone() {
	ctx := context.Background()
	user := suite.localUser(domain.AuthStatusCodeVerified)
	req := dto.CompleteRegistrationRequest{Name: "Sardor", DefaultCurrencyCode: "UZS"}

	suite.mockUserRepo.On("FindUserByID", ctx, user.UserID).Return(user, nil).Once()
	suite.mockCurrencySvc.On("GetCurrencyByCode", ctx, "UZS").Return(&domain.Currency{CurrencyCode: "UZS", IsActive: true}, nil).Once()
	suite.mockUserRepo.On("UpdateUser", ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.AuthStatus == domain.AuthStatusDone && u.Name == "Sardor" && u.DefaultCurrencyCode == "UZS"
	})).Return(nil).Once()

	got, err := suite.service.CompleteRegistration(ctx, user.UserID, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(got)
	suite.Equal(domain.AuthStatusDone, got.AuthStatus)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestCompleteRegistration_InactiveCurrencyRejected() {
	ctx := context.Background()
	user := suite.localUser(domain.AuthStatusCodeVerified)
	req := dto.CompleteRegistrationRequest{Name: "Sardor", DefaultCurrencyCode: "XAU"}

	suite.mockUserRepo.On("FindUserByID", ctx, user.UserID).Return(user, nil).Once()
	suite.mockCurrencySvc.On("GetCurrencyByCode", ctx, "XAU").Return(&domain.Currency{CurrencyCode: "XAU", IsActive: false}, nil).Once()

	got, err := suite.service.CompleteRegistration(ctx, user.UserID, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(got)
}

func (suite *UserServiceTestSuite) TestAuthenticateUser_WrongPassword() {
	ctx := context.Background()
	user := suite.localUser(domain.AuthStatusDone)

	suite.mockUserRepo.On("FindUserByEmail", ctx, user.Email).Return(user, nil).Once()

	got, err := suite.service.AuthenticateUser(ctx, user.Email, "wrong-password")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
	suite.Nil(got)
}

func (suite *UserServiceTestSuite) TestAuthenticateUser_Success() {
	ctx := context.Background()
	user := suite.localUser(domain.AuthStatusDone)

	suite.mockUserRepo.On("FindUserByEmail", ctx, user.Email).Return(user, nil).Once()

	got, err := suite.service.AuthenticateUser(ctx, user.Email, "correct-horse")

	suite.Require().NoError(err)
	suite.Require().NotNil(got)
	suite.Equal(user.UserID, got.UserID)
}

func (suite *UserServiceTestSuite) TestChangeDefaultCurrency_RepricesHistory() {
	ctx := context.Background()
	user := suite.localUser(domain.AuthStatusDone)
	user.DefaultCurrencyCode = "USD"

	suite.mockCurrencySvc.On("GetCurrencyByCode", ctx, "UZS").Return(&domain.Currency{CurrencyCode: "UZS", IsActive: true}, nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, user.UserID).Return(user, nil).Once()
	suite.mockUserRepo.On("UpdateUser", ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.DefaultCurrencyCode == "UZS"
	})).Return(nil).Once()
	suite.mockTxnSvc.On("RecomputeReportingAmounts", ctx, user.UserID).Return(12, nil).Once()

	count, err := suite.service.ChangeDefaultCurrency(ctx, user.UserID, "UZS")

	suite.Require().NoError(err)
	suite.Equal(12, count)
	suite.mockTxnSvc.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestChangeDefaultCurrency_SameCurrencyNoop() {
	ctx := context.Background()
	user := suite.localUser(domain.AuthStatusDone)
	user.DefaultCurrencyCode = "USD"

	suite.mockCurrencySvc.On("GetCurrencyByCode", ctx, "USD").Return(&domain.Currency{CurrencyCode: "USD", IsActive: true}, nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, user.UserID).Return(user, nil).Once()

	count, err := suite.service.ChangeDefaultCurrency(ctx, user.UserID, "USD")

	suite.Require().NoError(err)
	suite.Zero(count)
	suite.mockTxnSvc.AssertNotCalled(suite.T(), "RecomputeReportingAmounts", mock.Anything, mock.Anything)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "UpdateUser", mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestUpdateUser_NonAdminCannotEditOthers() {
	ctx := context.Background()
	requester := suite.localUser(domain.AuthStatusDone)
	name := "Imposter"

	suite.mockUserRepo.On("FindUserByID", ctx, requester.UserID).Return(requester, nil).Once()

	got, err := suite.service.UpdateUser(ctx, uuid.NewString(), dto.UpdateUserRequest{Name: &name}, requester.UserID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.Nil(got)
}

func (suite *UserServiceTestSuite) TestCreateOrGetOAuthUser_ReturnsExistingProviderIdentity() {
	ctx := context.Background()
	existing := suite.localUser(domain.AuthStatusDone)
	existing.AuthProvider = domain.ProviderGoogle
	existing.ProviderUserID = uuid.NewString()

	suite.mockUserRepo.On("FindUserByProviderID", ctx, domain.ProviderGoogle, existing.ProviderUserID).Return(existing, nil).Once()

	user, err := suite.service.CreateOrGetOAuthUser(ctx, "Someone", existing.Email, domain.ProviderGoogle, existing.ProviderUserID, true)

	suite.Require().NoError(err)
	suite.Equal(existing.UserID, user.UserID)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "SaveUser", mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestCreateOrGetOAuthUser_ExistingEmailNotDuplicated() {
	ctx := context.Background()
	existing := suite.localUser(domain.AuthStatusDone)
	providerUserID := uuid.NewString()

	suite.mockUserRepo.On("FindUserByProviderID", ctx, domain.ProviderGoogle, providerUserID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockUserRepo.On("FindUserByEmail", ctx, existing.Email).Return(existing, nil).Once()

	user, err := suite.service.CreateOrGetOAuthUser(ctx, "Someone", existing.Email, domain.ProviderGoogle, providerUserID, true)

	suite.Require().NoError(err)
	suite.Equal(existing.UserID, user.UserID)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "SaveUser", mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestCreateOrGetOAuthUser_ProvisionsDoneUser() {
	ctx := context.Background()
	providerUserID := uuid.NewString()

	suite.mockUserRepo.On("FindUserByProviderID", ctx, domain.ProviderGoogle, providerUserID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockUserRepo.On("FindUserByEmail", ctx, "oauth@example.com").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockUserRepo.On("SaveUser", ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.AuthStatus == domain.AuthStatusDone &&
			u.AuthProvider == domain.ProviderGoogle &&
			u.ProviderUserID == providerUserID &&
			u.DefaultCurrencyCode == "USD" &&
			u.EmailVerified
	})).Return(nil).Once()

	user, err := suite.service.CreateOrGetOAuthUser(ctx, "OAuth User", "oauth@example.com", domain.ProviderGoogle, providerUserID, true)

	suite.Require().NoError(err)
	suite.Equal(domain.AuthStatusDone, user.AuthStatus)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
