package services_test

import (
	"context"
	"testing"

	"github.com/qodirovs/finance_tracker_app/internal/apperrors"
	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
	portssvc "github.com/qodirovs/finance_tracker_app/internal/core/ports/services"
	"github.com/qodirovs/finance_tracker_app/internal/core/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock SupportRepository ---
type MockSupportRepository struct {
	mock.Mock
}

func (m *MockSupportRepository) ListMessagesByUser(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.SupportMessage, *string, error) {
	args := m.Called(ctx, userID, limit, nextToken)
	var messages []domain.SupportMessage
	if args.Get(0) != nil {
		messages = args.Get(0).([]domain.SupportMessage)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return messages, token, args.Error(2)
}

func (m *MockSupportRepository) CountUnreadForUser(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockSupportRepository) ListUserIDsWithUnreadForAdmin(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockSupportRepository) SaveSupportMessage(ctx context.Context, message domain.SupportMessage) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockSupportRepository) MarkThreadRead(ctx context.Context, userID string, adminSide bool) error {
	args := m.Called(ctx, userID, adminSide)
	return args.Error(0)
}

// --- Test Suite ---
type SupportServiceTestSuite struct {
	suite.Suite
	mockSupportRepo *MockSupportRepository
	mockUserRepo    *MockUserRepository
	service         portssvc.SupportSvcFacade

	userID string
}

func (suite *SupportServiceTestSuite) SetupTest() {
	suite.mockSupportRepo = new(MockSupportRepository)
	suite.mockUserRepo = new(MockUserRepository)
	suite.service = services.NewSupportService(suite.mockSupportRepo, suite.mockUserRepo)

	suite.userID = uuid.NewString()
}

// --- Test Cases ---

func (suite *SupportServiceTestSuite) TestPostMessage_UserMessage() {
	ctx := context.Background()

	suite.mockUserRepo.On("FindUserByID", ctx, suite.userID).Return(&domain.User{UserID: suite.userID}, nil).Once()
	suite.mockSupportRepo.On("SaveSupportMessage", ctx, mock.MatchedBy(func(msg domain.SupportMessage) bool {
		return msg.UserID == suite.userID && !msg.IsAdminReply && !msg.IsRead
	})).Return(nil).Once()

	message, err := suite.service.PostMessage(ctx, suite.userID, "I cannot delete a card", false)

	suite.Require().NoError(err)
	suite.Require().NotNil(message)
	suite.Equal("I cannot delete a card", message.Body)
	suite.mockSupportRepo.AssertNotCalled(suite.T(), "MarkThreadRead", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SupportServiceTestSuite) TestPostMessage_AdminReplyMarksThreadRead() {
	ctx := context.Background()

	suite.mockUserRepo.On("FindUserByID", ctx, suite.userID).Return(&domain.User{UserID: suite.userID}, nil).Once()
	suite.mockSupportRepo.On("SaveSupportMessage", ctx, mock.MatchedBy(func(msg domain.SupportMessage) bool {
		return msg.UserID == suite.userID && msg.IsAdminReply
	})).Return(nil).Once()
	suite.mockSupportRepo.On("MarkThreadRead", ctx, suite.userID, true).Return(nil).Once()

	message, err := suite.service.PostMessage(ctx, suite.userID, "Cards with history cannot be deleted", true)

	suite.Require().NoError(err)
	suite.True(message.IsAdminReply)
	suite.mockSupportRepo.AssertExpectations(suite.T())
}

func (suite *SupportServiceTestSuite) TestPostMessage_UnknownUserRejected() {
	ctx := context.Background()

	suite.mockUserRepo.On("FindUserByID", ctx, suite.userID).Return(nil, apperrors.ErrNotFound).Once()

	message, err := suite.service.PostMessage(ctx, suite.userID, "hello", false)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.Nil(message)
	suite.mockSupportRepo.AssertNotCalled(suite.T(), "SaveSupportMessage", mock.Anything, mock.Anything)
}

func (suite *SupportServiceTestSuite) TestListThread_MarksAdminRepliesRead() {
	ctx := context.Background()
	thread := []domain.SupportMessage{
		{MessageID: uuid.NewString(), UserID: suite.userID, Body: "reply", IsAdminReply: true},
		{MessageID: uuid.NewString(), UserID: suite.userID, Body: "question"},
	}

	suite.mockSupportRepo.On("ListMessagesByUser", ctx, suite.userID, 20, (*string)(nil)).Return(thread, nil, nil).Once()
	suite.mockSupportRepo.On("MarkThreadRead", ctx, suite.userID, false).Return(nil).Once()

	messages, token, err := suite.service.ListThread(ctx, suite.userID, 20, nil)

	suite.Require().NoError(err)
	suite.Len(messages, 2)
	suite.Nil(token)
	suite.mockSupportRepo.AssertExpectations(suite.T())
}

func (suite *SupportServiceTestSuite) TestUnreadCount() {
	ctx := context.Background()

	suite.mockSupportRepo.On("CountUnreadForUser", ctx, suite.userID).Return(3, nil).Once()

	count, err := suite.service.UnreadCount(ctx, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(3, count)
}

func (suite *SupportServiceTestSuite) TestListOpenThreads() {
	ctx := context.Background()
	waiting := []string{uuid.NewString(), uuid.NewString()}

	suite.mockSupportRepo.On("ListUserIDsWithUnreadForAdmin", ctx).Return(waiting, nil).Once()

	userIDs, err := suite.service.ListOpenThreads(ctx)

	suite.Require().NoError(err)
	suite.Equal(waiting, userIDs)
}

func TestSupportServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SupportServiceTestSuite))
}
