package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
	portsrepo "github.com/qodirovs/finance_tracker_app/internal/core/ports/repositories"
	portssvc "github.com/qodirovs/finance_tracker_app/internal/core/ports/services"
)

// supportService runs the per-user support thread with admin replies.
type supportService struct {
	BaseService
	supportRepo portsrepo.SupportRepositoryFacade
	userRepo    portsrepo.UserReader
}

// NewSupportService creates a new support service.
func NewSupportService(supportRepo portsrepo.SupportRepositoryFacade, userRepo portsrepo.UserReader) portssvc.SupportSvcFacade {
	return &supportService{
		supportRepo: supportRepo,
		userRepo:    userRepo,
	}
}

var _ portssvc.SupportSvcFacade = (*supportService)(nil)

// PostMessage appends a message to the user's thread. asAdmin marks the
// message as an admin reply into that user's thread; replying also marks the
// user's pending messages as read on the admin side.
func (s *supportService) PostMessage(ctx context.Context, userID string, body string, asAdmin bool) (*domain.SupportMessage, error) {
	// The thread owner must exist either way.
	if _, err := s.userRepo.FindUserByID(ctx, userID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	message := domain.SupportMessage{
		MessageID:    uuid.NewString(),
		UserID:       userID,
		Body:         body,
		IsAdminReply: asAdmin,
		IsRead:       false,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.supportRepo.SaveSupportMessage(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to post support message in service: %w", err)
	}

	if asAdmin {
		if err := s.supportRepo.MarkThreadRead(ctx, userID, true); err != nil {
			s.LogWarn(ctx, "failed to mark thread read after admin reply",
				slog.String("user_id", userID),
				slog.String("error", err.Error()))
		}
	}

	return &message, nil
}

// ListThread retrieves a token-paginated page of the thread, newest first, and
// marks the admin replies as read by the user.
func (s *supportService) ListThread(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.SupportMessage, *string, error) {
	messages, newToken, err := s.supportRepo.ListMessagesByUser(ctx, userID, limit, nextToken)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list support thread in service: %w", err)
	}

	if err := s.supportRepo.MarkThreadRead(ctx, userID, false); err != nil {
		s.LogWarn(ctx, "failed to mark thread read after listing",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
	}

	return messages, newToken, nil
}

// UnreadCount counts admin replies the user has not seen.
func (s *supportService) UnreadCount(ctx context.Context, userID string) (int, error) {
	count, err := s.supportRepo.CountUnreadForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread support messages in service: %w", err)
	}
	return count, nil
}

// ListOpenThreads lists users with unread messages, for the admin view.
func (s *supportService) ListOpenThreads(ctx context.Context) ([]string, error) {
	userIDs, err := s.supportRepo.ListUserIDsWithUnreadForAdmin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list open support threads in service: %w", err)
	}
	return userIDs, nil
}
