package services

import (
	"context"

	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
)

// SupportSvcFacade is the per-user support thread with admin replies.
type SupportSvcFacade interface {
	// PostMessage appends a message to the user's thread. asAdmin marks the
	// message as an admin reply into that user's thread.
	PostMessage(ctx context.Context, userID string, body string, asAdmin bool) (*domain.SupportMessage, error)

	// ListThread retrieves a token-paginated page of the thread, newest first,
	// and marks the fetched side as read.
	ListThread(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.SupportMessage, *string, error)

	// UnreadCount counts admin replies the user has not seen.
	UnreadCount(ctx context.Context, userID string) (int, error)

	// ListOpenThreads lists users with unread messages, for the admin view.
	ListOpenThreads(ctx context.Context) ([]string, error)
}
