package repositories

import (
	"context"

	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
)

// SupportReader defines read operations for support thread data
type SupportReader interface {
	// ListMessagesByUser retrieves the user's support thread using token-based
	// pagination, newest first.
	ListMessagesByUser(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.SupportMessage, *string, error)

	// CountUnreadForUser counts admin replies the user has not read yet.
	CountUnreadForUser(ctx context.Context, userID string) (int, error)

	// ListUserIDsWithUnreadForAdmin lists users with unread messages on the admin side.
	ListUserIDsWithUnreadForAdmin(ctx context.Context) ([]string, error)
}

// SupportWriter defines write operations for support thread data
type SupportWriter interface {
	// SaveSupportMessage persists a new message in a user's thread.
	SaveSupportMessage(ctx context.Context, message domain.SupportMessage) error

	// MarkThreadRead marks the thread read for one side: adminSide marks user
	// messages read, otherwise admin replies are marked read.
	MarkThreadRead(ctx context.Context, userID string, adminSide bool) error
}

// SupportRepositoryFacade combines all support-related repository interfaces
// This is a facade for clients that need access to all operations
type SupportRepositoryFacade interface {
	SupportReader
	SupportWriter
}
