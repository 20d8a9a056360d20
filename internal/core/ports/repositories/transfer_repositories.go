package repositories

import (
	"context"

	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
)

// TransferReader defines read operations for transfer data
type TransferReader interface {
	// FindTransferByID retrieves a specific transfer by its unique identifier.
	FindTransferByID(ctx context.Context, transferID string) (*domain.CardTransfer, error)

	// ListTransfersByUser retrieves a paginated list of the user's transfers
	// using token-based pagination, newest first.
	ListTransfersByUser(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.CardTransfer, *string, error)
}

// TransferWriter defines write operations for transfer data
type TransferWriter interface {
	// SaveTransfer persists the transfer and moves the money in one database
	// transaction: both cards are locked, the source balance is re-checked under
	// the lock, the source is debited and the destination credited. Any failure
	// rolls back the whole operation.
	SaveTransfer(ctx context.Context, transfer domain.CardTransfer) error
}

// TransferRepositoryFacade combines all transfer-related repository interfaces
// This is a facade for clients that need access to all operations
type TransferRepositoryFacade interface {
	TransferReader
	TransferWriter
}

// TransferRepositoryWithTx extends TransferRepositoryFacade with transaction capabilities
type TransferRepositoryWithTx interface {
	TransferRepositoryFacade
	TransactionManager
}
