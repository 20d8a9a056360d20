package services

import (
	"context"

	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
	"github.com/qodirovs/finance_tracker_app/internal/dto"
)

// TransferReaderSvc defines read operations for transfer data
type TransferReaderSvc interface {
	// GetTransferByID retrieves one of the user's transfers.
	GetTransferByID(ctx context.Context, userID string, transferID string) (*domain.CardTransfer, error)

	// ListTransfers retrieves a token-paginated page of the user's transfers, newest first.
	ListTransfers(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.CardTransfer, *string, error)
}

// TransferWriterSvc defines write operations for transfer data. Transfers are
// create-only; there is no update or delete.
type TransferWriterSvc interface {
	// CreateTransfer validates and executes a card-to-card transfer atomically.
	CreateTransfer(ctx context.Context, userID string, req dto.CreateTransferRequest) (*domain.CardTransfer, error)
}

// TransferSvcFacade combines all transfer-related service interfaces
type TransferSvcFacade interface {
	TransferReaderSvc
	TransferWriterSvc
}
