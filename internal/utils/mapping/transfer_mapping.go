package mapping

import (
	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
	"github.com/qodirovs/finance_tracker_app/internal/models"
)

// ToModelCardTransfer converts a domain CardTransfer to a model CardTransfer
func ToModelCardTransfer(d domain.CardTransfer) models.CardTransfer {
	return models.CardTransfer{
		TransferID:      d.TransferID,
		UserID:          d.UserID,
		FromCardID:      d.FromCardID,
		ToCardID:        d.ToCardID,
		Amount:          d.Amount,
		ExchangeRate:    d.ExchangeRate,
		ConvertedAmount: d.ConvertedAmount,
		Description:     d.Description,
		TransferDate:    d.TransferDate,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainCardTransfer converts a model CardTransfer to a domain CardTransfer
func ToDomainCardTransfer(m models.CardTransfer) domain.CardTransfer {
	return domain.CardTransfer{
		TransferID:      m.TransferID,
		UserID:          m.UserID,
		FromCardID:      m.FromCardID,
		ToCardID:        m.ToCardID,
		Amount:          m.Amount,
		ExchangeRate:    m.ExchangeRate,
		ConvertedAmount: m.ConvertedAmount,
		Description:     m.Description,
		TransferDate:    m.TransferDate,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainCardTransferSlice converts a slice of model CardTransfers to domain CardTransfers
func ToDomainCardTransferSlice(ms []models.CardTransfer) []domain.CardTransfer {
	ds := make([]domain.CardTransfer, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainCardTransfer(m)
	}
	return ds
}
